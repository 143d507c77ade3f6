package filter

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/macropower/organize/pkg/yaml"
)

const extensionDoc = `Matches files by their extension. Comparison ignores case and an optional
leading dot. Without any extensions configured, every file that has an
extension matches.

Attributes:
  extension: the lower-case extension, without the dot.

Examples:
  - extension: pdf
  - extension: [.jpg, jpeg, png]`

type ExtensionOptions struct {
	Extensions yaml.StringList `json:"extensions,omitempty" jsonschema:"description=Extensions to match; any extension if empty"`
}

// Extension matches paths by file extension.
type Extension struct {
	extensions []string
}

func newExtension(o *ExtensionOptions) (Filter, error) {
	return NewExtension(o.Extensions...), nil
}

// NewExtension creates an [Extension] filter matching any of exts.
func NewExtension(exts ...string) *Extension {
	folded := make([]string, 0, len(exts))
	for _, ext := range exts {
		folded = append(folded, cases.Fold().String(strings.TrimPrefix(ext, ".")))
	}

	return &Extension{extensions: folded}
}

func (f *Extension) Matches(_ context.Context, path string) (bool, error) {
	ext := extensionOf(path)
	if ext == "" {
		return false, nil
	}
	if len(f.extensions) == 0 {
		return true, nil
	}

	return slices.Contains(f.extensions, cases.Fold().String(ext)), nil
}

func (f *Extension) Parse(_ context.Context, path string) (Attributes, error) {
	return Attributes{"extension": strings.ToLower(extensionOf(path))}, nil
}

func extensionOf(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// stemOf returns the file name without its extension.
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
