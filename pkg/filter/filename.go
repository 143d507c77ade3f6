package filter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

const filenameDoc = `Matches files by their name, without the extension. All given conditions
must hold. "match" is a glob pattern (e.g. "IMG_*").

Attributes:
  filename: the file name without extension.

Examples:
  - filename: "Invoice*"
  - filename:
      startswith: Scan
      case_sensitive: false`

type FilenameOptions struct {
	CaseSensitive *bool  `json:"case_sensitive,omitempty" jsonschema:"description=Compare case-sensitively (default true)"`
	Match         string `json:"match,omitempty" jsonschema:"description=Glob pattern the name must match"`
	StartsWith    string `json:"startswith,omitempty" jsonschema:"description=Prefix the name must start with"`
	Contains      string `json:"contains,omitempty" jsonschema:"description=Text the name must contain"`
	EndsWith      string `json:"endswith,omitempty" jsonschema:"description=Suffix the name must end with"`
}

// Filename matches paths by their file stem.
type Filename struct {
	opts FilenameOptions
	fold bool
}

func newFilename(o *FilenameOptions) (Filter, error) {
	f, err := NewFilename(*o)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// NewFilename creates a [Filename] filter.
func NewFilename(o FilenameOptions) (*Filename, error) {
	f := &Filename{fold: o.CaseSensitive != nil && !*o.CaseSensitive}

	if f.fold {
		o.Match = f.normalize(o.Match)
		o.StartsWith = f.normalize(o.StartsWith)
		o.Contains = f.normalize(o.Contains)
		o.EndsWith = f.normalize(o.EndsWith)
	}

	if o.Match != "" {
		_, err := filepath.Match(o.Match, "")
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", o.Match, err)
		}
	}

	f.opts = o

	return f, nil
}

func (f *Filename) Matches(_ context.Context, path string) (bool, error) {
	name := f.normalize(stemOf(path))

	if f.opts.Match != "" {
		ok, err := filepath.Match(f.opts.Match, name)
		if err != nil || !ok {
			return false, err //nolint:wrapcheck // Pattern validated on creation.
		}
	}

	return strings.HasPrefix(name, f.opts.StartsWith) &&
		strings.Contains(name, f.opts.Contains) &&
		strings.HasSuffix(name, f.opts.EndsWith), nil
}

func (f *Filename) Parse(_ context.Context, path string) (Attributes, error) {
	return Attributes{"filename": stemOf(path)}, nil
}

func (f *Filename) normalize(s string) string {
	if !f.fold {
		return s
	}

	return cases.Fold().String(s)
}
