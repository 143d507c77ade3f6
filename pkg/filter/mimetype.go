package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/macropower/organize/pkg/yaml"
)

// Content sniffing considers at most this many bytes.
const sniffLen = 512

const mimeTypeDoc = `Matches files by their MIME type. The type is sniffed from the first bytes
of the content and falls back to the extension when sniffing is
inconclusive. A configured type matches as a prefix, so "image" matches
"image/png".

Attributes:
  mimetype: the detected MIME type, without parameters.

Examples:
  - mimetype: image
  - mimetype: [application/pdf, text/plain]`

type MimeTypeOptions struct {
	Types yaml.StringList `json:"types,omitempty" jsonschema:"description=MIME types or type prefixes to match; any type if empty"`
}

// MimeType matches files by detected MIME type.
type MimeType struct {
	types []string
}

func newMimeType(o *MimeTypeOptions) (Filter, error) {
	return NewMimeType(o.Types...), nil
}

// NewMimeType creates a [MimeType] filter matching any of types.
func NewMimeType(types ...string) *MimeType {
	lower := make([]string, 0, len(types))
	for _, t := range types {
		lower = append(lower, strings.ToLower(strings.TrimSpace(t)))
	}

	return &MimeType{types: lower}
}

func (f *MimeType) Matches(_ context.Context, path string) (bool, error) {
	mt, err := detectMimeType(path)
	if err != nil {
		return false, err
	}
	if len(f.types) == 0 {
		return true, nil
	}

	for _, t := range f.types {
		if strings.HasPrefix(mt, t) {
			return true, nil
		}
	}

	return false, nil
}

func (f *MimeType) Parse(_ context.Context, path string) (Attributes, error) {
	mt, err := detectMimeType(path)
	if err != nil {
		return nil, err
	}

	return Attributes{"mimetype": mt}, nil
}

func detectMimeType(path string) (string, error) {
	if isDirectory(path) {
		return "inode/directory", nil
	}

	file, err := os.Open(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Read only.

	buf := make([]byte, sniffLen)

	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("read file: %w", err)
	}

	detected := http.DetectContentType(buf[:n])

	generic := strings.HasPrefix(detected, "application/octet-stream") ||
		strings.HasPrefix(detected, "text/plain")
	if generic {
		if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
			detected = byExt
		}
	}

	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return "", fmt.Errorf("parse media type %q: %w", detected, err)
	}

	return mt, nil
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
