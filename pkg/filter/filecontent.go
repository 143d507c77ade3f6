package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"

	"github.com/dustin/go-humanize"
)

const defaultMaxContentBytes = 1 << 20

// ErrMaxBytesRange is returned for a max_bytes that is zero or too large.
var ErrMaxBytesRange = errors.New("max_bytes out of range")

const fileContentDoc = `Matches the text content of a file against a regular expression. Only the
first max_bytes (default 1 MiB) are read.

Attributes:
  filecontent: a map of the named capture groups.

Examples:
  - filecontent: 'Invoice Number: (?P<number>\d+)'`

type FileContentOptions struct {
	Expr     string `json:"expr" jsonschema:"required,description=Regular expression (RE2 syntax)"`
	MaxBytes string `json:"max_bytes,omitempty" jsonschema:"description=Maximum amount of content to read, e.g. 512 KiB"`
}

// FileContent matches files whose content contains a regular expression.
type FileContent struct {
	re       *regexp.Regexp
	maxBytes int64
}

func newFileContent(o *FileContentOptions) (Filter, error) {
	re, err := compileRegexp(o.Expr)
	if err != nil {
		return nil, err
	}

	f := &FileContent{re: re, maxBytes: defaultMaxContentBytes}

	if o.MaxBytes != "" {
		n, err := humanize.ParseBytes(o.MaxBytes)
		if err != nil {
			return nil, fmt.Errorf("max_bytes: %w", err)
		}

		if n == 0 || n > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %s", ErrMaxBytesRange, o.MaxBytes)
		}

		f.maxBytes = int64(n)
	}

	return f, nil
}

// NewFileContent creates a [FileContent] filter reading at most maxBytes.
func NewFileContent(expr string, maxBytes int64) (*FileContent, error) {
	re, err := compileRegexp(expr)
	if err != nil {
		return nil, err
	}

	return &FileContent{re: re, maxBytes: maxBytes}, nil
}

// Matches reports false for directories and other non-regular files.
func (f *FileContent) Matches(_ context.Context, path string) (bool, error) {
	content, ok, err := f.read(path)
	if err != nil || !ok {
		return false, err
	}

	return f.re.Match(content), nil
}

func (f *FileContent) Parse(_ context.Context, path string) (Attributes, error) {
	content, ok, err := f.read(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Attributes{"filecontent": map[string]string{}}, nil
	}

	return Attributes{"filecontent": namedGroups(f.re, string(content))}, nil
}

// read returns the first maxBytes of path. It reports false, without an
// error, when path is not a regular file.
func (f *FileContent) read(path string) ([]byte, bool, error) {
	file, err := os.Open(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return nil, false, fmt.Errorf("open file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Read only.

	info, err := file.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, false, nil
	}

	content, err := io.ReadAll(io.LimitReader(file, f.maxBytes))
	if err != nil {
		return nil, false, fmt.Errorf("read file: %w", err)
	}

	return content, true, nil
}
