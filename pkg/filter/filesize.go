package filter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/macropower/organize/pkg/yaml"
)

const fileSizeDoc = `Matches files by their size. Each condition is an optional comparison
operator (>, >=, <, <=, ==, !=; default ==) followed by a human readable
size. All conditions must hold.

Attributes:
  filesize.bytes: the size in bytes.
  filesize.human: the size formatted for humans (e.g. "1.2 MB").

Examples:
  - filesize: "> 10 MB"
  - filesize: [">= 1 KiB", "< 1 GiB"]`

// ErrInvalidCondition is returned for malformed size conditions.
var ErrInvalidCondition = errors.New("invalid size condition")

type FileSizeOptions struct {
	Conditions yaml.StringList `json:"conditions,omitempty" jsonschema:"description=Size conditions; a single string may separate them with commas"`
}

type sizeCondition struct {
	op    string
	bytes uint64
}

func (c sizeCondition) holds(size uint64) bool {
	switch c.op {
	case ">":
		return size > c.bytes
	case ">=":
		return size >= c.bytes
	case "<":
		return size < c.bytes
	case "<=":
		return size <= c.bytes
	case "!=":
		return size != c.bytes
	default:
		return size == c.bytes
	}
}

// FileSize matches files whose size satisfies every condition.
type FileSize struct {
	conditions []sizeCondition
}

func newFileSize(o *FileSizeOptions) (Filter, error) {
	f, err := NewFileSize(o.Conditions...)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// NewFileSize creates a [FileSize] filter from conditions such as ">= 1 MB".
func NewFileSize(conditions ...string) (*FileSize, error) {
	f := &FileSize{}

	for _, raw := range conditions {
		for part := range strings.SplitSeq(raw, ",") {
			c, err := parseSizeCondition(part)
			if err != nil {
				return nil, err
			}

			f.conditions = append(f.conditions, c)
		}
	}

	return f, nil
}

func (f *FileSize) Matches(_ context.Context, path string) (bool, error) {
	size, err := fileSize(path)
	if err != nil {
		return false, err
	}

	for _, c := range f.conditions {
		if !c.holds(size) {
			return false, nil
		}
	}

	return true, nil
}

func (f *FileSize) Parse(_ context.Context, path string) (Attributes, error) {
	size, err := fileSize(path)
	if err != nil {
		return nil, err
	}

	return Attributes{"filesize": map[string]any{
		"bytes": size,
		"human": humanize.Bytes(size),
	}}, nil
}

func parseSizeCondition(s string) (sizeCondition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sizeCondition{}, fmt.Errorf("%w: empty", ErrInvalidCondition)
	}

	c := sizeCondition{op: "=="}

	for _, op := range []string{">=", "<=", "==", "!=", ">", "<", "="} {
		if rest, ok := strings.CutPrefix(s, op); ok {
			c.op = op
			s = strings.TrimSpace(rest)

			break
		}
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return sizeCondition{}, fmt.Errorf("%w: %q: %w", ErrInvalidCondition, s, err)
	}

	c.bytes = n

	return c, nil
}

func fileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat: %w", err)
	}

	return uint64(info.Size()), nil //nolint:gosec // G115: sizes are never negative.
}
