package filter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

const lastModifiedDoc = `Matches files by the time of their last modification. The given
days/hours/minutes add up to one threshold; "mode" selects whether files
older (default) or newer than the threshold match.

Attributes:
  lastmodified: the modification time.

Examples:
  - lastmodified: 30
  - lastmodified:
      hours: 12
      mode: newer`

// ErrInvalidMode is returned for an unknown lastmodified mode.
var ErrInvalidMode = errors.New("invalid mode")

type LastModifiedOptions struct {
	Mode    string `json:"mode,omitempty" jsonschema:"enum=older,enum=newer,description=Match files older (default) or newer than the threshold"`
	Days    int    `json:"days,omitempty" jsonschema:"minimum=0,description=Days"`
	Hours   int    `json:"hours,omitempty" jsonschema:"minimum=0,description=Hours"`
	Minutes int    `json:"minutes,omitempty" jsonschema:"minimum=0,description=Minutes"`
}

// LastModified matches files by modification age.
type LastModified struct {
	now       func() time.Time
	threshold time.Duration
	newer     bool
}

func newLastModified(o *LastModifiedOptions) (Filter, error) {
	var newer bool

	switch o.Mode {
	case "", "older":
	case "newer":
		newer = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, o.Mode)
	}

	d := time.Duration(o.Days)*24*time.Hour +
		time.Duration(o.Hours)*time.Hour +
		time.Duration(o.Minutes)*time.Minute

	return NewLastModified(d, newer, time.Now), nil
}

// NewLastModified creates a [LastModified] filter. Files older than threshold
// match, or newer when newer is set. now provides the reference time.
func NewLastModified(threshold time.Duration, newer bool, now func() time.Time) *LastModified {
	return &LastModified{threshold: threshold, newer: newer, now: now}
}

func (f *LastModified) Matches(_ context.Context, path string) (bool, error) {
	mod, err := modTime(path)
	if err != nil {
		return false, err
	}

	age := f.now().Sub(mod)
	if f.newer {
		return age < f.threshold, nil
	}

	return age > f.threshold, nil
}

func (f *LastModified) Parse(_ context.Context, path string) (Attributes, error) {
	mod, err := modTime(path)
	if err != nil {
		return nil, err
	}

	return Attributes{"lastmodified": mod}, nil
}

func modTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat: %w", err)
	}

	return info.ModTime(), nil
}
