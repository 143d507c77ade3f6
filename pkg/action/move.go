package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/fsutil"
	"github.com/macropower/organize/pkg/log"
)

const defaultCounterSeparator = " "

// ErrDestIsDir is returned when overwrite would replace an existing directory.
var ErrDestIsDir = errors.New("destination is an existing directory")

const moveDoc = `Moves the file to a new location. A destination ending with a slash is a
directory, and the file keeps its name. Missing directories are created.
If the destination exists and overwrite is not set, a counter is appended
to the name (e.g. "report 2.pdf").

The destination is a template, see "Templates".

Examples:
  - move: ~/Documents/PDFs/
  - move:
      dest: '~/Pictures/{{.lastmodified.Year}}/'
      counter_separator: _`

const copyDoc = `Copies the file to a new location. Behaves like "move", but the original
file stays in place and remains the subject of later actions.

Examples:
  - copy: ~/Backup/`

type TransferOptions struct {
	CounterSeparator *string `json:"counter_separator,omitempty" jsonschema:"description=Separator before the counter on conflicts (default space)"`
	Dest             string  `json:"dest" jsonschema:"required,description=Destination path template; a trailing slash means directory"`
	Overwrite        bool    `json:"overwrite,omitempty" jsonschema:"description=Replace an existing destination"`
}

// transfer holds the shared destination logic of [Move] and [Copy].
type transfer struct {
	dest      *Template
	sep       string
	overwrite bool
}

func newTransfer(name string, o *TransferOptions) (transfer, error) {
	dest, err := NewTemplate(name, o.Dest)
	if err != nil {
		return transfer{}, err
	}

	t := transfer{dest: dest, sep: defaultCounterSeparator, overwrite: o.Overwrite}
	if o.CounterSeparator != nil {
		t.sep = *o.CounterSeparator
	}

	return t, nil
}

// target resolves the destination for path. It reports whether an existing
// file will be replaced.
func (t transfer) target(path string, attrs filter.Attributes) (string, bool, error) {
	dest, err := resolveDest(t.dest, path, attrs)
	if err != nil {
		return "", false, err
	}
	if dest == path {
		return dest, false, nil
	}

	return claim(dest, t.sep, t.overwrite)
}

// claim returns dest, or the next free name when dest is taken and
// overwrite is unset. Directories are never replaced.
func claim(dest, sep string, overwrite bool) (string, bool, error) {
	exists, err := fsutil.Exists(dest)
	if err != nil {
		return "", false, err //nolint:wrapcheck // Already wrapped.
	}
	if exists && overwrite {
		if fsutil.IsDir(dest) {
			return "", false, fmt.Errorf("%w: %s", ErrDestIsDir, dest)
		}

		return dest, true, nil
	}

	free, err := fsutil.NextFree(dest, sep)
	if err != nil {
		return "", false, err //nolint:wrapcheck // Already wrapped.
	}

	return free, false, nil
}

func resolveDest(tmpl *Template, path string, attrs filter.Attributes) (string, error) {
	rendered, err := tmpl.Render(path, attrs)
	if err != nil {
		return "", err
	}

	dest, err := fsutil.ExpandHome(rendered)
	if err != nil {
		return "", err //nolint:wrapcheck // Already wrapped.
	}

	if strings.HasSuffix(rendered, "/") || strings.HasSuffix(rendered, string(os.PathSeparator)) {
		dest = filepath.Join(dest, filepath.Base(path))
	}

	dest, err = filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	return dest, nil
}

// Move moves files.
type Move struct {
	transfer
}

func newMove(o *TransferOptions) (Action, error) {
	t, err := newTransfer("move", o)
	if err != nil {
		return nil, err
	}

	return &Move{transfer: t}, nil
}

func (a *Move) Run(ctx context.Context, path string, attrs filter.Attributes, simulate bool) (string, error) {
	dest, replace, err := a.target(path, attrs)
	if err != nil {
		return "", err
	}

	logger := log.WithContext(ctx)

	if dest == path {
		logger.InfoContext(ctx, "already at destination", slog.String("path", path))
		return "", nil
	}

	logger.InfoContext(ctx, "move",
		slog.String("dest", dest),
		slog.Bool("overwrite", replace),
		slog.Bool("simulate", simulate),
	)

	if simulate {
		return dest, nil
	}

	if replace {
		err := os.Remove(dest)
		if err != nil {
			return "", fmt.Errorf("remove existing destination: %w", err)
		}
	}

	err = fsutil.Move(path, dest)
	if err != nil {
		return "", fmt.Errorf("move %s: %w", path, err)
	}

	return dest, nil
}

// Copy copies files.
type Copy struct {
	transfer
}

func newCopy(o *TransferOptions) (Action, error) {
	t, err := newTransfer("copy", o)
	if err != nil {
		return nil, err
	}

	return &Copy{transfer: t}, nil
}

func (a *Copy) Run(ctx context.Context, path string, attrs filter.Attributes, simulate bool) (string, error) {
	dest, replace, err := a.target(path, attrs)
	if err != nil {
		return "", err
	}

	logger := log.WithContext(ctx)

	if dest == path {
		logger.InfoContext(ctx, "already at destination", slog.String("path", path))
		return "", nil
	}

	logger.InfoContext(ctx, "copy",
		slog.String("dest", dest),
		slog.Bool("overwrite", replace),
		slog.Bool("simulate", simulate),
	)

	if simulate {
		return "", nil
	}

	if replace {
		err := os.Remove(dest)
		if err != nil {
			return "", fmt.Errorf("remove existing destination: %w", err)
		}
	}

	err = fsutil.Copy(path, dest)
	if err != nil {
		return "", fmt.Errorf("copy %s: %w", path, err)
	}

	return "", nil
}
