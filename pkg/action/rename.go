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

// ErrInvalidName is returned when a rename template renders a name that is
// not a plain file name.
var ErrInvalidName = errors.New("invalid file name")

const renameDoc = `Renames the file in place. The new name is a template and must not
contain a path separator. Conflicts are resolved like in "move".

Examples:
  - rename: '{{.stem | lower}}{{.ext}}'
  - rename:
      name: 'Invoice {{.regex.number}}.pdf'
      overwrite: true`

type RenameOptions struct {
	CounterSeparator *string `json:"counter_separator,omitempty" jsonschema:"description=Separator before the counter on conflicts (default space)"`
	Name             string  `json:"name" jsonschema:"required,description=New file name template"`
	Overwrite        bool    `json:"overwrite,omitempty" jsonschema:"description=Replace an existing file"`
}

// Rename renames files within their directory.
type Rename struct {
	name      *Template
	sep       string
	overwrite bool
}

func newRename(o *RenameOptions) (Action, error) {
	name, err := NewTemplate("rename", o.Name)
	if err != nil {
		return nil, err
	}

	a := &Rename{name: name, sep: defaultCounterSeparator, overwrite: o.Overwrite}
	if o.CounterSeparator != nil {
		a.sep = *o.CounterSeparator
	}

	return a, nil
}

func (a *Rename) Run(ctx context.Context, path string, attrs filter.Attributes, simulate bool) (string, error) {
	name, err := a.name.Render(path, attrs)
	if err != nil {
		return "", err
	}

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	logger := log.WithContext(ctx)

	dest := filepath.Join(filepath.Dir(path), name)
	if dest == path {
		logger.InfoContext(ctx, "name unchanged", slog.String("name", name))
		return "", nil
	}

	dest, replace, err := claim(dest, a.sep, a.overwrite)
	if err != nil {
		return "", err
	}

	logger.InfoContext(ctx, "rename",
		slog.String("name", filepath.Base(dest)),
		slog.Bool("overwrite", replace),
		slog.Bool("simulate", simulate),
	)

	if simulate {
		return dest, nil
	}

	if replace {
		err := os.Remove(dest)
		if err != nil {
			return "", fmt.Errorf("remove existing file: %w", err)
		}
	}

	err = fsutil.Move(path, dest)
	if err != nil {
		return "", fmt.Errorf("rename %s: %w", path, err)
	}

	return dest, nil
}
