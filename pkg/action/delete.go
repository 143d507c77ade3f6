package action

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/log"
)

const deleteDoc = `Deletes the file permanently. Directories are removed with their content.
Prefer "trash" unless you are sure.

Examples:
  - delete`

type DeleteOptions struct{}

// Delete removes files.
type Delete struct{}

func newDelete(*DeleteOptions) (Action, error) {
	return &Delete{}, nil
}

func (a *Delete) Run(ctx context.Context, path string, _ filter.Attributes, simulate bool) (string, error) {
	log.WithContext(ctx).InfoContext(ctx, "delete",
		slog.String("path", path),
		slog.Bool("simulate", simulate),
	)

	if simulate {
		return "", nil
	}

	err := os.RemoveAll(path)
	if err != nil {
		return "", fmt.Errorf("delete %s: %w", path, err)
	}

	return "", nil
}
