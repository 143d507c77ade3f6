package action

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/fsutil"
	"github.com/macropower/organize/pkg/log"
)

const trashDoc = `Moves the file into the trash, following the freedesktop.org trash
specification: the file goes to "files" and a ".trashinfo" record with its
original location goes to "info" inside $XDG_DATA_HOME/Trash (default
~/.local/share/Trash).

Examples:
  - trash
  - trash: /mnt/data/.Trash-1000`

type TrashOptions struct {
	Dir string `json:"dir,omitempty" jsonschema:"description=Trash directory (default $XDG_DATA_HOME/Trash)"`
}

// Trash moves files into a freedesktop.org trash directory.
type Trash struct {
	now func() time.Time
	dir string
}

func newTrash(o *TrashOptions) (Action, error) {
	return NewTrash(o.Dir, time.Now), nil
}

// NewTrash creates a [Trash] action for the trash directory dir. An empty dir
// selects the user's home trash.
func NewTrash(dir string, now func() time.Time) *Trash {
	return &Trash{dir: dir, now: now}
}

func (a *Trash) Run(ctx context.Context, path string, _ filter.Attributes, simulate bool) (string, error) {
	dir, err := a.trashDir()
	if err != nil {
		return "", err
	}

	logger := log.WithContext(ctx)

	if simulate {
		logger.InfoContext(ctx, "trash",
			slog.String("trash", dir),
			slog.Bool("simulate", true),
		)

		return "", nil
	}

	filesDir := filepath.Join(dir, "files")
	infoDir := filepath.Join(dir, "info")

	for _, d := range []string{filesDir, infoDir} {
		err := os.MkdirAll(d, 0o700)
		if err != nil {
			return "", fmt.Errorf("create trash directory: %w", err)
		}
	}

	dest, err := fsutil.NextFree(filepath.Join(filesDir, filepath.Base(path)), " ")
	if err != nil {
		return "", err //nolint:wrapcheck // Already wrapped.
	}

	infoPath := filepath.Join(infoDir, filepath.Base(dest)+".trashinfo")

	err = os.WriteFile(infoPath, a.trashInfo(path), 0o600)
	if err != nil {
		return "", fmt.Errorf("write trash info: %w", err)
	}

	err = fsutil.Move(path, dest)
	if err != nil {
		_ = os.Remove(infoPath)
		return "", fmt.Errorf("trash %s: %w", path, err)
	}

	logger.InfoContext(ctx, "trash",
		slog.String("trash", dir),
		slog.Bool("simulate", false),
	)

	return "", nil
}

func (a *Trash) trashDir() (string, error) {
	if a.dir != "" {
		return fsutil.ExpandHome(a.dir) //nolint:wrapcheck // Already wrapped.
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}

		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, "Trash"), nil
}

func (a *Trash) trashInfo(path string) []byte {
	u := url.URL{Path: path}

	return fmt.Appendf(nil, "[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		u.EscapedPath(),
		a.now().Format("2006-01-02T15:04:05"),
	)
}
