// Package fsutil contains the filesystem helpers shared by job discovery and
// the file actions.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ExpandHome replaces a leading `~` with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}

	return filepath.Join(home, path[1:]), nil
}

// Resolve returns the absolute, symlink-free form of path.
func Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}

	return resolved, nil
}

// Exists reports whether anything (including a dangling symlink) exists at
// path.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("stat %s: %w", path, err)
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// NextFree returns path if nothing exists there. Otherwise it appends
// `<sep><n>` to the file stem, counting from 2, until a free name is found.
func NextFree(path, sep string) (string, error) {
	exists, err := Exists(path)
	if err != nil || !exists {
		return path, err
	}

	dir, name := filepath.Split(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 2; ; n++ {
		candidate := filepath.Join(dir, stem+sep+strconv.Itoa(n)+ext)

		exists, err := Exists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// Move renames src to dst, creating dst's parent directories. When src and
// dst are on different devices it falls back to copy and remove.
func Move(src, dst string) error {
	err := os.MkdirAll(filepath.Dir(dst), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	err = os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return fmt.Errorf("rename: %w", err)
	}

	err = Copy(src, dst)
	if err != nil {
		return err
	}

	err = os.RemoveAll(src)
	if err != nil {
		return fmt.Errorf("remove source: %w", err)
	}

	return nil
}

// Copy copies the regular file or directory tree at src to dst, creating
// dst's parent directories and preserving permission bits.
func Copy(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(dst), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	if info.IsDir() {
		err = os.CopyFS(dst, os.DirFS(src))
		if err != nil {
			return fmt.Errorf("copy directory: %w", err)
		}

		return nil
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: unknown file state", src)
	}

	return copyFile(src, dst, info.Mode().Perm())
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close() //nolint:errcheck // Read only.

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //nolint:gosec // G304: See above.
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	_, err = io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("copy data: %w", err)
	}

	err = out.Close()
	if err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	return nil
}
