package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/organize/pkg/fsutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tcs := map[string]struct {
		input string
		want  string
	}{
		"tilde":          {input: "~", want: home},
		"tilde subdir":   {input: "~/Downloads", want: filepath.Join(home, "Downloads")},
		"absolute":       {input: "/tmp/x", want: "/tmp/x"},
		"relative":       {input: "docs", want: "docs"},
		"tilde username": {input: "~bob/x", want: "~bob/x"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := fsutil.ExpandHome(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	target := filepath.Join(dir, "target.txt")
	writeFile(t, target, "x")

	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	got, err := fsutil.Resolve(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	_, err = fsutil.Resolve(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}

func TestNextFree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	free := filepath.Join(dir, "free.txt")
	got, err := fsutil.NextFree(free, " ")
	require.NoError(t, err)
	assert.Equal(t, free, got)

	taken := filepath.Join(dir, "taken.txt")
	writeFile(t, taken, "1")
	writeFile(t, filepath.Join(dir, "taken 2.txt"), "2")

	got, err = fsutil.NextFree(taken, " ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "taken 3.txt"), got)

	got, err = fsutil.NextFree(taken, "_")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "taken_2.txt"), got)
}

func TestMove(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "nested", "deeper", "b.txt")
	writeFile(t, src, "content")

	require.NoError(t, fsutil.Move(src, dst))

	assert.NoFileExists(t, src)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(b))
}

func TestCopy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	src := filepath.Join(dir, "a.txt")
	writeFile(t, src, "content")

	dst := filepath.Join(dir, "out", "a.txt")
	require.NoError(t, fsutil.Copy(src, dst))
	assert.FileExists(t, src)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(b))

	srcDir := filepath.Join(dir, "photos.d")
	writeFile(t, filepath.Join(srcDir, "one.jpg"), "1")

	dstDir := filepath.Join(dir, "backup", "photos.d")
	require.NoError(t, fsutil.Copy(srcDir, dstDir))
	assert.FileExists(t, filepath.Join(dstDir, "one.jpg"))

	require.Error(t, fsutil.Copy(filepath.Join(dir, "missing"), filepath.Join(dir, "x")))
}
