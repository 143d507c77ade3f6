package action_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/organize/pkg/action"
	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/log"
	"github.com/macropower/organize/pkg/registry"
	"github.com/macropower/organize/pkg/yaml"
)

func tempDir(t *testing.T) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(b)
}

func buildAction(t *testing.T, input string) (action.Action, error) {
	t.Helper()

	var spec registry.Spec

	err := yaml.NewDecoder(bytes.NewReader([]byte(input))).Decode(&spec)
	require.NoError(t, err)

	return action.Default.Build(spec)
}

func mustBuildAction(t *testing.T, input string) action.Action {
	t.Helper()

	a, err := buildAction(t, input)
	require.NoError(t, err)

	return a
}

// logContext returns a context whose logger writes to the returned buffer.
func logContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return log.NewContext(t.Context(), logger), &buf
}

func TestRegistry_Names(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"copy", "delete", "echo", "move", "rename", "shell", "trash"}, action.Default.Names())
}

func TestRegistry_BuildErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		err   error
		want  string
	}{
		"move without dest": {input: "move", err: action.ErrEmptyTemplate},
		"bad template":      {input: "echo: '{{.name'", want: "parse template"},
		"unknown option":    {input: "move:\n  dest: x/\n  force: true"},
		"unknown action":    {input: "mvoe: x/", want: `did you mean "move"?`},
		"bad env pattern": {
			input: "shell:\n  cmd: ls\n  envFrom:\n    - callerRef:\n        pattern: '('",
			want:  "compile pattern",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := buildAction(t, tc.input)
			require.Error(t, err)

			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			}
			if tc.want != "" {
				assert.ErrorContains(t, err, tc.want)
			}
		})
	}
}

func TestTemplate_Render(t *testing.T) {
	t.Parallel()

	attrs := filter.Attributes{
		"regex":    map[string]string{"number": "42"},
		"filesize": map[string]any{"human": "1.0 kB"},
	}

	tcs := map[string]struct {
		text    string
		want    string
		wantErr bool
	}{
		"builtins": {
			text: "{{.dir}}|{{.name}}|{{.stem}}|{{.ext}}",
			want: "/data|My File.TXT|My File|.TXT",
		},
		"attributes": {
			text: "Invoice {{.regex.number}} ({{.filesize.human}})",
			want: "Invoice 42 (1.0 kB)",
		},
		"functions": {
			text: "{{.stem | lower}} {{.ext | upper}} {{title \"hello world\"}}",
			want: "my file .TXT Hello World",
		},
		"quote": {
			text: `{{quote "it's"}}`,
			want: `'it'\''s'`,
		},
		"missing key": {
			text:    "{{.nope}}",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tmpl, err := action.NewTemplate(name, tc.text)
			require.NoError(t, err)

			got, err := tmpl.Render("/data/My File.TXT", attrs)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMove(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		existing []string
		action   string
		attrs    filter.Attributes
		want     string
		simulate bool
	}{
		"into directory": {
			action: "move: '{{.dir}}/sorted/'",
			want:   "sorted/report.pdf",
		},
		"to file": {
			action: "move: '{{.dir}}/sorted/renamed.pdf'",
			want:   "sorted/renamed.pdf",
		},
		"conflict": {
			existing: []string{"sorted/report.pdf"},
			action:   "move: '{{.dir}}/sorted/'",
			want:     "sorted/report 2.pdf",
		},
		"conflict custom separator": {
			existing: []string{"sorted/report.pdf", "sorted/report_2.pdf"},
			action:   "move:\n  dest: '{{.dir}}/sorted/'\n  counter_separator: _",
			want:     "sorted/report_3.pdf",
		},
		"overwrite": {
			existing: []string{"sorted/report.pdf"},
			action:   "move:\n  dest: '{{.dir}}/sorted/'\n  overwrite: true",
			want:     "sorted/report.pdf",
		},
		"attributes": {
			action: "move: '{{.dir}}/{{.extension}}/'",
			attrs:  filter.Attributes{"extension": "pdf"},
			want:   "pdf/report.pdf",
		},
		"simulate": {
			action:   "move: '{{.dir}}/sorted/'",
			want:     "sorted/report.pdf",
			simulate: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := tempDir(t)
			src := writeFile(t, filepath.Join(dir, "report.pdf"), "report")

			for _, e := range tc.existing {
				writeFile(t, filepath.Join(dir, e), "existing")
			}

			a := mustBuildAction(t, tc.action)

			got, err := a.Run(t.Context(), src, tc.attrs, tc.simulate)
			require.NoError(t, err)

			want := filepath.Join(dir, tc.want)
			assert.Equal(t, want, got)

			if tc.simulate {
				assert.FileExists(t, src)
				assert.NoFileExists(t, want)

				return
			}

			assert.NoFileExists(t, src)
			assert.Equal(t, "report", readFile(t, want))
		})
	}
}

func TestMove_SameLocation(t *testing.T) {
	t.Parallel()

	dir := tempDir(t)
	src := writeFile(t, filepath.Join(dir, "a.txt"), "a")

	got, err := mustBuildAction(t, "move: '{{.dir}}/'").Run(t.Context(), src, nil, false)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.FileExists(t, src)
}

func TestOverwrite_KeepsDirectories(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		action   string
		simulate bool
	}{
		"move": {
			action: "move:\n  dest: '{{.dir}}/Documents'\n  overwrite: true",
		},
		"move simulated": {
			action:   "move:\n  dest: '{{.dir}}/Documents'\n  overwrite: true",
			simulate: true,
		},
		"copy": {
			action: "copy:\n  dest: '{{.dir}}/Documents'\n  overwrite: true",
		},
		"rename": {
			action: "rename:\n  name: Documents\n  overwrite: true",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := tempDir(t)
			src := writeFile(t, filepath.Join(dir, "a.txt"), "a")
			kept := writeFile(t, filepath.Join(dir, "Documents", "precious.txt"), "precious")

			got, err := mustBuildAction(t, tc.action).Run(t.Context(), src, nil, tc.simulate)
			require.ErrorIs(t, err, action.ErrDestIsDir)
			assert.Empty(t, got)

			assert.Equal(t, "precious", readFile(t, kept))
			assert.Equal(t, "a", readFile(t, src))
		})
	}
}

func TestCopy(t *testing.T) {
	t.Parallel()

	dir := tempDir(t)
	src := writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "backup", "a.txt"), "old")

	a := mustBuildAction(t, "copy: '{{.dir}}/backup/'")

	got, err := a.Run(t.Context(), src, nil, true)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoFileExists(t, filepath.Join(dir, "backup", "a 2.txt"))

	got, err = a.Run(t.Context(), src, nil, false)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "a", readFile(t, src))
	assert.Equal(t, "a", readFile(t, filepath.Join(dir, "backup", "a 2.txt")))
	assert.Equal(t, "old", readFile(t, filepath.Join(dir, "backup", "a.txt")))
}

func TestRename(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		existing []string
		action   string
		attrs    filter.Attributes
		want     string
		wantErr  error
	}{
		"lower": {
			action: "rename: '{{.stem | lower}}{{.ext}}'",
			want:   "photo.JPG",
		},
		"attributes": {
			action: "rename: 'IMG {{.regex.n}}{{.ext}}'",
			attrs:  filter.Attributes{"regex": map[string]string{"n": "7"}},
			want:   "IMG 7.JPG",
		},
		"conflict": {
			existing: []string{"b.JPG"},
			action:   "rename: 'b{{.ext}}'",
			want:     "b 2.JPG",
		},
		"overwrite": {
			existing: []string{"b.JPG"},
			action:   "rename:\n  name: 'b{{.ext}}'\n  overwrite: true",
			want:     "b.JPG",
		},
		"unchanged": {
			action: "rename: '{{.name}}'",
		},
		"separator": {
			action:  "rename: 'sub/{{.name}}'",
			wantErr: action.ErrInvalidName,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := tempDir(t)
			src := writeFile(t, filepath.Join(dir, "Photo.JPG"), "photo")

			for _, e := range tc.existing {
				writeFile(t, filepath.Join(dir, e), "existing")
			}

			got, err := mustBuildAction(t, tc.action).Run(t.Context(), src, tc.attrs, false)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)

			if tc.want == "" {
				assert.Empty(t, got)
				assert.FileExists(t, src)

				return
			}

			want := filepath.Join(dir, tc.want)
			assert.Equal(t, want, got)
			assert.Equal(t, "photo", readFile(t, want))
		})
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	dir := tempDir(t)
	src := writeFile(t, filepath.Join(dir, "a.txt"), "a")
	a := mustBuildAction(t, "delete")

	got, err := a.Run(t.Context(), src, nil, true)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.FileExists(t, src)

	got, err = a.Run(t.Context(), src, nil, false)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoFileExists(t, src)
}

func TestTrash(t *testing.T) {
	t.Parallel()

	dir := tempDir(t)
	trashDir := filepath.Join(dir, "Trash")
	now := func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local) }

	src := writeFile(t, filepath.Join(dir, "my file.txt"), "a")
	writeFile(t, filepath.Join(trashDir, "files", "my file.txt"), "older")

	a := action.NewTrash(trashDir, now)

	got, err := a.Run(t.Context(), src, nil, true)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.FileExists(t, src)

	got, err = a.Run(t.Context(), src, nil, false)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoFileExists(t, src)

	assert.Equal(t, "a", readFile(t, filepath.Join(trashDir, "files", "my file 2.txt")))
	assert.Equal(t,
		"[Trash Info]\nPath="+filepath.ToSlash(dir)+"/my%20file.txt\nDeletionDate=2024-05-06T07:08:09\n",
		readFile(t, filepath.Join(trashDir, "info", "my file 2.txt.trashinfo")),
	)
}

func TestEcho(t *testing.T) {
	t.Parallel()

	ctx, buf := logContext(t)

	got, err := mustBuildAction(t, "echo: 'found {{.name}} ({{.extension}})'").
		Run(ctx, "/data/a.pdf", filter.Attributes{"extension": "pdf"}, true)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), `msg="found a.pdf (pdf)"`)
}

func TestShell(t *testing.T) {
	t.Parallel()

	dir := tempDir(t)
	src := writeFile(t, filepath.Join(dir, "it's.txt"), "a")
	a := mustBuildAction(t, "shell: 'touch {{quote .stem}}.done'")

	got, err := a.Run(t.Context(), src, nil, true)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoFileExists(t, filepath.Join(dir, "it's.done"))

	got, err = a.Run(t.Context(), src, nil, false)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.FileExists(t, filepath.Join(dir, "it's.done"))
}

func TestShell_Errors(t *testing.T) {
	t.Parallel()

	dir := tempDir(t)
	src := writeFile(t, filepath.Join(dir, "a.txt"), "a")

	_, err := mustBuildAction(t, "shell: 'false'").Run(t.Context(), src, nil, false)
	require.Error(t, err)

	ctx, buf := logContext(t)

	_, err = mustBuildAction(t, "shell:\n  cmd: 'false'\n  ignore_errors: true").Run(ctx, src, nil, false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "shell command failed")
}

func TestShell_Env(t *testing.T) {
	t.Parallel()

	dir := tempDir(t)
	src := writeFile(t, filepath.Join(dir, "a.txt"), "a")

	ctx, buf := logContext(t)

	a := mustBuildAction(t, "shell:\n  cmd: 'sh -c \"echo $GREETING\"'\n  env:\n    - name: GREETING\n      value: hello")

	_, err := a.Run(ctx, src, nil, false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "stdout=hello")
}
