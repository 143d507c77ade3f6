package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/organize/api/v1beta1/configs"
	"github.com/macropower/organize/internal/cli"
	"github.com/macropower/organize/pkg/registry"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := cli.NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestListCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Filters")
	assert.Contains(t, out, "Actions")

	for _, name := range []string{"extension", "filesize", "duplicate", "move", "trash", "shell"} {
		assert.Contains(t, out, name)
	}

	assert.Contains(t, out, "(shorthand)")
}

func TestListCmd_Single(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "list", "move")
	require.NoError(t, err)

	assert.Contains(t, out, "Action")
	assert.Contains(t, out, "dest")
	assert.Contains(t, out, "counter_separator")
	assert.NotContains(t, out, "Filter")
}

func TestListCmd_Unknown(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "list", "mov")
	require.ErrorIs(t, err, registry.ErrUnknownType)
	assert.ErrorContains(t, err, `did you mean "move"?`)
}

func TestConfigCmd_Path(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	out, err := execute(t, "config", "--config", filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, dir+"\n", out)
}

func TestConfigCmd_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "organize", "config.yaml")

	_, err := execute(t, "config", "--write", "--config", path)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.DefaultYAML(), got)
	assert.FileExists(t, filepath.Join(filepath.Dir(path), configs.SchemaFile))

	// Without --force the existing file is kept.
	require.NoError(t, os.WriteFile(path, []byte("# edited\n"), 0o600))

	_, err = execute(t, "config", "--write", "--config", path)
	require.NoError(t, err)

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# edited\n", string(got))

	_, err = execute(t, "config", "--write", "--force", "--config", path)
	require.NoError(t, err)

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.DefaultYAML(), got)
}

func TestConfigCmd_Show(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, string(configs.DefaultYAML()))

	out, err := execute(t, "config", "--show", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, string(configs.DefaultYAML()), out)
}

func TestConfigCmd_ExclusiveFlags(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "config", "--show", "--write")
	require.Error(t, err)
}

func TestExecuteCmds(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		files     []string
		command   string
		wantOut   string
		wantFiles []string
		wantGone  []string
	}{
		"sim leaves files in place": {
			files:     []string{"report.pdf", "notes.txt"},
			command:   "sim",
			wantFiles: []string{"report.pdf", "notes.txt"},
		},
		"run moves matching files": {
			files:     []string{"report.pdf", "notes.txt"},
			command:   "run",
			wantFiles: []string{"pdfs/report.pdf", "notes.txt"},
			wantGone:  []string{"report.pdf"},
		},
		"nothing to do": {
			files:   []string{"notes.txt"},
			command: "sim",
			wantOut: "Nothing to do.\n",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			for _, f := range tc.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte(f), 0o600))
			}

			path := writeConfig(t, `apiVersion: organize.macropower.dev/v1beta1
kind: Configuration
rules:
  - name: pdfs
    folders: `+dir+`
    filters:
      - extension: pdf
    actions:
      - move: `+filepath.Join(dir, "pdfs")+`/
`)

			out, err := execute(t, tc.command, "--config", path)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOut, out)

			for _, f := range tc.wantFiles {
				assert.FileExists(t, filepath.Join(dir, f))
			}
			for _, f := range tc.wantGone {
				assert.NoFileExists(t, filepath.Join(dir, f))
			}
		})
	}
}

func TestExecuteCmd_InvalidConfig(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		config  string
		wantMsg string
	}{
		"unknown filter": {
			config: `apiVersion: organize.macropower.dev/v1beta1
kind: Configuration
rules:
  - folders: [/tmp]
    filters:
      - extensoin: pdf
    actions:
      - echo: hi
`,
			wantMsg: "invalid config",
		},
		"bad options": {
			config: `apiVersion: organize.macropower.dev/v1beta1
kind: Configuration
rules:
  - folders: [/tmp]
    filters:
      - filesize: "about 3 MB"
    actions:
      - echo: hi
`,
			wantMsg: "invalid config",
		},
		"no actions": {
			config: `apiVersion: organize.macropower.dev/v1beta1
kind: Configuration
rules:
  - folders: [/tmp]
    actions: []
`,
			wantMsg: "invalid config",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, tc.config)

			_, err := execute(t, "sim", "--config", path)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantMsg)
		})
	}
}
