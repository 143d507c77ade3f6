package execs_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/organize/pkg/execs"
)

func TestCommand_GetEnv(t *testing.T) {
	t.Parallel()

	baseEnv := []string{
		"PATH=/usr/bin",
		"HOME=/home/test",
		"SECRET=hidden",
		"ORGANIZE_A=1",
		"ORGANIZE_B=2",
		"OTHER=x",
	}

	tcs := map[string]struct {
		env     []execs.EnvVar
		envFrom []execs.EnvFromSource
		want    []string
	}{
		"essential only": {
			want: []string{"HOME=/home/test", "PATH=/usr/bin"},
		},
		"static value": {
			env:  []execs.EnvVar{{Name: "FOO", Value: "bar"}},
			want: []string{"FOO=bar", "HOME=/home/test", "PATH=/usr/bin"},
		},
		"value from caller": {
			env: []execs.EnvVar{{
				Name:      "RENAMED",
				ValueFrom: &execs.EnvVarSource{CallerRef: &execs.CallerRef{Name: "OTHER"}},
			}},
			want: []string{"HOME=/home/test", "PATH=/usr/bin", "RENAMED=x"},
		},
		"inherit by pattern": {
			envFrom: []execs.EnvFromSource{{CallerRef: &execs.CallerRef{Pattern: "^ORGANIZE_"}}},
			want:    []string{"HOME=/home/test", "ORGANIZE_A=1", "ORGANIZE_B=2", "PATH=/usr/bin"},
		},
		"inherit by name": {
			envFrom: []execs.EnvFromSource{{CallerRef: &execs.CallerRef{Name: "SECRET"}}},
			want:    []string{"HOME=/home/test", "PATH=/usr/bin", "SECRET=hidden"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cmd := execs.NewCommand(baseEnv, "true")
			cmd.Env = tc.env
			cmd.EnvFrom = tc.envFrom
			require.NoError(t, cmd.CompilePatterns())

			assert.Equal(t, tc.want, cmd.GetEnv())
		})
	}
}

func TestCommand_CompilePatterns_Invalid(t *testing.T) {
	t.Parallel()

	cmd := execs.NewCommand(nil, "true")
	cmd.EnvFrom = []execs.EnvFromSource{{CallerRef: &execs.CallerRef{Pattern: "("}}}

	err := cmd.CompilePatterns()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "envFrom[0]")
}

func TestCommand_Exec(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()

	cmd := execs.NewCommand([]string{"PATH=/usr/bin:/bin"}, "sh", "-c", "pwd; echo oops >&2")

	res, err := cmd.Exec(context.Background(), dir)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, filepath.Base(dir))
	assert.Equal(t, "oops\n", res.Stderr)

	failing := execs.NewCommand([]string{"PATH=/usr/bin:/bin"}, "sh", "-c", "exit 3")

	_, err = failing.Exec(context.Background(), dir)
	require.ErrorIs(t, err, execs.ErrCommandExecution)

	_, err = execs.NewCommand(nil, "").Exec(context.Background(), dir)
	require.ErrorIs(t, err, execs.ErrEmptyCommand)
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "echo", execs.NewCommand(nil, "echo").String())
	assert.Equal(t, "echo a b", execs.NewCommand(nil, "echo", "a", "b").String())
}
