package action

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/macropower/organize/pkg/execs"
	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/log"
)

const shellDoc = `Runs a command in the file's directory. The command is a template split
into arguments with shell quoting rules, but it is not run by a shell. Use
"sh -c" for pipes and redirection. The "quote" template function quotes a
value as a single argument.

Only PATH, HOME, USER, TERM and COLORTERM are inherited by default. Use env
and envFrom to pass more variables.

Examples:
  - shell: 'exiftool -overwrite_original -all= {{quote .path}}'
  - shell:
      cmd: 'notify-send {{quote .name}}'
      envFrom:
        - callerRef:
            pattern: ^DBUS_`

type ShellOptions struct {
	Cmd          string                `json:"cmd" jsonschema:"required,description=Command line template"`
	Env          []execs.EnvVar        `json:"env,omitempty" jsonschema:"description=Environment variables to set"`
	EnvFrom      []execs.EnvFromSource `json:"envFrom,omitempty" jsonschema:"description=Sources of inherited environment variables"`
	IgnoreErrors bool                  `json:"ignore_errors,omitempty" jsonschema:"description=Log failures instead of failing the job"`
}

// Shell runs external commands.
type Shell struct {
	cmd          *Template
	env          []execs.EnvVar
	envFrom      []execs.EnvFromSource
	ignoreErrors bool
}

func newShell(o *ShellOptions) (Action, error) {
	cmd, err := NewTemplate("shell", o.Cmd)
	if err != nil {
		return nil, err
	}

	a := &Shell{cmd: cmd, env: o.Env, envFrom: o.EnvFrom, ignoreErrors: o.IgnoreErrors}

	// Patterns are compiled once and shared by every run.
	err = a.command(nil).CompilePatterns()
	if err != nil {
		return nil, err //nolint:wrapcheck // Already wrapped.
	}

	return a, nil
}

func (a *Shell) Run(ctx context.Context, path string, attrs filter.Attributes, simulate bool) (string, error) {
	line, err := a.cmd.Render(path, attrs)
	if err != nil {
		return "", err
	}

	args, err := shellwords.Parse(line)
	if err != nil {
		return "", fmt.Errorf("parse command %q: %w", line, err)
	}
	if len(args) == 0 {
		return "", execs.ErrEmptyCommand
	}

	logger := log.WithContext(ctx)

	if simulate {
		logger.InfoContext(ctx, "shell",
			slog.String("cmd", line),
			slog.Bool("simulate", true),
		)

		return "", nil
	}

	result, err := a.command(args).Exec(ctx, filepath.Dir(path))
	if result != nil {
		logOutput(ctx, logger, result)
	}

	if err != nil {
		if a.ignoreErrors {
			logger.WarnContext(ctx, "shell command failed", slog.String("cmd", line), slog.Any("err", err))
			return "", nil
		}

		return "", fmt.Errorf("shell %q: %w", line, err)
	}

	logger.InfoContext(ctx, "shell",
		slog.String("cmd", line),
		slog.Bool("simulate", false),
	)

	return "", nil
}

func (a *Shell) command(args []string) *execs.Command {
	var name string
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	cmd := execs.NewCommand(os.Environ(), name, args...)
	cmd.Env = a.env
	cmd.EnvFrom = a.envFrom

	return cmd
}

func logOutput(ctx context.Context, logger *slog.Logger, result *execs.Result) {
	if out := strings.TrimSpace(result.Stdout); out != "" {
		logger.InfoContext(ctx, "shell output", slog.String("stdout", out))
	}
	if out := strings.TrimSpace(result.Stderr); out != "" {
		logger.WarnContext(ctx, "shell output", slog.String("stderr", out))
	}
}
