package execs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/organize/pkg/log"
)

var (
	// ErrCommandExecution is returned when command execution fails.
	ErrCommandExecution = errors.New("run")

	// ErrEmptyCommand is returned when a command is empty.
	ErrEmptyCommand = errors.New("empty command")

	essentialVars = []string{"PATH", "HOME", "USER", "TERM", "COLORTERM"}
)

// Result represents the result of a command execution.
type Result struct {
	Stdout string
	Stderr string
}

// EnvFromSource represents a source for inheriting environment variables.
type EnvFromSource struct {
	// CallerRef specifies how to inherit environment variables from the caller process.
	CallerRef *CallerRef `json:"callerRef,omitempty" jsonschema:"title=Caller Reference"`
}

// CallerRef represents a reference to environment variables from the caller process.
type CallerRef struct {
	compiledPattern *regexp.Regexp

	// Pattern is a regex pattern for matching environment variable names.
	Pattern string `json:"pattern,omitempty" jsonschema:"title=Pattern,format=regex"`
	// Name is the specific environment variable name to inherit.
	Name string `json:"name,omitempty" jsonschema:"title=Name"`
}

// Compile compiles the caller reference pattern, if any.
func (c *CallerRef) Compile() error {
	if c.compiledPattern == nil && c.Pattern != "" {
		pattern, err := regexp.Compile(c.Pattern)
		if err != nil {
			return fmt.Errorf("compile pattern %q: %w", c.Pattern, err)
		}

		c.compiledPattern = pattern
	}

	return nil
}

// EnvVar represents an environment variable definition.
type EnvVar struct {
	// ValueFrom specifies a source for the environment variable value.
	ValueFrom *EnvVarSource `json:"valueFrom,omitempty" jsonschema:"title=Value From"`
	// Name is the environment variable name.
	Name string `json:"name" jsonschema:"title=Name"`
	// Value is the environment variable value.
	Value string `json:"value,omitempty" jsonschema:"title=Value"`
}

// EnvVarSource represents a source for an environment variable value.
type EnvVarSource struct {
	// CallerRef specifies how to get the value from the caller process environment.
	CallerRef *CallerRef `json:"callerRef,omitempty" jsonschema:"title=Caller Reference"`
}

// Command is a single external command invocation.
type Command struct {
	baseEnv map[string]string

	// Command is the executable to run.
	Command string
	// Args contains the command line arguments.
	Args []string
	// Env contains environment variable definitions.
	Env []EnvVar
	// EnvFrom contains sources for inheriting environment variables.
	EnvFrom []EnvFromSource
}

// NewCommand creates a new [Command]. The base environment, usually from
// [os.Environ], is the pool that [EnvFromSource] and [EnvVarSource] draw from.
func NewCommand(baseEnv []string, command string, args ...string) *Command {
	c := &Command{
		Command: command,
		Args:    args,
	}
	c.SetBaseEnv(baseEnv)

	return c
}

func (c *Command) SetBaseEnv(baseEnv []string) {
	c.baseEnv = make(map[string]string, len(baseEnv))
	for _, envVar := range baseEnv {
		key, value, ok := strings.Cut(envVar, "=")
		if ok {
			c.baseEnv[key] = value
		}
	}
}

// CompilePatterns compiles all caller reference patterns.
func (c *Command) CompilePatterns() error {
	for i, envVar := range c.Env {
		if envVar.ValueFrom != nil && envVar.ValueFrom.CallerRef != nil {
			err := envVar.ValueFrom.CallerRef.Compile()
			if err != nil {
				return fmt.Errorf("env[%d]: %w", i, err)
			}
		}
	}

	for i, envFromSource := range c.EnvFrom {
		if envFromSource.CallerRef != nil {
			err := envFromSource.CallerRef.Compile()
			if err != nil {
				return fmt.Errorf("envFrom[%d]: %w", i, err)
			}
		}
	}

	return nil
}

// GetEnv constructs environment variables for command execution, sorted by
// name.
func (c *Command) GetEnv() []string {
	envMap := make(map[string]string)

	for key, value := range c.baseEnv {
		if slices.Contains(essentialVars, key) {
			envMap[key] = value
		}
	}

	c.applyEnvFrom(envMap)
	c.applyEnv(envMap)

	env := make([]string, 0, len(envMap))
	for key, value := range envMap {
		env = append(env, key+"="+value)
	}

	slices.Sort(env)

	return env
}

// Exec runs the command in dir and captures its output.
func (c *Command) Exec(ctx context.Context, dir string) (*Result, error) {
	ctx, span := otel.Tracer("execs").Start(ctx, "exec", trace.WithAttributes(
		attribute.String("command", c.String()),
		attribute.String("dir", dir),
	))
	defer span.End()

	if c.Command == "" {
		return nil, ErrEmptyCommand
	}

	logger := log.WithContext(ctx).With(
		slog.String("command", c.String()),
		slog.String("dir", dir),
	)

	start := time.Now()

	//nolint:gosec // G204: Subprocess launched with a potential tainted input or cmd arguments.
	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Dir = dir
	cmd.Env = c.GetEnv()

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		logger.DebugContext(ctx, "command failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)

		return result, fmt.Errorf("%w: %w", ErrCommandExecution, err)
	}

	logger.DebugContext(ctx, "command executed successfully",
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (c *Command) String() string {
	if len(c.Args) == 0 {
		return c.Command
	}

	return c.Command + " " + strings.Join(c.Args, " ")
}

func (c *Command) applyEnvFrom(envMap map[string]string) {
	for _, envFromSource := range c.EnvFrom {
		ref := envFromSource.CallerRef
		if ref == nil {
			continue
		}

		if ref.compiledPattern != nil {
			for key, value := range c.baseEnv {
				if ref.compiledPattern.MatchString(key) {
					envMap[key] = value
				}
			}
		}

		if ref.Name != "" {
			if value, ok := c.baseEnv[ref.Name]; ok {
				envMap[ref.Name] = value
			}
		}
	}
}

func (c *Command) applyEnv(envMap map[string]string) {
	for _, envVar := range c.Env {
		if envVar.Name == "" {
			continue
		}

		if envVar.Value != "" {
			envMap[envVar.Name] = envVar.Value
			continue
		}

		if envVar.ValueFrom != nil && envVar.ValueFrom.CallerRef != nil && envVar.ValueFrom.CallerRef.Name != "" {
			if value, ok := c.baseEnv[envVar.ValueFrom.CallerRef.Name]; ok {
				envMap[envVar.Name] = value
			}
		}
	}
}
