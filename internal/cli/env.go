package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// bindEnvVars binds environment variables to the flags of cmd and of all its
// subcommands. The variable name is the command path followed by the flag
// name, upper-cased with dashes and spaces replaced by underscores:
//
//   - `organize --log-level` reads ORGANIZE_LOG_LEVEL
//   - `organize --config` reads ORGANIZE_CONFIG
//   - `organize config --force` reads ORGANIZE_CONFIG_FORCE
//
// Persistent flags are bound once, on the command that declares them.
// Arguments take precedence over environment variables, which take precedence
// over default values. The variable name is appended to the flag usage.
func bindEnvVars(cmd *cobra.Command) {
	prefix := envPrefix(cmd)

	cmd.LocalFlags().VisitAll(func(flag *pflag.Flag) {
		bindFlagToEnv(prefix, flag)
	})

	for _, sub := range cmd.Commands() {
		bindEnvVars(sub)
	}
}

func bindFlagToEnv(prefix string, flag *pflag.Flag) {
	envName := flagToEnvName(prefix, flag.Name)

	if !strings.Contains(flag.Usage, envName) {
		flag.Usage = fmt.Sprintf("%s ($%s)", flag.Usage, envName)
	}

	if flag.Changed {
		return
	}

	envValue, ok := os.LookupEnv(envName)
	if !ok {
		return
	}

	err := flag.Value.Set(envValue)
	if err != nil {
		// Keep the default value.
		slog.Error("failed to set flag from environment variable",
			slog.String("flag", flag.Name),
			slog.String("env", envName),
			slog.String("value", envValue),
			slog.Any("error", err),
		)
	}
}

// envPrefix returns the variable prefix of cmd, e.g. "ORGANIZE_CONFIG" for
// `organize config`.
func envPrefix(cmd *cobra.Command) string {
	return strings.ToUpper(strings.ReplaceAll(cmd.CommandPath(), " ", "_"))
}

// flagToEnvName converts a flag name to its environment variable name.
// Example: ("ORGANIZE", "log-level") -> "ORGANIZE_LOG_LEVEL".
func flagToEnvName(prefix, flagName string) string {
	return prefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
