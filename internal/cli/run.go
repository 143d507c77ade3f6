package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/organize/api/v1beta1/configs"
	"github.com/macropower/organize/pkg/action"
	"github.com/macropower/organize/pkg/config"
	"github.com/macropower/organize/pkg/engine"
	"github.com/macropower/organize/pkg/filter"
	"github.com/macropower/organize/pkg/rule"
)

// NewExecuteCmd returns the `sim` command when simulate is set, and the
// `run` command otherwise.
func NewExecuteCmd(ra *RootArgs, simulate bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply the configured rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, ra, simulate)
		},
	}
	if simulate {
		cmd.Use = "sim"
		cmd.Short = "Simulate the configured rules without changing any files"
	}

	return cmd
}

func execute(cmd *cobra.Command, ra *RootArgs, simulate bool) error {
	rules, err := loadRules(ra.ConfigPath, isTerminal(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	err = engine.ExecuteRules(cmd.Context(), cmd.OutOrStdout(), rules, simulate)
	if err != nil {
		return fmt.Errorf("execute rules: %w", err)
	}

	return nil
}

// resolveConfigPath returns configPath, or the default path when it is empty.
// The default configuration is written first if it does not exist yet.
func resolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}

	configPath = configs.GetPath()

	err := configs.WriteDefault(configPath, false)
	if err != nil {
		slog.Error("write default config", slog.Any("err", err))
	}

	return configPath
}

func loadConfig(configPath string, color bool) (*config.Loader[*configs.Config], *configs.Config, error) {
	validator, err := configs.DefaultValidator()
	if err != nil {
		return nil, nil, fmt.Errorf("create validator: %w", err)
	}

	cl, err := config.NewLoaderFromFile(configPath, configs.New, validator, config.WithColor(color))
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	err = cl.Validate()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid config %q: %w", configPath, err)
	}

	cfg, err := cl.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid config %q: %w", configPath, err)
	}

	return cl, cfg, nil
}

func loadRules(configPath string, color bool) ([]*rule.Rule, error) {
	configPath = resolveConfigPath(configPath)

	slog.Debug("load config", slog.String("path", configPath))

	cl, cfg, err := loadConfig(configPath, color)
	if err != nil {
		return nil, err
	}

	rules, err := cfg.BuildRules(filter.Default, action.Default)
	if err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", configPath, cl.Wrap(err))
	}

	slog.Debug("loaded rules", slog.Int("count", len(rules)))

	return rules, nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in an int.
}

// terminalWidth returns the width of w, or fallback if w is not a terminal.
func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: file descriptors fit in an int.
		return fallback
	}

	width, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in an int.
	if err != nil || width <= 0 {
		return fallback
	}

	return width
}
