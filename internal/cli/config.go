package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/macropower/organize/api/v1beta1/configs"
	"github.com/macropower/organize/pkg/execs"
)

type ConfigArgs struct {
	*RootArgs

	Open  bool
	Show  bool
	Write bool
	Force bool
}

func (ca *ConfigArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&ca.Open, "open", false, "Open the configuration directory in the file browser")
	cmd.Flags().BoolVar(&ca.Show, "show", false, "Print the active configuration")
	cmd.Flags().BoolVar(&ca.Write, "write", false, "Write the default configuration and schema")
	cmd.Flags().BoolVar(&ca.Force, "force", false, "Back up and replace an existing configuration with --write")
}

func NewConfigCmd(ra *RootArgs) *cobra.Command {
	ca := &ConfigArgs{RootArgs: ra}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print, show, open or write the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfig(cmd, ca)
		},
	}

	ca.AddFlags(cmd)
	cmd.MarkFlagsMutuallyExclusive("open", "show", "write")

	return cmd
}

func runConfig(cmd *cobra.Command, ca *ConfigArgs) error {
	configPath := ca.ConfigPath
	if configPath == "" {
		configPath = configs.GetPath()
	}

	switch {
	case ca.Write:
		err := configs.WriteDefault(configPath, ca.Force)
		if err != nil {
			return err //nolint:wrapcheck // Already wrapped.
		}

		slog.Info("configuration written", slog.String("path", configPath))

		return nil

	case ca.Show:
		return showConfig(cmd, resolveConfigPath(ca.ConfigPath))

	case ca.Open:
		return openDir(cmd.Context(), filepath.Dir(configPath))
	}

	mustN(fmt.Fprintln(cmd.OutOrStdout(), filepath.Dir(configPath)))

	return nil
}

func showConfig(cmd *cobra.Command, configPath string) error {
	slog.Info("active configuration", slog.String("path", configPath))

	cl, _, err := loadConfig(configPath, isTerminal(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !isTerminal(out) {
		mustN(out.Write(cl.Data()))

		return nil
	}

	err = highlightYAML(out, string(cl.Data()))
	if err != nil {
		mustN(out.Write(cl.Data()))

		return fmt.Errorf("highlight config: %w", err)
	}

	return nil
}

// openDir opens dir with the platform's file browser.
func openDir(ctx context.Context, dir string) error {
	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	c := execs.NewCommand(os.Environ(), fileBrowser(runtime.GOOS), dir)
	c.EnvFrom = []execs.EnvFromSource{
		{CallerRef: &execs.CallerRef{Pattern: ".*"}},
	}

	err = c.CompilePatterns()
	if err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}

	_, err = c.Exec(ctx, dir)
	if err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}

	return nil
}

func fileBrowser(goos string) string {
	switch goos {
	case "darwin":
		return "open"

	case "windows":
		return "explorer"
	}

	return "xdg-open"
}
