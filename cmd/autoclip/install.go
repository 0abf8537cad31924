package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/autoclip/internal/config"
	"go.klb.dev/autoclip/internal/installer"
	"go.klb.dev/autoclip/sdk"
)

func newInstallCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "install <name>",
		Short: "Download a plugin from the registry",
		Long: `Fetches <registry>/<name>.yaml, picks the variant built for this platform
and saves it into the plugin directory. Plugins built for another core
version are refused unless --force is given.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runInstall(cmd, v, args[0]) },
	}

	f := cmd.Flags()
	f.String("registry", config.DefaultRegistry, "plugin registry base URL")
	f.Bool("force", false, "install even if the plugin targets another core version")
	addPluginFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runInstall(cmd *cobra.Command, v *viper.Viper, name string) error {
	setupLogging(v)

	cfg, err := config.Resolve(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.PluginDir, 0o755); err != nil {
		return fmt.Errorf("create plugin directory: %w", err)
	}

	in, err := installer.New(cfg.Registry)
	if err != nil {
		return err
	}
	in.Force = v.GetBool("force")
	in.Progress = os.Stderr

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Debug("installing plugin", "name", name, "registry", cfg.Registry, "core", sdk.CoreVersion)
	res, err := in.Install(ctx, name, cfg.PluginDir)
	if err != nil {
		return fmt.Errorf("install %s: %w", name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s by %s to %s\n", res.Manifest.Name, res.Manifest.Author, res.Path)
	return nil
}
