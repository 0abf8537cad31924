package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/autoclip/internal/clip"
	"go.klb.dev/autoclip/internal/config"
	"go.klb.dev/autoclip/internal/control"
	"go.klb.dev/autoclip/internal/ipc"
	"go.klb.dev/autoclip/internal/plugin"
	"go.klb.dev/autoclip/internal/plugin/goplugin"
	"go.klb.dev/autoclip/internal/plugin/native"
	"go.klb.dev/autoclip/internal/plugin/script"
	"go.klb.dev/autoclip/internal/watcher"
)

const runLong = `autoclip watches the clipboard and passes each new text to the loaded
plugins in order. The first plugin that returns a replacement wins and the
replacement is written back to the clipboard.

Plugins are loaded from the plugin directory: shared libraries built against
the autoclip SDK (Go plugins, or C ABI libraries with --abi c) and Lua scripts
(*.lua). A plugin that fails to load is logged and skipped.

Config file search order:
  <user config dir>/autoclip/config.yaml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → AUTOCLIP_* env vars → flags`

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "autoclip",
		Short:        "Rewrite clipboard text through plugins",
		Long:         runLong,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE:      func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:         func(_ *cobra.Command, _ []string) error { return runDaemon(v, "") },
	}
	addRunFlags(cmd)
	return cmd
}

func newSingleCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "single <name>",
		Short: "Run with one plugin from the plugin directory",
		Long: `Loads only the named plugin and watches the clipboard with it. The name is
a file in the plugin directory, with or without its extension. Unlike the
default command, a plugin that fails to load is fatal.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runDaemon(v, args[0]) },
	}
	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("interval", 1000, "clipboard polling interval in milliseconds")
	f.Bool("control", true, "serve status on the control socket")
	addPluginFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)
}

// newLoader returns a Loader with the shared library backend chosen by
// cfg.ABI and the Lua backend.
func newLoader(coll *plugin.Collection, cfg config.Config) *plugin.Loader {
	l := plugin.NewLoader(coll)
	switch cfg.ABI {
	case config.ABIC:
		l.AddBackend(plugin.LibraryExt, native.New())
	default:
		l.AddBackend(plugin.LibraryExt, goplugin.New())
	}
	l.AddBackend(".lua", script.New(cfg.ScriptTimeout))
	return l
}

// loadPlugins loads name from dir, or every plugin in dir when name is
// empty.
func loadPlugins(l *plugin.Loader, dir, name string) error {
	if name == "" {
		res, err := l.LoadDir(dir)
		if err != nil {
			return err
		}
		if len(res.Failed) > 0 {
			slog.Warn("some plugins were not loaded", "loaded", len(res.Loaded), "failed", len(res.Failed))
		}
		return nil
	}

	path, err := l.Find(dir, name)
	if err != nil {
		return err
	}
	_, err = l.Load(path)
	return err
}

func runDaemon(v *viper.Viper, single string) error {
	setupLogging(v)

	cfg, err := config.Resolve(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.PluginDir, 0o755); err != nil {
		return fmt.Errorf("create plugin directory: %w", err)
	}

	slog.Info("autoclip starting",
		"version", Version,
		"plugin_dir", cfg.PluginDir,
		"abi", cfg.ABI,
		"interval", cfg.PollingInterval,
	)

	coll := plugin.NewCollection()
	defer func() {
		if err := coll.Close(); err != nil {
			slog.Warn("closing plugins failed", "err", err)
		}
	}()

	if err := loadPlugins(newLoader(coll, cfg), cfg.PluginDir, single); err != nil {
		return err
	}
	if coll.Len() == 0 {
		slog.Warn("no plugins loaded, clipboard will be watched but never rewritten", "dir", cfg.PluginDir)
	}

	cb, err := clip.Open()
	if err != nil {
		return fmt.Errorf("open clipboard: %w", err)
	}
	defer cb.Close()

	w, err := watcher.New(watcher.Config{
		Clipboard:    cb,
		Plugins:      coll,
		Interval:     cfg.PollingInterval,
		IgnoredTypes: cfg.IgnoredTypes,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Control {
		info := control.Info{Version: Version, PluginDir: cfg.PluginDir, Interval: cfg.PollingInterval}
		startControl(ctx, control.NewService(info, coll, w.Stats))
	}

	slog.Info("watching clipboard", "clipboard", cb.Name(), "plugins", coll.Len())
	return w.Run(ctx)
}

// startControl serves svc on the control socket until ctx is done. Failing
// to listen only disables `autoclip status`.
func startControl(ctx context.Context, svc *control.Service) {
	if ipc.IsRunning() {
		slog.Warn("control socket already in use by another autoclip, status disabled", "path", ipc.SocketPath())
		return
	}
	ln, err := ipc.Listen()
	if err != nil {
		slog.Warn("control socket unavailable", "path", ipc.SocketPath(), "err", err)
		return
	}
	go func() {
		if err := control.Serve(ctx, ln, svc); err != nil {
			slog.Warn("control service stopped", "err", err)
		}
	}()
}
