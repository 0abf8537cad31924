package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/autoclip/internal/config"
	"go.klb.dev/autoclip/internal/logging"
)

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	config.KeyPollingInterval: "interval",
	config.KeyPluginDir:       "plugin-dir",
	config.KeyABI:             "abi",
	config.KeyRegistry:        "registry",
	config.KeyControl:         "control",
	config.KeyScriptTimeout:   "script-timeout",
}

// bindViper wires a command's flags into a viper instance on top of the
// config file and AUTOCLIP_* env vars.
//
// Precedence (lowest → highest): defaults → config file → AUTOCLIP_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if err := config.Read(v, configFlag); err != nil {
		return err
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	for key, name := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addPluginFlags adds the flags that decide where plugins live and how
// libraries are opened.
func addPluginFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("plugin-dir", "", "plugin directory (default: <data dir>/autoclip/plugins)")
	f.String("abi", string(config.ABIGo), "shared library ABI: go|c")
	f.Int("script-timeout", 2000, "limit for a single Lua plugin call, in milliseconds")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	logging.Setup(interactive, v.GetString("log-format"), v.GetString("log-level"))
}
