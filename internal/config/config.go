// Package config resolves autoclip settings from defaults, the YAML config
// file, AUTOCLIP_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"go.klb.dev/autoclip/internal/platform"
)

// Keys as they appear in config.yaml.
const (
	KeyPollingInterval = "polling_interval"
	KeyIgnoredTypes    = "ignored_types"
	KeyPluginDir       = "plugin_dir"
	KeyABI             = "abi"
	KeyRegistry        = "registry"
	KeyControl         = "control"
	KeyScriptTimeout   = "script_timeout"
)

const (
	EnvPrefix       = "AUTOCLIP"
	AppName         = "autoclip"
	FileName        = "config"
	FileType        = "yaml"
	DefaultRegistry = "https://autoclip-plugins.projects.siketyan.dev/"
)

// ABI selects the backend for platform shared libraries.
type ABI string

const (
	ABIGo ABI = "go"
	ABIC  ABI = "c"
)

// Config is the resolved configuration.
type Config struct {
	PollingInterval time.Duration
	IgnoredTypes    []string
	PluginDir       string
	ABI             ABI
	Registry        string
	Control         bool
	ScriptTimeout   time.Duration
}

// SetDefaults registers every key's default on v. The plugin directory has
// no default here since resolving it can fail; see Resolve.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPollingInterval, 1000)
	v.SetDefault(KeyIgnoredTypes, platform.DefaultIgnoredTypes)
	v.SetDefault(KeyABI, string(ABIGo))
	v.SetDefault(KeyRegistry, DefaultRegistry)
	v.SetDefault(KeyControl, true)
	v.SetDefault(KeyScriptTimeout, 2000)
}

// Read loads the config file into v and enables environment overrides.
// file overrides discovery. A missing discovered file is not an error; a
// file that exists but does not parse is.
func Read(v *viper.Viper, file string) error {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType(FileType)
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return nil
}

// Resolve builds a Config from v and validates it.
func Resolve(v *viper.Viper) (Config, error) {
	c := Config{
		PollingInterval: time.Duration(v.GetInt64(KeyPollingInterval)) * time.Millisecond,
		IgnoredTypes:    v.GetStringSlice(KeyIgnoredTypes),
		PluginDir:       v.GetString(KeyPluginDir),
		ABI:             ABI(strings.ToLower(v.GetString(KeyABI))),
		Registry:        v.GetString(KeyRegistry),
		Control:         v.GetBool(KeyControl),
		ScriptTimeout:   time.Duration(v.GetInt64(KeyScriptTimeout)) * time.Millisecond,
	}

	if c.PollingInterval <= 0 {
		return c, fmt.Errorf("config: %s must be a positive number of milliseconds", KeyPollingInterval)
	}
	switch c.ABI {
	case ABIGo, ABIC:
	default:
		return c, fmt.Errorf("config: %s must be %q or %q, got %q", KeyABI, ABIGo, ABIC, c.ABI)
	}
	if c.PluginDir == "" {
		dir, err := DataDir()
		if err != nil {
			return c, fmt.Errorf("config: resolve plugin directory: %w", err)
		}
		c.PluginDir = filepath.Join(dir, "plugins")
	}
	return c, nil
}

// Dir is the directory searched for config.yaml.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DataDir is autoclip's per-user data directory.
func DataDir() (string, error) {
	home, _ := os.UserHomeDir()
	base := dataLocalDir(runtime.GOOS, os.Getenv, home)
	if base == "" {
		return "", errors.New("neither a data directory nor a home directory is set")
	}
	return filepath.Join(base, AppName), nil
}

func dataLocalDir(goos string, getenv func(string) string, home string) string {
	switch goos {
	case "windows":
		return getenv("LOCALAPPDATA")
	case "darwin", "ios":
		if home == "" {
			return ""
		}
		return filepath.Join(home, "Library", "Application Support")
	default:
		if dir := getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
			return dir
		}
		if home == "" {
			return ""
		}
		return filepath.Join(home, ".local", "share")
	}
}
