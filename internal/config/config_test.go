package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/autoclip/internal/platform"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	v := viper.New()
	require.NoError(t, Read(v, ""))
	c, err := Resolve(v)
	require.NoError(t, err)

	assert.Equal(t, time.Second, c.PollingInterval)
	assert.Equal(t, platform.DefaultIgnoredTypes, c.IgnoredTypes)
	assert.Equal(t, ABIGo, c.ABI)
	assert.Equal(t, DefaultRegistry, c.Registry)
	assert.True(t, c.Control)
	assert.Equal(t, 2*time.Second, c.ScriptTimeout)
	assert.Equal(t, "plugins", filepath.Base(c.PluginDir))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(c.PluginDir)))
}

func TestFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
polling_interval: 250
ignored_types:
  - org.example.secret
plugin_dir: /opt/autoclip/plugins
abi: C
`)
	v := viper.New()
	require.NoError(t, Read(v, path))
	c, err := Resolve(v)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, c.PollingInterval)
	assert.Equal(t, []string{"org.example.secret"}, c.IgnoredTypes)
	assert.Equal(t, "/opt/autoclip/plugins", c.PluginDir)
	assert.Equal(t, ABIC, c.ABI)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "polling_interval: 250\n")
	t.Setenv("AUTOCLIP_POLLING_INTERVAL", "50")

	v := viper.New()
	require.NoError(t, Read(v, path))
	c, err := Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, c.PollingInterval)
}

func TestInvalidFileIsFatal(t *testing.T) {
	path := writeConfig(t, "polling_interval: [1, 2\n")
	assert.Error(t, Read(viper.New(), path))
}

func TestExplicitMissingFileIsFatal(t *testing.T) {
	assert.Error(t, Read(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestValidation(t *testing.T) {
	for name, body := range map[string]string{
		"zero interval": "polling_interval: 0\n",
		"bad abi":       "abi: rust\n",
	} {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			require.NoError(t, Read(v, writeConfig(t, body)))
			_, err := Resolve(v)
			assert.Error(t, err)
		})
	}
}

func TestDataLocalDir(t *testing.T) {
	env := map[string]string{"XDG_DATA_HOME": "/xdg", "LOCALAPPDATA": `C:\Users\me\AppData\Local`}
	getenv := func(k string) string { return env[k] }

	assert.Equal(t, "/xdg", dataLocalDir("linux", getenv, "/home/me"))
	assert.Equal(t, filepath.Join("/Users/me", "Library", "Application Support"), dataLocalDir("darwin", getenv, "/Users/me"))
	assert.Equal(t, `C:\Users\me\AppData\Local`, dataLocalDir("windows", getenv, ""))

	env["XDG_DATA_HOME"] = "relative"
	assert.Equal(t, filepath.Join("/home/me", ".local", "share"), dataLocalDir("linux", getenv, "/home/me"))
	assert.Empty(t, dataLocalDir("linux", getenv, ""))
}
