package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/autoclip/internal/config"
	"go.klb.dev/autoclip/internal/plugin"
)

func copyScript(t *testing.T, dir, name string) {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("..", "..", "internal", "plugin", "script", "testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), src, 0o644))
}

func TestBindViperFlagsOverrideFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("polling_interval: 250\nabi: c\nplugin_dir: /from/file\n"), 0o644))

	v := viper.New()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	addRunFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgFile, "--plugin-dir", "/from/flag"}))
	require.NoError(t, bindViper(cmd, v))

	cfg, err := config.Resolve(v)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.PollingInterval)
	assert.Equal(t, config.ABIC, cfg.ABI)
	assert.Equal(t, "/from/flag", cfg.PluginDir)
	assert.True(t, cfg.Control)
}

func TestLoadPluginsFromDirectory(t *testing.T) {
	dir := t.TempDir()
	copyScript(t, dir, "amazon.lua")
	copyScript(t, dir, "old.lua")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a plugin"), 0o644))

	coll := plugin.NewCollection()
	defer coll.Close()
	l := newLoader(coll, config.Config{ABI: config.ABIGo})

	require.NoError(t, loadPlugins(l, dir, ""))
	require.Equal(t, 1, coll.Len())

	out, ok := coll.Dispatch("https://www.amazon.co.jp/some-item/dp/B000000000/ref=x")
	require.True(t, ok)
	assert.Equal(t, "https://www.amazon.co.jp/dp/B000000000", out)
}

func TestLoadSinglePlugin(t *testing.T) {
	dir := t.TempDir()
	copyScript(t, dir, "amazon.lua")
	copyScript(t, dir, "old.lua")

	coll := plugin.NewCollection()
	defer coll.Close()
	l := newLoader(coll, config.Config{ABI: config.ABIGo})

	require.NoError(t, loadPlugins(l, dir, "amazon"))
	assert.Equal(t, 1, coll.Len())

	assert.ErrorIs(t, loadPlugins(l, dir, "old"), plugin.ErrVersionMismatch)
	assert.Error(t, loadPlugins(l, dir, "missing"))
	assert.Equal(t, 1, coll.Len())
}

func TestPrintPlugins(t *testing.T) {
	dir := t.TempDir()
	copyScript(t, dir, "amazon.lua")
	copyScript(t, dir, "old.lua")

	coll := plugin.NewCollection()
	defer coll.Close()
	res, err := newLoader(coll, config.Config{ABI: config.ABIC}).LoadDir(dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	printPlugins(&buf, dir, coll.Instances(), res.Failed)
	out := buf.String()
	assert.Regexp(t, `amazon\s+lua\s+`, out)
	assert.Contains(t, out, "Rejected:")
	assert.Contains(t, out, "old.lua")

	buf.Reset()
	printPlugins(&buf, dir, nil, nil)
	assert.Contains(t, buf.String(), "No plugins in")
}

func TestSingleLoadFailurePrintsNoUsage(t *testing.T) {
	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"single", "--plugin-dir", t.TempDir(), "--control=false", "missing"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "missing")
	assert.NotContains(t, buf.String(), "Usage:")
}
