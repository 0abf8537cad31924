//go:build !windows

package ipc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortTempDir(t *testing.T) string {
	t.Helper()
	// Unix socket paths are limited to ~100 bytes; t.TempDir can exceed that on macOS.
	dir, err := os.MkdirTemp("", "ac")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestSocketPathPrecedence(t *testing.T) {
	t.Setenv("AUTOCLIP_SOCKET", "/custom/autoclip.sock")
	assert.Equal(t, "/custom/autoclip.sock", SocketPath())

	t.Setenv("AUTOCLIP_SOCKET", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/autoclip.sock", SocketPath())

	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Equal(t, filepath.Join(os.TempDir(), "autoclip.sock"), SocketPath())
}

func TestListenReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(shortTempDir(t), "a.sock")
	t.Setenv("AUTOCLIP_SOCKET", path)
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	assert.False(t, IsRunning())

	ln, err := Listen()
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	assert.True(t, IsRunning())
}
