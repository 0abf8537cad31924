//go:build (linux || darwin) && cgo

package goplugin

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/autoclip/internal/plugin"
	"go.klb.dev/autoclip/sdk"
)

// buildAmazon builds plugins/amazon with -buildmode=plugin into dir.
func buildAmazon(t *testing.T, dir string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds a Go plugin")
	}
	gobin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not found")
	}

	out := filepath.Join(dir, "amazon"+plugin.LibraryExt)
	cmd := exec.Command(gobin, "build", "-buildmode=plugin", "-o", out, "./plugins/amazon")
	cmd.Dir = filepath.Join("..", "..", "..")
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build amazon plugin: %v\n%s", err, b)
	}
	return out
}

func TestLoadBuiltPlugin(t *testing.T) {
	path := buildAmazon(t, t.TempDir())

	coll := plugin.NewCollection()
	defer coll.Close()
	l := plugin.NewLoader(coll)
	l.AddBackend(plugin.LibraryExt, New())

	instances, err := l.Load(path)
	if err != nil && strings.Contains(err.Error(), "different version of package") {
		// -race, -cover and similar flags change package hashes.
		t.Skipf("test binary and plugin were built differently: %v", err)
	}
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "amazon", instances[0].Name())
	assert.Equal(t, "go", instances[0].Backend())

	out, ok := coll.Dispatch("https://www.amazon.co.jp/some-product-name/dp/B000ABC123/ref=foo")
	require.True(t, ok)
	assert.Equal(t, "https://www.amazon.co.jp/dp/B000ABC123", out)

	_, ok = coll.Dispatch("https://www.amazon.co.jp/dp/B000ABC123")
	assert.False(t, ok)

	lib, err := New().Open(path)
	require.NoError(t, err)
	decl, err := lib.Declaration()
	require.NoError(t, err)
	assert.Equal(t, sdk.Compiler, decl.Compiler)
	assert.Equal(t, sdk.CoreVersion, decl.CoreVersion)
}
