package installer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/autoclip/internal/plugin"
	"go.klb.dev/autoclip/sdk"
)

const amazonManifest = `
name: amazon
description: Shortens Amazon Japan product links
author:
  name: Jane Doe
  email: jane@example.com
core_version: %CORE%
variants:
  - os: linux
    arch: x86_64
    url: %SRV%/dl/amazon-linux-amd64.so
  - os: macos
    arch: aarch64
    url: %SRV%/dl/amazon-darwin-arm64.dylib
  - os: any
    arch: any
    url: %SRV%/dl/shout.lua
`

func newRegistry(t *testing.T, core string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	downloads := new(atomic.Int32)
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/amazon.yaml", func(w http.ResponseWriter, _ *http.Request) {
		body := strings.NewReplacer("%CORE%", core, "%SRV%", srv.URL).Replace(amazonManifest)
		_, _ = io.WriteString(w, body)
	})
	mux.HandleFunc("/broken.yaml", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	})
	mux.HandleFunc("/dl/", func(w http.ResponseWriter, r *http.Request) {
		downloads.Add(1)
		_, _ = io.WriteString(w, "binary:"+filepath.Base(r.URL.Path))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, downloads
}

func newTestInstaller(t *testing.T, base, goos, goarch string) *Installer {
	t.Helper()
	in, err := New(base)
	require.NoError(t, err)
	in.goos, in.goarch = goos, goarch
	in.Progress = io.Discard
	return in
}

func TestInstallPicksPlatformVariant(t *testing.T) {
	srv, downloads := newRegistry(t, sdk.CoreVersion)
	dir := t.TempDir()

	res, err := newTestInstaller(t, srv.URL, "linux", "amd64").Install(context.Background(), "amazon", dir)
	require.NoError(t, err)

	assert.Equal(t, "amazon", res.Manifest.Name)
	assert.Equal(t, "Jane Doe <jane@example.com>", res.Manifest.Author.String())
	assert.Equal(t, filepath.Join(dir, "amazon"+plugin.LibraryExt), res.Path)
	assert.Equal(t, int32(1), downloads.Load())

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "binary:amazon-linux-amd64.so", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestInstallFallsBackToScript(t *testing.T) {
	srv, _ := newRegistry(t, sdk.CoreVersion)
	dir := t.TempDir()

	res, err := newTestInstaller(t, srv.URL, "windows", "386").Install(context.Background(), "amazon", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "amazon.lua"), res.Path)
}

func TestInstallAcceptsUnprefixedCoreVersion(t *testing.T) {
	srv, _ := newRegistry(t, strings.TrimPrefix(sdk.CoreVersion, "v"))
	_, err := newTestInstaller(t, srv.URL, "darwin", "arm64").Install(context.Background(), "amazon", t.TempDir())
	assert.NoError(t, err)
}

func TestInstallRefusesOtherCore(t *testing.T) {
	srv, downloads := newRegistry(t, "v9.9.9")
	in := newTestInstaller(t, srv.URL, "linux", "amd64")

	_, err := in.Install(context.Background(), "amazon", t.TempDir())
	assert.ErrorIs(t, err, ErrIncompatible)
	assert.Zero(t, downloads.Load())

	in.Force = true
	_, err = in.Install(context.Background(), "amazon", t.TempDir())
	assert.NoError(t, err)
}

func TestInstallErrors(t *testing.T) {
	srv, _ := newRegistry(t, sdk.CoreVersion)
	in := newTestInstaller(t, srv.URL, "linux", "amd64")
	ctx := context.Background()

	_, err := in.Install(ctx, "missing", t.TempDir())
	assert.ErrorIs(t, err, ErrPluginNotFound)

	_, err = in.Install(ctx, "broken", t.TempDir())
	var re *RegistryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusInternalServerError, re.Status)

	_, err = in.Install(ctx, "../etc/passwd", t.TempDir())
	assert.ErrorContains(t, err, "invalid plugin name")
}

func TestNoSupportedVariant(t *testing.T) {
	m := &Manifest{Variants: []Variant{{OS: "linux", Arch: "x86_64"}}}
	_, ok := m.Find("linux", "arm64")
	assert.False(t, ok)
	_, ok = m.Find("linux", "amd64")
	assert.True(t, ok)
}

func TestVariantMatches(t *testing.T) {
	cases := []struct {
		v      Variant
		goos   string
		goarch string
		want   bool
	}{
		{Variant{OS: "macos", Arch: "x86_64"}, "darwin", "amd64", true},
		{Variant{OS: "darwin", Arch: "arm64"}, "darwin", "arm64", true},
		{Variant{OS: "Linux", Arch: "X86_32"}, "linux", "386", true},
		{Variant{OS: "windows", Arch: "x86_64"}, "linux", "amd64", false},
		{Variant{OS: "any", Arch: "any"}, "plan9", "mips", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.v.Matches(tc.goos, tc.goarch), "%+v on %s/%s", tc.v, tc.goos, tc.goarch)
	}
}

func TestCheckCoreVersion(t *testing.T) {
	assert.NoError(t, (&Manifest{}).CheckCoreVersion("v0.1.0"))
	assert.NoError(t, (&Manifest{CoreVersion: "0.1.0"}).CheckCoreVersion("v0.1.0"))
	assert.ErrorIs(t, (&Manifest{CoreVersion: "0.2.0"}).CheckCoreVersion("v0.1.0"), ErrIncompatible)
	assert.ErrorIs(t, (&Manifest{CoreVersion: "latest"}).CheckCoreVersion("v0.1.0"), ErrIncompatible)
}

func TestNewValidatesRegistry(t *testing.T) {
	_, err := New("ftp://example.com/")
	assert.Error(t, err)

	in, err := New("https://example.com/plugins")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/plugins/amazon.yaml",
		in.registry.ResolveReference(&url.URL{Path: "amazon.yaml"}).String())
}
