// Package installer downloads plugins from an HTTP registry.
//
// A registry serves one YAML manifest per plugin at <registry>/<name>.yaml
// listing a download URL per platform.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"

	"go.klb.dev/autoclip/sdk"
)

var (
	ErrPluginNotFound     = errors.New("no plugin with that name in the registry")
	ErrNoSupportedVariant = errors.New("no variant supports this platform")
	ErrIncompatible       = errors.New("plugin is built for another autoclip core")
)

// RegistryError is returned for unexpected registry responses.
type RegistryError struct {
	URL    string
	Status int
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry: GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Installer fetches manifests and plugin binaries.
type Installer struct {
	registry *url.URL
	client   *http.Client

	// Force installs plugins whose manifest names another core version.
	Force bool

	// Progress receives the download progress bar. Nil disables it.
	Progress io.Writer

	goos, goarch string
}

// New returns an Installer for the registry at base.
func New(base string) (*Installer, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("registry url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("registry url %q: scheme must be http or https", base)
	}
	if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
		u.Path += "/"
	}
	return &Installer{
		registry: u,
		client:   &http.Client{Timeout: 5 * time.Minute},
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
	}, nil
}

// Result describes a completed install.
type Result struct {
	Manifest *Manifest
	Variant  Variant
	Path     string
}

// FetchManifest downloads and decodes the manifest for name.
func (in *Installer) FetchManifest(ctx context.Context, name string) (*Manifest, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("invalid plugin name %q", name)
	}
	u := in.registry.ResolveReference(&url.URL{Path: name + ".yaml"})

	resp, err := in.get(ctx, u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var m Manifest
	if err := yaml.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Name == "" {
		m.Name = name
	}
	if !validName.MatchString(m.Name) {
		return nil, fmt.Errorf("manifest names the plugin %q, which is not a valid file name", m.Name)
	}
	return &m, nil
}

// Install downloads the variant of name that fits this platform into dir.
func (in *Installer) Install(ctx context.Context, name, dir string) (*Result, error) {
	m, err := in.FetchManifest(ctx, name)
	if err != nil {
		return nil, err
	}
	v, ok := m.Find(in.goos, in.goarch)
	if !ok {
		return nil, fmt.Errorf("%s for %s/%s: %w", name, in.goos, in.goarch, ErrNoSupportedVariant)
	}
	if err := m.CheckCoreVersion(sdk.CoreVersion); err != nil {
		if !in.Force {
			return nil, err
		}
		slog.Warn("installing anyway", "plugin", m.Name, "err", err)
	}

	slog.Info("installing plugin", "plugin", m.Name, "author", m.Author.String(), "url", v.URL)

	dst := filepath.Join(dir, m.Name+v.Ext())
	if err := in.download(ctx, v.URL, dst); err != nil {
		return nil, err
	}
	return &Result{Manifest: m, Variant: v, Path: dst}, nil
}

func (in *Installer) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := in.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrPluginNotFound
	default:
		resp.Body.Close()
		return nil, &RegistryError{URL: rawURL, Status: resp.StatusCode}
	}
}

// download writes rawURL to dst through a temp file in the same directory,
// so a failed download never leaves a truncated plugin behind.
func (in *Installer) download(ctx context.Context, rawURL, dst string) error {
	resp, err := in.get(ctx, rawURL)
	if errors.Is(err, ErrPluginNotFound) {
		return &RegistryError{URL: rawURL, Status: http.StatusNotFound}
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create plugin directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".autoclip-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	if in.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(in.Progress),
			progressbar.OptionSetDescription("download "+filepath.Base(dst)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(in.Progress) }),
		)
		defer bar.Close()
		w = io.MultiWriter(tmp, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return fmt.Errorf("chmod plugin: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("install plugin: %w", err)
	}
	return nil
}
