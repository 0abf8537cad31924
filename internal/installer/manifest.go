package installer

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/mod/semver"

	"go.klb.dev/autoclip/internal/plugin"
)

// Manifest is a registry entry, served as <registry>/<name>.yaml.
type Manifest struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Author      Author    `yaml:"author"`
	CoreVersion string    `yaml:"core_version,omitempty"`
	Variants    []Variant `yaml:"variants"`
}

// Author identifies who published a plugin.
type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

func (a Author) String() string {
	if a.Email == "" {
		return a.Name
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Variant is one downloadable build of a plugin.
type Variant struct {
	OS   string `yaml:"os"`
	Arch string `yaml:"arch"`
	URL  string `yaml:"url"`
}

// Platform names used in manifests, keyed by GOOS and GOARCH.
var (
	manifestOS = map[string][]string{
		"linux":   {"linux"},
		"darwin":  {"macos", "darwin"},
		"windows": {"windows"},
		"freebsd": {"freebsd"},
	}
	manifestArch = map[string][]string{
		"amd64": {"x86_64", "amd64"},
		"386":   {"x86_32", "i686", "386"},
		"arm64": {"aarch64", "arm64"},
	}
)

// Matches reports whether v runs on goos/goarch. Scripts are published with
// os and arch "any".
func (v Variant) Matches(goos, goarch string) bool {
	return matchName(v.OS, manifestOS[goos], goos) && matchName(v.Arch, manifestArch[goarch], goarch)
}

func matchName(have string, names []string, fallback string) bool {
	have = strings.ToLower(have)
	if have == "any" || have == fallback {
		return true
	}
	for _, n := range names {
		if have == n {
			return true
		}
	}
	return false
}

// Ext is the file extension the variant is installed with: scripts keep
// .lua, everything else gets the platform library extension.
func (v Variant) Ext() string {
	if strings.EqualFold(path.Ext(v.URL), ".lua") {
		return ".lua"
	}
	return plugin.LibraryExt
}

// Find returns the first variant that runs on goos/goarch.
func (m *Manifest) Find(goos, goarch string) (Variant, bool) {
	for _, v := range m.Variants {
		if v.Matches(goos, goarch) {
			return v, true
		}
	}
	return Variant{}, false
}

// CheckCoreVersion compares the manifest's core version with want. A
// manifest without one is accepted.
func (m *Manifest) CheckCoreVersion(want string) error {
	if m.CoreVersion == "" {
		return nil
	}
	got, w := canonical(m.CoreVersion), canonical(want)
	if got == "" {
		return fmt.Errorf("%w: invalid core_version %q", ErrIncompatible, m.CoreVersion)
	}
	if semver.Compare(got, w) != 0 {
		return fmt.Errorf("%w: plugin targets core %s, this autoclip is %s", ErrIncompatible, got, w)
	}
	return nil
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}
