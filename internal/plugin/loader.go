// Package plugin loads autoclip plugins and dispatches clipboard text to them.
//
// A Loader maps a file extension to a Backend that knows how to open that
// kind of library. Loading a library reads its declaration, rejects it unless
// both tags match the host, and then lets it register any number of plugin
// instances into a Collection. Instances keep their library mapped through a
// reference-counted Handle.
package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.klb.dev/autoclip/sdk"
)

// LibraryExt is the platform's shared library extension, including the dot.
var LibraryExt = libraryExt(runtime.GOOS)

func libraryExt(goos string) string {
	switch goos {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// Loader opens plugin libraries and appends what they register to a
// Collection.
type Loader struct {
	coll     *Collection
	backends map[string]Backend
	exts     []string
}

// NewLoader returns a Loader with no backends that appends into coll.
func NewLoader(coll *Collection) *Loader {
	return &Loader{coll: coll, backends: make(map[string]Backend)}
}

// AddBackend routes files with extension ext (including the dot) to b.
// Adding the same extension again replaces the earlier backend.
func (l *Loader) AddBackend(ext string, b Backend) {
	ext = strings.ToLower(ext)
	if _, ok := l.backends[ext]; !ok {
		l.exts = append(l.exts, ext)
	}
	l.backends[ext] = b
}

// Collection returns the collection the loader appends into.
func (l *Loader) Collection() *Collection { return l.coll }

func (l *Loader) backendFor(path string) (Backend, bool) {
	b, ok := l.backends[strings.ToLower(filepath.Ext(path))]
	return b, ok
}

// Load opens the library at path, checks its declaration and registers its
// plugins. The returned instances have already been appended to the
// collection. On error nothing is appended and the library is closed.
func (l *Loader) Load(path string) ([]*Instance, error) {
	instances, err := l.load(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	l.coll.Append(instances...)
	for _, in := range instances {
		slog.Info("plugin loaded", "plugin", in.name, "path", path, "backend", in.handle.backend)
	}
	return instances, nil
}

func (l *Loader) load(path string) ([]*Instance, error) {
	b, ok := l.backendFor(path)
	if !ok {
		return nil, loadFailed("no backend for %q files", filepath.Ext(path))
	}

	lib, err := b.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	h := newHandle(path, b.Name(), lib)
	// The loader's own reference. Registered instances hold theirs, so the
	// library stays mapped only if something was registered.
	defer func() {
		if err := h.release(); err != nil {
			slog.Warn("closing plugin library failed", "path", path, "err", err)
		}
	}()

	decl, err := lib.Declaration()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if decl == nil {
		return nil, loadFailed("declaration is nil")
	}
	if err := CheckCompatible(b.Compiler(), decl); err != nil {
		return nil, err
	}
	if decl.Register == nil {
		return nil, loadFailed("declaration has no register function")
	}

	instances, err := newRegistrar(h).run(decl.Register)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, loadFailed("library registered no plugins")
	}
	return instances, nil
}

// CheckCompatible compares a declaration's tags with the host's. The core
// version is checked first since it is the more useful message.
func CheckCompatible(compiler string, decl *sdk.Declaration) error {
	if decl.CoreVersion != sdk.CoreVersion {
		return &VersionError{Tag: "core version", Want: sdk.CoreVersion, Got: decl.CoreVersion}
	}
	if decl.Compiler != compiler {
		return &VersionError{Tag: "compiler", Want: compiler, Got: decl.Compiler}
	}
	return nil
}

// DirResult summarises a LoadDir call.
type DirResult struct {
	Loaded []*Instance
	Failed []error
}

// LoadDir loads every file in dir that a backend handles, in name order.
// A library that fails to load is logged and skipped. The error is non-nil
// only when dir itself cannot be read; a missing directory loads nothing.
func (l *Loader) LoadDir(dir string) (DirResult, error) {
	var res DirResult

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("plugin directory does not exist", "dir", dir)
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read plugin directory: %w", err)
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			continue
		}
		if _, ok := l.backendFor(path); !ok {
			slog.Debug("skipping file with unknown extension", "path", path)
			continue
		}
		instances, err := l.Load(path)
		if err != nil {
			slog.Error("plugin rejected", "path", path, "err", err)
			res.Failed = append(res.Failed, err)
			continue
		}
		res.Loaded = append(res.Loaded, instances...)
	}
	return res, nil
}

// Find resolves a plugin given by name in dir. An exact file name wins;
// otherwise each registered extension is tried in the order backends were
// added.
func (l *Loader) Find(dir, name string) (string, error) {
	if name == "" || strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		return "", fmt.Errorf("invalid plugin name %q", name)
	}

	candidates := []string{name}
	if _, ok := l.backendFor(name); !ok {
		exts := append([]string(nil), l.exts...)
		sort.SliceStable(exts, func(i, j int) bool {
			// The platform library wins over scripts of the same name.
			return exts[i] == LibraryExt && exts[j] != LibraryExt
		})
		candidates = candidates[:0]
		for _, ext := range exts {
			candidates = append(candidates, name+ext)
		}
	}

	for _, c := range candidates {
		path := filepath.Join(dir, c)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("plugin %q not found in %s: %w", name, dir, fs.ErrNotExist)
}
