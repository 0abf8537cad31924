package plugin

import (
	"log/slog"
	"sync/atomic"

	"go.klb.dev/autoclip/sdk"
)

// Library is a loaded plugin library as seen through one backend.
type Library interface {
	// Declaration reads the declaration record the library exports under
	// the backend's well-known symbol.
	Declaration() (*sdk.Declaration, error)

	// Close unmaps the library. It is called once, after every instance
	// registered from it has been dropped.
	Close() error
}

// Backend opens libraries of one kind (Go plugin, C ABI, Lua script).
type Backend interface {
	// Name is a short identifier reported in logs and status output.
	Name() string

	// Compiler is the compiler tag declarations must carry to be accepted.
	Compiler() string

	Open(path string) (Library, error)
}

// Handle keeps a library mapped for as long as any instance registered from
// it is alive.
type Handle struct {
	path    string
	backend string
	lib     Library
	refs    atomic.Int32
}

func newHandle(path, backend string, lib Library) *Handle {
	h := &Handle{path: path, backend: backend, lib: lib}
	h.refs.Store(1)
	return h
}

// Path is the file the library was loaded from.
func (h *Handle) Path() string { return h.path }

// Backend names the backend that opened the library.
func (h *Handle) Backend() string { return h.backend }

func (h *Handle) retain() *Handle {
	h.refs.Add(1)
	return h
}

// release drops one reference and closes the library when it was the last.
func (h *Handle) release() error {
	n := h.refs.Add(-1)
	switch {
	case n > 0:
		return nil
	case n < 0:
		slog.Error("plugin handle released too many times", "path", h.path)
		return nil
	}
	slog.Debug("plugin library closed", "path", h.path, "backend", h.backend)
	return h.lib.Close()
}
