package plugin

import (
	"log/slog"
	"sync"

	"go.klb.dev/autoclip/sdk"
)

// registrar is handed to a single declaration's Register function. Every
// instance it creates keeps a reference on the library handle. Once the
// call returns the registrar is sealed and further registrations are dropped.
type registrar struct {
	handle *Handle

	mu        sync.Mutex
	sealed    bool
	instances []*Instance
}

func newRegistrar(h *Handle) *registrar {
	return &registrar{handle: h}
}

// Register implements sdk.Registrar.
func (r *registrar) Register(name string, p sdk.Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		slog.Warn("plugin registered after its register call returned, ignoring",
			"plugin", name, "path", r.handle.path)
		return
	}
	if p == nil {
		slog.Warn("plugin registered a nil instance, ignoring", "plugin", name, "path", r.handle.path)
		return
	}
	r.instances = append(r.instances, &Instance{
		name:   name,
		plugin: p,
		handle: r.handle.retain(),
	})
}

// run calls register and seals the registrar. A panic inside register is
// turned into an error and drops whatever was registered before it.
func (r *registrar) run(register func(sdk.Registrar)) (instances []*Instance, err error) {
	defer func() {
		rec := recover()

		r.mu.Lock()
		r.sealed = true
		instances = r.instances
		r.instances = nil
		r.mu.Unlock()

		if rec != nil {
			for _, in := range instances {
				_ = in.handle.release()
			}
			instances = nil
			err = loadFailed("register panicked: %v", rec)
		}
	}()

	register(r)
	return nil, nil
}
