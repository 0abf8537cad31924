package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.klb.dev/autoclip/sdk"
)

// Instance is one registered plugin together with the library it came from.
type Instance struct {
	name   string
	plugin sdk.Plugin
	handle *Handle
}

// Name is the name the plugin registered under.
func (in *Instance) Name() string { return in.name }

// Path is the library the instance was registered from.
func (in *Instance) Path() string { return in.handle.path }

// Backend names the backend that loaded the instance's library.
func (in *Instance) Backend() string { return in.handle.backend }

// OnClip runs the plugin. A panic is logged and reported as "no change".
func (in *Instance) OnClip(text string) (out string, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("plugin panicked", "plugin", in.name, "path", in.handle.path, "panic", rec)
			out, ok = "", false
		}
	}()
	return in.plugin.OnClip(text)
}

// Collection is the ordered set of loaded plugin instances. Order is load
// order and decides which plugin wins a dispatch.
type Collection struct {
	mu        sync.RWMutex
	instances []*Instance
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Append adds instances after all existing ones. Duplicate names are kept.
func (c *Collection) Append(instances ...*Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, in := range instances {
		for _, have := range c.instances {
			if have.name == in.name {
				slog.Warn("duplicate plugin name, the earlier one takes precedence",
					"plugin", in.name, "path", in.handle.path, "earlier", have.handle.path)
				break
			}
		}
		c.instances = append(c.instances, in)
	}
}

// Instances returns a snapshot of the collection in dispatch order.
func (c *Collection) Instances() []*Instance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Instance, len(c.instances))
	copy(out, c.instances)
	return out
}

// Len returns the number of instances.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.instances)
}

// Dispatch offers text to each instance in order and returns the first
// replacement. A replacement equal to text does not count and dispatch moves
// on to the next instance.
func (c *Collection) Dispatch(text string) (string, bool) {
	for _, in := range c.Instances() {
		out, ok := in.OnClip(text)
		if !ok {
			continue
		}
		if out == text {
			slog.Debug("plugin returned its input unchanged, ignoring", "plugin", in.name)
			continue
		}
		slog.Debug("plugin matched", "plugin", in.name)
		return out, true
	}
	return "", false
}

// Close drops every instance, newest first, and unmaps libraries no longer
// referenced.
func (c *Collection) Close() error {
	c.mu.Lock()
	instances := c.instances
	c.instances = nil
	c.mu.Unlock()

	var errs []error
	for i := len(instances) - 1; i >= 0; i-- {
		if err := instances[i].handle.release(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", instances[i].handle.path, err))
		}
	}
	return errors.Join(errs...)
}
