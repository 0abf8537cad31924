//go:build darwin || windows || (linux && (amd64 || arm64))

package native

import (
	"log/slog"
	"sync"

	"github.com/ebitengine/purego"

	"go.klb.dev/autoclip/sdk"
)

var (
	callbackOnce sync.Once
	callbackPtr  uintptr
)

// registerCallback is the autoclip_register_fn handed to every library. It
// is created once: callbacks are never freed.
func registerCallback() uintptr {
	callbackOnce.Do(func() {
		callbackPtr = purego.NewCallback(onRegister)
	})
	return callbackPtr
}

func onRegister(id, name, onClip, freeResult uintptr) uintptr {
	n := goString(name)
	r, ok := lookupRegistrar(id)
	if !ok {
		slog.Warn("C plugin registered outside its register call, ignoring", "plugin", n)
		return 0
	}
	if onClip == 0 {
		slog.Warn("C plugin registered without on_clip, ignoring", "plugin", n)
		return 0
	}
	r.Register(n, newCPlugin(onClip, freeResult))
	return 0
}

// callRegister runs a library's register_plugin with r reachable through
// the callback for the duration of the call.
func callRegister(fn uintptr, r sdk.Registrar) {
	var register func(registrar, callback uintptr)
	purego.RegisterFunc(&register, fn)

	id := addRegistrar(r)
	defer removeRegistrar(id)
	register(id, registerCallback())
}

type cPlugin struct {
	onClip func(contents string) uintptr
	free   func(result uintptr)
}

func newCPlugin(onClip, free uintptr) *cPlugin {
	p := &cPlugin{}
	purego.RegisterFunc(&p.onClip, onClip)
	if free != 0 {
		purego.RegisterFunc(&p.free, free)
	}
	return p
}

// OnClip implements sdk.Plugin. A NULL result means no change.
func (p *cPlugin) OnClip(contents string) (string, bool) {
	res := p.onClip(contents)
	if res == 0 {
		return "", false
	}
	out := goString(res)
	if p.free != nil {
		p.free(res)
	}
	return out, true
}
