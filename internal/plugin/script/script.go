// Package script loads plugins written in Lua.
//
// A script is run once when loaded and must leave a global table behind:
//
//	autoclip_plugin_declaration = {
//	  compiler = "lua5.1/gopher-lua",
//	  core_version = "v0.1.0",
//	  register = function(registrar)
//	    registrar:register("name", function(text) return nil end)
//	  end,
//	}
//
// A plugin function returns the replacement string, or nil for no change.
// Each script gets its own interpreter with only the base, table, string and
// math libraries opened.
package script

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"go.klb.dev/autoclip/internal/plugin"
	"go.klb.dev/autoclip/sdk"
)

// Compiler is the compiler tag scripts must declare.
const Compiler = "lua5.1/gopher-lua"

// DefaultTimeout bounds a single call into a script.
const DefaultTimeout = 2 * time.Second

// Backend is the plugin.Backend for Lua scripts.
type Backend struct {
	timeout time.Duration
}

// New returns the Lua backend. A timeout of zero selects DefaultTimeout.
func New(timeout time.Duration) *Backend {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Backend{timeout: timeout}
}

func (*Backend) Name() string     { return "lua" }
func (*Backend) Compiler() string { return Compiler }

// Open runs the script at path in a fresh interpreter.
func (b *Backend) Open(path string) (plugin.Library, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	s := &library{L: L, timeout: b.timeout}
	err := s.withTimeout(func() error { return L.DoFile(path) })
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("run script: %w", err)
	}
	return s, nil
}

// library is one interpreter. gopher-lua states are not goroutine safe, so
// every entry into L holds mu.
type library struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
}

func (s *library) withTimeout(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()
	return fn()
}

func (s *library) Declaration() (*sdk.Declaration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, ok := s.L.GetGlobal(sdk.CDeclarationSymbol).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script does not define a %s table", sdk.CDeclarationSymbol)
	}

	decl := &sdk.Declaration{
		Compiler:    lua.LVAsString(tbl.RawGetString("compiler")),
		CoreVersion: lua.LVAsString(tbl.RawGetString("core_version")),
	}
	if fn, ok := tbl.RawGetString("register").(*lua.LFunction); ok {
		decl.Register = func(r sdk.Registrar) { s.register(fn, r) }
	}
	return decl, nil
}

// register calls the script's register function with a registrar table. A
// Lua error panics so the loader treats it like any failed registration.
func (s *library) register(fn *lua.LFunction, r sdk.Registrar) {
	s.mu.Lock()
	defer s.mu.Unlock()

	L := s.L
	reg := L.NewTable()
	L.SetField(reg, "register", L.NewFunction(func(L *lua.LState) int {
		// Accept both registrar:register(name, fn) and registrar.register(name, fn).
		arg := 1
		if L.Get(1) == reg {
			arg = 2
		}
		name := L.CheckString(arg)
		f := L.CheckFunction(arg + 1)
		r.Register(name, &scriptPlugin{lib: s, name: name, fn: f})
		return 0
	}))

	err := s.withTimeout(func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, reg)
	})
	if err != nil {
		panic(fmt.Errorf("lua register: %w", err))
	}
}

func (s *library) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.Close()
	return nil
}

type scriptPlugin struct {
	lib  *library
	name string
	fn   *lua.LFunction
}

// OnClip implements sdk.Plugin. Script errors are logged and count as no
// change.
func (p *scriptPlugin) OnClip(contents string) (string, bool) {
	out, ok, err := p.call(contents)
	if err != nil {
		slog.Warn("lua plugin failed", "plugin", p.name, "err", err)
		return "", false
	}
	return out, ok
}

func (p *scriptPlugin) call(contents string) (string, bool, error) {
	p.lib.mu.Lock()
	defer p.lib.mu.Unlock()

	L := p.lib.L
	err := p.lib.withTimeout(func() error {
		return L.CallByParam(lua.P{Fn: p.fn, NRet: 1, Protect: true}, lua.LString(contents))
	})
	if err != nil {
		return "", false, err
	}
	ret := L.Get(-1)
	L.Pop(1)

	if str, ok := ret.(lua.LString); ok {
		return string(str), true, nil
	}
	if lua.LVIsFalse(ret) {
		return "", false, nil
	}
	return "", false, fmt.Errorf("plugin returned a %s, want string or nil", ret.Type())
}
