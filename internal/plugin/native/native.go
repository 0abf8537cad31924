// Package native opens plugins written against the C ABI in sdk/autoclip.h.
//
// Libraries are mapped with dlopen (purego) or LoadLibrary (x/sys/windows),
// so the host needs no cgo to load them.
package native

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"go.klb.dev/autoclip/internal/plugin"
	"go.klb.dev/autoclip/sdk"
)

// maxCString bounds how far goString scans for a terminator.
const maxCString = 64 << 20

// cDeclaration mirrors autoclip_plugin_declaration_t.
type cDeclaration struct {
	compiler    uintptr
	coreVersion uintptr
	register    uintptr
}

// Backend is the plugin.Backend for C-ABI libraries.
type Backend struct{}

// New returns the C-ABI backend.
func New() *Backend { return &Backend{} }

func (*Backend) Name() string     { return "c" }
func (*Backend) Compiler() string { return sdk.CCompiler }

// Open maps the library at path.
func (*Backend) Open(path string) (plugin.Library, error) {
	return dlopen(path)
}

type library struct {
	lookup func(name string) (uintptr, error)
	close  func() error
}

func (l *library) Declaration() (*sdk.Declaration, error) {
	addr, err := l.lookup(sdk.CDeclarationSymbol)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", sdk.CDeclarationSymbol, err)
	}
	return readDeclaration(addr)
}

func (l *library) Close() error { return l.close() }

// readDeclaration copies the tags out of the record at addr. Register is
// left nil when the library exports no register function.
func readDeclaration(addr uintptr) (*sdk.Declaration, error) {
	if addr == 0 {
		return nil, errors.New("declaration symbol has a nil address")
	}
	raw := *(*cDeclaration)(unsafe.Pointer(addr))

	decl := &sdk.Declaration{
		Compiler:    goString(raw.compiler),
		CoreVersion: goString(raw.coreVersion),
	}
	if raw.register != 0 {
		fn := raw.register
		decl.Register = func(r sdk.Registrar) { callRegister(fn, r) }
	}
	return decl, nil
}

// goString copies a NUL-terminated C string.
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	ptr := unsafe.Pointer(p)
	n := 0
	for n < maxCString && *(*byte)(unsafe.Add(ptr, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}

// Registrars are passed to C as opaque ids so no Go pointer crosses the
// boundary.
var registrars = struct {
	sync.Mutex
	next uintptr
	m    map[uintptr]sdk.Registrar
}{m: make(map[uintptr]sdk.Registrar)}

func addRegistrar(r sdk.Registrar) uintptr {
	registrars.Lock()
	defer registrars.Unlock()
	registrars.next++
	registrars.m[registrars.next] = r
	return registrars.next
}

func removeRegistrar(id uintptr) {
	registrars.Lock()
	defer registrars.Unlock()
	delete(registrars.m, id)
}

func lookupRegistrar(id uintptr) (sdk.Registrar, bool) {
	registrars.Lock()
	defer registrars.Unlock()
	r, ok := registrars.m[id]
	return r, ok
}
