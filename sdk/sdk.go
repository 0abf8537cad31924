// Package sdk is the contract shared by the autoclip host and its plugins.
//
// A Go plugin is a main package built with -buildmode=plugin that exports a
// package-level variable named PluginDeclaration:
//
//	var PluginDeclaration = sdk.Declare(func(r sdk.Registrar) {
//		r.Register("amazon", sdk.Func(rewrite))
//	})
//
// Plugins written against the C ABI export autoclip_plugin_declaration with
// the layout described in autoclip.h.
//
// Any change to the shape of Declaration, Registrar or Plugin must bump
// CoreVersion: host and plugin are built separately and the host refuses a
// declaration whose tags differ from its own.
package sdk

import "runtime"

// CoreVersion is the contract version tag. The host rejects plugins declaring
// any other value.
const CoreVersion = "v0.1.0"

// Symbol names the host looks up in a loaded library.
const (
	DeclarationSymbol  = "PluginDeclaration"
	CDeclarationSymbol = "autoclip_plugin_declaration"
)

// Compiler identifies the toolchain a Go plugin was built with.
var Compiler = runtime.Compiler + "/" + runtime.Version()

// CCompiler is the compiler tag C-ABI plugins must declare: the ABI is fixed
// per platform, not per compiler.
var CCompiler = "c-abi/" + runtime.GOOS + "-" + runtime.GOARCH

// Plugin is implemented by every registered plugin instance.
type Plugin interface {
	// OnClip is called with the new clipboard text. It returns the
	// replacement and true, or false when the plugin does not apply. The
	// input must never be returned as a replacement.
	OnClip(contents string) (string, bool)
}

// Func adapts an ordinary function to Plugin.
type Func func(contents string) (string, bool)

// OnClip calls f.
func (f Func) OnClip(contents string) (string, bool) { return f(contents) }

// Registrar is the only host capability a plugin receives. Register may be
// called any number of times during the registration call; calls made after
// it returns are ignored.
type Registrar interface {
	Register(name string, p Plugin)
}

// Declaration is the record a plugin exports for the host to find.
type Declaration struct {
	Compiler    string
	CoreVersion string
	Register    func(Registrar)
}

// Declare returns a Declaration carrying the tags of the sdk the plugin was
// compiled against.
func Declare(register func(Registrar)) Declaration {
	return Declaration{
		Compiler:    Compiler,
		CoreVersion: CoreVersion,
		Register:    register,
	}
}
