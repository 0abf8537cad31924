// Package goplugin opens plugins built with go build -buildmode=plugin.
//
// The runtime only loads a plugin built by the same toolchain from the same
// versions of every shared package, so a compiler mismatch normally fails in
// Open before the declaration tags are ever compared.
package goplugin

import (
	"fmt"

	"go.klb.dev/autoclip/internal/plugin"
	"go.klb.dev/autoclip/sdk"
)

// Backend is the plugin.Backend for Go plugins.
type Backend struct{}

// New returns the Go plugin backend.
func New() *Backend { return &Backend{} }

func (*Backend) Name() string     { return "go" }
func (*Backend) Compiler() string { return sdk.Compiler }

// Open maps the plugin at path.
func (*Backend) Open(path string) (plugin.Library, error) {
	return open(path)
}

// declarationFrom accepts the exported variable as the runtime hands it out
// (a pointer) or a plain value.
func declarationFrom(sym any) (*sdk.Declaration, error) {
	switch v := sym.(type) {
	case *sdk.Declaration:
		if v == nil {
			return nil, fmt.Errorf("symbol %s is a nil pointer", sdk.DeclarationSymbol)
		}
		return v, nil
	case sdk.Declaration:
		return &v, nil
	default:
		return nil, fmt.Errorf("symbol %s has type %T, want sdk.Declaration", sdk.DeclarationSymbol, sym)
	}
}
