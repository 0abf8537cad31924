//go:build (linux || darwin || freebsd) && cgo

package goplugin

import (
	"fmt"
	stdplugin "plugin"

	"go.klb.dev/autoclip/internal/plugin"
	"go.klb.dev/autoclip/sdk"
)

type library struct {
	p *stdplugin.Plugin
}

func open(path string) (plugin.Library, error) {
	p, err := stdplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open go plugin: %w", err)
	}
	return &library{p: p}, nil
}

func (l *library) Declaration() (*sdk.Declaration, error) {
	sym, err := l.p.Lookup(sdk.DeclarationSymbol)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", sdk.DeclarationSymbol, err)
	}
	return declarationFrom(sym)
}

// Close is a no-op: the Go runtime never unloads a plugin.
func (l *library) Close() error { return nil }
