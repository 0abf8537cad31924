//go:build darwin || (linux && (amd64 || arm64))

package native

import (
	"fmt"

	"github.com/ebitengine/purego"
)

func dlopen(path string) (*library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen: %w", err)
	}
	return &library{
		lookup: func(name string) (uintptr, error) { return purego.Dlsym(h, name) },
		close:  func() error { return purego.Dlclose(h) },
	}, nil
}
