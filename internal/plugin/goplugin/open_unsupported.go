//go:build !((linux || darwin || freebsd) && cgo)

package goplugin

import (
	"errors"
	"fmt"
	"runtime"

	"go.klb.dev/autoclip/internal/plugin"
)

func open(string) (plugin.Library, error) {
	return nil, fmt.Errorf("go plugins on %s/%s without cgo: %w", runtime.GOOS, runtime.GOARCH, errors.ErrUnsupported)
}
