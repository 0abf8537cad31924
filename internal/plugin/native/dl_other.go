//go:build !(darwin || windows || (linux && (amd64 || arm64)))

package native

import (
	"errors"
	"fmt"
	"runtime"
)

func dlopen(string) (*library, error) {
	return nil, fmt.Errorf("C plugins on %s/%s: %w", runtime.GOOS, runtime.GOARCH, errors.ErrUnsupported)
}
