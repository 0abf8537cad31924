//go:build !darwin && !windows && !linux

package clip

import (
	"fmt"
	"runtime"
)

// Open always fails: there is no clipboard backend for this platform.
func Open() (Backend, error) {
	return nil, fmt.Errorf("%w on %s", ErrUnavailable, runtime.GOOS)
}
