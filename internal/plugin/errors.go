package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailed is returned when a library cannot be opened or does not
	// export a usable declaration.
	ErrLoadFailed = errors.New("plugin load failed")

	// ErrVersionMismatch is returned when a declaration's compiler or core
	// version tag differs from the host's.
	ErrVersionMismatch = errors.New("plugin version mismatch")
)

// LoadError records the library a load failure belongs to.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// VersionError describes which tag of a declaration did not match.
type VersionError struct {
	Tag  string // "compiler" or "core version"
	Want string
	Got  string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s mismatch: plugin has %q, host expects %q", e.Tag, e.Got, e.Want)
}

// Is lets errors.Is(err, ErrVersionMismatch) match.
func (e *VersionError) Is(target error) bool { return target == ErrVersionMismatch }

func loadFailed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrLoadFailed, fmt.Sprintf(format, args...))
}
