//go:build darwin

package clip

import "go.klb.dev/autoclip/internal/platform"

type darwinBackend struct {
	*systemBackend
}

// Open returns the macOS clipboard backend.
func Open() (Backend, error) {
	sys, err := openSystem("macOS NSPasteboard")
	if err != nil {
		return nil, err
	}
	return &darwinBackend{sys}, nil
}

// ChangeCount returns NSPasteboard's changeCount.
func (b *darwinBackend) ChangeCount() (int64, error) {
	return platform.ChangeCount()
}
