//go:build darwin || linux || windows

package clip

import (
	"fmt"

	"golang.design/x/clipboard"
)

type systemBackend struct {
	name string
}

// openSystem initialises golang.design/x/clipboard. It is called from Open
// rather than init() so sub-commands that never touch the clipboard work on
// headless hosts.
func openSystem(name string) (*systemBackend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &systemBackend{name: name}, nil
}

func (b *systemBackend) Name() string { return b.name }

func (b *systemBackend) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (b *systemBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *systemBackend) Close() {}
