//go:build windows

package clip

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var procGetClipboardSequenceNumber = windows.NewLazySystemDLL("user32.dll").NewProc("GetClipboardSequenceNumber")

type windowsBackend struct {
	*systemBackend
}

// Open returns the Windows clipboard backend.
func Open() (Backend, error) {
	sys, err := openSystem("Windows Clipboard")
	if err != nil {
		return nil, err
	}
	if err := procGetClipboardSequenceNumber.Find(); err != nil {
		return nil, fmt.Errorf("GetClipboardSequenceNumber: %w", err)
	}
	return &windowsBackend{sys}, nil
}

// ChangeCount returns the clipboard sequence number.
func (b *windowsBackend) ChangeCount() (int64, error) {
	n, _, _ := procGetClipboardSequenceNumber.Call()
	return int64(uint32(n)), nil
}
