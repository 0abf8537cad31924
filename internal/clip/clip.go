// Package clip provides text access to the system clipboard. Build
// constraints select the implementation:
//
//	clip_system.go   golang.design/x/clipboard, shared by the desktop platforms
//	clip_darwin.go   NSPasteboard changeCount
//	clip_windows.go  GetClipboardSequenceNumber
//	clip_linux.go    no change counter, the caller compares text
//	clip_other.go    unavailable
package clip

import "errors"

// ErrUnavailable is returned by Open when the platform has no usable
// clipboard, e.g. a Linux host without a display.
var ErrUnavailable = errors.New("clipboard unavailable")

// Backend is the interface all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the clipboard's text, or "" when it holds no text.
	ReadText() (string, error)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error

	// Close releases any resources held by the backend.
	Close()
}

// ChangeCounter is implemented by backends that can tell cheaply whether
// the clipboard changed since the last look. The count only ever grows.
type ChangeCounter interface {
	ChangeCount() (int64, error)
}
