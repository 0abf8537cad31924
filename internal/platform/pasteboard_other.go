//go:build !darwin

package platform

// ClipboardTypes is unsupported outside macOS.
func ClipboardTypes() ([]string, error) { return nil, ErrUnsupported }

// ChangeCount is unsupported outside macOS.
func ChangeCount() (int64, error) { return 0, ErrUnsupported }
