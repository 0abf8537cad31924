// Package platform exposes the pasteboard metadata autoclip needs beyond
// plain text: the set of type identifiers on the clipboard and, where the
// OS keeps one, a change counter.
package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupported is returned on platforms without pasteboard types.
var ErrUnsupported = fmt.Errorf("pasteboard types on %s: %w", runtime.GOOS, errors.ErrUnsupported)

// DefaultIgnoredTypes are pasteboard types that mark content as private or
// transient. Password managers set them on copied secrets.
var DefaultIgnoredTypes = []string{
	"com.agilebits.onepassword",
	"com.typeit4me.clipping",
	"de.petermaurer.TransientPasteboardType",
	"net.antelle.keeweb",
}
