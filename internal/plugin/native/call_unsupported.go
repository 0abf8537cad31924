//go:build !(darwin || windows || (linux && (amd64 || arm64)))

package native

import (
	"log/slog"

	"go.klb.dev/autoclip/sdk"
)

// callRegister is unreachable here: dlopen already refuses every library on
// platforms without purego callbacks.
func callRegister(_ uintptr, _ sdk.Registrar) {
	slog.Error("C plugins are not supported on this platform")
}
