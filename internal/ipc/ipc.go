// Package ipc locates the local socket a running autoclip daemon serves its
// control API on. CLI sub-commands (status) probe for it to reach the
// daemon.
package ipc

import (
	"context"
	"net"
	"os"
	"time"
)

// SocketPath returns the platform-appropriate path for the control socket.
//
//   - Linux / macOS: $XDG_RUNTIME_DIR/autoclip.sock, else $TMPDIR/autoclip.sock
//   - Windows:       \\.\pipe\autoclip
//
// $AUTOCLIP_SOCKET overrides both.
func SocketPath() string {
	if s := os.Getenv("AUTOCLIP_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a daemon appears to be listening on the control
// socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	c, err := Dial(ctx)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on the control socket, removing any stale socket
// file first.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to the control socket.
func Dial(ctx context.Context) (net.Conn, error) {
	return dialIPC(ctx, SocketPath())
}
