package interfaces

import "time"

// -----------------------------------------------------------------------------
// IConnection is one client's outbound text channel.
// -----------------------------------------------------------------------------

type IConnection interface {

	// Send queues a text frame. It must not block on a slow peer.
	Send(text string) error

	// SendWait queues a text frame, waiting up to timeout for buffer space.
	SendWait(text string, timeout time.Duration) error

	// RemoteAddr is for diagnostics only.
	RemoteAddr() string

	// Close is idempotent.
	Close() error
}
