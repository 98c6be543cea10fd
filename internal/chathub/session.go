// Package chathub is the real-time messaging core: the connection registry,
// the pub/sub backbone abstraction, the friendship gate, and the per-session
// relay tying them together.
package chathub

import "errors"

// ErrSessionClosed is returned by Send once a session can no longer accept
// writes, either because its outbound buffer is full (slow consumer) or
// because it has been closed.
var ErrSessionClosed = errors.New("session closed or not accepting writes")

// Session is one live transport connection admitted into exactly one room.
// It abstracts the underlying transport so the registry and relay can be
// tested without a real websocket.
type Session interface {
	// UserID returns the identifier of the user the session authenticated as.
	UserID() string

	// ReadFrame blocks until the next raw client frame or a transport error.
	// After Close it returns promptly with an error.
	ReadFrame() ([]byte, error)

	// Send enqueues a payload for delivery without blocking. A session that
	// cannot keep up returns ErrSessionClosed and is evicted by the registry.
	Send(payload []byte) error

	// Close releases the transport. Safe to call more than once.
	Close()
}
