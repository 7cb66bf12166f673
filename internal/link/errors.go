package link

import "errors"

var (
	// ErrDeviceNotFound means discovery returned no matching rover. Surfaced
	// to the operator, never retried automatically.
	ErrDeviceNotFound = errors.New("no matching device found")

	// ErrLinkEstablishFailed means the handshake or characteristic
	// resolution failed after discovery. Surfaced, never retried.
	ErrLinkEstablishFailed = errors.New("failed establishing link")

	// ErrWriteFailed means the transport rejected or timed out a send. The
	// command is dropped and the session stays active.
	ErrWriteFailed = errors.New("link write failed")

	// ErrNotConnected means a send was attempted outside the active state.
	// Expected from event races around disconnect; callers stay silent.
	ErrNotConnected = errors.New("not connected")
)
