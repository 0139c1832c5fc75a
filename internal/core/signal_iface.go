package core

import "errors"

// Frame is a raw encoded event payload.
type Frame []byte

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
// TrySend must never block: it either queues the frame or returns
// ErrBackpressure / ErrConnClosed.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
