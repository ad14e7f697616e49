package core

//go:generate mockgen -source=signal_iface.go -destination=mock/signal_mock.go -package=mock

import "github.com/dkeye/Relay/internal/domain"

// Frame is a raw text payload.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	ID() domain.ConnID
	// TrySend enqueues f without blocking. It fails when the outbound
	// queue is full or the connection is closing.
	TrySend(f Frame) error
	Close()
}
