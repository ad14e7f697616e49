// Package domain contains entity without logic, just meta-data
package domain

import "github.com/google/uuid"

// PeerID is the client-chosen identity bound to a connection on join.
type PeerID string

// ConnID identifies one accepted transport connection for its whole life.
type ConnID string

// NewConnID is a tiny helper to avoid ad-hoc uuid calls in adapters.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}
