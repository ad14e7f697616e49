package app

import (
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Binding is the registry entry of one joined peer.
type Binding struct {
	Peer domain.PeerID
	Room domain.RoomID
	Conn core.SignalConnection
}

// Registry maps peer identities to the connection they joined on, across
// all rooms. An entry exists only between join and disconnect.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.PeerID]Binding
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.PeerID]Binding),
	}
}

// Register binds b.Peer to b.Conn. A previous binding for the same peer is
// overwritten (last writer wins) and returned.
func (r *Registry) Register(b Binding) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, replaced := r.sessions[b.Peer]
	r.sessions[b.Peer] = b
	ev := log.Info().Str("module", "app.registry").Str("peer", string(b.Peer)).Str("room", string(b.Room)).Str("conn", string(b.Conn.ID()))
	if replaced {
		ev = ev.Str("superseded_conn", string(prev.Conn.ID()))
	}
	ev.Msg("bound peer")
	return prev, replaced
}

// Unregister removes peer only if it is still bound to conn, so a
// superseded connection closing late cannot evict its replacement.
func (r *Registry) Unregister(peer domain.PeerID, conn domain.ConnID) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.sessions[peer]
	if !ok || b.Conn.ID() != conn {
		return Binding{}, false
	}
	delete(r.sessions, peer)
	log.Info().Str("module", "app.registry").Str("peer", string(peer)).Str("conn", string(conn)).Msg("unbound peer")
	return b, true
}

func (r *Registry) Lookup(peer domain.PeerID) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.sessions[peer]
	return b, ok
}

func (r *Registry) RoomOf(peer domain.PeerID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.sessions[peer]
	if !ok {
		return "", false
	}
	return b.Room, true
}

// Owns reports whether peer is currently bound to conn.
func (r *Registry) Owns(peer domain.PeerID, conn domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.sessions[peer]
	return ok && b.Conn.ID() == conn
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
