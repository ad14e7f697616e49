package app

import (
	"fmt"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type stubConn struct{ id domain.ConnID }

func (c stubConn) ID() domain.ConnID        { return c.id }
func (c stubConn) TrySend(core.Frame) error { return nil }
func (c stubConn) Close()                   {}

func TestRegistryRegisterOverwrites(t *testing.T) {
	r := NewRegistry()

	_, replaced := r.Register(Binding{Peer: "alice", Room: "lobby", Conn: stubConn{"c1"}})
	require.False(t, replaced)

	prev, replaced := r.Register(Binding{Peer: "alice", Room: "other", Conn: stubConn{"c2"}})
	require.True(t, replaced)
	assert.Equal(t, domain.ConnID("c1"), prev.Conn.ID())
	assert.Equal(t, domain.RoomID("lobby"), prev.Room)

	b, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("c2"), b.Conn.ID())
	room, ok := r.RoomOf("alice")
	require.True(t, ok)
	assert.Equal(t, domain.RoomID("other"), room)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryUnregisterOnlyByOwner(t *testing.T) {
	r := NewRegistry()
	r.Register(Binding{Peer: "alice", Room: "lobby", Conn: stubConn{"c1"}})
	r.Register(Binding{Peer: "alice", Room: "lobby", Conn: stubConn{"c2"}})

	_, ok := r.Unregister("alice", "c1")
	assert.False(t, ok, "superseded connection must not evict its replacement")
	assert.True(t, r.Owns("alice", "c2"))

	_, ok = r.Unregister("alice", "c2")
	assert.True(t, ok)
	_, ok = r.Lookup("alice")
	assert.False(t, ok)
	_, ok = r.RoomOf("alice")
	assert.False(t, ok)
}

func TestRegistryConcurrentRegisterUnregister(t *testing.T) {
	r := NewRegistry()
	var wg conc.WaitGroup
	for i := 0; i < 64; i++ {
		i := i
		peer := domain.PeerID(fmt.Sprintf("peer-%d", i))
		conn := stubConn{domain.ConnID(fmt.Sprintf("c-%d", i))}
		wg.Go(func() {
			r.Register(Binding{Peer: peer, Room: "lobby", Conn: conn})
			_, _ = r.Lookup(peer)
			if i%2 == 0 {
				r.Unregister(peer, conn.id)
			}
		})
	}
	wg.Wait()
	assert.Equal(t, 32, r.Len())
}
