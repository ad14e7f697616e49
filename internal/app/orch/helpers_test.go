package orch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/metrics"
)

var (
	errFakeFull   = errors.New("fake queue full")
	errFakeClosed = errors.New("fake conn closed")
)

// fakeConn records every frame it accepts.
type fakeConn struct {
	id domain.ConnID

	mu     sync.Mutex
	frames []string
	full   bool
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: domain.ConnID(id)}
}

func (c *fakeConn) ID() domain.ConnID { return c.id }

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errFakeClosed
	}
	if c.full {
		return errFakeFull
	}
	c.frames = append(c.frames, string(f))
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) Frames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.frames...)
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newTestOrch() *Orchestrator {
	return &Orchestrator{
		Registry:   app.NewRegistry(),
		Rooms:      app.NewRoomManager(),
		Policy:     app.DropPolicy{},
		Metrics:    metrics.New(),
		StrictRoom: true,
	}
}

func joinFrame(room, peer string) core.Frame {
	return core.Frame(fmt.Sprintf(`{"type":"join","room":%q,"peer_id":%q}`, room, peer))
}

func signalFrame(from, to, room, content string) core.Frame {
	return core.Frame(fmt.Sprintf(`{"type":"signal","from":%q,"to":%q,"room_id":%q,"content":%q}`, from, to, room, content))
}

func newUser(peer string) string {
	return fmt.Sprintf(`{"type":"new-user","from":%q}`, peer)
}

// joined opens a session on a fresh fake connection and joins it.
func joined(o *Orchestrator, connID, room, peer string) (*Session, *fakeConn) {
	c := newFakeConn(connID)
	s := o.NewSession(c, domain.RoomID(room))
	s.Handle(joinFrame(room, peer))
	return s, c
}

func members(o *Orchestrator, room string) []domain.PeerID {
	r, ok := o.Rooms.Get(domain.RoomID(room))
	if !ok {
		return nil
	}
	return r.MembersSnapshot()
}
