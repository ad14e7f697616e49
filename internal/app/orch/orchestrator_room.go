package orch

import (
	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/metrics"
	"github.com/dkeye/Relay/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Join binds conn to peer, adds peer to room and announces it to every other
// member. The joiner itself is told nothing.
func (o *Orchestrator) Join(conn core.SignalConnection, peer domain.PeerID, roomID domain.RoomID) {
	unlock := o.lockPeer(peer)
	prev, replaced := o.Registry.Register(app.Binding{Peer: peer, Room: roomID, Conn: conn})
	if replaced && prev.Room != roomID {
		o.removeFromRoom(prev.Room, peer, prev.Conn.ID())
	}

	var room core.RoomService
	for {
		room = o.Rooms.GetOrCreate(roomID)
		if room.AddMember(peer, conn) {
			break
		}
	}
	unlock()

	o.Metrics.Inc(metrics.EventJoin)
	log.Info().Str("module", "orch").Str("peer", string(peer)).Str("room", string(roomID)).Msg("joined")

	frame, err := protocol.NewUserFrame(string(peer))
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode new-user")
		return
	}
	res := room.Broadcast(peer, frame)
	o.Metrics.Add(metrics.EventAnnounceSent, uint64(res.SendTo))
	for _, m := range res.Dropped {
		o.onDeliveryFailure(m.Peer, m.Conn, ErrAnnounceDropped)
	}
}

// Leave undoes Join for conn. It is a no-op for whatever part of the state
// has already been taken over by a newer connection of the same peer.
func (o *Orchestrator) Leave(conn core.SignalConnection, peer domain.PeerID, roomID domain.RoomID) {
	unlock := o.lockPeer(peer)
	_, unbound := o.Registry.Unregister(peer, conn.ID())
	removed := o.removeFromRoom(roomID, peer, conn.ID())
	unlock()

	if !unbound && !removed {
		log.Info().Str("module", "orch").Str("peer", string(peer)).Str("conn", string(conn.ID())).Msg("leave of superseded connection")
		return
	}
	o.Metrics.Inc(metrics.EventLeave)
	log.Info().Str("module", "orch").Str("peer", string(peer)).Str("room", string(roomID)).Msg("left")
}

func (o *Orchestrator) removeFromRoom(roomID domain.RoomID, peer domain.PeerID, conn domain.ConnID) bool {
	room, ok := o.Rooms.Get(roomID)
	if !ok || !room.RemoveMember(peer, conn) {
		return false
	}
	o.Rooms.PruneIfEmpty(roomID)
	return true
}
