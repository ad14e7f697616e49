package core

import (
	"sync"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	id      domain.RoomID
	mu      sync.RWMutex
	members map[domain.PeerID]SignalConnection
	stopped bool
}

func NewRoomService(id domain.RoomID) RoomService {
	return &roomImpl{
		id:      id,
		members: make(map[domain.PeerID]SignalConnection),
	}
}

func (r *roomImpl) ID() domain.RoomID { return r.id }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) AddMember(peer domain.PeerID, conn SignalConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.members[peer] = conn
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("peer", string(peer)).Str("conn", string(conn.ID())).Msg("member added")
	return true
}

func (r *roomImpl) RemoveMember(peer domain.PeerID, conn domain.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.members[peer]
	if !ok || cur.ID() != conn {
		return false
	}
	delete(r.members, peer)
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Str("peer", string(peer)).Msg("member removed")
	return true
}

// Broadcast sends data to every member except from. The member set is read
// under a single read lock.
func (r *roomImpl) Broadcast(from domain.PeerID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for peer, conn := range r.members {
		if peer == from {
			continue
		}
		if err := conn.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, Member{Peer: peer, Conn: conn})
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []domain.PeerID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.PeerID, 0, len(r.members))
	for peer := range r.members {
		out = append(out, peer)
	}
	return out
}

func (r *roomImpl) StopIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return false
	}
	r.stopped = true
	return true
}
