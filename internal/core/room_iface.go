package core

import (
	"github.com/dkeye/Relay/internal/domain"
)

// Member is one room entry: a peer identity and the connection it joined on.
type Member struct {
	Peer domain.PeerID
	Conn SignalConnection
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []Member
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	ID() domain.RoomID
	MemberCount() int
	MembersSnapshot() []domain.PeerID

	// AddMember returns false if the room was stopped; callers fetch a
	// fresh room from the factory and retry.
	AddMember(peer domain.PeerID, conn SignalConnection) bool
	// RemoveMember removes peer only while it is still bound to conn.
	RemoveMember(peer domain.PeerID, conn domain.ConnID) bool
	Broadcast(from domain.PeerID, data Frame) PublishResult

	// StopIfEmpty marks an empty room as stopped. Stopped rooms reject
	// AddMember.
	StopIfEmpty() bool
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

type RoomFactory interface {
	GetOrCreate(id domain.RoomID) RoomService
	Get(id domain.RoomID) (RoomService, bool)
	List() []RoomInfo
	PruneIfEmpty(id domain.RoomID) bool
}
