package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/core/mock"
	"github.com/dkeye/Relay/internal/domain"
)

func newConn(ctrl *gomock.Controller, id string) *mock.MockSignalConnection {
	c := mock.NewMockSignalConnection(ctrl)
	c.EXPECT().ID().Return(domain.ConnID(id)).AnyTimes()
	return c
}

func TestRoomAddRemove(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := core.NewRoomService("lobby")
	a := newConn(ctrl, "c-a")
	b := newConn(ctrl, "c-b")

	require.True(t, room.AddMember("alice", a))
	require.True(t, room.AddMember("bob", b))
	assert.Equal(t, 2, room.MemberCount())
	assert.ElementsMatch(t, []domain.PeerID{"alice", "bob"}, room.MembersSnapshot())

	require.True(t, room.RemoveMember("alice", "c-a"))
	assert.False(t, room.RemoveMember("alice", "c-a"))
	assert.ElementsMatch(t, []domain.PeerID{"bob"}, room.MembersSnapshot())
}

func TestRoomRemoveIgnoresSupersededConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := core.NewRoomService("lobby")
	old := newConn(ctrl, "c-old")
	cur := newConn(ctrl, "c-new")

	require.True(t, room.AddMember("alice", old))
	require.True(t, room.AddMember("alice", cur))

	assert.False(t, room.RemoveMember("alice", "c-old"))
	assert.Equal(t, 1, room.MemberCount())
	assert.True(t, room.RemoveMember("alice", "c-new"))
	assert.Equal(t, 0, room.MemberCount())
}

func TestRoomBroadcastSkipsSenderAndReportsDrops(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := core.NewRoomService("lobby")
	frame := core.Frame(`{"type":"new-user","from":"carol"}`)

	alice := newConn(ctrl, "c-a")
	alice.EXPECT().TrySend(frame).Return(nil).Times(1)
	bob := newConn(ctrl, "c-b")
	bob.EXPECT().TrySend(frame).Return(errors.New("backpressure")).Times(1)
	carol := newConn(ctrl, "c-c")
	carol.EXPECT().TrySend(gomock.Any()).Times(0)

	room.AddMember("alice", alice)
	room.AddMember("bob", bob)
	room.AddMember("carol", carol)

	res := room.Broadcast("carol", frame)
	assert.Equal(t, 1, res.SendTo)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, domain.PeerID("bob"), res.Dropped[0].Peer)
}

func TestRoomStopIfEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := core.NewRoomService("lobby")
	a := newConn(ctrl, "c-a")

	require.True(t, room.AddMember("alice", a))
	assert.False(t, room.StopIfEmpty())

	room.RemoveMember("alice", "c-a")
	assert.True(t, room.StopIfEmpty())
	assert.False(t, room.AddMember("alice", a), "stopped room must reject members")
}
