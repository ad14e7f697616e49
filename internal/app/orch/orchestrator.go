package orch

import (
	"hash/maphash"
	"sync"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Orchestrator routes envelopes between joined peers. It owns no
// transport; handles are reached only through core.SignalConnection.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomFactory
	Policy   app.Policy
	Metrics  *metrics.Metrics

	// StrictRoom rejects joins whose room differs from the URL room.
	StrictRoom bool
	// RateLimit is inbound envelopes per second per connection; 0 disables.
	RateLimit float64
	RateBurst int

	peerLocks [peerLockStripes]sync.Mutex
}

const peerLockStripes = 64

var peerLockSeed = maphash.MakeSeed()

// lockPeer serialises registry and room updates for one peer id, so the
// registry binding and the room entry of a peer always name the same
// connection. Locks are striped; callers must never hold two at once.
func (o *Orchestrator) lockPeer(peer domain.PeerID) (unlock func()) {
	mu := &o.peerLocks[maphash.String(peerLockSeed, string(peer))%peerLockStripes]
	mu.Lock()
	return mu.Unlock
}

// onDeliveryFailure handles a frame the target queue refused. The frame is
// gone; only the policy decides whether the target stays connected.
func (o *Orchestrator) onDeliveryFailure(peer domain.PeerID, conn core.SignalConnection, err error) {
	o.Metrics.Inc(metrics.EventDeliveryFailed)
	log.Warn().Err(err).Str("module", "orch").Str("peer", string(peer)).Str("conn", string(conn.ID())).Msg("delivery dropped")
	if o.Policy == nil {
		return
	}
	switch o.Policy.OnBackPressure(peer, conn) {
	case app.KickMember:
		o.Metrics.Inc(metrics.EventKicked)
		log.Info().Str("module", "orch").Str("peer", string(peer)).Msg("kicking slow peer")
		conn.Close()
	case app.DropFrame:
	}
}
