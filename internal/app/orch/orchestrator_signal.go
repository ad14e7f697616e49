package orch

import (
	"errors"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/metrics"
	"github.com/dkeye/Relay/internal/protocol"
	"github.com/rs/zerolog/log"
)

var ErrAnnounceDropped = errors.New("announcement dropped")

// Signal delivers sig to its addressed peer only. Signals without a target
// or to an unknown peer are dropped; the sender is never told.
func (o *Orchestrator) Signal(sig *protocol.Signal) {
	to := domain.PeerID(sig.Target())
	if to == "" {
		o.Metrics.Inc(metrics.EventSignalNoTarget)
		log.Debug().Str("module", "orch").Str("from", sig.From).Msg("signal without target dropped")
		return
	}

	b, ok := o.Registry.Lookup(to)
	if !ok {
		o.Metrics.Inc(metrics.EventSignalUnknownDst)
		log.Debug().Str("module", "orch").Str("from", sig.From).Str("to", string(to)).Msg("signal to unknown peer dropped")
		return
	}

	frame, err := protocol.Encode(protocol.Delivery{
		From:    sig.From,
		To:      string(to),
		RoomID:  sig.RoomID,
		Content: sig.Content,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode delivery")
		return
	}
	if err := b.Conn.TrySend(frame); err != nil {
		o.onDeliveryFailure(to, b.Conn, err)
		return
	}
	o.Metrics.Inc(metrics.EventSignalDelivered)
	log.Debug().Str("module", "orch").Str("from", sig.From).Str("to", string(to)).Str("room", sig.RoomID).Msg("signal delivered")
}
