package orch

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/metrics"
	"github.com/dkeye/Relay/internal/protocol"
)

type State int

const (
	StateConnecting State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the lifecycle of one transport connection:
// Connecting -> Joined -> Closed. It is driven by Run; Close may be called
// from anywhere and is idempotent.
type Session struct {
	o       *Orchestrator
	conn    core.SignalConnection
	urlRoom domain.RoomID
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu    sync.Mutex
	state State
	peer  domain.PeerID
	room  domain.RoomID
}

// NewSession wraps an accepted connection. urlRoom is the room named in the
// upgrade URL; it may be empty.
func (o *Orchestrator) NewSession(conn core.SignalConnection, urlRoom domain.RoomID) *Session {
	s := &Session{
		o:       o,
		conn:    conn,
		urlRoom: urlRoom,
		logger: log.With().
			Str("module", "orch.session").
			Str("conn", string(conn.ID())).
			Str("url_room", string(urlRoom)).
			Logger(),
	}
	if o.RateLimit > 0 {
		burst := o.RateBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(o.RateLimit), burst)
	}
	o.Metrics.Inc(metrics.EventConnOpened)
	return s
}

// Run processes inbound frames in arrival order until in is closed or ctx
// is done, then closes the session.
func (s *Session) Run(ctx context.Context, in <-chan core.Frame) {
	defer s.Close()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("session ctx done")
			return
		case data, ok := <-in:
			if !ok {
				return
			}
			s.Handle(data)
		}
	}
}

// Handle processes one inbound frame to completion.
func (s *Session) Handle(data core.Frame) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.o.Metrics.Inc(metrics.EventRateLimited)
		s.logger.Warn().Msg("rate limited, envelope dropped")
		return
	}

	env, err := protocol.Decode(data)
	if err != nil {
		s.o.Metrics.Inc(metrics.EventMalformed)
		s.logger.Debug().Err(err).Msg("envelope dropped")
		return
	}

	switch env.Type {
	case protocol.TypeJoin:
		s.handleJoin(env.Join)
	case protocol.TypeSignal:
		s.handleSignal(env.Signal)
	}
}

func (s *Session) handleJoin(j *protocol.Join) {
	peer := domain.PeerID(j.PeerID)
	room := domain.RoomID(j.Room)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateJoined:
		s.o.Metrics.Inc(metrics.EventJoinRejected)
		s.logger.Warn().Str("peer", string(peer)).Str("bound_peer", string(s.peer)).Msg("second join rejected")
		return
	case StateClosed:
		return
	case StateConnecting:
	}

	if s.o.StrictRoom && s.urlRoom != "" && room != s.urlRoom {
		s.o.Metrics.Inc(metrics.EventJoinRejected)
		s.logger.Warn().Str("peer", string(peer)).Str("room", string(room)).Msg("join room does not match url room")
		return
	}

	s.o.Join(s.conn, peer, room)
	s.peer = peer
	s.room = room
	s.state = StateJoined
	s.logger = s.logger.With().Str("peer", string(peer)).Str("room", string(room)).Logger()
}

func (s *Session) handleSignal(sig *protocol.Signal) {
	if s.State() != StateJoined {
		s.o.Metrics.Inc(metrics.EventNotJoined)
		s.logger.Debug().Msg("signal before join dropped")
		return
	}
	s.o.Signal(sig)
}

// Close moves the session to Closed and releases its registry entries.
// The transport itself stays with the adapter.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	if s.state == StateJoined {
		s.o.Leave(s.conn, s.peer, s.room)
	}
	s.state = StateClosed
	s.o.Metrics.Inc(metrics.EventConnClosed)
	s.logger.Info().Msg("session closed")
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Peer returns the bound identity, empty until joined.
func (s *Session) Peer() domain.PeerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peer
}
