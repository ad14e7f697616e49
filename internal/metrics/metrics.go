package metrics

import "sync"

// Event names counted by the relay.
const (
	EventConnOpened       = "conn_opened"
	EventConnClosed       = "conn_closed"
	EventJoin             = "join"
	EventJoinRejected     = "join_rejected"
	EventLeave            = "leave"
	EventAnnounceSent     = "announce_sent"
	EventSignalDelivered  = "signal_delivered"
	EventSignalNoTarget   = "signal_no_target"
	EventSignalUnknownDst = "signal_unknown_target"
	EventDeliveryFailed   = "delivery_failed"
	EventMalformed        = "envelope_malformed"
	EventRateLimited      = "rate_limited"
	EventNotJoined        = "signal_before_join"
	EventKicked           = "kicked_slow_peer"
)

// Metrics is a concurrency-safe counter registry. A nil *Metrics is valid
// and counts nothing.
type Metrics struct {
	mu sync.Mutex
	m  map[string]uint64
}

func New() *Metrics {
	return &Metrics{
		m: make(map[string]uint64),
	}
}

func (m *Metrics) Inc(name string) {
	m.Add(name, 1)
}

func (m *Metrics) Add(name string, n uint64) {
	if m == nil || n == 0 {
		return
	}
	m.mu.Lock()
	m.m[name] += n
	m.mu.Unlock()
}

func (m *Metrics) Get(name string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m[name]
}

func (m *Metrics) Snapshot() map[string]uint64 {
	if m == nil {
		return map[string]uint64{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.m))
	for k, v := range m.m {
		out[k] = v
	}
	return out
}
