package app

import (
	"fmt"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a peer whose outbound queue rejected a
// frame. The frame itself is always dropped and never retried.
type Policy interface {
	OnBackPressure(peer domain.PeerID, conn core.SignalConnection) BackpressureAction
}

// DropPolicy keeps slow peers connected.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.PeerID, core.SignalConnection) BackpressureAction {
	return DropFrame
}

// KickPolicy disconnects slow peers.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.PeerID, core.SignalConnection) BackpressureAction {
	return KickMember
}

// PolicyByName maps the backpressure config value to a Policy.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
