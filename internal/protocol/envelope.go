// Package protocol defines the JSON envelopes exchanged over the signaling
// socket. Payload content is carried as an opaque string and never inspected.
package protocol

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/dkeye/Relay/internal/domain"
)

const (
	TypeJoin    = "join"
	TypeSignal  = "signal"
	TypeNewUser = "new-user"
)

var (
	ErrMalformed   = errors.New("malformed envelope")
	ErrUnknownType = errors.New("unknown envelope type")
)

var validate = validator.New()

// Join binds the sending connection to PeerID inside Room.
type Join struct {
	Room   string `json:"room" validate:"required"`
	PeerID string `json:"peer_id" validate:"required,max=128"`
}

// Signal is a unicast negotiation message. A nil To means no target.
type Signal struct {
	From    string  `json:"from" validate:"required,max=128"`
	To      *string `json:"to"`
	RoomID  string  `json:"room_id"`
	Content string  `json:"content"`
}

// Target returns the addressed peer, or "" when the signal has none.
func (s *Signal) Target() string {
	if s.To == nil {
		return ""
	}
	return *s.To
}

// Envelope is a decoded inbound message. Exactly one of Join/Signal is set.
type Envelope struct {
	Type   string
	Join   *Join
	Signal *Signal
}

// NewUser announces a freshly joined peer to the rest of its room.
type NewUser struct {
	Type string `json:"type"`
	From string `json:"from"`
}

// Delivery is what the addressed peer receives for a signal.
type Delivery struct {
	From    string `json:"from"`
	To      string `json:"to"`
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}

type header struct {
	Type string `json:"type"`
}

// joinWire also accepts the camelCase peerId spelling sent by browser clients.
type joinWire struct {
	Room      string `json:"room"`
	PeerID    string `json:"peer_id"`
	PeerIDAlt string `json:"peerId"`
}

// Decode parses one inbound text frame.
func Decode(data []byte) (Envelope, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch h.Type {
	case TypeJoin:
		var w joinWire
		if err := json.Unmarshal(data, &w); err != nil {
			return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		j := &Join{Room: w.Room, PeerID: w.PeerID}
		if j.PeerID == "" {
			j.PeerID = w.PeerIDAlt
		}
		if err := validate.Struct(j); err != nil {
			return Envelope{}, fmt.Errorf("%w: join: %v", ErrMalformed, err)
		}
		// Same rule as the URL room of the upgrade request.
		if err := domain.RoomID(j.Room).Validate(); err != nil {
			return Envelope{}, fmt.Errorf("%w: join: %v", ErrMalformed, err)
		}
		return Envelope{Type: TypeJoin, Join: j}, nil
	case TypeSignal:
		var s Signal
		if err := json.Unmarshal(data, &s); err != nil {
			return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if err := validate.Struct(&s); err != nil {
			return Envelope{}, fmt.Errorf("%w: signal: %v", ErrMalformed, err)
		}
		return Envelope{Type: TypeSignal, Signal: &s}, nil
	default:
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownType, h.Type)
	}
}

// Encode marshals an outbound message.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func NewUserFrame(peer string) ([]byte, error) {
	return Encode(NewUser{Type: TypeNewUser, From: peer})
}
