package domain

import "errors"

const MaxRoomIDLen = 128

var (
	ErrRoomIDEmpty   = errors.New("room id empty")
	ErrRoomIDTooLong = errors.New("room id too long")
)

type RoomID string

func (r RoomID) Validate() error {
	if len(r) == 0 {
		return ErrRoomIDEmpty
	}
	if len(r) > MaxRoomIDLen {
		return ErrRoomIDTooLong
	}
	return nil
}
