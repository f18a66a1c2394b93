package game

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalAction is matched by every IllegalActionError.
	ErrIllegalAction    = errors.New("illegal action")
	ErrGameFull         = errors.New("game is full")
	ErrAlreadySeated    = errors.New("player already seated")
	ErrSeatNotFound     = errors.New("seat not found")
	ErrNotBusted        = errors.New("seat still has chips")
	ErrSeatInHand       = errors.New("seat is active in the current hand")
	ErrHandInProgress   = errors.New("hand already in progress")
	ErrNotEnoughPlayers = errors.New("not enough funded players to start a hand")
	ErrInvalidConfig    = errors.New("invalid table configuration")
)

// IllegalActionError describes an action rejected by the betting rules. The
// Reason is suitable for showing to the acting player.
type IllegalActionError struct {
	SeatID string
	Action ActionType
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal %s by %s: %s", e.Action, e.SeatID, e.Reason)
}

func (e *IllegalActionError) Unwrap() error { return ErrIllegalAction }

func illegal(seatID string, a ActionType, format string, args ...any) error {
	return &IllegalActionError{SeatID: seatID, Action: a, Reason: fmt.Sprintf(format, args...)}
}
