package game

import "fmt"

// NewPlayer describes a player taking a seat.
type NewPlayer struct {
	ID         string
	Name       string
	IsAI       bool
	Difficulty Difficulty
	Stack      int
}

// SeatPlayer puts a player in the first empty seat. Players seated while a
// hand runs are dealt in from the next hand.
func SeatPlayer(st *State, p NewPlayer) (*State, int, error) {
	if idx, _ := st.SeatByID(p.ID); idx >= 0 {
		return nil, -1, fmt.Errorf("%w: %s at seat %d", ErrAlreadySeated, p.ID, idx)
	}
	if p.Stack <= 0 {
		return nil, -1, fmt.Errorf("%w: stack %d", ErrInvalidConfig, p.Stack)
	}
	next := st.Clone()
	for i, s := range next.Seats {
		if s != nil {
			continue
		}
		next.Seats[i] = &Seat{
			ID:         p.ID,
			Name:       p.Name,
			IsAI:       p.IsAI,
			Difficulty: p.Difficulty,
			Position:   i,
			Stack:      p.Stack,
			BoughtIn:   p.Stack,
		}
		return next, i, nil
	}
	return nil, -1, ErrGameFull
}

// RemoveSeat frees a seat and returns the chips it leaves with. A seat still
// dealt into a running hand cannot be removed; mark it leaving instead.
func RemoveSeat(st *State, seatID string) (*State, Seat, error) {
	idx, s := st.SeatByID(seatID)
	if s == nil {
		return nil, Seat{}, fmt.Errorf("%w: %s", ErrSeatNotFound, seatID)
	}
	if st.Status == StatusInProgress && s.InHand {
		return nil, Seat{}, fmt.Errorf("%w: %s", ErrSeatInHand, seatID)
	}
	next := st.Clone()
	removed := *next.Seats[idx]
	next.Seats[idx] = nil
	if next.OccupiedSeats() == 0 {
		next.Dealer = -1
	}
	return next, removed, nil
}

// MarkLeaving flags a seat that is dealt into the running hand. It folds at
// its next turn and is removed when the hand ends.
func MarkLeaving(st *State, seatID string) (*State, error) {
	_, s := st.SeatByID(seatID)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrSeatNotFound, seatID)
	}
	next := st.Clone()
	_, ns := next.SeatByID(seatID)
	ns.LeavePending = true
	return next, nil
}

// Rebuy resets a busted seat's stack so it is dealt into the next hand.
func Rebuy(st *State, seatID string, amount int) (*State, error) {
	_, s := st.SeatByID(seatID)
	switch {
	case s == nil:
		return nil, fmt.Errorf("%w: %s", ErrSeatNotFound, seatID)
	case s.Stack > 0:
		return nil, fmt.Errorf("%w: %s has %d", ErrNotBusted, seatID, s.Stack)
	case st.Status == StatusInProgress && s.InHand:
		return nil, fmt.Errorf("%w: %s", ErrSeatInHand, seatID)
	case amount <= 0:
		return nil, fmt.Errorf("%w: rebuy %d", ErrInvalidConfig, amount)
	}
	next := st.Clone()
	_, ns := next.SeatByID(seatID)
	ns.Stack = amount
	ns.BoughtIn += amount
	ns.Busted = false
	return next, nil
}

// Wait returns the table to waiting_for_players after a finished hand when
// the next one cannot start. The last result is kept for late subscribers.
func Wait(st *State) *State {
	next := st.Clone()
	if next.Status == StatusInProgress {
		return next
	}
	next.Status = StatusWaiting
	next.Phase = PhaseWaitingForPlayers
	next.Turn = -1
	return next
}

// PendingLeavers lists seats flagged to leave that are no longer in a hand.
func (st *State) PendingLeavers() []string {
	if st.Status == StatusInProgress {
		return nil
	}
	var ids []string
	for _, s := range st.Seats {
		if s != nil && s.LeavePending {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
