package table

import (
	"fmt"

	"github.com/orbitdash/pokercore/internal/game"
)

// Seat puts a player at the table and returns the seat index.
func (r *Runner) Seat(p game.NewPlayer) (int, error) {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return -1, ErrClosed
	}
	next, idx, err := game.SeatPlayer(r.state, p)
	if err != nil {
		return -1, err
	}
	r.logger.Info().Str("seat_id", p.ID).Int("seat", idx).Int("stack", p.Stack).Bool("ai", p.IsAI).Msg("Player seated")
	r.commit(next)
	return idx, nil
}

// Leave removes a seat. A seat dealt into the running hand is flagged
// instead: it folds at its next turn and is removed when the hand ends,
// reported through Hooks.SeatRemoved. The returned seat is nil in that case.
func (r *Runner) Leave(seatID string) (*game.Seat, error) {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return nil, ErrClosed
	}
	_, s := r.state.SeatByID(seatID)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", game.ErrSeatNotFound, seatID)
	}
	if r.state.Status == game.StatusInProgress && s.InHand {
		return nil, r.markLeaving(seatID)
	}
	return r.remove(seatID)
}

// CashOut removes a seat that is not contesting the running hand. A seat
// that already folded is removed when the hand ends, like Leave.
func (r *Runner) CashOut(seatID string) (*game.Seat, error) {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return nil, ErrClosed
	}
	_, s := r.state.SeatByID(seatID)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", game.ErrSeatNotFound, seatID)
	}
	if r.state.Status == game.StatusInProgress && s.InHand {
		if !s.Folded {
			return nil, fmt.Errorf("%w: %s", game.ErrSeatInHand, seatID)
		}
		return nil, r.markLeaving(seatID)
	}
	return r.remove(seatID)
}

// Rebuy refills a busted seat.
func (r *Runner) Rebuy(seatID string, amount int) error {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return ErrClosed
	}
	next, err := game.Rebuy(r.state, seatID, amount)
	if err != nil {
		return err
	}
	r.logger.Info().Str("seat_id", seatID).Int("amount", amount).Msg("Seat rebought")
	r.commit(next)
	return nil
}

func (r *Runner) markLeaving(seatID string) error {
	next, err := game.MarkLeaving(r.state, seatID)
	if err != nil {
		return err
	}
	r.logger.Info().Str("seat_id", seatID).Msg("Seat leaving after hand")
	r.commit(next)
	return nil
}

func (r *Runner) remove(seatID string) (*game.Seat, error) {
	next, seat, err := game.RemoveSeat(r.state, seatID)
	if err != nil {
		return nil, err
	}
	r.logger.Info().Str("seat_id", seatID).Int("stack", seat.Stack).Msg("Seat removed")
	r.commit(next)
	return &seat, nil
}
