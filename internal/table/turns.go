package table

import (
	"errors"
	"time"

	"github.com/orbitdash/pokercore/internal/ai"
	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/randutil"
)

// beginTurn arms the timeout for the seat to act and, for AI seats, starts
// the decision. Re-publishing the same decision point leaves both alone.
func (r *Runner) beginTurn(st *game.State) {
	cur := st.CurrentSeat()
	if cur == nil {
		return
	}
	turn := Turn{HandNumber: st.HandNumber, Action: len(st.Actions), SeatID: cur.ID}
	if turn == r.turn && r.turnTimer != nil {
		return
	}
	r.stopTurnTimer()
	r.turn = turn
	r.turnTimer = r.clock.AfterFunc(r.turnTimeout, func() { r.onTimeout(turn) }, "table", "turn_timeout")
	if cur.IsAI {
		r.spawnAI(st, cur, turn)
	}
}

func (r *Runner) stopTurnTimer() {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
}

// onTimeout applies the default action for a seat that let its clock run
// out: check when free, fold otherwise.
func (r *Runner) onTimeout(turn Turn) {
	r.mu.Lock()
	defer r.unlock()
	if r.closed || turn != r.turn || r.state.Status != game.StatusInProgress {
		return
	}
	r.turnTimer = nil
	next, a, err := game.ForceAction(r.state, turn.SeatID)
	if err != nil {
		r.logger.Error().Err(err).Str("seat_id", turn.SeatID).Msg("Failed to apply timeout action")
		return
	}
	r.logger.Warn().Str("seat_id", turn.SeatID).Stringer("action", a).Msg("Turn timed out")
	r.commit(next)
}

// spawnAI decides for an AI seat without holding the table lock and submits
// the result like any other action.
func (r *Runner) spawnAI(st *game.State, seat *game.Seat, turn Turn) {
	view, ok := st.DecisionView()
	if !ok {
		return
	}
	profile, ok := r.profiles[seat.Difficulty]
	if !ok {
		profile = ai.ProfileFor(seat.Difficulty)
	}
	policy := ai.NewPolicy(seat.Difficulty,
		ai.WithProfile(profile),
		ai.WithRNG(randutil.Derive(r.rng)),
		ai.WithLogger(r.logger),
	)
	delay := r.thinkDelay()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if delay > 0 {
			timer := r.clock.NewTimer(delay, "table", "ai_think")
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-r.ctx.Done():
				return
			}
		}
		a := policy.Decide(view)
		if err := r.Submit(turn, a); err != nil && !errors.Is(err, ErrClosed) {
			r.logger.Debug().Err(err).Str("seat_id", turn.SeatID).Msg("AI action rejected")
		}
	}()
}

func (r *Runner) thinkDelay() time.Duration {
	if r.thinkMax <= 0 {
		return 0
	}
	spread := int64(r.thinkMax - r.thinkMin)
	if spread <= 0 {
		return r.thinkMin
	}
	return r.thinkMin + time.Duration(r.rng.Int64N(spread+1))
}
