package lobby

import (
	"context"
	"math"

	"github.com/orbitdash/pokercore/internal/ai"
	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/ledger"
	"github.com/orbitdash/pokercore/poker"
)

// payout returns what a departing seat is credited and the practice reward
// that counts toward the daily limit. Multiplayer stacks are paid in full.
// Practice profit is scaled by the tier's coin modifier and the daily
// modifier; losses are never scaled.
func payout(t game.GameType, coin float64, stack, boughtIn, wonToday int) (credit, reward int) {
	if t != game.Practice || stack <= boughtIn {
		return stack, 0
	}
	profit := stack - boughtIn
	reward = int(math.Floor(float64(profit) * coin * ai.DailyModifier(wonToday)))
	return boughtIn + reward, reward
}

// coinModifier reads the configured profile for d, falling back to the
// built-in tiers.
func (m *Manager) coinModifier(d game.Difficulty) float64 {
	if p, ok := m.cfg.Profiles[d]; ok {
		return p.CoinModifier
	}
	return ai.CoinModifier(d)
}

// settle credits a departed human seat and records the session. The table
// is closed once no humans remain.
func (m *Manager) settle(ctx context.Context, g *Game, seat game.Seat) (credited, balance int, err error) {
	if seat.IsAI {
		return 0, 0, nil
	}
	wonToday := 0
	if g.Type == game.Practice {
		if wonToday, err = m.store.DailyWinnings(ctx, seat.ID); err != nil {
			return 0, 0, err
		}
	}
	credit, reward := payout(g.Type, m.coinModifier(g.Difficulty), seat.Stack, seat.BoughtIn, wonToday)
	if credit > 0 {
		if balance, err = m.store.Credit(ctx, seat.ID, credit, "cash-out "+g.ID); err != nil {
			return 0, 0, err
		}
	} else if balance, err = m.store.Balance(ctx, seat.ID); err != nil {
		return 0, 0, err
	}
	err = m.store.RecordSession(ctx, ledger.SessionOutcome{
		UserID:     seat.ID,
		Type:       g.Type,
		Difficulty: g.Difficulty,
		Profit:     seat.Stack - seat.BoughtIn,
		Reward:     reward,
	})
	if err != nil {
		m.logger.Error().Err(err).Str("user_id", seat.ID).Msg("Failed to record session")
	}
	m.logger.Info().Str("game_id", g.ID).Str("user_id", seat.ID).Int("stack", seat.Stack).
		Int("bought_in", seat.BoughtIn).Int("credited", credit).Int("reward", reward).Msg("Seat settled")

	m.closeIfEmpty(g)
	return credit, balance, nil
}

// closeIfEmpty drops a table once its last human has gone. The runner is
// closed on its own goroutine since this can run inside a runner callback.
func (m *Manager) closeIfEmpty(g *Game) {
	if humans(g.runner.State()) > 0 {
		return
	}
	m.mu.Lock()
	_, live := m.games[g.ID]
	delete(m.games, g.ID)
	m.mu.Unlock()
	if !live {
		return
	}
	m.logger.Info().Str("game_id", g.ID).Msg("Game closed")
	go func() {
		g.runner.Close()
		m.closeRecorder(g.ID)
	}()
}

func (m *Manager) closeRecorder(gameID string) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.CloseGame(gameID); err != nil {
		m.logger.Error().Err(err).Str("game_id", gameID).Msg("Failed to close hand history")
	}
}

func (m *Manager) onSeatRemoved(g *Game, seat game.Seat) {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()
	if _, _, err := m.settle(ctx, g, seat); err != nil {
		m.logger.Error().Err(err).Str("game_id", g.ID).Str("user_id", seat.ID).Int("stack", seat.Stack).
			Msg("Failed to settle departed seat")
	}
}

// onHandComplete updates human players' statistics and records the hand.
func (m *Manager) onHandComplete(g *Game, st *game.State) {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()
	for _, o := range handOutcomes(st) {
		if err := m.store.RecordHand(ctx, o); err != nil {
			m.logger.Error().Err(err).Str("game_id", g.ID).Str("user_id", o.UserID).Msg("Failed to record hand")
		}
	}
	if m.recorder != nil {
		if err := m.recorder.Record(st); err != nil {
			m.logger.Error().Err(err).Str("game_id", g.ID).Int("hand", st.HandNumber).Msg("Failed to record hand history")
		}
	}
}

// handOutcomes lists the result of a finished hand for each human dealt in.
func handOutcomes(st *game.State) []ledger.HandOutcome {
	var out []ledger.HandOutcome
	for _, s := range st.Seats {
		if s == nil || s.IsAI || !s.InHand {
			continue
		}
		o := ledger.HandOutcome{UserID: s.ID, Wagered: s.Committed}
		if st.Result != nil {
			o.Won = st.Result.AmountFor(s.ID)
			if st.Result.Showdown && !s.Folded {
				if h, err := poker.BestHand(s.HoleCards, st.Community); err == nil {
					cat := h.Category
					o.Category = &cat
				}
			}
		}
		out = append(out, o)
	}
	return out
}
