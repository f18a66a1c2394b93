package handhistory

import (
	"errors"
	"fmt"
	"time"

	"github.com/orbitdash/pokercore/internal/game"
)

// ErrHandNotComplete is returned when a state without a result is recorded.
var ErrHandNotComplete = errors.New("handhistory: hand is not complete")

// boardSizes is the community card count after each street is dealt.
var boardSizes = map[game.Street]int{game.Flop: 3, game.Turn: 4, game.River: 5}

// FromState converts a completed hand into a PHH record. Unless
// includeHoleCards is set, deals are written as ???? and only hands shown
// at showdown are revealed.
func FromState(st *game.State, at time.Time, includeHoleCards bool) (*HandHistory, error) {
	if st == nil || st.Status != game.StatusCompleted || st.Result == nil {
		return nil, ErrHandNotComplete
	}

	sb, bb := st.BlindSeats()
	order := inHandFrom(st, sb)
	player := make(map[int]int, len(order))
	for i, idx := range order {
		player[idx] = i + 1
	}

	n := len(order)
	hist := &HandHistory{
		Variant:           "NT",
		Table:             st.ID,
		SeatCount:         st.Config.MaxSeats,
		Seats:             make([]int, n),
		Antes:             make([]int, n),
		BlindsOrStraddles: make([]int, n),
		MinBet:            st.Config.BigBlind,
		StartingStacks:    make([]int, n),
		FinishingStacks:   make([]int, n),
		Winnings:          make([]int, n),
		Players:           make([]string, n),
		HandID:            fmt.Sprintf("%s-%d", st.ID, st.HandNumber),
		Timestamp:         at,
		Metadata: map[string]any{
			"game_type": st.Config.Type.String(),
			"pot":       st.Result.FinalPot,
			"showdown":  st.Result.Showdown,
		},
	}
	if st.Result.WinningHand != "" {
		hist.Metadata["winning_hand"] = st.Result.WinningHand
	}
	for _, c := range st.Community {
		hist.Board = append(hist.Board, NormalizeCard(c.String()))
	}

	for i, idx := range order {
		s := st.Seats[idx]
		won := st.Result.AmountFor(s.ID)
		hist.Seats[i] = idx + 1
		hist.Players[i] = s.Name
		hist.FinishingStacks[i] = s.Stack
		hist.Winnings[i] = won
		hist.StartingStacks[i] = s.Stack + s.Committed - won
		dealt := "????"
		if includeHoleCards {
			dealt = JoinCards(s.HoleCards)
		}
		hist.Actions = append(hist.Actions, fmt.Sprintf("d dh p%d %s", i+1, dealt))
	}
	if p, ok := player[sb]; ok {
		hist.BlindsOrStraddles[p-1] = min(st.Config.SmallBlind, hist.StartingStacks[p-1])
	}
	if p, ok := player[bb]; ok {
		hist.BlindsOrStraddles[p-1] = min(st.Config.BigBlind, hist.StartingStacks[p-1])
	}

	dealt := 0
	dealThrough := func(target int) {
		if target > len(st.Community) {
			target = len(st.Community)
		}
		if target > dealt {
			hist.Actions = append(hist.Actions, "d db "+JoinCards(st.Community[dealt:target]))
			dealt = target
		}
	}

	street := game.Preflop
	high := 0
	for _, b := range hist.BlindsOrStraddles {
		high = max(high, b)
	}
	for _, rec := range st.Actions {
		for street < rec.Street {
			street++
			dealThrough(boardSizes[street])
			high = 0
		}
		hist.Actions = append(hist.Actions, FormatAction(player[rec.Seat], rec.Type, rec.BetTo, high))
		high = max(high, rec.BetTo)
	}
	for _, size := range []int{3, 4, 5} {
		dealThrough(size)
	}

	if st.Result.Showdown {
		for i, idx := range order {
			s := st.Seats[idx]
			if !s.Folded {
				hist.Actions = append(hist.Actions, fmt.Sprintf("p%d sm %s", i+1, JoinCards(s.HoleCards)))
			}
		}
	}

	populateTimeFields(hist)
	return hist, nil
}

func inHandFrom(st *game.State, start int) []int {
	n := len(st.Seats)
	var out []int
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if s := st.Seats[idx]; s != nil && s.InHand {
			out = append(out, idx)
		}
	}
	return out
}

func populateTimeFields(hist *HandHistory) {
	if hist.Timestamp.IsZero() {
		return
	}
	ts := hist.Timestamp.UTC()
	hist.Time = ts.Format("15:04:05")
	hist.TimeZone = "UTC"
	hist.Day = ts.Day()
	hist.Month = int(ts.Month())
	hist.Year = ts.Year()
}
