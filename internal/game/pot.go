package game

import (
	"slices"

	"github.com/orbitdash/pokercore/poker"
)

// Pot represents a pot (main or side)
type Pot struct {
	Amount   int
	Eligible []int // Seat indexes eligible for this pot
	// Cap is the per-seat contribution level that closes this pot.
	Cap int
}

// BuildPots partitions the hand's contributions into a main pot and one side
// pot per distinct all-in level. Folded seats' chips stay in the pots they
// reached but those seats are never eligible. Adjacent tiers with the same
// eligible seats are merged.
func BuildPots(seats []*Seat) []Pot {
	var levels []int
	for _, s := range seats {
		if s.live() && s.Committed > 0 {
			levels = append(levels, s.Committed)
		}
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)

	var pots []Pot
	prev := 0
	for i, level := range levels {
		pot := Pot{Cap: level}
		last := i == len(levels)-1
		for idx, s := range seats {
			if s == nil {
				continue
			}
			contribution := min(s.Committed, level) - min(s.Committed, prev)
			if last && s.Committed > level {
				// Dead money above every live seat's level.
				contribution += s.Committed - level
			}
			pot.Amount += contribution
			if s.live() && s.Committed >= level {
				pot.Eligible = append(pot.Eligible, idx)
			}
		}
		prev = level

		if n := len(pots); n > 0 && slices.Equal(pots[n-1].Eligible, pot.Eligible) {
			pots[n-1].Amount += pot.Amount
			pots[n-1].Cap = pot.Cap
			continue
		}
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
	}
	return pots
}

// Pots returns the pots as they would be built if the hand ended now.
func (st *State) Pots() []Pot {
	return BuildPots(st.Seats)
}

// Award is the chips one seat received from a hand.
type Award struct {
	SeatID string `json:"seatId"`
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Hand   string `json:"hand,omitempty"`
}

// PotResult records how one pot was resolved.
type PotResult struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
	Winners  []Award  `json:"winners"`
	Hand     string   `json:"hand,omitempty"`
}

// HandResult is set when a hand finishes and cleared when the next starts.
type HandResult struct {
	HandNumber int         `json:"handNumber"`
	Winners    []Award     `json:"winners"`
	Pots       []PotResult `json:"pots"`
	FinalPot   int         `json:"finalPot"`
	Showdown   bool        `json:"showdown"`

	WinningHand     string         `json:"winningHand,omitempty"`
	WinningCategory poker.Category `json:"winningCategory"`
	WinningCards    []poker.Card   `json:"winningCards,omitempty"`
}

// WinnerIDs lists every seat that won chips.
func (r *HandResult) WinnerIDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, len(r.Winners))
	for i, w := range r.Winners {
		ids[i] = w.SeatID
	}
	return ids
}

// AmountFor returns the total chips won by the seat.
func (r *HandResult) AmountFor(seatID string) int {
	if r == nil {
		return 0
	}
	for _, w := range r.Winners {
		if w.SeatID == seatID {
			return w.Amount
		}
	}
	return 0
}

func (r *HandResult) clone() *HandResult {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Winners = slices.Clone(r.Winners)
	cp.WinningCards = slices.Clone(r.WinningCards)
	cp.Pots = make([]PotResult, len(r.Pots))
	for i, p := range r.Pots {
		p.Eligible = slices.Clone(p.Eligible)
		p.Winners = slices.Clone(p.Winners)
		cp.Pots[i] = p
	}
	return &cp
}
