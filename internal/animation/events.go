// Package animation derives presentation events from two consecutive table
// snapshots. It looks at nothing but the snapshots, so a client replaying the
// same pair gets the same events as the server.
package animation

import (
	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/poker"
)

// EventType names one kind of animation.
type EventType string

const (
	EventTypeDealCards   EventType = "deal_cards"
	EventTypeChipToPot   EventType = "chip_to_pot"
	EventTypeRevealFlop  EventType = "reveal_flop"
	EventTypeRevealTurn  EventType = "reveal_turn"
	EventTypeRevealRiver EventType = "reveal_river"
	EventTypePotToWinner EventType = "pot_to_winner"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Contribution is the chips one seat pushed toward the pot.
type Contribution struct {
	SeatID string `json:"seatId"`
	Amount int    `json:"amount"`
}

// Event is one animation step. Only the fields relevant to Type are set.
type Event struct {
	Type EventType `json:"type"`
	// SeatIDs lists the seats dealt in for deal_cards.
	SeatIDs []string `json:"seatIds,omitempty"`
	// Cards holds the newly revealed board cards.
	Cards []poker.Card `json:"cards,omitempty"`
	// Amount is the pot growth for chip_to_pot and the final pot for
	// pot_to_winner.
	Amount        int            `json:"amount,omitempty"`
	Contributions []Contribution `json:"contributions,omitempty"`
	Winners       []game.Award   `json:"winners,omitempty"`
	Hand          string         `json:"hand,omitempty"`
}

// Derive returns the events that explain the move from prev to curr, in
// playback order: deal, chips, flop, turn, river, payout. Derive(s, s) is
// always empty.
func Derive(prev, curr game.Snapshot) []Event {
	newHand := curr.HandNumber != prev.HandNumber

	var events []Event
	if ev, ok := dealCards(prev, curr, newHand); ok {
		events = append(events, ev)
	}
	if ev, ok := chipToPot(prev, curr, newHand); ok {
		events = append(events, ev)
	}
	events = append(events, reveals(prev, curr, newHand)...)
	if ev, ok := potToWinner(prev, curr, newHand); ok {
		events = append(events, ev)
	}
	return events
}

func dealCards(prev, curr game.Snapshot, newHand bool) (Event, bool) {
	var dealt []string
	for _, seat := range curr.Seats {
		if seat == nil || seat.CardCount != 2 {
			continue
		}
		before := 0
		if !newHand {
			if p := prev.Seat(seat.ID); p != nil {
				before = p.CardCount
			}
		}
		if before == 0 {
			dealt = append(dealt, seat.ID)
		}
	}
	if len(dealt) == 0 {
		return Event{}, false
	}
	return Event{Type: EventTypeDealCards, SeatIDs: dealt}, true
}

func chipToPot(prev, curr game.Snapshot, newHand bool) (Event, bool) {
	if newHand || prev.Status != game.StatusInProgress || curr.Status != game.StatusInProgress {
		return Event{}, false
	}
	delta := potAmount(curr) - potAmount(prev)
	if delta <= 0 {
		return Event{}, false
	}
	ev := Event{Type: EventTypeChipToPot, Amount: delta}
	for _, seat := range curr.Seats {
		if seat == nil {
			continue
		}
		before := 0
		if p := prev.Seat(seat.ID); p != nil {
			before = p.Committed
		}
		if added := seat.Committed - before; added > 0 {
			ev.Contributions = append(ev.Contributions, Contribution{SeatID: seat.ID, Amount: added})
		}
	}
	return ev, true
}

// potAmount counts chips already in the pot plus bets on the current street.
func potAmount(s game.Snapshot) int {
	total := s.Pot
	for _, seat := range s.Seats {
		if seat != nil {
			total += seat.CurrentBet
		}
	}
	return total
}

// reveals emits one event per street whose cards became visible. A board
// run out in one transition yields flop, turn and river in order.
func reveals(prev, curr game.Snapshot, newHand bool) []Event {
	before := len(prev.Community)
	if newHand {
		before = 0
	}
	after := len(curr.Community)

	streets := []struct {
		typ        EventType
		start, end int
	}{
		{EventTypeRevealFlop, 0, 3},
		{EventTypeRevealTurn, 3, 4},
		{EventTypeRevealRiver, 4, 5},
	}
	var events []Event
	for _, st := range streets {
		if before < st.end && after >= st.end {
			events = append(events, Event{
				Type:  st.typ,
				Cards: append([]poker.Card(nil), curr.Community[st.start:st.end]...),
			})
		}
	}
	return events
}

func potToWinner(prev, curr game.Snapshot, newHand bool) (Event, bool) {
	if curr.Result == nil || (prev.Result != nil && !newHand) {
		return Event{}, false
	}
	return Event{
		Type:    EventTypePotToWinner,
		Amount:  curr.Result.FinalPot,
		Winners: append([]game.Award(nil), curr.Result.Winners...),
		Hand:    curr.Result.WinningHand,
	}, true
}
