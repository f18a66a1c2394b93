package game

import (
	"fmt"
	"testing"

	"github.com/orbitdash/pokercore/poker"
)

// newTable seats p1..pN with the given stacks at blinds 5/10.
func newTable(t *testing.T, stacks ...int) *State {
	t.Helper()
	st, err := NewState("t1", TableConfig{
		Type:       Multiplayer,
		MaxSeats:   max(len(stacks), MinSeats),
		SmallBlind: 5,
		BigBlind:   10,
		BuyIn:      100,
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, stack := range stacks {
		var seat int
		st, seat, err = SeatPlayer(st, NewPlayer{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Player %d", i+1), Stack: stack})
		if err != nil {
			t.Fatal(err)
		}
		if seat != i {
			t.Fatalf("expected seat %d, got %d", i, seat)
		}
	}
	return st
}

// deal starts a hand with the button on seat button. cards are dealt first:
// two hole cards per seat clockwise from the small blind side, then the board.
func deal(t *testing.T, st *State, button int, cards string) *State {
	t.Helper()
	deck, err := poker.NewOrderedDeck(poker.MustParseCards(cards)...)
	if err != nil {
		t.Fatal(err)
	}
	next, err := StartHand(st, WithButton(button), WithDeck(deck))
	if err != nil {
		t.Fatalf("start hand: %v", err)
	}
	return next
}

// act applies an action that must succeed and checks chip conservation.
func act(t *testing.T, st *State, seatID string, a Action) *State {
	t.Helper()
	next, err := ApplyAction(st, seatID, a)
	if err != nil {
		t.Fatalf("%s %s: %v", seatID, a, err)
	}
	if next.TotalChips() != st.TotalChips() {
		t.Fatalf("%s %s changed total chips %d -> %d", seatID, a, st.TotalChips(), next.TotalChips())
	}
	return next
}

func turnID(t *testing.T, st *State) string {
	t.Helper()
	s := st.CurrentSeat()
	if s == nil {
		t.Fatalf("no seat to act (turn=%d status=%s)", st.Turn, st.Status)
	}
	return s.ID
}

func stack(st *State, id string) int {
	_, s := st.SeatByID(id)
	return s.Stack
}
