package animation

import (
	"fmt"
	"reflect"
	"slices"
	"testing"

	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/poker"
)

func newTable(t *testing.T, stacks ...int) *game.State {
	t.Helper()
	st, err := game.NewState("t1", game.TableConfig{
		Type:       game.Multiplayer,
		MaxSeats:   6,
		SmallBlind: 5,
		BigBlind:   10,
		BuyIn:      100,
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, stack := range stacks {
		st, _, err = game.SeatPlayer(st, game.NewPlayer{ID: fmt.Sprintf("p%d", i+1), Stack: stack})
		if err != nil {
			t.Fatal(err)
		}
	}
	return st
}

func startHand(t *testing.T, st *game.State, cards string) *game.State {
	t.Helper()
	deck, err := poker.NewOrderedDeck(poker.MustParseCards(cards)...)
	if err != nil {
		t.Fatal(err)
	}
	next, err := game.StartHand(st, game.WithButton(0), game.WithDeck(deck))
	if err != nil {
		t.Fatal(err)
	}
	return next
}

func apply(t *testing.T, st *game.State, id string, a game.Action) *game.State {
	t.Helper()
	next, err := game.ApplyAction(st, id, a)
	if err != nil {
		t.Fatal(err)
	}
	return next
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func TestDeriveSameSnapshotIsEmpty(t *testing.T) {
	t.Parallel()
	st := newTable(t, 1000, 1000, 1000)
	snaps := []game.Snapshot{st.Snapshot()}
	st = startHand(t, st, "")
	snaps = append(snaps, st.Snapshot())
	st = apply(t, st, "p1", game.Action{Type: game.Call})
	st = apply(t, st, "p2", game.Action{Type: game.Call})
	st = apply(t, st, "p3", game.Action{Type: game.Check})
	snaps = append(snaps, st.Snapshot())
	st = apply(t, st, "p2", game.Action{Type: game.Fold})
	st = apply(t, st, "p3", game.Action{Type: game.Fold})
	snaps = append(snaps, st.Snapshot())

	for i, s := range snaps {
		if events := Derive(s, s); len(events) != 0 {
			t.Fatalf("snapshot %d: expected no events, got %v", i, types(events))
		}
	}
}

func TestDeriveHandStart(t *testing.T) {
	t.Parallel()
	st := newTable(t, 1000, 1000, 1000)
	prev := st.Snapshot()
	curr := startHand(t, st, "").Snapshot()

	events := Derive(prev, curr)
	if !slices.Equal(types(events), []EventType{EventTypeDealCards}) {
		t.Fatalf("expected a single deal, got %v", types(events))
	}
	if !slices.Equal(events[0].SeatIDs, []string{"p1", "p2", "p3"}) {
		t.Fatalf("unexpected dealt seats %v", events[0].SeatIDs)
	}
}

func TestDeriveChipToPot(t *testing.T) {
	t.Parallel()
	st := startHand(t, newTable(t, 1000, 1000, 1000), "")
	prev := st.Snapshot()
	st = apply(t, st, "p1", game.Action{Type: game.Raise, Amount: 30})

	events := Derive(prev, st.Snapshot())
	want := []Event{{
		Type:          EventTypeChipToPot,
		Amount:        30,
		Contributions: []Contribution{{SeatID: "p1", Amount: 30}},
	}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("got %+v, want %+v", events, want)
	}

	prev = st.Snapshot()
	st = apply(t, st, "p2", game.Action{Type: game.Fold})
	if events := Derive(prev, st.Snapshot()); len(events) != 0 {
		t.Fatalf("a fold moves no chips, got %v", types(events))
	}
}

func TestDeriveStreetReveals(t *testing.T) {
	t.Parallel()
	st := startHand(t, newTable(t, 1000, 1000), "2c 3c 4d 5d Ah Kh Qs Jd")
	st = apply(t, st, "p1", game.Action{Type: game.Call})
	prev := st.Snapshot()
	st = apply(t, st, "p2", game.Action{Type: game.Check})

	events := Derive(prev, st.Snapshot())
	if !slices.Equal(types(events), []EventType{EventTypeRevealFlop}) {
		t.Fatalf("expected flop only, got %v", types(events))
	}
	if poker.FormatCards(events[0].Cards) != "Ah Kh Qs" {
		t.Fatalf("unexpected flop %v", events[0].Cards)
	}

	st = apply(t, st, "p2", game.Action{Type: game.Check})
	prev = st.Snapshot()
	st = apply(t, st, "p1", game.Action{Type: game.Check})
	events = Derive(prev, st.Snapshot())
	if !slices.Equal(types(events), []EventType{EventTypeRevealTurn}) || poker.FormatCards(events[0].Cards) != "Jd" {
		t.Fatalf("expected turn Jd, got %+v", events)
	}
}

func TestDeriveAllInRunOut(t *testing.T) {
	t.Parallel()
	st := startHand(t, newTable(t, 50, 150, 150), "Kh Kd Qh Qd Ah Ad 2c 7d 9h Js 3c")
	st = apply(t, st, "p1", game.Action{Type: game.AllIn})
	st = apply(t, st, "p2", game.Action{Type: game.AllIn})
	prev := st.Snapshot()
	st = apply(t, st, "p3", game.Action{Type: game.AllIn})

	events := Derive(prev, st.Snapshot())
	want := []EventType{EventTypeRevealFlop, EventTypeRevealTurn, EventTypeRevealRiver, EventTypePotToWinner}
	if !slices.Equal(types(events), want) {
		t.Fatalf("got %v, want %v", types(events), want)
	}
	if poker.FormatCards(events[1].Cards) != "Js" || poker.FormatCards(events[2].Cards) != "3c" {
		t.Fatalf("turn and river carry their own card, got %v %v", events[1].Cards, events[2].Cards)
	}
	win := events[3]
	if win.Amount != 350 || len(win.Winners) != 2 || win.Hand != "Pair of Aces" {
		t.Fatalf("unexpected payout %+v", win)
	}
}

func TestDeriveHeadsUpFold(t *testing.T) {
	t.Parallel()
	st := startHand(t, newTable(t, 1000, 1000), "")
	prev := st.Snapshot()
	st = apply(t, st, "p1", game.Action{Type: game.Fold})

	events := Derive(prev, st.Snapshot())
	if !slices.Equal(types(events), []EventType{EventTypePotToWinner}) {
		t.Fatalf("expected payout only, got %v", types(events))
	}
	if events[0].Amount != 15 || events[0].Winners[0].SeatID != "p2" {
		t.Fatalf("unexpected payout %+v", events[0])
	}

	// The finished hand's result lingers; the next hand deals fresh.
	next, err := game.StartHand(st, game.WithButton(1))
	if err != nil {
		t.Fatal(err)
	}
	events = Derive(st.Snapshot(), next.Snapshot())
	if !slices.Equal(types(events), []EventType{EventTypeDealCards}) {
		t.Fatalf("expected a deal for the new hand, got %v", types(events))
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	t.Parallel()
	st := newTable(t, 50, 150, 150)
	prev := st.Snapshot()
	st = startHand(t, st, "")
	st = apply(t, st, "p1", game.Action{Type: game.AllIn})
	st = apply(t, st, "p2", game.Action{Type: game.AllIn})
	st = apply(t, st, "p3", game.Action{Type: game.AllIn})
	curr := st.Snapshot()

	first := Derive(prev, curr)
	for range 5 {
		if again := Derive(prev, curr); !reflect.DeepEqual(first, again) {
			t.Fatalf("derive changed between calls: %+v vs %+v", first, again)
		}
	}
	want := []EventType{EventTypeDealCards, EventTypeRevealFlop, EventTypeRevealTurn, EventTypeRevealRiver, EventTypePotToWinner}
	if !slices.Equal(types(first), want) {
		t.Fatalf("got %v, want %v", types(first), want)
	}
}
