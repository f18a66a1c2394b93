package handhistory

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/poker"
)

var handTime = time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)

type step struct {
	seat   string
	action game.Action
}

// playHand seats Alice, Bob and Cara with 1000 chips at 5/10, puts the
// button on Alice and applies the steps against an ordered deck.
func playHand(t *testing.T, cards string, steps ...step) *game.State {
	t.Helper()
	st, err := game.NewState("t1", game.TableConfig{Type: game.Multiplayer, MaxSeats: 6, SmallBlind: 5, BigBlind: 10, BuyIn: 1000})
	if err != nil {
		t.Fatal(err)
	}
	for i, name := range []string{"Alice", "Bob", "Cara"} {
		st, _, err = game.SeatPlayer(st, game.NewPlayer{ID: fmt.Sprintf("p%d", i+1), Name: name, Stack: 1000})
		if err != nil {
			t.Fatal(err)
		}
	}
	deck, err := poker.NewOrderedDeck(poker.MustParseCards(cards)...)
	if err != nil {
		t.Fatal(err)
	}
	st, err = game.StartHand(st, game.WithButton(0), game.WithDeck(deck))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range steps {
		st, err = game.ApplyAction(st, s.seat, s.action)
		if err != nil {
			t.Fatalf("%s %s: %v", s.seat, s.action, err)
		}
	}
	return st
}

func showdownHand(t *testing.T) *game.State {
	t.Helper()
	return playHand(t, "Kh Kd Qh Qd Ah Ad 2c 7d 9h 10s 3c",
		step{"p1", game.Action{Type: game.Raise, Amount: 30}},
		step{"p2", game.Action{Type: game.Call}},
		step{"p3", game.Action{Type: game.Fold}},
		step{"p2", game.Action{Type: game.Check}},
		step{"p1", game.Action{Type: game.Raise, Amount: 50}},
		step{"p2", game.Action{Type: game.Call}},
		step{"p2", game.Action{Type: game.Check}},
		step{"p1", game.Action{Type: game.Check}},
		step{"p2", game.Action{Type: game.Check}},
		step{"p1", game.Action{Type: game.Check}},
	)
}

func TestFromStateShowdown(t *testing.T) {
	t.Parallel()
	st := showdownHand(t)
	hist, err := FromState(st, handTime, true)
	if err != nil {
		t.Fatal(err)
	}

	// p1 is the small blind (Bob), p3 the button (Alice).
	want := []string{
		"d dh p1 KhKd",
		"d dh p2 QhQd",
		"d dh p3 AhAd",
		"p3 cbr 30",
		"p1 cc",
		"p2 f",
		"d db 2c7d9h",
		"p1 cc",
		"p3 cbr 50",
		"p1 cc",
		"d db Ts",
		"p1 cc",
		"p3 cc",
		"d db 3c",
		"p1 cc",
		"p3 cc",
		"p1 sm KhKd",
		"p3 sm AhAd",
	}
	if !slices.Equal(hist.Actions, want) {
		t.Fatalf("actions mismatch\n got %q\nwant %q", hist.Actions, want)
	}
	if !slices.Equal(hist.Players, []string{"Bob", "Cara", "Alice"}) {
		t.Fatalf("players %v", hist.Players)
	}
	if !slices.Equal(hist.Seats, []int{2, 3, 1}) {
		t.Fatalf("seats %v", hist.Seats)
	}
	if !slices.Equal(hist.BlindsOrStraddles, []int{5, 10, 0}) {
		t.Fatalf("blinds %v", hist.BlindsOrStraddles)
	}
	if !slices.Equal(hist.StartingStacks, []int{1000, 1000, 1000}) {
		t.Fatalf("starting stacks %v", hist.StartingStacks)
	}
	if !slices.Equal(hist.FinishingStacks, []int{920, 990, 1090}) {
		t.Fatalf("finishing stacks %v", hist.FinishingStacks)
	}
	if !slices.Equal(hist.Winnings, []int{0, 0, 170}) {
		t.Fatalf("winnings %v", hist.Winnings)
	}
	if !slices.Equal(hist.Board, []string{"2c", "7d", "9h", "Ts", "3c"}) {
		t.Fatalf("board %v", hist.Board)
	}
	if hist.HandID != "t1-1" || hist.Variant != "NT" || hist.MinBet != 10 {
		t.Fatalf("unexpected header %+v", hist)
	}
	if hist.Time != "03:04:05" || hist.Day != 2 || hist.Month != 1 || hist.Year != 2025 {
		t.Fatalf("unexpected time fields %s %d/%d/%d", hist.Time, hist.Day, hist.Month, hist.Year)
	}
	if hist.Metadata["winning_hand"] != "Pair of Aces" {
		t.Fatalf("metadata %v", hist.Metadata)
	}
}

func TestFromStateMasksHoleCards(t *testing.T) {
	t.Parallel()
	st := showdownHand(t)
	hist, err := FromState(st, handTime, false)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range hist.Actions {
		if strings.HasPrefix(a, "d dh") && !strings.HasSuffix(a, "????") {
			t.Fatalf("hole cards leaked: %q", a)
		}
	}
	if !slices.Contains(hist.Actions, "p3 sm AhAd") {
		t.Fatal("showdown hands should still be revealed")
	}
	if slices.Contains(hist.Actions, "p2 sm QhQd") {
		t.Fatal("folded hand should not be shown")
	}
}

func TestFromStateAllInRunOut(t *testing.T) {
	t.Parallel()
	st := playHand(t, "Kh Kd Qh Qd Ah Ad 2c 7d 9h 10s 3c",
		step{"p1", game.Action{Type: game.AllIn}},
		step{"p2", game.Action{Type: game.AllIn}},
		step{"p3", game.Action{Type: game.Fold}},
	)
	hist, err := FromState(st, handTime, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"p3 cbr 1000",
		"p1 cc",
		"p2 f",
		"d db 2c7d9h",
		"d db Ts",
		"d db 3c",
		"p1 sm KhKd",
		"p3 sm AhAd",
	}
	if got := hist.Actions[3:]; !slices.Equal(got, want) {
		t.Fatalf("actions mismatch\n got %q\nwant %q", got, want)
	}
}

func TestFromStateUncontested(t *testing.T) {
	t.Parallel()
	st := playHand(t, "Kh Kd Qh Qd Ah Ad",
		step{"p1", game.Action{Type: game.Fold}},
		step{"p2", game.Action{Type: game.Fold}},
	)
	hist, err := FromState(st, handTime, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"d dh p1 KhKd", "d dh p2 QhQd", "d dh p3 AhAd", "p3 f", "p1 f"}
	if !slices.Equal(hist.Actions, want) {
		t.Fatalf("actions mismatch\n got %q\nwant %q", hist.Actions, want)
	}
	if !slices.Equal(hist.Winnings, []int{0, 15, 0}) {
		t.Fatalf("winnings %v", hist.Winnings)
	}
	if _, ok := hist.Metadata["winning_hand"]; ok {
		t.Fatal("uncontested hand has no winning hand")
	}
}

func TestFromStateRequiresCompletedHand(t *testing.T) {
	t.Parallel()
	st := playHand(t, "Kh Kd Qh Qd Ah Ad 2c 7d 9h 10s 3c")
	if _, err := FromState(st, handTime, true); !errors.Is(err, ErrHandNotComplete) {
		t.Fatalf("expected ErrHandNotComplete, got %v", err)
	}
}

func TestNormalizeCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"10h", "Th"},
		{"10H", "Th"},
		{"ah", "Ah"},
		{"As", "As"},
		{"??", "??"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCard(tt.in); got != tt.want {
			t.Fatalf("NormalizeCard(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		player int
		action game.ActionType
		betTo  int
		high   int
		want   string
	}{
		{"fold", 1, game.Fold, 0, 10, "p1 f"},
		{"check", 2, game.Check, 0, 0, "p2 cc"},
		{"call", 3, game.Call, 10, 10, "p3 cc"},
		{"raise", 1, game.Raise, 120, 40, "p1 cbr 120"},
		{"all-in raise", 2, game.AllIn, 350, 100, "p2 cbr 350"},
		{"all-in call", 2, game.AllIn, 60, 100, "p2 cc"},
	}
	for _, tt := range tests {
		if got := FormatAction(tt.player, tt.action, tt.betTo, tt.high); got != tt.want {
			t.Fatalf("%s: got %q want %q", tt.name, got, tt.want)
		}
	}
}
