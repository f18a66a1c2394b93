package ai

import (
	"fmt"
	"testing"

	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/randutil"
	"github.com/orbitdash/pokercore/poker"
)

func newTable(t *testing.T, stacks ...int) *game.State {
	t.Helper()
	st, err := game.NewState("t1", game.TableConfig{
		Type:       game.Practice,
		MaxSeats:   6,
		SmallBlind: 5,
		BigBlind:   10,
		BuyIn:      100,
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, stack := range stacks {
		st, _, err = game.SeatPlayer(st, game.NewPlayer{ID: fmt.Sprintf("p%d", i+1), IsAI: true, Stack: stack})
		if err != nil {
			t.Fatal(err)
		}
	}
	return st
}

// TestDecideAlwaysLegal plays whole sessions between every tier and checks
// that each decision is accepted by the betting engine.
func TestDecideAlwaysLegal(t *testing.T) {
	t.Parallel()
	rng := randutil.New(11)
	for session := 0; session < 10; session++ {
		policies := map[string]*Policy{}
		stacks := make([]int, 2+session%5)
		for i := range stacks {
			stacks[i] = 100 + rng.IntN(900)
			id := fmt.Sprintf("p%d", i+1)
			policies[id] = NewPolicy(game.Difficulties[i%len(game.Difficulties)], WithRNG(randutil.Derive(rng)))
		}
		st := newTable(t, stacks...)

		for hand := 0; hand < 50; hand++ {
			next, err := game.StartHand(st, game.WithRNG(rng))
			if err != nil {
				break
			}
			st = next
			for steps := 0; st.Status == game.StatusInProgress; steps++ {
				if steps > 200 {
					t.Fatal("hand did not terminate")
				}
				view, ok := st.DecisionView()
				if !ok {
					t.Fatal("in-progress hand without a decision view")
				}
				action := policies[view.SeatID].Decide(view)
				next, err := game.ApplyAction(st, view.SeatID, action)
				if err != nil {
					t.Fatalf("%s (%s) chose illegal %s: %v", view.SeatID, policies[view.SeatID].Difficulty(), action, err)
				}
				st = next
			}
		}
	}
}

func TestNoviceFoldsTrashToARaise(t *testing.T) {
	t.Parallel()
	deck, err := poker.NewOrderedDeck(poker.MustParseCards("7c 2d Kh Kd Ah Ad")...)
	if err != nil {
		t.Fatal(err)
	}
	st, err := game.StartHand(newTable(t, 1000, 1000, 1000), game.WithButton(0), game.WithDeck(deck))
	if err != nil {
		t.Fatal(err)
	}
	st, err = game.ApplyAction(st, "p1", game.Action{Type: game.Raise, Amount: 50})
	if err != nil {
		t.Fatal(err)
	}
	view, _ := st.DecisionView()
	p := NewPolicy(game.Novice, WithRNG(randutil.New(1)))
	for range 50 {
		if a := p.Decide(view); a.Type != game.Fold {
			t.Fatalf("novice should fold 7-2 to a raise, got %s", a)
		}
	}
}

func TestNoviceNeverFoldsForFree(t *testing.T) {
	t.Parallel()
	view := game.DecisionView{
		SeatID:    "p1",
		HoleCards: poker.MustParseCards("7c 2d"),
		Community: poker.MustParseCards("Kh Qs 9d"),
		Street:    game.Flop,
		Stack:     500,
		Pot:       40,
		BigBlind:  10,
		Legal: []game.LegalAction{
			{Type: game.Fold},
			{Type: game.Check},
			{Type: game.Raise, Min: 10, Max: 500},
			{Type: game.AllIn, Min: 500, Max: 500},
		},
	}
	p := NewPolicy(game.Novice, WithRNG(randutil.New(2)))
	for range 50 {
		if a := p.Decide(view); a.Type != game.Check {
			t.Fatalf("novice should check air when it is free, got %s", a)
		}
	}
}

func bluffSpot() game.DecisionView {
	return game.DecisionView{
		SeatID:           "p1",
		HoleCards:        poker.MustParseCards("2c 7d"),
		Community:        poker.MustParseCards("Kh Qs 9d"),
		Street:           game.Flop,
		Stack:            500,
		Pot:              60,
		BigBlind:         10,
		MinRaiseTo:       10,
		Players:          3,
		LivePlayers:      3,
		RelativePosition: 3,
		Legal: []game.LegalAction{
			{Type: game.Fold},
			{Type: game.Check},
			{Type: game.Raise, Min: 10, Max: 500},
			{Type: game.AllIn, Min: 500, Max: 500},
		},
	}
}

func raiseRate(p *Policy, view game.DecisionView, trials int) float64 {
	raises := 0
	for range trials {
		if a := p.Decide(view); a.Type == game.Raise || a.Type == game.AllIn {
			raises++
		}
	}
	return float64(raises) / float64(trials)
}

func TestExpertBluffRateIsBounded(t *testing.T) {
	t.Parallel()
	const trials = 5000
	expert := NewPolicy(game.Expert, WithRNG(randutil.New(3)))
	rate := raiseRate(expert, bluffSpot(), trials)
	if rate == 0 {
		t.Fatal("expert should bluff air in position now and then")
	}
	if rate > MaxBluffRate {
		t.Fatalf("bluff rate %.3f exceeds cap %.2f", rate, MaxBluffRate)
	}

	loose := NewPolicy(game.Expert, WithRNG(randutil.New(3)), WithProfile(Profile{Aggression: 1, BluffFrequency: 1, Skill: 0.9, CoinModifier: 1}))
	if rate := raiseRate(loose, bluffSpot(), trials); rate > MaxBluffRate {
		t.Fatalf("profile override should still respect the cap, got %.3f", rate)
	}

	intermediate := NewPolicy(game.Intermediate, WithRNG(randutil.New(3)))
	if rate := raiseRate(intermediate, bluffSpot(), trials); rate != 0 {
		t.Fatalf("intermediate should not bluff, raised %.3f of the time", rate)
	}
}

func TestStrongHandsBet(t *testing.T) {
	t.Parallel()
	view := bluffSpot()
	view.HoleCards = poker.MustParseCards("Kc Kd")
	view.Community = poker.MustParseCards("Kh Ks 9d")
	for _, d := range []game.Difficulty{game.Intermediate, game.Expert} {
		p := NewPolicy(d, WithRNG(randutil.New(4)))
		if rate := raiseRate(p, view, 200); rate < 0.99 {
			t.Errorf("%s should bet quads when checked to, rate %.2f", d, rate)
		}
	}
}

func TestDecideFallsBackToFold(t *testing.T) {
	t.Parallel()
	p := NewPolicy(game.Expert, WithRNG(randutil.New(5)))
	view := bluffSpot()
	view.Legal = nil
	if a := p.Decide(view); a.Type != game.Fold {
		t.Fatalf("with no legal actions the policy should fold, got %s", a)
	}
}

func TestFitClampsRaises(t *testing.T) {
	t.Parallel()
	view := bluffSpot()
	a, err := fit(view, intent{action: game.Raise, raiseTo: 5})
	if err != nil || a.Type != game.Raise || a.Amount != 10 {
		t.Fatalf("small raise should lift to the minimum, got %s %v", a, err)
	}
	a, _ = fit(view, intent{action: game.Raise, raiseTo: 9000})
	if a.Type != game.AllIn {
		t.Fatalf("oversized raise should go all-in, got %s", a)
	}
	view.Legal = []game.LegalAction{{Type: game.Fold}, {Type: game.Call, Min: 20, Max: 20}, {Type: game.AllIn, Min: 20, Max: 20}}
	a, _ = fit(view, intent{action: game.Raise, raiseTo: 100})
	if a.Type != game.Call {
		t.Fatalf("raise without a legal raise should call, got %s", a)
	}
}
