package game

import (
	"errors"
	"reflect"
	"testing"
)

func TestHeadsUpBlindsAndFirstToAct(t *testing.T) {
	t.Parallel()
	st := deal(t, newTable(t, 1000, 1000), 0, "")

	if st.Seats[0].CurrentBet != 5 || st.Seats[1].CurrentBet != 10 {
		t.Fatalf("heads-up dealer should post small blind, got bets %d/%d", st.Seats[0].CurrentBet, st.Seats[1].CurrentBet)
	}
	if st.Turn != 0 {
		t.Fatalf("dealer acts first preflop heads-up, turn=%d", st.Turn)
	}
	if st.Phase != PhasePreflop || st.Status != StatusInProgress {
		t.Fatalf("unexpected phase %s status %s", st.Phase, st.Status)
	}
}

func TestHeadsUpFoldAwardsPot(t *testing.T) {
	t.Parallel()
	st := deal(t, newTable(t, 1000, 1000), 0, "")
	st = act(t, st, "p1", Action{Type: Fold})

	if st.Status != StatusCompleted || st.Phase != PhasePayout {
		t.Fatalf("hand should be complete, status=%s phase=%s", st.Status, st.Phase)
	}
	if len(st.Community) != 0 {
		t.Fatalf("no community cards should be dealt, got %d", len(st.Community))
	}
	if st.Result == nil || st.Result.FinalPot != 15 {
		t.Fatalf("expected final pot 15, got %+v", st.Result)
	}
	if ids := st.Result.WinnerIDs(); len(ids) != 1 || ids[0] != "p2" {
		t.Fatalf("expected p2 to win, got %v", ids)
	}
	if st.Result.Showdown {
		t.Fatal("uncontested pot should not be a showdown")
	}
	if stack(st, "p1") != 995 || stack(st, "p2") != 1005 {
		t.Fatalf("unexpected stacks %d/%d", stack(st, "p1"), stack(st, "p2"))
	}
	if st.Pot != 0 || st.Turn != -1 {
		t.Fatalf("pot should be paid out and nobody to act, pot=%d turn=%d", st.Pot, st.Turn)
	}
}

func TestMinRaiseEnforcement(t *testing.T) {
	t.Parallel()
	// Button on seat 0: p2 small blind, p3 big blind, p1 first to act.
	st := deal(t, newTable(t, 1000, 1000, 1000), 0, "")
	st = act(t, st, "p1", Action{Type: Call})
	if !st.Seats[0].Acted {
		t.Fatal("caller should be marked as acted")
	}

	before := st.Snapshot()
	_, err := ApplyAction(st, "p2", Action{Type: Raise, Amount: 15})
	var iae *IllegalActionError
	if !errors.As(err, &iae) || !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("raise to 15 should be illegal, got %v", err)
	}
	if iae.Reason == "" {
		t.Fatal("illegal action should carry a reason")
	}
	if !reflect.DeepEqual(before, st.Snapshot()) {
		t.Fatal("failed action modified the state")
	}

	st = act(t, st, "p2", Action{Type: Raise, Amount: 20})
	if st.Seats[1].CurrentBet != 20 || st.HighestBet() != 20 {
		t.Fatalf("raise should set bet to 20, got %d", st.Seats[1].CurrentBet)
	}
	if st.Seats[0].Acted || st.Seats[2].Acted {
		t.Fatal("raise should reset the other seats' acted flags")
	}
	if !st.Seats[1].Acted {
		t.Fatal("raiser should be marked as acted")
	}
	if st.MinRaiseTo() != 30 {
		t.Fatalf("next minimum raise should be 30, got %d", st.MinRaiseTo())
	}
	if turnID(t, st) != "p3" {
		t.Fatalf("big blind should act next, got %s", turnID(t, st))
	}
}

func TestLastRaiseSizeSetsMinimum(t *testing.T) {
	t.Parallel()
	st := deal(t, newTable(t, 1000, 1000, 1000), 0, "")
	st = act(t, st, "p1", Action{Type: Raise, Amount: 50})
	if st.MinRaiseTo() != 90 {
		t.Fatalf("raise of 40 should make minimum 90, got %d", st.MinRaiseTo())
	}
	if _, err := ApplyAction(st, "p2", Action{Type: Raise, Amount: 80}); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("raise to 80 should be illegal, got %v", err)
	}
	if _, err := ApplyAction(st, "p2", Action{Type: Raise, Amount: 1001}); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("raise beyond stack should be illegal, got %v", err)
	}
	act(t, st, "p2", Action{Type: Raise, Amount: 90})
}

func TestTurnLegality(t *testing.T) {
	t.Parallel()
	st := deal(t, newTable(t, 1000, 1000, 1000), 0, "")
	before := st.Snapshot()

	for _, id := range []string{"p2", "p3", "nobody"} {
		for _, a := range []Action{{Type: Fold}, {Type: Check}, {Type: Call}, {Type: AllIn}, {Type: Raise, Amount: 20}} {
			if _, err := ApplyAction(st, id, a); !errors.Is(err, ErrIllegalAction) {
				t.Fatalf("%s %s out of turn: expected illegal action, got %v", id, a, err)
			}
		}
	}
	if !reflect.DeepEqual(before, st.Snapshot()) {
		t.Fatal("rejected actions modified the state")
	}
}

func TestCheckAndCallRules(t *testing.T) {
	t.Parallel()
	st := deal(t, newTable(t, 1000, 1000, 1000), 0, "")
	if _, err := ApplyAction(st, "p1", Action{Type: Check}); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("check facing the big blind should be illegal, got %v", err)
	}
	st = act(t, st, "p1", Action{Type: Call})
	st = act(t, st, "p2", Action{Type: Call})

	// Big blind option: everyone matched, but p3 has not acted.
	if turnID(t, st) != "p3" {
		t.Fatalf("big blind should get the option, turn=%s", turnID(t, st))
	}
	if _, err := ApplyAction(st, "p3", Action{Type: Call}); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("call with nothing owed should be illegal, got %v", err)
	}
	st = act(t, st, "p3", Action{Type: Check})

	if st.Street != Flop || len(st.Community) != 3 {
		t.Fatalf("expected flop, got street %s with %d cards", st.Street, len(st.Community))
	}
	if st.Pot != 30 {
		t.Fatalf("expected pot 30 after preflop, got %d", st.Pot)
	}
	for _, s := range st.Seats {
		if s.CurrentBet != 0 || s.Acted {
			t.Fatalf("street state not reset for %s", s.ID)
		}
	}
	if turnID(t, st) != "p2" {
		t.Fatalf("first seat left of the dealer acts postflop, got %s", turnID(t, st))
	}
}

func TestShortCallBecomesAllIn(t *testing.T) {
	t.Parallel()
	st := deal(t, newTable(t, 1000, 1000, 40), 0, "")
	st = act(t, st, "p1", Action{Type: Raise, Amount: 100})
	st = act(t, st, "p2", Action{Type: Fold})
	st = act(t, st, "p3", Action{Type: Call})

	if !st.Seats[2].AllIn || st.Seats[2].Committed != 40 {
		t.Fatalf("short call should put the seat all-in for 40, committed %d", st.Seats[2].Committed)
	}
	if st.Status != StatusCompleted {
		t.Fatalf("with one seat able to act the board should run out, status=%s", st.Status)
	}
	if len(st.Community) != 5 {
		t.Fatalf("expected full board, got %d", len(st.Community))
	}
}

func TestShortAllInReopensWithoutChangingMinimum(t *testing.T) {
	t.Parallel()
	st := deal(t, newTable(t, 1000, 1000, 1000, 18), 0, "")
	// p2 SB, p3 BB, p4 first to act.
	st = act(t, st, "p4", Action{Type: AllIn})
	if st.HighestBet() != 18 {
		t.Fatalf("expected highest bet 18, got %d", st.HighestBet())
	}
	if st.MinRaiseTo() != 28 {
		t.Fatalf("an 8-chip short raise should keep the 10 minimum, min raise to %d", st.MinRaiseTo())
	}
	st = act(t, st, "p1", Action{Type: Call})
	st = act(t, st, "p2", Action{Type: Call})
	if st.Seats[2].Acted {
		t.Fatal("big blind has not acted yet")
	}
	st = act(t, st, "p3", Action{Type: Call})
	if st.Street != Flop {
		t.Fatalf("expected flop after all calls, got %s", st.Street)
	}
}

func TestForceActionChecksOrFolds(t *testing.T) {
	t.Parallel()
	st := deal(t, newTable(t, 1000, 1000, 1000), 0, "")
	next, a, err := ForceAction(st, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if a.Type != Fold || !next.Seats[0].Folded {
		t.Fatalf("facing a bet the default should fold, got %s", a)
	}
	if rec := next.Actions[len(next.Actions)-1]; !rec.Forced {
		t.Fatal("forced action should be recorded as forced")
	}

	st = act(t, next, "p2", Action{Type: Call})
	next, a, err = ForceAction(st, "p3")
	if err != nil {
		t.Fatal(err)
	}
	if a.Type != Check {
		t.Fatalf("with nothing to call the default should check, got %s", a)
	}

	if _, _, err := ForceAction(next, "p3"); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("forcing a seat out of turn should fail, got %v", err)
	}
}

func TestLeavingSeatFoldsInsteadOfChecking(t *testing.T) {
	t.Parallel()
	st := deal(t, newTable(t, 1000, 1000, 1000), 0, "")
	st = act(t, st, "p1", Action{Type: Call})
	st = act(t, st, "p2", Action{Type: Call})

	st, err := MarkLeaving(st, "p3")
	if err != nil {
		t.Fatal(err)
	}
	next, a, err := ForceAction(st, "p3")
	if err != nil {
		t.Fatal(err)
	}
	if a.Type != Fold {
		t.Fatalf("leaving seat should fold, got %s", a)
	}
	if next.Status != StatusInProgress || next.Street != Flop {
		t.Fatalf("two seats remain, hand should continue to the flop, got %s %s", next.Status, next.Street)
	}
}

func TestLegalActions(t *testing.T) {
	t.Parallel()
	st := deal(t, newTable(t, 1000, 1000, 1000), 0, "")
	got := map[ActionType]LegalAction{}
	for _, la := range st.LegalActions() {
		got[la.Type] = la
	}
	if _, ok := got[Check]; ok {
		t.Fatal("check should not be legal facing the big blind")
	}
	if got[Call].Min != 10 {
		t.Fatalf("call should cost 10, got %d", got[Call].Min)
	}
	if got[Raise].Min != 20 || got[Raise].Max != 1000 {
		t.Fatalf("raise bounds should be 20..1000, got %d..%d", got[Raise].Min, got[Raise].Max)
	}
	if got[AllIn].Min != 1000 {
		t.Fatalf("all-in should commit 1000, got %d", got[AllIn].Min)
	}
}
