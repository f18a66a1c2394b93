package poker

import (
	"errors"
	"testing"

	"github.com/orbitdash/pokercore/internal/randutil"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	t.Parallel()
	d := NewDeck(randutil.New(1))
	if d.Remaining() != 52 {
		t.Fatalf("expected 52 cards, got %d", d.Remaining())
	}
	cards, err := d.Deal(52)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[Card]bool)
	for _, c := range cards {
		if !c.Valid() {
			t.Fatalf("invalid card %v", c)
		}
		if seen[c] {
			t.Fatalf("duplicate card %s", c)
		}
		seen[c] = true
	}
}

func TestDeckDeterministicWithSeed(t *testing.T) {
	t.Parallel()
	a, _ := NewDeck(randutil.New(99)).Deal(10)
	b, _ := NewDeck(randutil.New(99)).Deal(10)
	if FormatCards(a) != FormatCards(b) {
		t.Fatalf("same seed dealt %s and %s", FormatCards(a), FormatCards(b))
	}
	c, _ := NewDeck(randutil.New(100)).Deal(10)
	if FormatCards(a) == FormatCards(c) {
		t.Fatal("different seeds dealt identical sequences")
	}
}

func TestDeckNilRNGShuffles(t *testing.T) {
	t.Parallel()
	d := NewDeck(nil)
	if d.Remaining() != 52 {
		t.Fatalf("expected 52 cards, got %d", d.Remaining())
	}
}

func TestDealInsufficientCards(t *testing.T) {
	t.Parallel()
	d := NewDeck(randutil.New(3))
	if _, err := d.Deal(50); err != nil {
		t.Fatal(err)
	}
	_, err := d.Deal(3)
	if !errors.Is(err, ErrInsufficientCards) {
		t.Fatalf("expected ErrInsufficientCards, got %v", err)
	}
	var ice *InsufficientCardsError
	if !errors.As(err, &ice) || ice.Requested != 3 || ice.Remaining != 2 {
		t.Fatalf("unexpected error detail %+v", ice)
	}
	if d.Remaining() != 2 {
		t.Fatalf("failed deal consumed cards, remaining %d", d.Remaining())
	}
}

func TestOrderedDeck(t *testing.T) {
	t.Parallel()
	d, err := NewOrderedDeck(MustParseCards("As Ks 10h")...)
	if err != nil {
		t.Fatal(err)
	}
	top, _ := d.Deal(3)
	if FormatCards(top) != "As Ks 10h" {
		t.Fatalf("unexpected top cards %s", FormatCards(top))
	}
	if d.Remaining() != 49 {
		t.Fatalf("expected 49 remaining, got %d", d.Remaining())
	}

	if _, err := NewOrderedDeck(MustParseCards("As As")...); err == nil {
		t.Fatal("expected duplicate card error")
	}
}

func TestDeckCloneIsIndependent(t *testing.T) {
	t.Parallel()
	d := NewDeck(randutil.New(5))
	cp := d.Clone()
	first, _ := d.Deal(2)
	again, _ := cp.Deal(2)
	if FormatCards(first) != FormatCards(again) {
		t.Fatal("clone should deal the same cards")
	}
	if d.Remaining() != 50 || cp.Remaining() != 50 {
		t.Fatal("clones should track position independently")
	}
}
