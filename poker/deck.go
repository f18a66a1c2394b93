package poker

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/orbitdash/pokercore/internal/randutil"
)

// ErrInsufficientCards is returned when a deal asks for more cards than remain.
var ErrInsufficientCards = errors.New("insufficient cards in deck")

// InsufficientCardsError carries the failed request. It matches ErrInsufficientCards.
type InsufficientCardsError struct {
	Requested int
	Remaining int
}

func (e *InsufficientCardsError) Error() string {
	return fmt.Sprintf("cannot deal %d cards, %d remaining", e.Requested, e.Remaining)
}

func (e *InsufficientCardsError) Unwrap() error { return ErrInsufficientCards }

// Deck represents a standard 52-card deck
type Deck struct {
	cards [52]Card // Fixed size array
	next  int
	rng   *rand.Rand
}

// NewDeck creates a new shuffled deck. A nil rng shuffles from a
// crypto-seeded source, pass randutil.New(seed) for reproducible deals.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = randutil.Secure()
	}
	d := &Deck{rng: rng}
	d.fill()
	d.Shuffle()
	return d
}

// NewOrderedDeck returns an unshuffled deck that deals the given cards first,
// followed by the remaining cards in suit/rank order. Duplicates are rejected.
func NewOrderedDeck(top ...Card) (*Deck, error) {
	d := &Deck{}
	seen := make(map[Card]bool, len(top))
	i := 0
	for _, c := range top {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid card %v", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
		d.cards[i] = c
		i++
	}
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			if seen[c] {
				continue
			}
			d.cards[i] = c
			i++
		}
	}
	return d, nil
}

func (d *Deck) fill() {
	i := 0
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
	d.next = 0
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	d.next = 0
	if d.rng == nil {
		d.rng = randutil.Secure()
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes n cards from the top of the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, &InsufficientCardsError{Requested: n, Remaining: d.Remaining()}
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Clone returns an independent copy sharing the shuffle source.
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}
