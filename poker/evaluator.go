package poker

import (
	"errors"
	"fmt"
	"math/bits"
)

// Category enumerates the hand categories ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name produced by MarshalText.
func (c *Category) UnmarshalText(text []byte) error {
	for cat := HighCard; cat <= RoyalFlush; cat++ {
		if cat.String() == string(text) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown hand category %q", text)
}

// ErrInvalidHand is returned when Evaluate receives an unusable card set.
var ErrInvalidHand = errors.New("invalid hand")

// EvaluatedHand is the best five-card hand found in a card set.
type EvaluatedHand struct {
	Category Category
	// Ranks holds the tiebreak ranks in significance order, e.g. for a full
	// house the trips rank then the pair rank. A wheel straight reports Five.
	Ranks []Rank
	Cards [5]Card
}

// Score packs category and tiebreak ranks into an integer that orders hands
// exactly like Compare.
func (h EvaluatedHand) Score() uint32 {
	score := uint32(h.Category) << 20
	for i := 0; i < 5; i++ {
		var r Rank
		if i < len(h.Ranks) {
			r = h.Ranks[i]
		}
		score |= uint32(r) << (16 - 4*i)
	}
	return score
}

// String describes the hand, e.g. "Full House, Kings full of Fours".
func (h EvaluatedHand) String() string {
	if len(h.Ranks) == 0 {
		return h.Category.String()
	}
	top := h.Ranks[0]
	switch h.Category {
	case HighCard:
		return fmt.Sprintf("High Card, %s", top.Name())
	case Pair:
		return fmt.Sprintf("Pair of %s", top.Plural())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", top.Plural(), h.Ranks[1].Plural())
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", top.Plural())
	case Straight:
		return fmt.Sprintf("Straight, %s high", top.Name())
	case Flush:
		return fmt.Sprintf("Flush, %s high", top.Name())
	case FullHouse:
		return fmt.Sprintf("Full House, %s full of %s", top.Plural(), h.Ranks[1].Plural())
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", top.Plural())
	case StraightFlush:
		return fmt.Sprintf("Straight Flush, %s high", top.Name())
	default:
		return h.Category.String()
	}
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 for a tie.
func Compare(a, b EvaluatedHand) int {
	sa, sb := a.Score(), b.Score()
	switch {
	case sa > sb:
		return 1
	case sa < sb:
		return -1
	}
	return 0
}

// Evaluate finds the best five-card hand among 5 to 7 distinct cards.
func Evaluate(cards []Card) (EvaluatedHand, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return EvaluatedHand{}, fmt.Errorf("%w: need 5-7 cards, got %d", ErrInvalidHand, len(cards))
	}

	var suitMasks [4]uint16
	for _, c := range cards {
		if !c.Valid() {
			return EvaluatedHand{}, fmt.Errorf("%w: invalid card %v", ErrInvalidHand, c)
		}
		bit := uint16(1) << (c.Rank - Two)
		if suitMasks[c.Suit]&bit != 0 {
			return EvaluatedHand{}, fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c)
		}
		suitMasks[c.Suit] |= bit
	}

	category, ranks, flushSuit := rankFromMasks(suitMasks)
	h := EvaluatedHand{Category: category, Ranks: ranks}
	h.Cards = selectCards(cards, category, ranks, flushSuit)
	return h, nil
}

// MustEvaluate is Evaluate for known-good card sets.
func MustEvaluate(cards []Card) EvaluatedHand {
	h, err := Evaluate(cards)
	if err != nil {
		panic(err)
	}
	return h
}

// BestHand evaluates hole cards together with the board.
func BestHand(hole, board []Card) (EvaluatedHand, error) {
	all := make([]Card, 0, len(hole)+len(board))
	all = append(all, hole...)
	all = append(all, board...)
	return Evaluate(all)
}

// rankFromMasks classifies the card set. Flushes are checked first: with at
// most seven cards a flush cannot coexist with quads or a full house.
func rankFromMasks(suitMasks [4]uint16) (Category, []Rank, int) {
	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]
	rankMask := s0 | s1 | s2 | s3

	for suit, suitMask := range suitMasks {
		if bits.OnesCount16(suitMask) < 5 {
			continue
		}
		if high := straightHigh(suitMask); high > 0 {
			if high == Ace {
				return RoyalFlush, []Rank{Ace}, suit
			}
			return StraightFlush, []Rank{high}, suit
		}
		return Flush, topRanks(suitMask, 5), suit
	}

	quadsMask := s0 & s1 & s2 & s3
	tripCandidates := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	tripsMask := tripCandidates &^ quadsMask
	pairsMask := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripCandidates

	if quadsMask != 0 {
		quad := highest(quadsMask)
		kicker := topRanks(rankMask&^rankBit(quad), 1)
		return FourOfAKind, append([]Rank{quad}, kicker...), -1
	}

	if tripsMask != 0 {
		trip := highest(tripsMask)
		if rest := (tripsMask &^ rankBit(trip)) | pairsMask; rest != 0 {
			return FullHouse, []Rank{trip, highest(rest)}, -1
		}
	}

	if high := straightHigh(rankMask); high > 0 {
		return Straight, []Rank{high}, -1
	}

	if tripsMask != 0 {
		trip := highest(tripsMask)
		return ThreeOfAKind, append([]Rank{trip}, topRanks(rankMask&^rankBit(trip), 2)...), -1
	}

	if pairsMask != 0 {
		hi := highest(pairsMask)
		if rest := pairsMask &^ rankBit(hi); rest != 0 {
			lo := highest(rest)
			kicker := topRanks(rankMask&^rankBit(hi)&^rankBit(lo), 1)
			return TwoPair, append([]Rank{hi, lo}, kicker...), -1
		}
		return Pair, append([]Rank{hi}, topRanks(rankMask&^rankBit(hi), 3)...), -1
	}

	return HighCard, topRanks(rankMask, 5), -1
}

// selectCards picks the concrete five cards matching the classified ranks.
func selectCards(cards []Card, category Category, ranks []Rank, flushSuit int) [5]Card {
	var out [5]Card
	n := 0
	used := make(map[Card]bool, 5)
	take := func(rank Rank, count int, suit int) {
		for _, c := range cards {
			if n == 5 || count == 0 {
				return
			}
			if c.Rank != rank || used[c] || (suit >= 0 && int(c.Suit) != suit) {
				continue
			}
			used[c] = true
			out[n] = c
			n++
			count--
		}
	}

	switch category {
	case StraightFlush, RoyalFlush, Straight:
		for _, r := range straightRanks(ranks[0]) {
			take(r, 1, flushSuit)
		}
	case Flush, HighCard:
		for _, r := range ranks {
			take(r, 1, flushSuit)
		}
	case FourOfAKind:
		take(ranks[0], 4, -1)
		take(ranks[1], 1, -1)
	case FullHouse:
		take(ranks[0], 3, -1)
		take(ranks[1], 2, -1)
	case ThreeOfAKind:
		take(ranks[0], 3, -1)
		for _, r := range ranks[1:] {
			take(r, 1, -1)
		}
	case TwoPair:
		take(ranks[0], 2, -1)
		take(ranks[1], 2, -1)
		take(ranks[2], 1, -1)
	case Pair:
		take(ranks[0], 2, -1)
		for _, r := range ranks[1:] {
			take(r, 1, -1)
		}
	}
	return out
}

func straightRanks(high Rank) []Rank {
	if high == Five {
		return []Rank{Five, Four, Three, Two, Ace}
	}
	return []Rank{high, high - 1, high - 2, high - 3, high - 4}
}

func rankBit(r Rank) uint16 {
	return 1 << (r - Two)
}

// highest returns the highest rank present in the bitmask.
func highest(mask uint16) Rank {
	return Rank(bits.Len16(mask)-1) + Two
}

// topRanks returns the top n ranks of the mask in descending order.
func topRanks(mask uint16, n int) []Rank {
	ranks := make([]Rank, 0, n)
	for len(ranks) < n && mask != 0 {
		r := highest(mask)
		ranks = append(ranks, r)
		mask &^= rankBit(r)
	}
	return ranks
}

// straightHigh returns the high card of the best straight in the mask, or 0.
// The wheel (A-2-3-4-5) reports Five.
func straightHigh(mask uint16) Rank {
	const wheelMask = 0x100F // Ace + 2-3-4-5
	mask &= 0x1FFF

	// Bitwise cascade identifies consecutive sequences in one pass.
	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		low := Rank(bits.Len16(seq)-1) + Two
		return low + 4
	}
	if mask&wheelMask == wheelMask {
		return Five
	}
	return 0
}
