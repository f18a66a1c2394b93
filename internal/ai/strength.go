package ai

import (
	"github.com/orbitdash/pokercore/poker"
)

// PreflopStrength scores two hole cards in [0,1]. Pairs start at 0.7;
// unpaired hands gain for high cards, suitedness and connectedness.
func PreflopStrength(hole []poker.Card) float64 {
	if len(hole) != 2 {
		return 0
	}
	high, low := float64(hole[0].Rank), float64(hole[1].Rank)
	if low > high {
		high, low = low, high
	}

	strength := 0.3
	if high == low {
		strength += 0.4 + high/14*0.2
		return min(strength, 1)
	}
	strength += high/14*0.2 + low/14*0.1
	if hole[0].Suit == hole[1].Suit {
		strength += 0.1
	}
	if gap := high - low; gap <= 4 {
		strength += (5 - gap) * 0.02
	}
	return min(strength, 1)
}

var categoryStrength = [...]float64{
	poker.HighCard:      0.1,
	poker.Pair:          0.3,
	poker.TwoPair:       0.5,
	poker.ThreeOfAKind:  0.6,
	poker.Straight:      0.7,
	poker.Flush:         0.75,
	poker.FullHouse:     0.85,
	poker.FourOfAKind:   0.93,
	poker.StraightFlush: 0.98,
	poker.RoyalFlush:    1.0,
}

// HandStrength scores the seat's holding in [0,1]: the preflop heuristic
// before the flop, the made-hand category after it.
func HandStrength(hole, board []poker.Card) float64 {
	if len(hole) != 2 {
		return 0
	}
	if len(board) == 0 {
		return PreflopStrength(hole)
	}
	h, err := poker.BestHand(hole, board)
	if err != nil {
		return 0.5
	}
	return categoryStrength[h.Category]
}

// Texture describes how coordinated the board is.
type Texture struct {
	Paired    bool
	Monotone  bool
	Connected bool
}

// Dangerous reports whether the board makes big hands likely.
func (t Texture) Dangerous() bool {
	return t.Paired || t.Monotone || t.Connected
}

// BoardTexture reads the community cards. Monotone means three or more of
// one suit; connected means three ranks within a five-rank window.
func BoardTexture(board []poker.Card) Texture {
	var t Texture
	var suits [4]int
	var ranks uint16
	for _, c := range board {
		suits[c.Suit]++
		bit := uint16(1) << c.Rank
		if ranks&bit != 0 {
			t.Paired = true
		}
		ranks |= bit
	}
	for _, n := range suits {
		if n >= 3 {
			t.Monotone = true
		}
	}
	if ranks&(1<<poker.Ace) != 0 {
		ranks |= 1 << 1
	}
	for low := 1; low <= 10; low++ {
		window := ranks >> low & 0x1f
		if popcount(window) >= 3 {
			t.Connected = true
			break
		}
	}
	return t
}

func popcount(x uint16) int {
	n := 0
	for ; x != 0; x &= x - 1 {
		n++
	}
	return n
}

// MadeHand reports whether the seat holds a pair or better after the flop.
func MadeHand(hole, board []poker.Card) bool {
	if len(board) < 3 {
		return len(hole) == 2 && hole[0].Rank == hole[1].Rank
	}
	h, err := poker.BestHand(hole, board)
	return err == nil && h.Category > poker.HighCard
}

// PositionStrength rates a seat's position in [0,1]. rel runs from 1 for the
// seat left of the dealer up to players for the dealer. The last two seats
// to act score 0.9, the middle 0.6 and the blinds and early seats 0.3.
func PositionStrength(rel, players int) float64 {
	if players <= 0 {
		return 0.3
	}
	// Shift so the dealer sits at players-1 and the small blind at 0.
	pos := rel - 1
	switch {
	case pos >= players-2:
		return 0.9
	case float64(pos) >= float64(players)/2:
		return 0.6
	default:
		return 0.3
	}
}
