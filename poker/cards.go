package poker

import (
	"fmt"
	"strings"
)

// Rank is a card rank. Values follow pip counts so Two is 2 and Ace is 14.
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suit is a card suit.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Suits lists every suit in deck order.
var Suits = [4]Suit{Clubs, Diamonds, Hearts, Spades}

// Card is an immutable playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard returns the card with the given rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// Valid reports whether the card is one of the 52 standard cards.
func (c Card) Valid() bool {
	return c.Rank >= Two && c.Rank <= Ace && c.Suit <= Spades
}

// String returns the wire form: rank 2-10,J,Q,K,A followed by a suit letter,
// so the ten of hearts is "10h".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return c.Rank.String() + c.Suit.String()
}

// Index returns a dense 0-51 index for the card.
func (c Card) Index() int {
	return int(c.Suit)*13 + int(c.Rank-Two)
}

// MarshalText encodes the card in its wire form.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid card %d/%d", c.Rank, c.Suit)
	}
	return []byte(c.String()), nil
}

// UnmarshalText accepts any form ParseCard does.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (r Rank) String() string {
	switch r {
	case Ten:
		return "10"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if r >= Two && r <= Nine {
		return string(rune('0' + r))
	}
	return "?"
}

// Name returns the spoken name of the rank, e.g. "Queen".
func (r Rank) Name() string {
	names := [...]string{"Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine", "Ten", "Jack", "Queen", "King", "Ace"}
	if r < Two || r > Ace {
		return "Unknown"
	}
	return names[r-Two]
}

// Plural returns the plural rank name used in hand descriptions.
func (r Rank) Plural() string {
	if r == Six {
		return "Sixes"
	}
	return r.Name() + "s"
}

func (s Suit) String() string {
	switch s {
	case Clubs:
		return "c"
	case Diamonds:
		return "d"
	case Hearts:
		return "h"
	case Spades:
		return "s"
	}
	return "?"
}

// ParseCard parses the wire form ("10h", "Ah") as well as the common
// two-character ten ("Th") and suit symbols ("A♠").
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Card{}, fmt.Errorf("empty card string")
	}

	runes := []rune(s)
	suitRune := runes[len(runes)-1]
	rankPart := strings.ToUpper(string(runes[:len(runes)-1]))

	var rank Rank
	switch rankPart {
	case "2", "3", "4", "5", "6", "7", "8", "9":
		rank = Rank(rankPart[0] - '0')
	case "10", "T":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	case "A":
		rank = Ace
	default:
		return Card{}, fmt.Errorf("invalid rank in card %q", s)
	}

	var suit Suit
	switch suitRune {
	case 'c', 'C', '♣':
		suit = Clubs
	case 'd', 'D', '♦':
		suit = Diamonds
	case 'h', 'H', '♥':
		suit = Hearts
	case 's', 'S', '♠':
		suit = Spades
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// MustParseCard is ParseCard for literals in tests and fixtures.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCards parses a list of cards separated by spaces or commas. Runs of
// cards without separators ("AsKd10h") are also accepted.
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	var cards []Card
	for _, field := range fields {
		for len(field) > 0 {
			n := 2
			if strings.HasPrefix(field, "10") {
				n = 3
			}
			runes := []rune(field)
			if len(runes) < n {
				return nil, fmt.Errorf("truncated card %q", field)
			}
			c, err := ParseCard(string(runes[:n]))
			if err != nil {
				return nil, err
			}
			cards = append(cards, c)
			field = string(runes[n:])
		}
	}
	return cards, nil
}

// MustParseCards is ParseCards for literals in tests and fixtures.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards renders cards in wire form separated by spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
