package game

import (
	rand "math/rand/v2"

	"github.com/orbitdash/pokercore/poker"
)

// HandOption configures StartHand.
type HandOption func(*handConfig)

type handConfig struct {
	rng    *rand.Rand
	deck   *poker.Deck
	button int
}

// WithRNG shuffles the hand's deck from rng. Without it the deck is shuffled
// from a crypto-seeded source.
func WithRNG(rng *rand.Rand) HandOption {
	return func(c *handConfig) {
		c.rng = rng
	}
}

// WithDeck deals from a prepared deck. It overrides WithRNG.
func WithDeck(deck *poker.Deck) HandOption {
	return func(c *handConfig) {
		c.deck = deck
	}
}

// WithButton places the dealer button on a specific seat instead of rotating
// it. Ignored when that seat cannot be dealt in.
func WithButton(seat int) HandOption {
	return func(c *handConfig) {
		c.button = seat
	}
}
