package ai

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/google/uuid"
	"github.com/orbitdash/pokercore/internal/game"
)

// MaxBluffRate caps how often any tier may bluff, whatever its profile says.
const MaxBluffRate = 0.25

// Profile tunes how a tier plays.
type Profile struct {
	// Aggression in [0,1] scales how often and how big the bot bets.
	Aggression float64 `json:"aggression"`
	// BluffFrequency is the chance of representing a strong hand post-flop.
	BluffFrequency float64 `json:"bluffFrequency"`
	// Skill in [0,1] blends true hand strength with a coin flip.
	Skill float64 `json:"skill"`
	// CoinModifier multiplies a human's practice winnings against this tier.
	CoinModifier float64 `json:"coinModifier"`
}

// Validate checks every field is a probability and the modifier is positive.
func (p Profile) Validate() error {
	for name, v := range map[string]float64{
		"aggression":      p.Aggression,
		"bluff_frequency": p.BluffFrequency,
		"skill":           p.Skill,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s %.2f outside [0,1]", name, v)
		}
	}
	if p.CoinModifier <= 0 || p.CoinModifier > 1 {
		return fmt.Errorf("coin_modifier %.2f outside (0,1]", p.CoinModifier)
	}
	return nil
}

// DefaultProfiles are the built-in tiers.
var DefaultProfiles = map[game.Difficulty]Profile{
	game.Novice:       {Aggression: 0.2, BluffFrequency: 0.05, Skill: 0.3, CoinModifier: 0.2},
	game.Intermediate: {Aggression: 0.5, BluffFrequency: 0.15, Skill: 0.6, CoinModifier: 0.6},
	game.Expert:       {Aggression: 0.8, BluffFrequency: 0.25, Skill: 0.9, CoinModifier: 1.0},
}

// ProfileFor returns the default profile, falling back to novice for an
// unknown tier.
func ProfileFor(d game.Difficulty) Profile {
	if p, ok := DefaultProfiles[d]; ok {
		return p
	}
	return DefaultProfiles[game.Novice]
}

// CoinModifier is the payout multiplier for practice games against d.
func CoinModifier(d game.Difficulty) float64 {
	return ProfileFor(d).CoinModifier
}

// Daily winnings thresholds for diminishing practice rewards.
const (
	DailyFullRewardLimit = 200
	DailyHalfRewardLimit = 500
)

// DailyModifier scales practice profit by how much the player has already
// won today: full up to 200, half up to 500, a quarter after that.
func DailyModifier(wonToday int) float64 {
	switch {
	case wonToday <= DailyFullRewardLimit:
		return 1.0
	case wonToday <= DailyHalfRewardLimit:
		return 0.5
	default:
		return 0.25
	}
}

var names = map[game.Difficulty][]string{
	game.Novice:       {"Lucky Larry", "Fold Frank", "Cautious Carl", "Timid Tim", "Nervous Ned"},
	game.Intermediate: {"Steady Steve", "Balanced Bob", "Mid Mike", "Tactical Tom", "Strategic Sam"},
	game.Expert:       {"Pro Pete", "Shark Sally", "Ace Anna", "Killer Kevin", "Master Max"},
}

// Names returns the name pool for a tier.
func Names(d game.Difficulty) []string {
	return names[d]
}

// PickNames draws n distinct display names for a tier, cycling with a
// numeric suffix if the pool runs out.
func PickNames(d game.Difficulty, n int, rng *rand.Rand) []string {
	pool := append([]string(nil), names[ProfileDifficulty(d)]...)
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	out := make([]string, n)
	for i := range out {
		out[i] = pool[i%len(pool)]
		if i >= len(pool) {
			out[i] = fmt.Sprintf("%s %d", out[i], i/len(pool)+1)
		}
	}
	return out
}

// ProfileDifficulty normalises unknown tiers to novice.
func ProfileDifficulty(d game.Difficulty) game.Difficulty {
	if _, ok := DefaultProfiles[d]; ok {
		return d
	}
	return game.Novice
}

// NewSeatID returns an id for an AI seat, e.g. ai-expert-1b4e28ba.
func NewSeatID(d game.Difficulty) string {
	return fmt.Sprintf("ai-%s-%s", ProfileDifficulty(d), uuid.NewString()[:8])
}
