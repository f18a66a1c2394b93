// Package ai implements the built-in opponents seated at practice tables.
package ai

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/randutil"
	"github.com/orbitdash/pokercore/poker"
	"github.com/rs/zerolog"
)

// Policy decides actions for one AI seat. It is not safe for concurrent use;
// the table runner asks each seat's policy for at most one decision at a time.
type Policy struct {
	difficulty game.Difficulty
	profile    Profile
	rng        *rand.Rand
	logger     zerolog.Logger
}

// Option configures a Policy.
type Option func(*Policy)

// WithRNG sets the random source, for reproducible play in tests and
// simulations.
func WithRNG(rng *rand.Rand) Option {
	return func(p *Policy) { p.rng = rng }
}

// WithLogger sets the logger used for decision traces.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Policy) { p.logger = logger }
}

// WithProfile overrides the tier's default profile.
func WithProfile(profile Profile) Option {
	return func(p *Policy) { p.profile = profile }
}

// NewPolicy creates a policy for the tier.
func NewPolicy(d game.Difficulty, opts ...Option) *Policy {
	d = ProfileDifficulty(d)
	p := &Policy{
		difficulty: d,
		profile:    ProfileFor(d),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = randutil.Secure()
	}
	p.logger = p.logger.With().Str("component", "ai").Str("difficulty", string(d)).Logger()
	return p
}

// Difficulty returns the tier this policy plays.
func (p *Policy) Difficulty() game.Difficulty { return p.difficulty }

// intent is what the bot would like to do before it is fitted to the legal
// action list.
type intent struct {
	action game.ActionType
	// raiseTo is the desired total bet for a raise.
	raiseTo int
	reason  string
}

// Decide returns a legal action for the seat described by view. When no
// legal action can be built it logs and folds.
func (p *Policy) Decide(view game.DecisionView) game.Action {
	var in intent
	switch p.difficulty {
	case game.Novice:
		in = p.novice(view)
	default:
		in = p.weighed(view, p.difficulty == game.Expert)
	}
	action, err := fit(view, in)
	if err != nil {
		p.logger.Error().Err(err).Str("seat", view.SeatID).Msg("No legal action available, folding")
		return game.Action{Type: game.Fold}
	}
	p.logger.Debug().
		Str("seat", view.SeatID).
		Str("street", view.Street.String()).
		Str("action", action.String()).
		Str("reason", in.reason).
		Msg("AI decision")
	return action
}

// novice plays a coarse game: it mostly checks and calls, folds hands with
// nothing made when facing a bet, and only raises the rare monster.
func (p *Policy) novice(v game.DecisionView) intent {
	strength := HandStrength(v.HoleCards, v.Community)
	texture := BoardTexture(v.Community)

	weak := len(v.HoleCards) != 2
	switch {
	case weak:
	case len(v.Community) == 0:
		weak = poker.CategorizeHoleCards(v.HoleCards[0], v.HoleCards[1]) == poker.CategoryTrash
	default:
		weak = !MadeHand(v.HoleCards, v.Community)
		// A lone pair on a coordinated board is not worth a big call.
		if !weak && strength <= categoryStrength[poker.Pair] && texture.Dangerous() && v.PotOdds > 0.3 {
			weak = true
		}
	}

	if v.ToCall > 0 && weak && v.ToCall > v.BigBlind {
		return intent{action: game.Fold, reason: fmt.Sprintf("weak hand (%.2f) facing %d", strength, v.ToCall)}
	}
	if strength >= 0.85 && p.rng.Float64() < p.profile.Aggression*0.5 {
		return intent{action: game.Raise, raiseTo: v.MinRaiseTo, reason: "min-raise with a monster"}
	}
	if v.ToCall > 0 {
		return intent{action: game.Call, reason: "calling station"}
	}
	return intent{action: game.Check, reason: "checking"}
}

// weighed blends hand strength with skill, position and pot odds. Experts
// also bluff at a bounded rate when the call is cheap.
func (p *Policy) weighed(v game.DecisionView, bluffs bool) intent {
	strength := HandStrength(v.HoleCards, v.Community)
	position := PositionStrength(v.RelativePosition, v.Players)
	skill := p.profile.Skill
	adjusted := strength*skill + (1-skill)*0.5

	threshold := 0.5 - position*0.1 + v.PotOdds*0.2
	if !bluffs {
		// Pot odds weigh twice as heavily for tiers that never bluff.
		threshold += v.PotOdds * 0.2
	}

	final := adjusted
	bluffing := false
	if bluffs && v.Street != game.Preflop && position > 0.6 && v.PotOdds < 0.25 &&
		p.rng.Float64() < min(p.profile.BluffFrequency, MaxBluffRate) {
		final = min(adjusted+0.3, 1)
		bluffing = true
	}

	highest := v.CurrentBet + v.ToCall
	switch {
	case final < 0.2 && v.ToCall > 0:
		return intent{action: game.Fold, reason: fmt.Sprintf("weak hand (%.2f), folding to bet", final)}

	case final < threshold:
		if v.ToCall == 0 {
			return intent{action: game.Check, reason: fmt.Sprintf("weak hand (%.2f), checking", final)}
		}
		if v.PotOdds < 0.3 {
			return intent{action: game.Call, reason: "weak hand, good pot odds"}
		}
		return intent{action: game.Fold, reason: "weak hand, poor pot odds"}

	case final < 0.7:
		if v.ToCall > 0 {
			return intent{action: game.Call, reason: "calling with medium hand"}
		}
		if p.rng.Float64() < p.profile.Aggression*0.3 {
			size := int(float64(v.Pot) * (0.3 + p.rng.Float64()*0.3))
			return intent{action: game.Raise, raiseTo: highest + size, reason: "probing bet with medium hand"}
		}
		return intent{action: game.Check, reason: fmt.Sprintf("medium hand (%.2f), checking", final)}
	}

	mult := 0.5 + p.profile.Aggression*0.5
	spread := 0.4 + p.rng.Float64()*0.3
	if final > 0.9 {
		spread = 0.7 + p.rng.Float64()*0.5
	}
	size := int(float64(v.Pot) * spread * mult)
	if size >= v.Stack {
		return intent{action: game.AllIn, reason: fmt.Sprintf("all-in with strong hand (%.2f)", final)}
	}
	if v.ToCall > 0 && p.rng.Float64() < (1-p.profile.Aggression)*0.4 {
		return intent{action: game.Call, reason: "slow-playing strong hand"}
	}
	reason := fmt.Sprintf("raising with strong hand (%.2f)", final)
	if bluffing {
		reason = "bluff raise"
	}
	return intent{action: game.Raise, raiseTo: max(highest+size, highest*2), reason: reason}
}

// fit maps an intent onto the legal action list. Raises are clamped into
// the legal range and become all-in at the top of it; a raise that is not
// allowed degrades to a call or check; a free fold becomes a check.
func fit(v game.DecisionView, in intent) (game.Action, error) {
	_, canCheck := v.LegalFor(game.Check)
	_, canCall := v.LegalFor(game.Call)
	passive := func() (game.Action, bool) {
		switch {
		case canCheck:
			return game.Action{Type: game.Check}, true
		case canCall:
			return game.Action{Type: game.Call}, true
		}
		return game.Action{}, false
	}

	switch in.action {
	case game.Fold:
		if canCheck {
			return game.Action{Type: game.Check}, nil
		}
	case game.Check, game.Call:
		if a, ok := passive(); ok {
			return a, nil
		}
	case game.Raise:
		if la, ok := v.LegalFor(game.Raise); ok {
			to := min(max(in.raiseTo, la.Min), la.Max)
			if to == la.Max {
				return game.Action{Type: game.AllIn}, nil
			}
			return game.Action{Type: game.Raise, Amount: to}, nil
		}
		if a, ok := passive(); ok {
			return a, nil
		}
	case game.AllIn:
		if _, ok := v.LegalFor(game.AllIn); ok {
			return game.Action{Type: game.AllIn}, nil
		}
	}
	if _, ok := v.LegalFor(game.Fold); ok {
		return game.Action{Type: game.Fold}, nil
	}
	return game.Action{}, fmt.Errorf("no legal actions for seat %s", v.SeatID)
}
