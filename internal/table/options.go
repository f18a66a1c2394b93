package table

import (
	rand "math/rand/v2"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/orbitdash/pokercore/internal/ai"
	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/randutil"
)

const (
	DefaultTurnTimeout      = 30 * time.Second
	DefaultNextHandDelay    = 8 * time.Second
	DefaultSubscriberBuffer = 32
)

// Hooks are called after the table lock is released, in commit order.
type Hooks struct {
	// HandComplete receives the finished hand. The state must not be modified.
	HandComplete func(st *game.State)
	// SeatRemoved reports a seat that left mid-hand and was removed once the
	// hand ended. Immediate removals are returned to the caller instead.
	SeatRemoved func(gameID string, seat game.Seat)
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock driving turn timeouts, AI think time and the
// delay between hands.
func WithClock(clock quartz.Clock) Option {
	return func(r *Runner) { r.clock = clock }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithRNG sets the source for shuffles, AI think time and AI decisions.
func WithRNG(rng *rand.Rand) Option {
	return func(r *Runner) { r.rng = rng }
}

func WithTurnTimeout(d time.Duration) Option {
	return func(r *Runner) { r.turnTimeout = d }
}

func WithNextHandDelay(d time.Duration) Option {
	return func(r *Runner) { r.nextHandDelay = d }
}

// WithAIThink makes AI seats wait a uniform duration in [lo, hi] before
// acting.
func WithAIThink(lo, hi time.Duration) Option {
	return func(r *Runner) { r.thinkMin, r.thinkMax = lo, max(lo, hi) }
}

// WithProfiles overrides the AI tier profiles.
func WithProfiles(profiles map[game.Difficulty]ai.Profile) Option {
	return func(r *Runner) { r.profiles = profiles }
}

func WithHooks(h Hooks) Option {
	return func(r *Runner) { r.hooks = h }
}

// WithSubscriberBuffer sets how many updates a subscriber may fall behind
// before it is dropped.
func WithSubscriberBuffer(n int) Option {
	return func(r *Runner) { r.subBuffer = n }
}

func (r *Runner) applyDefaults() {
	if r.clock == nil {
		r.clock = quartz.NewReal()
	}
	if r.rng == nil {
		r.rng = randutil.Secure()
	}
	if r.turnTimeout <= 0 {
		r.turnTimeout = DefaultTurnTimeout
	}
	r.nextHandDelay = max(r.nextHandDelay, 0)
	if r.subBuffer <= 0 {
		r.subBuffer = DefaultSubscriberBuffer
	}
	if r.profiles == nil {
		r.profiles = ai.DefaultProfiles
	}
}
