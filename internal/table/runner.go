package table

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/orbitdash/pokercore/internal/ai"
	"github.com/orbitdash/pokercore/internal/animation"
	"github.com/orbitdash/pokercore/internal/game"
)

// ErrClosed is returned by every operation on a closed runner.
var ErrClosed = errors.New("table is closed")

// Turn identifies one decision point. Submissions carrying a turn that has
// already passed are rejected as illegal.
type Turn struct {
	HandNumber int
	// Action is the number of actions taken earlier in the hand.
	Action int
	SeatID string
}

type published struct {
	seq  uint64
	snap game.Snapshot
}

// Runner owns one table's state.
type Runner struct {
	id     string
	clock  quartz.Clock
	logger zerolog.Logger
	rng    *rand.Rand
	hooks  Hooks

	turnTimeout   time.Duration
	nextHandDelay time.Duration
	thinkMin      time.Duration
	thinkMax      time.Duration
	profiles      map[game.Difficulty]ai.Profile
	subBuffer     int

	mu            sync.Mutex
	state         *game.State
	seq           uint64
	turn          Turn
	turnTimer     *quartz.Timer
	nextHandTimer *quartz.Timer
	completedHand int
	subs          map[int]*subscriber
	nextSubID     int
	pending       []func()
	started       bool
	closed        bool

	current atomic.Pointer[published]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a runner for an empty table.
func New(id string, cfg game.TableConfig, opts ...Option) (*Runner, error) {
	st, err := game.NewState(id, cfg)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		id:            id,
		logger:        zerolog.Nop(),
		turnTimeout:   DefaultTurnTimeout,
		nextHandDelay: DefaultNextHandDelay,
		subs:          make(map[int]*subscriber),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.applyDefaults()
	r.logger = r.logger.With().Str("component", "table").Str("game_id", id).Logger()
	r.ctx, r.cancel = context.WithCancel(context.Background())

	r.state = st
	r.current.Store(&published{snap: st.Snapshot()})
	return r, nil
}

// ID returns the table id.
func (r *Runner) ID() string { return r.id }

// Snapshot returns the last committed state as seen by viewerID. It never
// blocks on the writer.
func (r *Runner) Snapshot(viewerID string) game.Snapshot {
	return r.current.Load().snap.ViewFor(viewerID)
}

// Seq returns the sequence number of the last committed state.
func (r *Runner) Seq() uint64 {
	return r.current.Load().seq
}

// State returns a copy of the authoritative state.
func (r *Runner) State() *game.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Act applies a human player's action. Turn order and amounts are checked by
// the betting engine.
func (r *Runner) Act(seatID string, a game.Action) error {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return ErrClosed
	}
	next, err := game.ApplyAction(r.state, seatID, a)
	if err != nil {
		return err
	}
	r.logger.Debug().Str("seat_id", seatID).Stringer("action", a).Msg("Player action")
	r.commit(next)
	return nil
}

// Submit applies an action for a specific turn. AI decisions come back
// through here once they finish thinking.
func (r *Runner) Submit(turn Turn, a game.Action) error {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return ErrClosed
	}
	if turn != r.turn || r.state.Status != game.StatusInProgress {
		return &game.IllegalActionError{SeatID: turn.SeatID, Action: a.Type, Reason: "turn has already passed"}
	}
	next, err := game.ApplyAction(r.state, turn.SeatID, a)
	if err != nil {
		return err
	}
	r.commit(next)
	return nil
}

// CurrentTurn reports the decision point the table is waiting on.
func (r *Runner) CurrentTurn() (Turn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.turn, r.state.Status == game.StatusInProgress && r.turn.SeatID != ""
}

// Start lets the table deal. The first hand starts now if enough funded
// players are seated, otherwise as soon as they are.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.unlock()
	if r.closed {
		return ErrClosed
	}
	if r.started {
		return nil
	}
	r.started = true
	if r.state.Status != game.StatusInProgress && startable(r.state) {
		r.startHand()
	}
	return nil
}

// Close stops timers and AI goroutines and ends every subscription.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.stopTurnTimer()
	if r.nextHandTimer != nil {
		r.nextHandTimer.Stop()
		r.nextHandTimer = nil
	}
	for id, sub := range r.subs {
		close(sub.ch)
		delete(r.subs, id)
	}
	r.unlock()

	r.cancel()
	r.wg.Wait()
}

// unlock releases the table and runs hooks queued during the transition.
func (r *Runner) unlock() {
	hooks := r.pending
	r.pending = nil
	r.mu.Unlock()
	for _, h := range hooks {
		h()
	}
}

// commit publishes next and applies every transition that follows from it
// without outside input. Callers hold r.mu.
func (r *Runner) commit(next *game.State) {
	for next != nil {
		r.publish(next)
		next = r.followUp(next)
	}
}

func (r *Runner) publish(st *game.State) {
	r.state = st
	snap := st.Snapshot()
	prev := r.current.Load()
	events := animation.Derive(prev.snap, snap)
	r.seq++
	r.current.Store(&published{seq: r.seq, snap: snap})
	r.broadcast(Update{Seq: r.seq, Snapshot: snap, Events: events})
}

// followUp returns the next automatic transition, or nil when the table is
// waiting on a player, a timer or a seat change.
func (r *Runner) followUp(st *game.State) *game.State {
	switch st.Status {
	case game.StatusInProgress:
		cur := st.CurrentSeat()
		if cur != nil && cur.LeavePending {
			next, a, err := game.ForceAction(st, cur.ID)
			if err != nil {
				r.logger.Error().Err(err).Str("seat_id", cur.ID).Msg("Failed to fold leaving seat")
				return nil
			}
			r.logger.Debug().Str("seat_id", cur.ID).Stringer("action", a).Msg("Leaving seat folded")
			return next
		}
		r.beginTurn(st)
		return nil

	case game.StatusCompleted:
		r.stopTurnTimer()
		if st.HandNumber > r.completedHand {
			r.completedHand = st.HandNumber
			r.logger.Info().Int("hand", st.HandNumber).Strs("winners", st.Result.WinnerIDs()).
				Int("pot", st.Result.FinalPot).Msg("Hand complete")
			if fn := r.hooks.HandComplete; fn != nil {
				r.pending = append(r.pending, func() { fn(st) })
			}
		}
		if next := r.removeLeavers(st); next != nil {
			return next
		}
		if !startable(st) {
			return game.Wait(st)
		}
		if r.nextHandTimer == nil {
			r.scheduleNextHand(r.nextHandDelay)
		}
		return nil

	default:
		// A started table deals as soon as enough players are seated.
		if !r.started || !startable(st) {
			return nil
		}
		return r.dealFrom(st)
	}
}

// removeLeavers frees seats that asked to leave during the hand.
func (r *Runner) removeLeavers(st *game.State) *game.State {
	ids := st.PendingLeavers()
	if len(ids) == 0 {
		return nil
	}
	next := st
	for _, id := range ids {
		after, seat, err := game.RemoveSeat(next, id)
		if err != nil {
			r.logger.Error().Err(err).Str("seat_id", id).Msg("Failed to remove leaving seat")
			continue
		}
		next = after
		r.logger.Info().Str("seat_id", id).Int("stack", seat.Stack).Msg("Seat left after hand")
		if fn := r.hooks.SeatRemoved; fn != nil {
			r.pending = append(r.pending, func() { fn(r.id, seat) })
		}
	}
	if next == st {
		return nil
	}
	return next
}

// startable reports whether a hand can be dealt: two funded seats, at least
// one of them human so AI seats never play on alone.
func startable(st *game.State) bool {
	if st.FundedSeats() < game.MinSeats {
		return false
	}
	for _, s := range st.Seats {
		if s.Funded() && !s.IsAI {
			return true
		}
	}
	return false
}

func (r *Runner) scheduleNextHand(delay time.Duration) {
	if r.nextHandTimer != nil {
		r.nextHandTimer.Stop()
	}
	r.nextHandTimer = r.clock.AfterFunc(delay, func() {
		r.mu.Lock()
		defer r.unlock()
		r.nextHandTimer = nil
		if r.closed || r.state.Status == game.StatusInProgress {
			return
		}
		if !startable(r.state) {
			r.commit(game.Wait(r.state))
			return
		}
		r.startHand()
	}, "table", "next_hand")
}

// startHand deals a new hand. Callers hold r.mu and have checked startable.
func (r *Runner) startHand() {
	if next := r.dealFrom(r.state); next != nil {
		r.commit(next)
	}
}

func (r *Runner) dealFrom(st *game.State) *game.State {
	if r.nextHandTimer != nil {
		r.nextHandTimer.Stop()
		r.nextHandTimer = nil
	}
	next, err := game.StartHand(st, game.WithRNG(r.rng))
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to start hand")
		return nil
	}
	r.logger.Debug().Int("hand", next.HandNumber).Int("dealer", next.Dealer).Msg("Hand started")
	return next
}
