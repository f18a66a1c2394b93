// Package lobby creates tables and moves coins between players' persistent
// balances and their on-table stacks.
package lobby

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/orbitdash/pokercore/internal/ai"
	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/internal/gameid"
	"github.com/orbitdash/pokercore/internal/ledger"
	"github.com/orbitdash/pokercore/internal/randutil"
	"github.com/orbitdash/pokercore/internal/table"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotSeated    = errors.New("player is not seated at this game")
	ErrInvalidBuyIn = errors.New("buy-in is not an allowed amount")
	ErrInvalidGame  = errors.New("invalid game request")
)

// InsufficientFundsError is returned when a buy-in would take a balance
// below the floor.
type InsufficientFundsError = ledger.InsufficientFundsError

// settleTimeout bounds ledger writes made from table hooks, which run
// without a caller context.
const settleTimeout = 5 * time.Second

// Config holds the table rules the lobby hands to every runner.
type Config struct {
	BuyIns        []int
	SmallBlind    int
	BigBlind      int
	TurnTimeout   time.Duration
	NextHandDelay time.Duration
	AIThinkMin    time.Duration
	AIThinkMax    time.Duration
	Profiles      map[game.Difficulty]ai.Profile
}

// DefaultConfig mirrors the built-in server configuration.
func DefaultConfig() Config {
	return Config{
		BuyIns:        []int{50, 100, 250, 500, 1000},
		SmallBlind:    5,
		BigBlind:      10,
		TurnTimeout:   table.DefaultTurnTimeout,
		NextHandDelay: table.DefaultNextHandDelay,
		Profiles:      ai.DefaultProfiles,
	}
}

// HandRecorder receives every finished hand, e.g. a handhistory.Recorder.
type HandRecorder interface {
	Record(st *game.State) error
	CloseGame(gameID string) error
}

// User identifies a player. Authentication happens upstream.
type User struct {
	ID   string
	Name string
}

// CreateRequest describes a new table.
type CreateRequest struct {
	BuyIn      int             `json:"buyIn"`
	MaxPlayers int             `json:"maxPlayers"`
	Type       game.GameType   `json:"type"`
	Difficulty game.Difficulty `json:"difficulty,omitempty"`
}

// SeatResult is returned by operations that seat a player.
type SeatResult struct {
	GameID  string `json:"gameId"`
	Seat    int    `json:"seat"`
	Balance int    `json:"balance"`
}

// LeaveResult is returned by LeaveGame and CashOut. Pending is set when the
// seat is still in a hand; its stack is credited when the hand ends.
type LeaveResult struct {
	Pending  bool `json:"pending"`
	Credited int  `json:"credited"`
	Balance  int  `json:"balance"`
}

// GameSummary is one entry of the open games list.
type GameSummary struct {
	GameID         string `json:"gameId"`
	HostName       string `json:"hostName"`
	BuyIn          int    `json:"buyIn"`
	CurrentPlayers int    `json:"currentPlayers"`
	MaxPlayers     int    `json:"maxPlayers"`
}

// Option configures a Manager.
type Option func(*Manager)

func WithClock(clock quartz.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithRNG seeds table shuffles, AI names and AI decisions.
func WithRNG(rng *rand.Rand) Option {
	return func(m *Manager) { m.rng = rng }
}

func WithRecorder(rec HandRecorder) Option {
	return func(m *Manager) { m.recorder = rec }
}

// Manager owns every table in the process.
type Manager struct {
	cfg      Config
	store    ledger.Store
	clock    quartz.Clock
	logger   zerolog.Logger
	recorder HandRecorder
	ids      *gameid.Generator

	rngMu sync.Mutex
	rng   *rand.Rand

	mu    sync.RWMutex
	games map[string]*Game
}

// NewManager creates a lobby backed by store.
func NewManager(cfg Config, store ledger.Store, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		store:  store,
		logger: zerolog.Nop(),
		ids:    gameid.NewGenerator(nil),
		games:  make(map[string]*Game),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = quartz.NewReal()
	}
	if m.rng == nil {
		m.rng = randutil.Secure()
	}
	if m.cfg.Profiles == nil {
		m.cfg.Profiles = ai.DefaultProfiles
	}
	m.logger = m.logger.With().Str("component", "lobby").Logger()
	return m
}

func (m *Manager) deriveRNG() *rand.Rand {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return randutil.Derive(m.rng)
}

// CreateGame debits the host's buy-in and seats them at a new table.
// Practice tables are filled with AI opponents and deal at once; multiplayer
// tables deal when a second player joins.
func (m *Manager) CreateGame(ctx context.Context, host User, req CreateRequest) (SeatResult, error) {
	if !slices.Contains(m.cfg.BuyIns, req.BuyIn) {
		return SeatResult{}, fmt.Errorf("%w: %d", ErrInvalidBuyIn, req.BuyIn)
	}
	if req.MaxPlayers < game.MinSeats || req.MaxPlayers > game.MaxSeats {
		return SeatResult{}, fmt.Errorf("%w: max players %d outside [%d,%d]", ErrInvalidGame, req.MaxPlayers, game.MinSeats, game.MaxSeats)
	}
	if req.Type == game.Practice {
		req.Difficulty = ai.ProfileDifficulty(req.Difficulty)
	} else {
		req.Difficulty = ""
	}
	if _, err := m.store.EnsureAccount(ctx, host.ID, host.Name); err != nil {
		return SeatResult{}, err
	}

	id := m.ids.Generate()
	rng := m.deriveRNG()
	g := &Game{
		ID:         id,
		Type:       req.Type,
		Difficulty: req.Difficulty,
		HostID:     host.ID,
		HostName:   host.Name,
		BuyIn:      req.BuyIn,
		MaxPlayers: req.MaxPlayers,
		CreatedAt:  m.clock.Now(),
	}
	runner, err := table.New(id, game.TableConfig{
		Type:       req.Type,
		MaxSeats:   req.MaxPlayers,
		SmallBlind: m.cfg.SmallBlind,
		BigBlind:   m.cfg.BigBlind,
		BuyIn:      req.BuyIn,
	},
		table.WithClock(m.clock),
		table.WithLogger(m.logger),
		table.WithRNG(rng),
		table.WithTurnTimeout(m.cfg.TurnTimeout),
		table.WithNextHandDelay(m.cfg.NextHandDelay),
		table.WithAIThink(m.cfg.AIThinkMin, m.cfg.AIThinkMax),
		table.WithProfiles(m.cfg.Profiles),
		table.WithHooks(table.Hooks{
			HandComplete: func(st *game.State) { m.onHandComplete(g, st) },
			SeatRemoved:  func(_ string, seat game.Seat) { m.onSeatRemoved(g, seat) },
		}),
	)
	if err != nil {
		return SeatResult{}, fmt.Errorf("%w: %v", ErrInvalidGame, err)
	}
	g.runner = runner

	balance, err := m.store.Debit(ctx, host.ID, req.BuyIn, "buy-in "+id)
	if err != nil {
		runner.Close()
		return SeatResult{}, err
	}
	seat, err := runner.Seat(game.NewPlayer{ID: host.ID, Name: host.Name, Stack: req.BuyIn})
	if err != nil {
		runner.Close()
		return SeatResult{}, m.refund(ctx, host.ID, req.BuyIn, id, err)
	}

	if req.Type == game.Practice {
		for _, name := range ai.PickNames(req.Difficulty, req.MaxPlayers-1, rng) {
			p := game.NewPlayer{ID: ai.NewSeatID(req.Difficulty), Name: name, IsAI: true, Difficulty: req.Difficulty, Stack: req.BuyIn}
			if _, err := runner.Seat(p); err != nil {
				runner.Close()
				return SeatResult{}, m.refund(ctx, host.ID, req.BuyIn, id, err)
			}
		}
	}

	m.mu.Lock()
	m.games[id] = g
	m.mu.Unlock()

	if err := runner.Start(); err != nil {
		return SeatResult{}, err
	}
	m.logger.Info().Str("game_id", id).Str("host", host.ID).Stringer("type", req.Type).
		Str("difficulty", string(req.Difficulty)).Int("buy_in", req.BuyIn).Int("max_players", req.MaxPlayers).
		Msg("Game created")
	return SeatResult{GameID: id, Seat: seat, Balance: balance}, nil
}

// JoinGame debits the buy-in and seats the user at a multiplayer table.
func (m *Manager) JoinGame(ctx context.Context, gameID string, user User) (SeatResult, error) {
	g, err := m.game(gameID)
	if err != nil {
		return SeatResult{}, err
	}
	if g.Type != game.Multiplayer {
		return SeatResult{}, fmt.Errorf("%w: practice games cannot be joined", ErrInvalidGame)
	}
	snap := g.runner.Snapshot("")
	if snap.Seat(user.ID) != nil {
		return SeatResult{}, fmt.Errorf("%w: %s", game.ErrAlreadySeated, user.ID)
	}
	if occupied(snap) >= g.MaxPlayers {
		return SeatResult{}, game.ErrGameFull
	}
	if _, err := m.store.EnsureAccount(ctx, user.ID, user.Name); err != nil {
		return SeatResult{}, err
	}
	balance, err := m.store.Debit(ctx, user.ID, g.BuyIn, "buy-in "+gameID)
	if err != nil {
		return SeatResult{}, err
	}
	seat, err := g.runner.Seat(game.NewPlayer{ID: user.ID, Name: user.Name, Stack: g.BuyIn})
	if err != nil {
		return SeatResult{}, m.refund(ctx, user.ID, g.BuyIn, gameID, err)
	}
	m.logger.Info().Str("game_id", gameID).Str("user_id", user.ID).Int("seat", seat).Msg("Player joined")
	return SeatResult{GameID: gameID, Seat: seat, Balance: balance}, nil
}

// LeaveGame takes the user's seat away. Mid-hand the seat folds at its next
// turn and its stack is credited when the hand ends.
func (m *Manager) LeaveGame(ctx context.Context, gameID, userID string) (LeaveResult, error) {
	return m.leave(ctx, gameID, userID, (*table.Runner).Leave)
}

// CashOut credits the user's stack and frees the seat. It fails with
// game.ErrSeatInHand while the seat still contests the running hand.
func (m *Manager) CashOut(ctx context.Context, gameID, userID string) (LeaveResult, error) {
	return m.leave(ctx, gameID, userID, (*table.Runner).CashOut)
}

func (m *Manager) leave(ctx context.Context, gameID, userID string, op func(*table.Runner, string) (*game.Seat, error)) (LeaveResult, error) {
	g, err := m.game(gameID)
	if err != nil {
		return LeaveResult{}, err
	}
	seat, err := op(g.runner, userID)
	if errors.Is(err, game.ErrSeatNotFound) {
		return LeaveResult{}, fmt.Errorf("%w: %s", ErrNotSeated, userID)
	}
	if err != nil {
		return LeaveResult{}, err
	}
	if seat == nil {
		balance, err := m.store.Balance(ctx, userID)
		return LeaveResult{Pending: true, Balance: balance}, err
	}
	credited, balance, err := m.settle(ctx, g, *seat)
	if err != nil {
		return LeaveResult{}, err
	}
	return LeaveResult{Credited: credited, Balance: balance}, nil
}

// Rebuy debits another buy-in and refills the user's busted seat.
func (m *Manager) Rebuy(ctx context.Context, gameID, userID string) (SeatResult, error) {
	g, err := m.game(gameID)
	if err != nil {
		return SeatResult{}, err
	}
	snap := g.runner.Snapshot("")
	s := snap.Seat(userID)
	if s == nil {
		return SeatResult{}, fmt.Errorf("%w: %s", ErrNotSeated, userID)
	}
	if s.Stack > 0 {
		return SeatResult{}, fmt.Errorf("%w: %s has %d", game.ErrNotBusted, userID, s.Stack)
	}
	balance, err := m.store.Debit(ctx, userID, g.BuyIn, "rebuy "+gameID)
	if err != nil {
		return SeatResult{}, err
	}
	if err := g.runner.Rebuy(userID, g.BuyIn); err != nil {
		return SeatResult{}, m.refund(ctx, userID, g.BuyIn, gameID, err)
	}
	m.logger.Info().Str("game_id", gameID).Str("user_id", userID).Int("buy_in", g.BuyIn).Msg("Player rebought")
	return SeatResult{GameID: gameID, Seat: s.Position, Balance: balance}, nil
}

// ListOpenGames returns multiplayer tables with a free seat, oldest first.
func (m *Manager) ListOpenGames() []GameSummary {
	m.mu.RLock()
	games := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	m.mu.RUnlock()

	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	var out []GameSummary
	for _, g := range games {
		if g.Type != game.Multiplayer {
			continue
		}
		s := g.Summary()
		if s.CurrentPlayers < s.MaxPlayers {
			out = append(out, s)
		}
	}
	return out
}

// Game returns a live table.
func (m *Manager) Game(gameID string) (*Game, error) {
	return m.game(gameID)
}

func (m *Manager) game(gameID string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// SubmitAction applies a player's action and returns the table as they now
// see it.
func (m *Manager) SubmitAction(gameID, userID string, a game.Action) (game.Snapshot, error) {
	g, err := m.game(gameID)
	if err != nil {
		return game.Snapshot{}, err
	}
	if err := g.runner.Act(userID, a); err != nil {
		return game.Snapshot{}, err
	}
	return g.runner.Snapshot(userID), nil
}

// Balance returns the user's balance, opening an account on first use.
func (m *Manager) Balance(ctx context.Context, user User) (int, error) {
	acct, err := m.store.EnsureAccount(ctx, user.ID, user.Name)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// Stats returns the user's lifetime statistics.
func (m *Manager) Stats(ctx context.Context, userID string) (ledger.Stats, error) {
	return m.store.Stats(ctx, userID)
}

// Close shuts every table down. Seated stacks are credited back.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	games := make([]*Game, 0, len(m.games))
	for id, g := range m.games {
		games = append(games, g)
		delete(m.games, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, g := range games {
		g.runner.Close()
		st := g.runner.State()
		for _, s := range st.Seats {
			if s == nil || s.IsAI {
				continue
			}
			// A hand cut off mid-way returns what each seat put in.
			if st.Status == game.StatusInProgress {
				s.Stack += s.Committed
			}
			if _, _, err := m.settle(ctx, g, *s); err != nil {
				errs = append(errs, err)
			}
		}
		m.closeRecorder(g.ID)
	}
	return errors.Join(errs...)
}

func (m *Manager) refund(ctx context.Context, userID string, amount int, gameID string, cause error) error {
	if _, err := m.store.Credit(ctx, userID, amount, "refund "+gameID); err != nil {
		return errors.Join(cause, fmt.Errorf("refund buy-in: %w", err))
	}
	return cause
}

func occupied(snap game.Snapshot) int {
	n := 0
	for _, s := range snap.Seats {
		if s != nil {
			n++
		}
	}
	return n
}
