// Package ledger keeps players' off-table coin balances and lifetime
// statistics. Two implementations share one contract: an in-memory store for
// tests and single-process runs, and a database/sql store that runs on SQLite
// or PostgreSQL.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orbitdash/pokercore/internal/game"
	"github.com/orbitdash/pokercore/poker"
)

// Defaults returned by DefaultOptions.
const (
	DefaultStartingBalance = 1000
	DefaultMinBalance      = -200
)

var (
	// ErrInsufficientFunds is matched by every InsufficientFundsError.
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// InsufficientFundsError reports a debit that would take a balance below the
// floor. The balance is unchanged.
type InsufficientFundsError struct {
	UserID   string
	Balance  int
	Required int
	Floor    int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for %s: balance %d, need %d (floor %d)", e.UserID, e.Balance, e.Required, e.Floor)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// Options configures a store. Zero values are used as given; start from
// DefaultOptions.
type Options struct {
	// StartingBalance is granted to a new account.
	StartingBalance int
	// MinBalance is the lowest balance a debit may leave. A small overdraft
	// lets a broke player keep playing.
	MinBalance int
	// Now is the clock used for timestamps and daily buckets.
	Now func() time.Time
}

// DefaultOptions returns the standard starting balance and overdraft floor.
func DefaultOptions() Options {
	return Options{StartingBalance: DefaultStartingBalance, MinBalance: DefaultMinBalance, Now: time.Now}
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Account is a player's persistent wallet.
type Account struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Balance   int       `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

// Entry is one balance movement.
type Entry struct {
	UserID       string    `json:"userId"`
	Delta        int       `json:"delta"`
	Reason       string    `json:"reason"`
	BalanceAfter int       `json:"balanceAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Stats are a player's lifetime records.
type Stats struct {
	UserID           string `json:"userId"`
	GamesPlayed      int    `json:"gamesPlayed"`
	GamesWon         int    `json:"gamesWon"`
	HandsPlayed      int    `json:"handsPlayed"`
	HandsWon         int    `json:"handsWon"`
	CoinsWagered     int    `json:"coinsWagered"`
	CoinsWon         int    `json:"coinsWon"`
	CoinsLost        int    `json:"coinsLost"`
	BiggestPotWon    int    `json:"biggestPotWon"`
	BestHand         string `json:"bestHand,omitempty"`
	CurrentWinStreak int    `json:"currentWinStreak"`
	LongestWinStreak int    `json:"longestWinStreak"`

	NoviceWins       int `json:"noviceGamesWon"`
	IntermediateWins int `json:"intermediateGamesWon"`
	ExpertWins       int `json:"expertGamesWon"`

	DailyWinnings     int    `json:"dailyWinnings"`
	DailyWinningsDate string `json:"dailyWinningsDate,omitempty"`

	// bestCategory is BestHand as a comparable value, -1 when unset.
	bestCategory int
}

// HandOutcome is one human seat's result for a finished hand.
type HandOutcome struct {
	UserID string
	// Wagered is everything the seat put into the pot.
	Wagered int
	// Won is what the seat collected, including its own returned chips.
	Won int
	// Category is set when the seat's hand was shown down.
	Category *poker.Category
}

// SessionOutcome is recorded when a human leaves a table.
type SessionOutcome struct {
	UserID     string
	Type       game.GameType
	Difficulty game.Difficulty
	// Profit is the stack taken away minus everything bought in.
	Profit int
	// Reward is the practice profit actually credited after modifiers and
	// counts toward the daily limit.
	Reward int
}

// Store is the persistence contract used by the lobby.
type Store interface {
	// EnsureAccount returns the account, creating it with the starting
	// balance on first use.
	EnsureAccount(ctx context.Context, userID, name string) (Account, error)
	Balance(ctx context.Context, userID string) (int, error)
	// Debit removes amount, failing with *InsufficientFundsError if the
	// result would fall below the floor. It returns the new balance.
	Debit(ctx context.Context, userID string, amount int, reason string) (int, error)
	// Credit adds amount and returns the new balance.
	Credit(ctx context.Context, userID string, amount int, reason string) (int, error)
	Entries(ctx context.Context, userID string, limit int) ([]Entry, error)

	RecordHand(ctx context.Context, outcome HandOutcome) error
	RecordSession(ctx context.Context, outcome SessionOutcome) error
	Stats(ctx context.Context, userID string) (Stats, error)
	// DailyWinnings returns practice rewards credited so far today.
	DailyWinnings(ctx context.Context, userID string) (int, error)

	Close() error
}

func dayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func newStats(userID string) Stats {
	return Stats{UserID: userID, bestCategory: -1}
}

func (s *Stats) applyHand(o HandOutcome) {
	s.HandsPlayed++
	s.CoinsWagered += o.Wagered
	if o.Won > o.Wagered {
		s.HandsWon++
		s.CoinsWon += o.Won - o.Wagered
		s.CurrentWinStreak++
		s.LongestWinStreak = max(s.LongestWinStreak, s.CurrentWinStreak)
	} else {
		s.CoinsLost += o.Wagered - o.Won
		s.CurrentWinStreak = 0
	}
	s.BiggestPotWon = max(s.BiggestPotWon, o.Won)
	if o.Category != nil && int(*o.Category) > s.bestCategory {
		s.bestCategory = int(*o.Category)
		s.BestHand = o.Category.String()
	}
}

func (s *Stats) applySession(o SessionOutcome, today string) {
	s.GamesPlayed++
	if o.Profit > 0 {
		s.GamesWon++
		if o.Type == game.Practice {
			switch o.Difficulty {
			case game.Novice:
				s.NoviceWins++
			case game.Intermediate:
				s.IntermediateWins++
			case game.Expert:
				s.ExpertWins++
			}
		}
	}
	if o.Reward > 0 {
		if s.DailyWinningsDate != today {
			s.DailyWinnings = 0
			s.DailyWinningsDate = today
		}
		s.DailyWinnings += o.Reward
	}
}

// dailyFor returns today's winnings, zero if the bucket is from another day.
func (s Stats) dailyFor(today string) int {
	if s.DailyWinningsDate != today {
		return 0
	}
	return s.DailyWinnings
}

func validAmount(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	return nil
}
