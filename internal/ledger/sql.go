package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour of a SQLStore.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect accepts the driver names used in configuration.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	}
	return "", fmt.Errorf("unknown database driver %q", s)
}

// SQLStore persists the ledger through database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	opts    Options
	logger  zerolog.Logger
}

var _ Store = (*SQLStore)(nil)

// OpenSQL connects, applies connection settings for the dialect and creates
// the schema if it does not exist. For SQLite the DSN is a file path or
// ":memory:".
func OpenSQL(ctx context.Context, dialect Dialect, dsn string, opts Options, logger zerolog.Logger) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty %s dsn", dialect)
	}

	var db *sql.DB
	var err error
	switch dialect {
	case SQLite:
		if dsn != ":memory:" {
			if parent := filepath.Dir(dsn); parent != "" && parent != "." {
				if err := os.MkdirAll(parent, 0o755); err != nil {
					return nil, err
				}
			}
		}
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		for _, pragma := range []string{
			`PRAGMA busy_timeout = 5000;`,
			`PRAGMA journal_mode = WAL;`,
			`PRAGMA foreign_keys = ON;`,
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
	case Postgres:
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &SQLStore{
		db:      db,
		dialect: dialect,
		opts:    opts.withDefaults(),
		logger:  logger.With().Str("component", "ledger").Str("dialect", string(dialect)).Logger(),
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Info().Msg("Ledger ready")
	return s, nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) exec(ctx context.Context, q execer, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, q execer, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	entryID := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == Postgres {
		entryID = "id BIGSERIAL PRIMARY KEY"
	}
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS accounts (
    user_id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    balance BIGINT NOT NULL,
    created_at_ms BIGINT NOT NULL,
    updated_at_ms BIGINT NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS ledger_entries (
    ` + entryID + `,
    user_id TEXT NOT NULL REFERENCES accounts(user_id),
    delta BIGINT NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    balance_after BIGINT NOT NULL,
    created_at_ms BIGINT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_user ON ledger_entries(user_id, id DESC)`,
		`
CREATE TABLE IF NOT EXISTS player_stats (
    user_id TEXT PRIMARY KEY,
    games_played BIGINT NOT NULL DEFAULT 0,
    games_won BIGINT NOT NULL DEFAULT 0,
    hands_played BIGINT NOT NULL DEFAULT 0,
    hands_won BIGINT NOT NULL DEFAULT 0,
    coins_wagered BIGINT NOT NULL DEFAULT 0,
    coins_won BIGINT NOT NULL DEFAULT 0,
    coins_lost BIGINT NOT NULL DEFAULT 0,
    biggest_pot_won BIGINT NOT NULL DEFAULT 0,
    best_category INTEGER NOT NULL DEFAULT -1,
    best_hand TEXT NOT NULL DEFAULT '',
    current_win_streak BIGINT NOT NULL DEFAULT 0,
    longest_win_streak BIGINT NOT NULL DEFAULT 0,
    novice_wins BIGINT NOT NULL DEFAULT 0,
    intermediate_wins BIGINT NOT NULL DEFAULT 0,
    expert_wins BIGINT NOT NULL DEFAULT 0,
    daily_winnings BIGINT NOT NULL DEFAULT 0,
    daily_winnings_date TEXT NOT NULL DEFAULT '',
    updated_at_ms BIGINT NOT NULL
)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure ledger schema: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) nowMs() int64 {
	return s.opts.Now().UTC().UnixMilli()
}

func (s *SQLStore) EnsureAccount(ctx context.Context, userID, name string) (Account, error) {
	now := s.nowMs()
	_, err := s.exec(ctx, s.db, `
INSERT INTO accounts (user_id, name, balance, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO NOTHING
`, userID, name, s.opts.StartingBalance, now, now)
	if err != nil {
		return Account{}, err
	}

	var a Account
	var createdMs int64
	err = s.queryRow(ctx, s.db, `
SELECT user_id, name, balance, created_at_ms
FROM accounts
WHERE user_id = ?
`, userID).Scan(&a.UserID, &a.Name, &a.Balance, &createdMs)
	if err != nil {
		return Account{}, err
	}
	a.CreatedAt = time.UnixMilli(createdMs).UTC()
	return a, nil
}

func (s *SQLStore) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := s.queryRow(ctx, s.db, `SELECT balance FROM accounts WHERE user_id = ?`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, userID)
	}
	return balance, err
}

func (s *SQLStore) Debit(ctx context.Context, userID string, amount int, reason string) (int, error) {
	if err := validAmount(amount); err != nil {
		return 0, err
	}
	return s.move(ctx, userID, -amount, reason)
}

func (s *SQLStore) Credit(ctx context.Context, userID string, amount int, reason string) (int, error) {
	if err := validAmount(amount); err != nil {
		return 0, err
	}
	return s.move(ctx, userID, amount, reason)
}

// move applies delta in one transaction. The floor is enforced by the
// UPDATE's WHERE clause so concurrent debits cannot overdraw.
func (s *SQLStore) move(ctx context.Context, userID string, delta int, reason string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := s.nowMs()
	var balance int
	err = s.queryRow(ctx, tx, `
UPDATE accounts
SET balance = balance + ?,
    updated_at_ms = ?
WHERE user_id = ?
  AND balance + ? >= ?
RETURNING balance
`, delta, now, userID, delta, s.opts.MinBalance).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		var current int
		berr := s.queryRow(ctx, tx, `SELECT balance FROM accounts WHERE user_id = ?`, userID).Scan(&current)
		if errors.Is(berr, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, userID)
		}
		if berr != nil {
			return 0, berr
		}
		return current, &InsufficientFundsError{UserID: userID, Balance: current, Required: -delta, Floor: s.opts.MinBalance}
	}
	if err != nil {
		return 0, err
	}

	_, err = s.exec(ctx, tx, `
INSERT INTO ledger_entries (user_id, delta, reason, balance_after, created_at_ms)
VALUES (?, ?, ?, ?, ?)
`, userID, delta, reason, balance, now)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.logger.Debug().Str("user", userID).Int("delta", delta).Int("balance", balance).Str("reason", reason).Msg("Balance updated")
	return balance, nil
}

// Entries returns the most recent movements, newest first.
func (s *SQLStore) Entries(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT user_id, delta, reason, balance_after, created_at_ms
FROM ledger_entries
WHERE user_id = ?
ORDER BY id DESC
LIMIT ?
`), userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var createdMs int64
		if err := rows.Scan(&e.UserID, &e.Delta, &e.Reason, &e.BalanceAfter, &createdMs); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(createdMs).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const statsColumns = `games_played, games_won, hands_played, hands_won, coins_wagered, coins_won, coins_lost,
    biggest_pot_won, best_category, best_hand, current_win_streak, longest_win_streak,
    novice_wins, intermediate_wins, expert_wins, daily_winnings, daily_winnings_date`

func statsFields(st *Stats) []any {
	return []any{
		&st.GamesPlayed, &st.GamesWon, &st.HandsPlayed, &st.HandsWon, &st.CoinsWagered, &st.CoinsWon, &st.CoinsLost,
		&st.BiggestPotWon, &st.bestCategory, &st.BestHand, &st.CurrentWinStreak, &st.LongestWinStreak,
		&st.NoviceWins, &st.IntermediateWins, &st.ExpertWins, &st.DailyWinnings, &st.DailyWinningsDate,
	}
}

func (s *SQLStore) loadStats(ctx context.Context, q execer, userID string) (Stats, error) {
	st := newStats(userID)
	err := s.queryRow(ctx, q, `SELECT `+statsColumns+` FROM player_stats WHERE user_id = ?`, userID).Scan(statsFields(&st)...)
	if errors.Is(err, sql.ErrNoRows) {
		return newStats(userID), nil
	}
	return st, err
}

// updateStats loads, modifies and writes one stats row in a transaction.
func (s *SQLStore) updateStats(ctx context.Context, userID string, apply func(*Stats)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := s.nowMs()
	// Create the row, then touch it so PostgreSQL holds the row lock for the
	// rest of the transaction.
	if _, err := s.exec(ctx, tx, `
INSERT INTO player_stats (user_id, updated_at_ms) VALUES (?, ?)
ON CONFLICT (user_id) DO NOTHING
`, userID, now); err != nil {
		return err
	}
	if _, err := s.exec(ctx, tx, `UPDATE player_stats SET updated_at_ms = ? WHERE user_id = ?`, now, userID); err != nil {
		return err
	}

	st, err := s.loadStats(ctx, tx, userID)
	if err != nil {
		return err
	}
	apply(&st)

	_, err = s.exec(ctx, tx, `
UPDATE player_stats
SET games_played = ?, games_won = ?, hands_played = ?, hands_won = ?,
    coins_wagered = ?, coins_won = ?, coins_lost = ?, biggest_pot_won = ?,
    best_category = ?, best_hand = ?, current_win_streak = ?, longest_win_streak = ?,
    novice_wins = ?, intermediate_wins = ?, expert_wins = ?,
    daily_winnings = ?, daily_winnings_date = ?, updated_at_ms = ?
WHERE user_id = ?
`, st.GamesPlayed, st.GamesWon, st.HandsPlayed, st.HandsWon,
		st.CoinsWagered, st.CoinsWon, st.CoinsLost, st.BiggestPotWon,
		st.bestCategory, st.BestHand, st.CurrentWinStreak, st.LongestWinStreak,
		st.NoviceWins, st.IntermediateWins, st.ExpertWins,
		st.DailyWinnings, st.DailyWinningsDate, now, userID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) RecordHand(ctx context.Context, o HandOutcome) error {
	return s.updateStats(ctx, o.UserID, func(st *Stats) { st.applyHand(o) })
}

func (s *SQLStore) RecordSession(ctx context.Context, o SessionOutcome) error {
	today := dayKey(s.opts.Now())
	return s.updateStats(ctx, o.UserID, func(st *Stats) { st.applySession(o, today) })
}

func (s *SQLStore) Stats(ctx context.Context, userID string) (Stats, error) {
	st, err := s.loadStats(ctx, s.db, userID)
	if err != nil {
		return Stats{}, err
	}
	st.DailyWinnings = st.dailyFor(dayKey(s.opts.Now()))
	return st, nil
}

func (s *SQLStore) DailyWinnings(ctx context.Context, userID string) (int, error) {
	st, err := s.loadStats(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	return st.dailyFor(dayKey(s.opts.Now())), nil
}
