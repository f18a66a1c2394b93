package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	opts     Options
	mu       sync.Mutex
	accounts map[string]*Account
	stats    map[string]*Stats
	entries  map[string][]Entry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:     opts.withDefaults(),
		accounts: make(map[string]*Account),
		stats:    make(map[string]*Stats),
		entries:  make(map[string][]Entry),
	}
}

func (m *MemoryStore) EnsureAccount(_ context.Context, userID, name string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[userID]; ok {
		return *a, nil
	}
	a := &Account{UserID: userID, Name: name, Balance: m.opts.StartingBalance, CreatedAt: m.opts.Now().UTC()}
	m.accounts[userID] = a
	return *a, nil
}

func (m *MemoryStore) Balance(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, userID)
	}
	return a.Balance, nil
}

func (m *MemoryStore) Debit(_ context.Context, userID string, amount int, reason string) (int, error) {
	if err := validAmount(amount); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, userID)
	}
	if a.Balance-amount < m.opts.MinBalance {
		return a.Balance, &InsufficientFundsError{UserID: userID, Balance: a.Balance, Required: amount, Floor: m.opts.MinBalance}
	}
	a.Balance -= amount
	m.record(userID, -amount, reason, a.Balance)
	return a.Balance, nil
}

func (m *MemoryStore) Credit(_ context.Context, userID string, amount int, reason string) (int, error) {
	if err := validAmount(amount); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrAccountNotFound, userID)
	}
	a.Balance += amount
	m.record(userID, amount, reason, a.Balance)
	return a.Balance, nil
}

func (m *MemoryStore) record(userID string, delta int, reason string, after int) {
	m.entries[userID] = append(m.entries[userID], Entry{
		UserID:       userID,
		Delta:        delta,
		Reason:       reason,
		BalanceAfter: after,
		CreatedAt:    m.opts.Now().UTC(),
	})
}

// Entries returns the most recent movements, newest first.
func (m *MemoryStore) Entries(_ context.Context, userID string, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.entries[userID]
	out := make([]Entry, 0, min(len(all), max(limit, 0)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (m *MemoryStore) statsLocked(userID string) *Stats {
	s, ok := m.stats[userID]
	if !ok {
		fresh := newStats(userID)
		s = &fresh
		m.stats[userID] = s
	}
	return s
}

func (m *MemoryStore) RecordHand(_ context.Context, o HandOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsLocked(o.UserID).applyHand(o)
	return nil
}

func (m *MemoryStore) RecordSession(_ context.Context, o SessionOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsLocked(o.UserID).applySession(o, dayKey(m.opts.Now()))
	return nil
}

func (m *MemoryStore) Stats(_ context.Context, userID string) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[userID]
	if !ok {
		return newStats(userID), nil
	}
	out := *s
	out.DailyWinnings = s.dailyFor(dayKey(m.opts.Now()))
	return out, nil
}

func (m *MemoryStore) DailyWinnings(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[userID]
	if !ok {
		return 0, nil
	}
	return s.dailyFor(dayKey(m.opts.Now())), nil
}

func (m *MemoryStore) Close() error { return nil }
