package handhistory

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/orbitdash/pokercore/internal/game"
)

const (
	defaultFilename      = "session.phhs"
	defaultFlushInterval = 10 * time.Second
	defaultFlushHands    = 20
	maxFlushFailures     = 3
)

// Config controls where and how often histories are written.
type Config struct {
	// Dir holds one game-<id> directory per table.
	Dir           string
	FlushInterval time.Duration
	// FlushHands triggers an early flush once a table buffers this many hands.
	FlushHands       int
	IncludeHoleCards bool
	Clock            quartz.Clock
}

func (c *Config) withDefaults() {
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.FlushHands <= 0 {
		c.FlushHands = defaultFlushHands
	}
	if c.Clock == nil {
		c.Clock = quartz.NewReal()
	}
}

// Recorder buffers finished hands per table and appends them to
// <Dir>/game-<id>/session.phhs as numbered PHH sections.
type Recorder struct {
	cfg    Config
	logger zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session

	flushReq  chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type session struct {
	gameID string
	path   string

	flushMu  sync.Mutex
	mu       sync.Mutex
	buffer   []*HandHistory
	section  int
	failures int
	disabled bool
}

// NewRecorder creates the output directory and starts the periodic flusher.
func NewRecorder(cfg Config, logger zerolog.Logger) (*Recorder, error) {
	if cfg.Dir == "" {
		return nil, errors.New("handhistory: output directory is required")
	}
	cfg.withDefaults()
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create hand history dir: %w", err)
	}
	r := &Recorder{
		cfg:      cfg,
		logger:   logger.With().Str("component", "handhistory").Logger(),
		sessions: make(map[string]*session),
		flushReq: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	ticker := cfg.Clock.NewTicker(cfg.FlushInterval, "handhistory", "flush")
	r.wg.Add(1)
	go r.run(ticker)
	return r, nil
}

// Record buffers a completed hand. It is safe to call from the table's
// hand-complete hook.
func (r *Recorder) Record(st *game.State) error {
	hist, err := FromState(st, r.cfg.Clock.Now(), r.cfg.IncludeHoleCards)
	if err != nil {
		return err
	}
	s, err := r.session(st.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.disabled {
		s.mu.Unlock()
		return nil
	}
	s.buffer = append(s.buffer, hist)
	full := len(s.buffer) >= r.cfg.FlushHands
	s.mu.Unlock()

	if full {
		select {
		case r.flushReq <- struct{}{}:
		default:
		}
	}
	return nil
}

func (r *Recorder) session(gameID string) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[gameID]; ok {
		return s, nil
	}
	dir := filepath.Join(r.cfg.Dir, "game-"+gameID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create game history dir: %w", err)
	}
	path := filepath.Join(dir, defaultFilename)
	last, err := readLastSectionCounter(path)
	if err != nil {
		r.logger.Warn().Err(err).Str("path", path).Msg("Failed to read existing hand history; numbering from zero")
		last = 0
	}
	s := &session{gameID: gameID, path: path, section: last}
	r.sessions[gameID] = s
	return s, nil
}

// Flush writes every buffered hand now.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	sessions := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := r.flushSession(s); err != nil {
			errs = append(errs, fmt.Errorf("game %s: %w", s.gameID, err))
		}
	}
	return errors.Join(errs...)
}

// CloseGame flushes a table's remaining hands and forgets it.
func (r *Recorder) CloseGame(gameID string) error {
	r.mu.Lock()
	s, ok := r.sessions[gameID]
	delete(r.sessions, gameID)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return r.flushSession(s)
}

// Close stops the flusher and writes whatever is still buffered.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	r.wg.Wait()
	return r.Flush()
}

func (r *Recorder) run(ticker *quartz.Ticker) {
	defer r.wg.Done()
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.flushAll()
		case <-r.flushReq:
			r.flushAll()
		case <-r.done:
			return
		}
	}
}

func (r *Recorder) flushAll() {
	if err := r.Flush(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to flush hand histories")
	}
}

func (r *Recorder) flushSession(s *session) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	if s.disabled || len(s.buffer) == 0 {
		s.mu.Unlock()
		return nil
	}
	hands := append([]*HandHistory(nil), s.buffer...)
	base := s.section
	s.mu.Unlock()

	written, err := appendHands(s.path, base, hands)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = s.buffer[written:]
	s.section = base + written
	if err == nil {
		s.failures = 0
		return nil
	}
	s.failures++
	if s.failures >= maxFlushFailures {
		s.disabled = true
		dropped := len(s.buffer)
		s.buffer = nil
		r.logger.Error().Err(err).Str("game_id", s.gameID).Int("dropped", dropped).
			Msg("Hand history recording disabled after repeated failures")
	}
	return err
}

// appendHands writes hands as sections base+1, base+2, ... and reports how
// many made it to disk.
func appendHands(path string, base int, hands []*HandHistory) (int, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	return writeHands(file, path, base, hands)
}

// writeHands writes to w and closes it. A close failure is reported even
// when every hand was written.
func writeHands(w io.WriteCloser, path string, base int, hands []*HandHistory) (written int, err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	needBlank := base > 0
	for i, hand := range hands {
		if err := writeHand(w, base+i+1, hand, needBlank); err != nil {
			return i, err
		}
		needBlank = true
	}
	return len(hands), nil
}

// writeHand encodes the hand under a [section] table so nested tables such
// as metadata land at [section.metadata].
func writeHand(w io.Writer, section int, hand *HandHistory, leadingBlank bool) error {
	var b strings.Builder
	if leadingBlank {
		b.WriteString("\n")
	}
	enc := toml.NewEncoder(&b)
	enc.Indent = ""
	if err := enc.Encode(map[string]*HandHistory{strconv.Itoa(section): hand}); err != nil {
		return err
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func readLastSectionCounter(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	last := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) >= 3 && line[0] == '[' && line[len(line)-1] == ']' {
			if n, err := strconv.Atoi(line[1 : len(line)-1]); err == nil && n > last {
				last = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return last, nil
}
