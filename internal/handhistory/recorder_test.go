package handhistory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T, cfg Config) *Recorder {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	if cfg.Clock == nil {
		mock := quartz.NewMock(t)
		mock.Set(handTime)
		cfg.Clock = mock
	}
	r, err := NewRecorder(cfg, zerolog.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func sessionPath(dir, gameID string) string {
	return filepath.Join(dir, "game-"+gameID, defaultFilename)
}

func TestRecorderWritesNumberedSections(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	r := newTestRecorder(t, Config{Dir: dir, IncludeHoleCards: true})

	require.NoError(t, r.Record(showdownHand(t)))
	require.NoError(t, r.Record(showdownHand(t)))
	require.NoError(t, r.Flush())

	data, err := os.ReadFile(sessionPath(dir, "t1"))
	require.NoError(t, err)

	var decoded map[string]HandHistory
	_, err = toml.Decode(string(data), &decoded)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "t1-1", decoded["1"].HandID)
	assert.Equal(t, []int{0, 0, 170}, decoded["2"].Winnings)
	assert.Contains(t, decoded["1"].Actions, "d dh p3 AhAd")
	assert.Equal(t, "Pair of Aces", decoded["1"].Metadata["winning_hand"])
}

func TestRecorderResumesSectionCounter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := sessionPath(dir, "t1")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[7]\nvariant = \"NT\"\n"), 0o644))

	r := newTestRecorder(t, Config{Dir: dir})
	require.NoError(t, r.Record(showdownHand(t)))
	require.NoError(t, r.CloseGame("t1"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n[8]\n")
	last, err := readLastSectionCounter(path)
	require.NoError(t, err)
	assert.Equal(t, 8, last)
}

func TestRecorderFlushesOnTicker(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mock := quartz.NewMock(t)
	mock.Set(handTime)
	r := newTestRecorder(t, Config{Dir: dir, Clock: mock, FlushInterval: time.Second})

	require.NoError(t, r.Record(showdownHand(t)))
	_, err := os.Stat(sessionPath(dir, "t1"))
	require.True(t, os.IsNotExist(err), "nothing should be written before the ticker fires")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mock.Advance(time.Second).MustWait(ctx)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(sessionPath(dir, "t1"))
		return err == nil && strings.Contains(string(data), "[1]")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRecorderFlushesWhenBufferFills(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	r := newTestRecorder(t, Config{Dir: dir, FlushHands: 1})

	require.NoError(t, r.Record(showdownHand(t)))
	require.Eventually(t, func() bool {
		_, err := os.Stat(sessionPath(dir, "t1"))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRecorderDisablesAfterRepeatedFailures(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	r := newTestRecorder(t, Config{Dir: dir})
	require.NoError(t, r.Record(showdownHand(t)))

	// A directory where the session file should be makes every open fail.
	path := sessionPath(dir, "t1")
	require.NoError(t, os.MkdirAll(path, 0o755))
	for i := 0; i < maxFlushFailures; i++ {
		require.Error(t, r.Flush())
	}
	require.NoError(t, r.Flush(), "disabled sessions should stop retrying")
	require.NoError(t, r.Record(showdownHand(t)))
	require.NoError(t, r.Flush())
}

func TestRecorderRejectsIncompleteHand(t *testing.T) {
	t.Parallel()
	r := newTestRecorder(t, Config{})
	err := r.Record(playHand(t, "Kh Kd Qh Qd Ah Ad 2c 7d 9h 10s 3c"))
	require.ErrorIs(t, err, ErrHandNotComplete)
}

type failingCloser struct {
	bytes.Buffer
}

func (*failingCloser) Close() error { return errors.New("disk full") }

func TestWriteHandsReportsCloseError(t *testing.T) {
	t.Parallel()
	hand, err := FromState(showdownHand(t), handTime, false)
	require.NoError(t, err)

	var w failingCloser
	written, err := writeHands(&w, "session.phhs", 0, []*HandHistory{hand})
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, written)
	assert.Contains(t, w.String(), "[1]")
}
