package eventlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/cartpilot/internal/core"
)

type memoryWriter struct {
	mu      sync.Mutex
	entries []core.LogEntry
	delay   time.Duration
	fail    bool
}

func (w *memoryWriter) AppendLog(_ context.Context, e *core.LogEntry) error {
	time.Sleep(w.delay)
	if w.fail {
		return errors.New("disk full")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, *e)
	return nil
}

func (w *memoryWriter) snapshot() []core.LogEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]core.LogEntry(nil), w.entries...)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLogger_SyncPersistsInOrder(t *testing.T) {
	w := &memoryWriter{delay: time.Millisecond}
	l := New(w, 16, discard())
	defer l.Close()

	l.Append("job-1", core.LogInfo, "Searching for milk")
	l.Append("job-1", core.LogInfo, "Found 2 products for milk")
	l.Append("job-1", core.LogWarning, "Failed to add milk: button missing")

	require.NoError(t, l.Sync(context.Background()))

	got := w.snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "Searching for milk", got[0].Message)
	assert.Equal(t, core.LogWarning, got[2].Level)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Timestamp.Before(got[i-1].Timestamp))
	}
}

func TestLogger_TimestampsNeverGoBackwards(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(-time.Minute), base.Add(time.Second)}
	var i int
	clock := func() time.Time {
		t := ticks[i]
		i++
		return t
	}

	w := &memoryWriter{}
	l := New(w, 4, discard(), WithClock(clock))
	l.Append("job-1", core.LogInfo, "one")
	l.Append("job-1", core.LogInfo, "two")
	l.Append("job-1", core.LogInfo, "three")
	l.Close()

	got := w.snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, base, got[0].Timestamp)
	assert.Equal(t, base, got[1].Timestamp)
	assert.Equal(t, base.Add(time.Second), got[2].Timestamp)
}

func TestLogger_WriteFailureIsNotFatal(t *testing.T) {
	w := &memoryWriter{fail: true}
	l := New(w, 4, discard())
	l.Append("job-1", core.LogError, "Cart creation failed: boom")
	require.NoError(t, l.Sync(context.Background()))
	l.Close()

	assert.Empty(t, w.snapshot())
}

func TestLogger_AppendAfterClose(t *testing.T) {
	w := &memoryWriter{}
	l := New(w, 4, discard())
	l.Close()
	l.Close()

	assert.NotPanics(t, func() { l.Append("job-1", core.LogInfo, "late") })
	assert.NoError(t, l.Sync(context.Background()))
	assert.Empty(t, w.snapshot())
}

func TestLogger_SyncRespectsContext(t *testing.T) {
	w := &memoryWriter{delay: 200 * time.Millisecond}
	l := New(w, 4, discard())
	defer l.Close()

	l.Append("job-1", core.LogInfo, "slow")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, l.Sync(ctx), context.DeadlineExceeded)
}
