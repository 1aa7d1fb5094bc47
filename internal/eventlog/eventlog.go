// Package eventlog records the per-job audit trail. Entries are stamped when
// they are appended and written to the store by a single background writer,
// so callers never wait on the database and per-job order is preserved.
package eventlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sevigo/cartpilot/internal/core"
)

// Writer persists log entries.
type Writer interface {
	AppendLog(ctx context.Context, entry *core.LogEntry) error
}

type request struct {
	entry *core.LogEntry
	flush chan struct{}
}

// Logger implements core.EventLogger.
type Logger struct {
	store  Writer
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	last    time.Time
	closed  bool
	pending chan request
	done    chan struct{}
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// New starts the background writer. buffer bounds the number of entries
// waiting to be persisted; Append only blocks when it is exhausted.
func New(store Writer, buffer int, logger *slog.Logger, opts ...Option) *Logger {
	if store == nil {
		panic("eventlog: store cannot be nil")
	}
	if buffer <= 0 {
		buffer = 1024
	}
	l := &Logger{
		store:   store,
		logger:  logger.With("component", "eventlog"),
		now:     time.Now,
		pending: make(chan request, buffer),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.run()
	return l
}

// Append stamps an entry and hands it to the writer. Timestamps never go
// backwards, even if the wall clock does.
func (l *Logger) Append(jobID string, level core.LogLevel, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().UTC()
	if ts.Before(l.last) {
		ts = l.last
	}
	l.last = ts

	entry := &core.LogEntry{JobID: jobID, Level: level, Message: message, Timestamp: ts}
	l.mirror(entry)

	if l.closed {
		l.logger.Warn("dropping job log entry appended after close", "job_id", jobID)
		return
	}
	l.pending <- request{entry: entry}
}

func (l *Logger) mirror(e *core.LogEntry) {
	level := slog.LevelInfo
	switch e.Level {
	case core.LogWarning:
		level = slog.LevelWarn
	case core.LogError:
		level = slog.LevelError
	}
	l.logger.Log(context.Background(), level, e.Message, "job_id", e.JobID)
}

// Sync waits until everything appended before the call has been written.
func (l *Logger) Sync(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	flushed := make(chan struct{})
	l.pending <- request{flush: flushed}
	l.mu.Unlock()

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains outstanding entries and stops the writer.
func (l *Logger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.pending)
	l.mu.Unlock()
	<-l.done
}

func (l *Logger) run() {
	defer close(l.done)
	for req := range l.pending {
		if req.flush != nil {
			close(req.flush)
			continue
		}
		l.write(req.entry)
	}
}

func (l *Logger) write(e *core.LogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.AppendLog(ctx, e); err != nil {
		l.logger.Error("failed to persist job log entry", "job_id", e.JobID, "error", err)
	}
}
