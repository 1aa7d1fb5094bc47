package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/cartpilot/internal/core"
)

type logRow struct {
	ID        int64     `db:"id"`
	JobID     string    `db:"job_id"`
	Level     string    `db:"level"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

type userRow struct {
	ID            string    `db:"id"`
	Tier          string    `db:"subscription_tier"`
	JobsCreated   int       `db:"cart_jobs_created"`
	JobsSucceeded int       `db:"cart_jobs_succeeded"`
	JobsFailed    int       `db:"cart_jobs_failed"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r userRow) toUser() *core.User {
	return &core.User{
		ID:            r.ID,
		Tier:          core.Tier(r.Tier),
		JobsCreated:   r.JobsCreated,
		JobsSucceeded: r.JobsSucceeded,
		JobsFailed:    r.JobsFailed,
		CreatedAt:     r.CreatedAt,
	}
}

// AppendLog inserts one audit entry.
func (s *sqlStore) AppendLog(ctx context.Context, entry *core.LogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	query := s.db.Rebind(`INSERT INTO job_logs (job_id, level, message, created_at) VALUES (?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query, entry.JobID, string(entry.Level), entry.Message, entry.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert log for job %s: %w", entry.JobID, err)
	}
	return nil
}

// GetJobLogs returns a job's log in timestamp order, insertion order on ties.
func (s *sqlStore) GetJobLogs(ctx context.Context, jobID string) ([]*core.LogEntry, error) {
	var rows []logRow
	query := s.db.Rebind(`SELECT id, job_id, level, message, created_at FROM job_logs
		WHERE job_id = ? ORDER BY created_at ASC, id ASC`)
	if err := s.db.SelectContext(ctx, &rows, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to get logs for job %s: %w", jobID, err)
	}

	entries := make([]*core.LogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, &core.LogEntry{
			ID:        r.ID,
			JobID:     r.JobID,
			Level:     core.LogLevel(r.Level),
			Message:   r.Message,
			Timestamp: r.CreatedAt,
		})
	}
	return entries, nil
}

func (s *sqlStore) ensureUser(ctx context.Context, ext sqlx.ExecerContext, id string) error {
	query := s.db.Rebind(`INSERT INTO users (id, subscription_tier, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)
	if _, err := ext.ExecContext(ctx, query, id, string(core.TierFree), s.now()); err != nil {
		return fmt.Errorf("failed to create user %s: %w", id, err)
	}
	return nil
}

// GetOrCreateUser returns the user, registering it on the free tier first if needed.
func (s *sqlStore) GetOrCreateUser(ctx context.Context, id string) (*core.User, error) {
	if err := s.ensureUser(ctx, s.db, id); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// GetUser retrieves a user and its counters.
func (s *sqlStore) GetUser(ctx context.Context, id string) (*core.User, error) {
	var row userRow
	query := s.db.Rebind(`SELECT id, subscription_tier, cart_jobs_created, cart_jobs_succeeded, cart_jobs_failed, created_at
		FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return row.toUser(), nil
}

// SetUserTier changes the subscription tier, creating the user if needed.
func (s *sqlStore) SetUserTier(ctx context.Context, id string, tier core.Tier) error {
	if tier != core.TierFree && tier != core.TierPremium {
		return fmt.Errorf("unknown subscription tier %q", tier)
	}
	if err := s.ensureUser(ctx, s.db, id); err != nil {
		return err
	}
	query := s.db.Rebind(`UPDATE users SET subscription_tier = ? WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query, string(tier), id); err != nil {
		return fmt.Errorf("failed to set tier for user %s: %w", id, err)
	}
	return nil
}

// IncrementUserCounters bumps created together with succeeded or failed in
// one statement. Only completed and failed outcomes are counted.
func (s *sqlStore) IncrementUserCounters(ctx context.Context, userID string, outcome core.Status) error {
	var succeeded, failed int
	switch outcome {
	case core.StatusCompleted:
		succeeded = 1
	case core.StatusFailed:
		failed = 1
	default:
		return fmt.Errorf("%w: counters are not updated for %s jobs", core.ErrInvalidTransition, outcome)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.ensureUser(ctx, tx, userID); err != nil {
		return err
	}

	query := s.db.Rebind(`UPDATE users SET cart_jobs_created = cart_jobs_created + 1,
		cart_jobs_succeeded = cart_jobs_succeeded + ?, cart_jobs_failed = cart_jobs_failed + ?
		WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, query, succeeded, failed, userID); err != nil {
		return fmt.Errorf("failed to update counters for user %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit counters for user %s: %w", userID, err)
	}
	return nil
}
