// Package storage persists cart jobs, their audit log and per-user counters.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sevigo/cartpilot/internal/core"
)

//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks . Store

// Store defines the interface for all database operations.
type Store interface {
	CreateJob(ctx context.Context, job *core.Job) error
	GetJob(ctx context.Context, id string) (*core.Job, error)
	ListJobsByUser(ctx context.Context, userID string, limit int) ([]*core.Job, error)
	ListJobsByStatus(ctx context.Context, status core.Status) ([]*core.Job, error)
	ListRecentJobs(ctx context.Context, limit int) ([]*core.Job, error)

	// TransitionJob moves a job from one status to another only if it is
	// still in the from status. It returns core.ErrStatusConflict when another
	// writer got there first.
	TransitionJob(ctx context.Context, id string, from, to core.Status) error
	CompleteJob(ctx context.Context, id, shareURL string, selected []core.SelectedProduct) error
	FailJob(ctx context.Context, id, message string) error
	MarkWebhookDelivered(ctx context.Context, id string) error

	AppendLog(ctx context.Context, entry *core.LogEntry) error
	GetJobLogs(ctx context.Context, jobID string) ([]*core.LogEntry, error)

	GetOrCreateUser(ctx context.Context, id string) (*core.User, error)
	GetUser(ctx context.Context, id string) (*core.User, error)
	SetUserTier(ctx context.Context, id string, tier core.Tier) error
	// IncrementUserCounters records one terminal outcome for the user.
	IncrementUserCounters(ctx context.Context, userID string, outcome core.Status) error
}

type sqlStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewStore creates a Store over an open connection pool. Queries are written
// with '?' placeholders and rebound for the pool's driver.
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type jobRow struct {
	ID               string         `db:"id"`
	UserID           string         `db:"user_id"`
	Retailer         string         `db:"retailer"`
	Strategy         string         `db:"strategy"`
	Status           string         `db:"status"`
	Items            string         `db:"items"`
	Preferences      sql.NullString `db:"preferences"`
	ShareURL         sql.NullString `db:"share_url"`
	ErrorMessage     sql.NullString `db:"error_message"`
	WebhookURL       sql.NullString `db:"webhook_url"`
	WebhookDelivered bool           `db:"webhook_delivered"`
	SelectedProducts sql.NullString `db:"selected_products"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	CompletedAt      sql.NullTime   `db:"completed_at"`
}

const jobColumns = `id, user_id, retailer, strategy, status, items, preferences, share_url, error_message,
	webhook_url, webhook_delivered, selected_products, created_at, updated_at, completed_at`

func (r *jobRow) toJob() (*core.Job, error) {
	job := &core.Job{
		ID:               r.ID,
		UserID:           r.UserID,
		Retailer:         core.Retailer(r.Retailer),
		Strategy:         r.Strategy,
		Status:           core.Status(r.Status),
		Preferences:      r.Preferences.String,
		ShareURL:         r.ShareURL.String,
		ErrorMessage:     r.ErrorMessage.String,
		WebhookURL:       r.WebhookURL.String,
		WebhookDelivered: r.WebhookDelivered,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		job.CompletedAt = &t
	}
	if err := json.Unmarshal([]byte(r.Items), &job.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items of job %s: %w", r.ID, err)
	}
	if r.SelectedProducts.Valid && r.SelectedProducts.String != "" {
		if err := json.Unmarshal([]byte(r.SelectedProducts.String), &job.SelectedProducts); err != nil {
			return nil, fmt.Errorf("failed to decode selected products of job %s: %w", r.ID, err)
		}
	}
	return job, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateJob inserts a new job. Status defaults to pending and timestamps are
// filled in when zero.
func (s *sqlStore) CreateJob(ctx context.Context, job *core.Job) error {
	if job.Status == "" {
		job.Status = core.StatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now()
	}
	job.UpdatedAt = job.CreatedAt

	items, err := json.Marshal(job.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	query := s.db.Rebind(`INSERT INTO cart_jobs (id, user_id, retailer, strategy, status, items, preferences,
		webhook_url, webhook_delivered, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query,
		job.ID, job.UserID, string(job.Retailer), job.Strategy, string(job.Status), string(items),
		nullable(job.Preferences), nullable(job.WebhookURL), false, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob retrieves a job by id.
func (s *sqlStore) GetJob(ctx context.Context, id string) (*core.Job, error) {
	var row jobRow
	query := s.db.Rebind(`SELECT ` + jobColumns + ` FROM cart_jobs WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return row.toJob()
}

func (s *sqlStore) selectJobs(ctx context.Context, query string, args ...any) ([]*core.Job, error) {
	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	jobs := make([]*core.Job, 0, len(rows))
	for i := range rows {
		job, err := rows[i].toJob()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// ListJobsByUser returns the user's most recent jobs first.
func (s *sqlStore) ListJobsByUser(ctx context.Context, userID string, limit int) ([]*core.Job, error) {
	jobs, err := s.selectJobs(ctx, `SELECT `+jobColumns+` FROM cart_jobs WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs for user %s: %w", userID, err)
	}
	return jobs, nil
}

// ListJobsByStatus returns jobs in the given status, oldest first.
func (s *sqlStore) ListJobsByStatus(ctx context.Context, status core.Status) ([]*core.Job, error) {
	jobs, err := s.selectJobs(ctx, `SELECT `+jobColumns+` FROM cart_jobs WHERE status = ?
		ORDER BY created_at ASC, id ASC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s jobs: %w", status, err)
	}
	return jobs, nil
}

// ListRecentJobs returns the newest jobs across all users.
func (s *sqlStore) ListRecentJobs(ctx context.Context, limit int) ([]*core.Job, error) {
	jobs, err := s.selectJobs(ctx, `SELECT `+jobColumns+` FROM cart_jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent jobs: %w", err)
	}
	return jobs, nil
}

// TransitionJob performs a compare-and-set on the job status.
func (s *sqlStore) TransitionJob(ctx context.Context, id string, from, to core.Status) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, from, to)
	}

	now := s.now()
	var completedAt sql.NullTime
	if to.IsTerminal() {
		completedAt = sql.NullTime{Time: now, Valid: true}
	}

	query := s.db.Rebind(`UPDATE cart_jobs SET status = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND status = ?`)
	res, err := s.db.ExecContext(ctx, query, string(to), now, completedAt, id, string(from))
	if err != nil {
		return fmt.Errorf("failed to transition job %s to %s: %w", id, to, err)
	}
	return s.checkUpdated(ctx, res, id)
}

// CompleteJob records a successful outcome for a processing job.
func (s *sqlStore) CompleteJob(ctx context.Context, id, shareURL string, selected []core.SelectedProduct) error {
	encoded, err := json.Marshal(selected)
	if err != nil {
		return fmt.Errorf("failed to encode selected products: %w", err)
	}

	now := s.now()
	query := s.db.Rebind(`UPDATE cart_jobs SET status = ?, share_url = ?, selected_products = ?,
		updated_at = ?, completed_at = ? WHERE id = ? AND status = ?`)
	res, err := s.db.ExecContext(ctx, query, string(core.StatusCompleted), nullable(shareURL), string(encoded),
		now, now, id, string(core.StatusProcessing))
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", id, err)
	}
	return s.checkUpdated(ctx, res, id)
}

// FailJob records a failed outcome for a processing job.
func (s *sqlStore) FailJob(ctx context.Context, id, message string) error {
	if message == "" {
		message = "unknown error"
	}
	now := s.now()
	query := s.db.Rebind(`UPDATE cart_jobs SET status = ?, error_message = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND status = ?`)
	res, err := s.db.ExecContext(ctx, query, string(core.StatusFailed), message, now, now, id, string(core.StatusProcessing))
	if err != nil {
		return fmt.Errorf("failed to fail job %s: %w", id, err)
	}
	return s.checkUpdated(ctx, res, id)
}

// MarkWebhookDelivered sets the delivery flag. It never clears it.
func (s *sqlStore) MarkWebhookDelivered(ctx context.Context, id string) error {
	query := s.db.Rebind(`UPDATE cart_jobs SET webhook_delivered = ?, updated_at = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, true, s.now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark webhook delivered for job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return core.ErrJobNotFound
	}
	return nil
}

// checkUpdated distinguishes a missing job from a lost compare-and-set.
func (s *sqlStore) checkUpdated(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT COUNT(*) FROM cart_jobs WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to check job %s: %w", id, err)
	}
	if exists == 0 {
		return core.ErrJobNotFound
	}
	return core.ErrStatusConflict
}
