package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/db"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	conn, cleanup, err := db.NewDatabase(&config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "cartpilot.db"),
	})
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return NewStore(conn.DB)
}

func newJob(id string) *core.Job {
	return &core.Job{
		ID:         id,
		UserID:     "user-1",
		Retailer:   core.RetailerWalmart,
		Strategy:   "browser",
		Items:      []core.Item{{Name: "milk", Quantity: 2, Unit: "gallon"}, {Name: "eggs"}},
		WebhookURL: "https://example.com/hook",
	}
}

func TestStore_CreateAndGetJob(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateJob(ctx, newJob("job-1")))

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusPending, got.Status)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, []core.Item{{Name: "milk", Quantity: 2, Unit: "gallon"}, {Name: "eggs"}}, got.Items)
	assert.Equal(t, "https://example.com/hook", got.WebhookURL)
	assert.Empty(t, got.ShareURL)
	assert.False(t, got.WebhookDelivered)
	assert.Nil(t, got.CompletedAt)

	_, err = store.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrJobNotFound)
}

func TestStore_TransitionJob(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateJob(ctx, newJob("job-1")))

	// illegal edge is rejected before touching the database
	err := store.TransitionJob(ctx, "job-1", core.StatusPending, core.StatusCompleted)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	require.NoError(t, store.TransitionJob(ctx, "job-1", core.StatusPending, core.StatusProcessing))

	// the second claimant loses the compare-and-set
	err = store.TransitionJob(ctx, "job-1", core.StatusPending, core.StatusCancelled)
	assert.ErrorIs(t, err, core.ErrStatusConflict)

	err = store.TransitionJob(ctx, "missing", core.StatusPending, core.StatusCancelled)
	assert.ErrorIs(t, err, core.ErrJobNotFound)

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusProcessing, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestStore_CancelSetsCompletedAt(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateJob(ctx, newJob("job-1")))

	require.NoError(t, store.TransitionJob(ctx, "job-1", core.StatusPending, core.StatusCancelled))

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCancelled, got.Status)
	assert.NotNil(t, got.CompletedAt)
}

func TestStore_CompleteAndFail(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateJob(ctx, newJob("ok")))
	require.NoError(t, store.CreateJob(ctx, newJob("bad")))

	// only processing jobs can reach a terminal outcome
	assert.ErrorIs(t, store.CompleteJob(ctx, "ok", "https://cart", nil), core.ErrStatusConflict)

	require.NoError(t, store.TransitionJob(ctx, "ok", core.StatusPending, core.StatusProcessing))
	require.NoError(t, store.TransitionJob(ctx, "bad", core.StatusPending, core.StatusProcessing))

	selected := []core.SelectedProduct{{Requested: "milk", Selected: "Great Value Milk", Quantity: 2}}
	require.NoError(t, store.CompleteJob(ctx, "ok", "https://walmart.com/cart", selected))
	require.NoError(t, store.FailJob(ctx, "bad", "Failed to add any items to cart"))

	ok, err := store.GetJob(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, ok.Status)
	assert.Equal(t, "https://walmart.com/cart", ok.ShareURL)
	assert.Equal(t, selected, ok.SelectedProducts)
	assert.NotNil(t, ok.CompletedAt)

	bad, err := store.GetJob(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, bad.Status)
	assert.Equal(t, "Failed to add any items to cart", bad.ErrorMessage)
	assert.NotNil(t, bad.CompletedAt)

	require.NoError(t, store.MarkWebhookDelivered(ctx, "ok"))
	ok, err = store.GetJob(ctx, "ok")
	require.NoError(t, err)
	assert.True(t, ok.WebhookDelivered)
	assert.Equal(t, core.StatusCompleted, ok.Status)
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		job := newJob(id)
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.CreateJob(ctx, job))
	}
	require.NoError(t, store.TransitionJob(ctx, "b", core.StatusPending, core.StatusCancelled))

	pending, err := store.ListJobsByStatus(ctx, core.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].ID)
	assert.Equal(t, "c", pending[1].ID)

	mine, err := store.ListJobsByUser(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "c", mine[0].ID)

	recent, err := store.ListRecentJobs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestStore_JobLogsOrdered(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.CreateJob(ctx, newJob("job-1")))

	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	entries := []*core.LogEntry{
		{JobID: "job-1", Level: core.LogInfo, Message: "Searching for milk", Timestamp: ts},
		{JobID: "job-1", Level: core.LogInfo, Message: "Found 3 products for milk", Timestamp: ts},
		{JobID: "job-1", Level: core.LogWarning, Message: "No results found for eggs", Timestamp: ts.Add(time.Millisecond)},
	}
	for _, e := range entries {
		require.NoError(t, store.AppendLog(ctx, e))
	}

	got, err := store.GetJobLogs(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Searching for milk", got[0].Message)
	assert.Equal(t, "Found 3 products for milk", got[1].Message)
	assert.Equal(t, core.LogWarning, got[2].Level)
}

func TestStore_UserCounters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.IncrementUserCounters(ctx, "new-user", core.StatusCompleted))
	require.NoError(t, store.IncrementUserCounters(ctx, "new-user", core.StatusFailed))
	require.NoError(t, store.IncrementUserCounters(ctx, "new-user", core.StatusCompleted))
	assert.Error(t, store.IncrementUserCounters(ctx, "new-user", core.StatusCancelled))

	user, err := store.GetUser(ctx, "new-user")
	require.NoError(t, err)
	assert.Equal(t, 3, user.JobsCreated)
	assert.Equal(t, 2, user.JobsSucceeded)
	assert.Equal(t, 1, user.JobsFailed)
	assert.Equal(t, core.TierFree, user.Tier)

	require.NoError(t, store.SetUserTier(ctx, "new-user", core.TierPremium))
	user, err = store.GetOrCreateUser(ctx, "new-user")
	require.NoError(t, err)
	assert.Equal(t, core.TierPremium, user.Tier)
	assert.Equal(t, 3, user.JobsCreated)

	_, err = store.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
	assert.Error(t, store.SetUserTier(ctx, "new-user", core.Tier("gold")))
}
