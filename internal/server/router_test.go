package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/db"
	"github.com/sevigo/cartpilot/internal/server/handler"
	"github.com/sevigo/cartpilot/internal/storage"
	"github.com/sevigo/cartpilot/mocks"
)

type testAPI struct {
	router     http.Handler
	store      storage.Store
	dispatcher *mocks.MockJobDispatcher
}

func newTestAPI(t *testing.T, requirePremium bool) *testAPI {
	t.Helper()
	conn, cleanup, err := db.NewDatabase(&config.DBConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	cfg := &config.Config{
		Server:      config.ServerConfig{RequirePremium: requirePremium, MaxItems: 50, SecondsPerItem: 3},
		Fulfillment: config.FulfillmentConfig{Strategy: "browser", Retailer: "walmart"},
	}
	store := storage.NewStore(conn.DB)
	dispatcher := mocks.NewMockJobDispatcher(gomock.NewController(t))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testAPI{router: NewRouter(cfg, store, dispatcher, logger), store: store, dispatcher: dispatcher}
}

func (a *testAPI) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) seedJob(t *testing.T, id, user string, status core.Status, created time.Time) {
	t.Helper()
	require.NoError(t, a.store.CreateJob(context.Background(), &core.Job{
		ID:        id,
		UserID:    user,
		Retailer:  core.RetailerWalmart,
		Strategy:  "browser",
		Status:    status,
		Items:     []core.Item{{Name: "milk"}, {Name: "eggs", Quantity: 12}},
		CreatedAt: created,
	}))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, false)
	api.dispatcher.EXPECT().Stats().Return(core.QueueStats{Queued: 2, Processing: true, CurrentJob: "job-1"})

	rec := api.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[handler.HealthResponse](t, rec)
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, core.QueueStats{Queued: 2, Processing: true, CurrentJob: "job-1"}, got.Queue)
}

func TestCarts_RequireBearerToken(t *testing.T) {
	api := newTestAPI(t, false)

	for _, path := range []string{"/api/v1/carts", "/api/v1/carts/job-1"} {
		rec := api.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestCarts_Create(t *testing.T) {
	api := newTestAPI(t, true)
	require.NoError(t, api.store.SetUserTier(context.Background(), "user-1", core.TierPremium))

	var queued *core.Job
	api.dispatcher.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, job *core.Job) error {
		queued = job
		return nil
	})

	rec := api.do(t, http.MethodPost, "/api/v1/carts", "user-1",
		`{"items":[{"name":" milk ","quantity":2},{"name":"eggs"}],"preferences":"organic","webhookUrl":"https://example.com/hook"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[handler.CreateCartResponse](t, rec)
	assert.Equal(t, core.StatusPending, got.Status)
	assert.Equal(t, "Cart creation job queued", got.Message)
	assert.Equal(t, 6, got.EstimatedTime)
	assert.NotEmpty(t, got.JobID)
	require.NotNil(t, queued)
	assert.Equal(t, got.JobID, queued.ID)

	stored, err := api.store.GetJob(context.Background(), got.JobID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.UserID)
	assert.Equal(t, core.StatusPending, stored.Status)
	assert.Equal(t, []core.Item{{Name: "milk", Quantity: 2}, {Name: "eggs"}}, stored.Items)
	assert.Equal(t, "organic", stored.Preferences)
	assert.Equal(t, "https://example.com/hook", stored.WebhookURL)
}

func TestCarts_CreatePremiumGate(t *testing.T) {
	api := newTestAPI(t, true)

	rec := api.do(t, http.MethodPost, "/api/v1/carts", "free-user", `{"items":[{"name":"milk"}]}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Premium subscription required")

	user, err := api.store.GetUser(context.Background(), "free-user")
	require.NoError(t, err)
	assert.Equal(t, core.TierFree, user.Tier)

	open := newTestAPI(t, false)
	open.dispatcher.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
	rec = open.do(t, http.MethodPost, "/api/v1/carts", "free-user", `{"items":[{"name":"milk"}]}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCarts_CreateValidation(t *testing.T) {
	tooMany := make([]string, 51)
	for i := range tooMany {
		tooMany[i] = `{"name":"item"}`
	}

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "malformed", body: `{"items":`, wantMsg: "Invalid request body"},
		{name: "no items", body: `{"items":[]}`, wantMsg: "Items array is required"},
		{name: "too many items", body: `{"items":[` + strings.Join(tooMany, ",") + `]}`, wantMsg: "Maximum 50 items allowed per cart"},
		{name: "blank name", body: `{"items":[{"name":"  "}]}`, wantMsg: "Each item must have a name"},
		{name: "negative quantity", body: `{"items":[{"name":"milk","quantity":-1}]}`, wantMsg: "Item quantity must not be negative"},
		{name: "relative webhook", body: `{"items":[{"name":"milk"}],"webhookUrl":"/hook"}`, wantMsg: "webhookUrl must be an absolute http(s) URL"},
		{name: "non-http webhook", body: `{"items":[{"name":"milk"}],"webhookUrl":"ftp://example.com/hook"}`, wantMsg: "webhookUrl must be an absolute http(s) URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, false)

			rec := api.do(t, http.MethodPost, "/api/v1/carts", "user-1", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, decode[map[string]string](t, rec)["error"])

			jobs, err := api.store.ListJobsByUser(context.Background(), "user-1", 10)
			require.NoError(t, err)
			assert.Empty(t, jobs)
		})
	}
}

func TestCarts_CreateQueueFull(t *testing.T) {
	api := newTestAPI(t, false)
	api.dispatcher.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(core.ErrQueueFull)

	rec := api.do(t, http.MethodPost, "/api/v1/carts", "user-1", `{"items":[{"name":"milk"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	jobs, err := api.store.ListJobsByUser(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, core.StatusCancelled, jobs[0].Status)
}

func TestCarts_Get(t *testing.T) {
	api := newTestAPI(t, false)
	ctx := context.Background()
	api.seedJob(t, "job-1", "user-1", core.StatusPending, time.Time{})
	require.NoError(t, api.store.AppendLog(ctx, &core.LogEntry{JobID: "job-1", Level: core.LogInfo, Message: "Starting cart creation for 2 items"}))
	require.NoError(t, api.store.AppendLog(ctx, &core.LogEntry{JobID: "job-1", Level: core.LogWarning, Message: "No results found for eggs"}))

	rec := api.do(t, http.MethodGet, "/api/v1/carts/job-1", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[handler.JobView](t, rec)
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, core.StatusPending, got.Status)
	assert.Equal(t, 2, got.ItemCount)
	require.Len(t, got.Logs, 2)
	assert.Equal(t, "Starting cart creation for 2 items", got.Logs[0].Message)
	assert.Equal(t, core.LogWarning, got.Logs[1].Level)

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, "/api/v1/carts/job-1", "user-2", "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/v1/carts/missing", "user-1", "").Code)
}

func TestCarts_List(t *testing.T) {
	api := newTestAPI(t, false)
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	api.seedJob(t, "job-a", "user-1", core.StatusCompleted, base)
	api.seedJob(t, "job-b", "user-1", core.StatusFailed, base.Add(time.Minute))
	api.seedJob(t, "job-c", "user-1", core.StatusPending, base.Add(2*time.Minute))
	api.seedJob(t, "job-x", "user-2", core.StatusPending, base.Add(3*time.Minute))

	rec := api.do(t, http.MethodGet, "/api/v1/carts?limit=2", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[handler.JobListResponse](t, rec)
	assert.Equal(t, 2, got.Total)
	require.Len(t, got.Jobs, 2)
	assert.Equal(t, "job-c", got.Jobs[0].JobID)
	assert.Equal(t, "job-b", got.Jobs[1].JobID)
	assert.Empty(t, got.Jobs[0].Logs)

	rec = api.do(t, http.MethodGet, "/api/v1/carts?limit=bogus", "user-1", "")
	assert.Equal(t, 3, decode[handler.JobListResponse](t, rec).Total)
}

func TestCarts_Cancel(t *testing.T) {
	api := newTestAPI(t, false)
	api.seedJob(t, "job-1", "user-1", core.StatusPending, time.Time{})
	api.seedJob(t, "job-2", "user-1", core.StatusProcessing, time.Time{})

	api.dispatcher.EXPECT().Cancel(gomock.Any(), "job-1").Return(nil)
	rec := api.do(t, http.MethodDelete, "/api/v1/carts/job-1", "user-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Job cancelled successfully", decode[map[string]string](t, rec)["message"])

	api.dispatcher.EXPECT().Cancel(gomock.Any(), "job-2").Return(core.ErrNotCancellable)
	rec = api.do(t, http.MethodDelete, "/api/v1/carts/job-2", "user-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Can only cancel pending jobs", decode[map[string]string](t, rec)["error"])

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodDelete, "/api/v1/carts/job-1", "user-2", "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodDelete, "/api/v1/carts/missing", "user-1", "").Code)
}
