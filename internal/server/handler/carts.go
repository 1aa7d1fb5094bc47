package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	maxBodyBytes     = 1 << 20
)

// CreateCartRequest is the body of POST /api/v1/carts.
type CreateCartRequest struct {
	Items       []core.Item `json:"items"`
	Preferences string      `json:"preferences,omitempty"`
	WebhookURL  string      `json:"webhookUrl,omitempty"`
}

// CreateCartResponse acknowledges a queued job. EstimatedTime is in seconds.
type CreateCartResponse struct {
	JobID         string      `json:"jobId"`
	Status        core.Status `json:"status"`
	Message       string      `json:"message"`
	EstimatedTime int         `json:"estimatedTime"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// LogView is one job log line as returned by the API.
type LogView struct {
	Level     core.LogLevel `json:"level"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

// JobView is the API representation of a job. Logs are only filled in for
// single-job lookups.
type JobView struct {
	JobID            string                 `json:"jobId"`
	Status           core.Status            `json:"status"`
	Retailer         core.Retailer          `json:"retailer"`
	Strategy         string                 `json:"strategy,omitempty"`
	ItemCount        int                    `json:"itemCount"`
	Items            []core.Item            `json:"items,omitempty"`
	ShareURL         string                 `json:"shareUrl,omitempty"`
	ErrorMessage     string                 `json:"errorMessage,omitempty"`
	WebhookDelivered bool                   `json:"webhookDelivered"`
	SelectedProducts []core.SelectedProduct `json:"selectedProducts,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
	CompletedAt      *time.Time             `json:"completedAt,omitempty"`
	Logs             []LogView              `json:"logs,omitempty"`
}

// JobListResponse is the body of GET /api/v1/carts.
type JobListResponse struct {
	Jobs  []JobView `json:"jobs"`
	Total int       `json:"total"`
}

func newJobView(job *core.Job) JobView {
	return JobView{
		JobID:            job.ID,
		Status:           job.Status,
		Retailer:         job.Retailer,
		Strategy:         job.Strategy,
		ItemCount:        len(job.Items),
		ShareURL:         job.ShareURL,
		ErrorMessage:     job.ErrorMessage,
		WebhookDelivered: job.WebhookDelivered,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
		CompletedAt:      job.CompletedAt,
	}
}

// CartHandler serves the cart job endpoints.
type CartHandler struct {
	cfg        *config.Config
	store      storage.Store
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewCartHandler creates the handler for /api/v1/carts.
func NewCartHandler(cfg *config.Config, store storage.Store, dispatcher core.JobDispatcher, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		cfg:        cfg,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger.With("component", "cart_handler"),
	}
}

// Create persists a pending job and hands it to the dispatcher.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCartRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := validateCreate(&req, h.cfg.Server.MaxItems); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	job := &core.Job{
		ID:          uuid.NewString(),
		UserID:      UserID(ctx),
		Retailer:    core.Retailer(h.cfg.Fulfillment.Retailer),
		Strategy:    h.cfg.Fulfillment.Strategy,
		Status:      core.StatusPending,
		Items:       req.Items,
		Preferences: req.Preferences,
		WebhookURL:  req.WebhookURL,
	}
	if err := h.store.CreateJob(ctx, job); err != nil {
		h.logger.Error("failed to create cart job", "user_id", job.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create cart job")
		return
	}

	// The worker owns the queued copy from here on.
	resp := CreateCartResponse{
		JobID:         job.ID,
		Status:        core.StatusPending,
		Message:       "Cart creation job queued",
		EstimatedTime: len(job.Items) * h.cfg.Server.SecondsPerItem,
		CreatedAt:     job.CreatedAt,
	}
	queued := *job
	if err := h.dispatcher.Enqueue(ctx, &queued); err != nil {
		h.logger.Warn("cart job rejected by dispatcher", "job_id", resp.JobID, "error", err)
		if terr := h.store.TransitionJob(ctx, resp.JobID, core.StatusPending, core.StatusCancelled); terr != nil {
			h.logger.Error("failed to cancel rejected job", "job_id", resp.JobID, "error", terr)
		}
		if errors.Is(err, core.ErrQueueFull) || errors.Is(err, core.ErrDispatcherStopped) {
			writeError(w, http.StatusServiceUnavailable, "Cart queue is busy, try again later")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create cart job")
		return
	}

	h.logger.Info("cart job accepted", "job_id", resp.JobID, "user_id", UserID(ctx), "items", len(req.Items))
	writeJSON(w, http.StatusCreated, resp)
}

// validateCreate normalizes item names and returns the first problem found,
// or an empty string.
func validateCreate(req *CreateCartRequest, maxItems int) string {
	if len(req.Items) == 0 {
		return "Items array is required"
	}
	if len(req.Items) > maxItems {
		return fmt.Sprintf("Maximum %d items allowed per cart", maxItems)
	}
	for i := range req.Items {
		req.Items[i].Name = strings.TrimSpace(req.Items[i].Name)
		if req.Items[i].Name == "" {
			return "Each item must have a name"
		}
		if req.Items[i].Quantity < 0 {
			return "Item quantity must not be negative"
		}
	}
	if req.WebhookURL != "" {
		u, err := url.Parse(req.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "webhookUrl must be an absolute http(s) URL"
		}
	}
	return ""
}

// ownedJob loads the job in the URL and checks it belongs to the caller. It
// writes the error response itself and returns nil on failure.
func (h *CartHandler) ownedJob(w http.ResponseWriter, r *http.Request) *core.Job {
	id := chi.URLParam(r, "jobID")
	job, err := h.store.GetJob(r.Context(), id)
	switch {
	case errors.Is(err, core.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "Job not found")
		return nil
	case err != nil:
		h.logger.Error("failed to load job", "job_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch job status")
		return nil
	case job.UserID != UserID(r.Context()):
		writeError(w, http.StatusForbidden, "Forbidden")
		return nil
	}
	return job
}

// Get returns one job with its log.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	job := h.ownedJob(w, r)
	if job == nil {
		return
	}

	logs, err := h.store.GetJobLogs(r.Context(), job.ID)
	if err != nil {
		h.logger.Error("failed to load job logs", "job_id", job.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch job status")
		return
	}

	view := newJobView(job)
	view.Items = job.Items
	view.SelectedProducts = job.SelectedProducts
	view.Logs = make([]LogView, 0, len(logs))
	for _, l := range logs {
		view.Logs = append(view.Logs, LogView{Level: l.Level, Message: l.Message, Timestamp: l.Timestamp})
	}
	writeJSON(w, http.StatusOK, view)
}

// List returns the caller's newest jobs.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, maxListLimit)
		}
	}

	jobs, err := h.store.ListJobsByUser(r.Context(), UserID(r.Context()), limit)
	if err != nil {
		h.logger.Error("failed to list jobs", "user_id", UserID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch jobs")
		return
	}

	resp := JobListResponse{Jobs: make([]JobView, 0, len(jobs)), Total: len(jobs)}
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, newJobView(job))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cancel cancels a job that has not started yet.
func (h *CartHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	job := h.ownedJob(w, r)
	if job == nil {
		return
	}

	err := h.dispatcher.Cancel(r.Context(), job.ID)
	switch {
	case errors.Is(err, core.ErrNotCancellable):
		writeError(w, http.StatusBadRequest, "Can only cancel pending jobs")
		return
	case errors.Is(err, core.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "Job not found")
		return
	case err != nil:
		h.logger.Error("failed to cancel job", "job_id", job.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to cancel job")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Job cancelled successfully"})
}
