package handler

import (
	"net/http"
	"time"

	"github.com/sevigo/cartpilot/internal/core"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Queue     core.QueueStats `json:"queue"`
	Timestamp time.Time       `json:"timestamp"`
}

// Health reports liveness together with the dispatcher state.
func Health(dispatcher core.JobDispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:    "healthy",
			Queue:     dispatcher.Stats(),
			Timestamp: time.Now().UTC(),
		})
	}
}
