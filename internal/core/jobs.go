// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are kept abstract so the queue,
// the fulfillment strategies and the HTTP layer can be wired independently.
package core

import (
	"context"
)

//go:generate mockgen -destination=../../mocks/mock_core.go -package=mocks . JobDispatcher,CartStrategy,ProductSelector,EventLogger,Notifier

// JobDispatcher accepts cart jobs and runs them one at a time in FIFO order.
type JobDispatcher interface {
	// Enqueue admits a pending job to the queue. It returns ErrQueueFull when
	// the queue has no room, providing a mechanism for backpressure.
	Enqueue(ctx context.Context, job *Job) error

	// Cancel moves a job from pending to cancelled. It returns
	// ErrNotCancellable if the job was already picked up by the worker.
	Cancel(ctx context.Context, jobID string) error

	// Recover resolves jobs left behind by a previous process.
	Recover(ctx context.Context) error

	// Stats reports the queue depth and whether a job is currently running.
	Stats() QueueStats

	// Stop closes the queue and waits for the in-flight job to finish.
	Stop()
}

// QueueStats is a point-in-time view of the dispatcher.
type QueueStats struct {
	Queued     int    `json:"queued"`
	Processing bool   `json:"processing"`
	CurrentJob string `json:"currentJob,omitempty"`
}

// CartStrategy executes one job against a retailer.
type CartStrategy interface {
	// Name identifies the strategy in logs and job records.
	Name() string

	// CreateCart searches, selects and adds every requested item. Per-item
	// failures are reported through the job log and reflected in the result;
	// a returned error means the strategy could not run at all.
	CreateCart(ctx context.Context, req CartRequest) (*CartResult, error)
}

// ProductSelector picks one candidate for an item. It never fails: any
// problem with the ranking collaborator degrades to the first candidate.
type ProductSelector interface {
	Select(ctx context.Context, item Item, candidates []Candidate, preferences string) SelectionResult
}

// EventLogger records the per-job audit trail.
type EventLogger interface {
	// Append stamps and queues a log entry without waiting for persistence.
	Append(jobID string, level LogLevel, message string)

	// Sync blocks until every entry appended before the call is persisted.
	Sync(ctx context.Context) error
}

// Notifier delivers the completion callback for a job.
type Notifier interface {
	Notify(ctx context.Context, job *Job, shareURL string, itemsAdded int) error
}
