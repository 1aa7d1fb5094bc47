// Package jobs runs cart jobs in the background, one at a time and in the
// order they were accepted.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/storage"
)

const (
	msgNoItemsAdded = "Failed to add any items to cart"
	msgInterrupted  = "Job interrupted by service restart"
	msgNotSaved     = "Cart was created but the result could not be saved"
	persistTimeout  = 10 * time.Second
)

// dispatcher implements core.JobDispatcher with a bounded queue and a single
// worker goroutine, so at most one job is ever processing.
type dispatcher struct {
	store    storage.Store
	strategy core.CartStrategy
	events   core.EventLogger
	notifier core.Notifier
	cfg      config.QueueConfig
	logger   *slog.Logger

	queue chan *core.Job
	wg    sync.WaitGroup

	mu      sync.RWMutex // guards stopped and closing the queue
	stopped bool

	stateMu sync.Mutex
	current string

	// lastDone is only touched by the worker goroutine.
	lastDone time.Time
	now      func() time.Time
}

// NewDispatcher starts the worker. Jobs handed to Enqueue must already be
// persisted as pending.
func NewDispatcher(store storage.Store, strategy core.CartStrategy, events core.EventLogger,
	notifier core.Notifier, cfg config.QueueConfig, logger *slog.Logger) core.JobDispatcher {
	if store == nil {
		panic("store cannot be nil")
	}
	if strategy == nil {
		panic("cart strategy cannot be nil")
	}
	if events == nil {
		panic("event logger cannot be nil")
	}
	if notifier == nil {
		panic("notifier cannot be nil")
	}
	if cfg.Size <= 0 {
		cfg.Size = 100
	}

	d := &dispatcher{
		store:    store,
		strategy: strategy,
		events:   events,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With("component", "dispatcher"),
		queue:    make(chan *core.Job, cfg.Size),
		now:      time.Now,
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Enqueue queues a pending job without blocking.
func (d *dispatcher) Enqueue(_ context.Context, job *core.Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return core.ErrDispatcherStopped
	}

	select {
	case d.queue <- job:
		d.logger.Info("queued cart job", "job_id", job.ID, "items", len(job.Items), "queued", len(d.queue))
		return nil
	default:
		return core.ErrQueueFull
	}
}

// Cancel wins only if the job is still pending. A cancelled job that is
// still in the queue is skipped when the worker reaches it.
func (d *dispatcher) Cancel(ctx context.Context, jobID string) error {
	err := d.store.TransitionJob(ctx, jobID, core.StatusPending, core.StatusCancelled)
	switch {
	case errors.Is(err, core.ErrStatusConflict):
		return core.ErrNotCancellable
	case err != nil:
		return err
	}

	d.events.Append(jobID, core.LogInfo, "Job cancelled by user")
	d.logger.Info("cart job cancelled", "job_id", jobID)
	return nil
}

// Recover fails jobs a previous process left in processing and queues
// pending jobs again, oldest first.
func (d *dispatcher) Recover(ctx context.Context) error {
	stale, err := d.store.ListJobsByStatus(ctx, core.StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to list interrupted jobs: %w", err)
	}
	for _, job := range stale {
		d.events.Append(job.ID, core.LogError, "Cart creation failed: "+msgInterrupted)
		if err := d.store.FailJob(ctx, job.ID, msgInterrupted); err != nil {
			d.logger.Error("failed to fail interrupted job", "job_id", job.ID, "error", err)
			continue
		}
		if err := d.store.IncrementUserCounters(ctx, job.UserID, core.StatusFailed); err != nil {
			d.logger.Error("failed to update user counters", "job_id", job.ID, "error", err)
		}
	}

	pending, err := d.store.ListJobsByStatus(ctx, core.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending jobs: %w", err)
	}
	requeued := 0
	for _, job := range pending {
		if err := d.Enqueue(ctx, job); err != nil {
			d.logger.Warn("could not requeue pending job, it stays pending", "job_id", job.ID, "error", err)
			break
		}
		requeued++
	}

	d.logger.Info("job recovery finished", "interrupted", len(stale), "requeued", requeued)
	return nil
}

func (d *dispatcher) Stats() core.QueueStats {
	d.stateMu.Lock()
	current := d.current
	d.stateMu.Unlock()
	return core.QueueStats{
		Queued:     len(d.queue),
		Processing: current != "",
		CurrentJob: current,
	}
}

// Stop closes the queue and waits for the in-flight job. Jobs still queued
// stay pending in the store and are picked up by Recover on the next start.
func (d *dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.logger.Info("stopping dispatcher and waiting for the current job")
	d.wg.Wait()
	d.logger.Info("dispatcher stopped")
}

func (d *dispatcher) isStopped() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stopped
}

func (d *dispatcher) setCurrent(id string) {
	d.stateMu.Lock()
	d.current = id
	d.stateMu.Unlock()
}

func (d *dispatcher) worker() {
	defer d.wg.Done()
	d.logger.Info("starting cart worker")

	for job := range d.queue {
		if d.isStopped() {
			continue
		}
		d.waitCooldown()
		if !d.claim(job) {
			continue
		}
		d.process(job)
		d.lastDone = d.now()
	}

	d.logger.Info("cart worker exited")
}

// waitCooldown keeps at least cfg.Cooldown between the end of one job and
// the start of the next.
func (d *dispatcher) waitCooldown() {
	if d.lastDone.IsZero() || d.cfg.Cooldown <= 0 {
		return
	}
	if wait := d.cfg.Cooldown - d.now().Sub(d.lastDone); wait > 0 {
		time.Sleep(wait)
	}
}

// claim moves the job to processing. It fails when the job was cancelled
// after it was queued.
func (d *dispatcher) claim(job *core.Job) bool {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	err := d.store.TransitionJob(ctx, job.ID, core.StatusPending, core.StatusProcessing)
	if errors.Is(err, core.ErrStatusConflict) || errors.Is(err, core.ErrJobNotFound) {
		d.logger.Info("skipping job that is no longer pending", "job_id", job.ID)
		return false
	}
	if err != nil {
		d.logger.Error("failed to claim job", "job_id", job.ID, "error", err)
		return false
	}
	job.Status = core.StatusProcessing
	return true
}

func (d *dispatcher) process(job *core.Job) {
	d.setCurrent(job.ID)
	defer d.setCurrent("")

	start := d.now()
	d.logger.Info("processing cart job", "job_id", job.ID, "user_id", job.UserID, "items", len(job.Items))
	d.events.Append(job.ID, core.LogInfo, fmt.Sprintf("Starting cart creation for %d items", len(job.Items)))

	result, failure := d.execute(job)

	if failure != "" {
		d.events.Append(job.ID, core.LogError, "Cart creation failed: "+failure)
	} else {
		d.events.Append(job.ID, core.LogInfo, fmt.Sprintf("Cart creation completed successfully with %d items", result.ItemsAdded))
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := d.events.Sync(ctx); err != nil {
		d.logger.Warn("failed to flush job log", "job_id", job.ID, "error", err)
	}

	outcome := core.StatusCompleted
	var err error
	if failure != "" {
		outcome = core.StatusFailed
		err = d.store.FailJob(ctx, job.ID, failure)
	} else {
		err = d.store.CompleteJob(ctx, job.ID, result.ShareURL, result.SelectedProducts)
	}
	if err != nil && outcome == core.StatusCompleted {
		d.logger.Error("failed to persist job result, failing job", "job_id", job.ID, "error", err)
		outcome = core.StatusFailed
		d.events.Append(job.ID, core.LogError, "Cart creation failed: "+msgNotSaved)
		err = d.store.FailJob(ctx, job.ID, msgNotSaved)
	}
	if err != nil {
		// Left in processing; Recover fails it on the next start.
		d.logger.Error("failed to persist job result", "job_id", job.ID, "status", outcome, "error", err)
		return
	}
	job.Status = outcome

	if err := d.store.IncrementUserCounters(ctx, job.UserID, outcome); err != nil {
		d.logger.Error("failed to update user counters", "job_id", job.ID, "error", err)
	}

	d.logger.Info("cart job finished", "job_id", job.ID, "status", outcome, "duration", d.now().Sub(start))

	if outcome == core.StatusCompleted && job.WebhookURL != "" {
		if err := d.notifier.Notify(ctx, job, result.ShareURL, result.ItemsAdded); err != nil {
			d.logger.Warn("webhook not delivered", "job_id", job.ID, "error", err)
		}
	}
}

// execute runs the strategy and returns either a successful result or the
// job's failure message.
func (d *dispatcher) execute(job *core.Job) (result *core.CartResult, failure string) {
	if len(job.Items) == 0 {
		return nil, "Job has no items"
	}

	ctx := context.Background()
	if d.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.JobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("cart strategy panicked", "job_id", job.ID, "panic", r)
			result, failure = nil, fmt.Sprintf("internal error: %v", r)
		}
	}()

	result, err := d.strategy.CreateCart(ctx, core.CartRequest{
		JobID:       job.ID,
		UserID:      job.UserID,
		Items:       job.Items,
		Preferences: job.Preferences,
	})
	switch {
	case err != nil:
		return nil, err.Error()
	case result == nil:
		return nil, msgNoItemsAdded
	case !result.Success || result.ItemsAdded < 1:
		if result.ErrorMessage != "" {
			return nil, result.ErrorMessage
		}
		return nil, msgNoItemsAdded
	case result.ShareURL == "":
		return nil, "Cart was filled but no cart link is available"
	}
	return result, ""
}
