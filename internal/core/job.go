package core

import (
	"errors"
	"time"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrStatusConflict    = errors.New("job status changed concurrently")
	ErrNotCancellable    = errors.New("job is no longer pending and cannot be cancelled")
	ErrQueueFull         = errors.New("job queue is full")
	ErrDispatcherStopped = errors.New("dispatcher is stopped")
	ErrUserNotFound      = errors.New("user not found")
)

// Status is the lifecycle state of a cart job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed},
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Retailer names the shop a job is fulfilled against.
type Retailer string

const RetailerWalmart Retailer = "walmart"

// Item is one line of a grocery list.
type Item struct {
	Name        string `json:"name" yaml:"name"`
	Quantity    int    `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty"`
	Preferences string `json:"preferences,omitempty" yaml:"preferences,omitempty"`
}

// EffectiveQuantity returns the quantity to order, at least one.
func (i Item) EffectiveQuantity() int {
	if i.Quantity < 1 {
		return 1
	}
	return i.Quantity
}

// Job is a single fulfillment request. Empty strings stand for absent values.
type Job struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	Retailer         Retailer          `json:"retailer"`
	Strategy         string            `json:"strategy"`
	Status           Status            `json:"status"`
	Items            []Item            `json:"items"`
	Preferences      string            `json:"preferences,omitempty"`
	ShareURL         string            `json:"shareUrl,omitempty"`
	ErrorMessage     string            `json:"errorMessage,omitempty"`
	WebhookURL       string            `json:"webhookUrl,omitempty"`
	WebhookDelivered bool              `json:"webhookDelivered"`
	SelectedProducts []SelectedProduct `json:"selectedProducts,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	CompletedAt      *time.Time        `json:"completedAt,omitempty"`
}

// LogLevel is the severity of a job log entry.
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// LogEntry is one immutable audit record of a job.
type LogEntry struct {
	ID        int64     `json:"-"`
	JobID     string    `json:"jobId"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Tier is a user's subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// User carries the subscription tier and the per-user job counters.
type User struct {
	ID            string    `json:"id"`
	Tier          Tier      `json:"subscriptionTier"`
	JobsCreated   int       `json:"cartJobsCreated"`
	JobsSucceeded int       `json:"cartJobsSucceeded"`
	JobsFailed    int       `json:"cartJobsFailed"`
	CreatedAt     time.Time `json:"createdAt"`
}
