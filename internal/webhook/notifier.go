// Package webhook delivers signed completion callbacks to job owners.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
)

const (
	SignatureHeader = "X-Webhook-Signature"
	TimestampHeader = "X-Webhook-Timestamp"

	EventCartCompleted = "cart_completed"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidTimestamp = errors.New("invalid webhook timestamp")
	ErrTimestampExpired = errors.New("webhook timestamp expired")
)

// Payload is the JSON body of a completion callback. Timestamp is in Unix
// milliseconds.
type Payload struct {
	Event      string `json:"event"`
	JobID      string `json:"jobId"`
	UserID     string `json:"userId"`
	ShareURL   string `json:"shareUrl"`
	ItemsAdded int    `json:"itemsAdded"`
	Timestamp  int64  `json:"timestamp"`
}

// DeliveryMarker records a successful delivery on the job.
type DeliveryMarker interface {
	MarkWebhookDelivered(ctx context.Context, id string) error
}

// Notifier posts one callback per completed job. There are no retries.
type Notifier struct {
	marker  DeliveryMarker
	events  core.EventLogger
	secret  []byte
	timeout time.Duration
	client  *http.Client
	now     func() time.Time
	logger  *slog.Logger
}

func NewNotifier(marker DeliveryMarker, events core.EventLogger, cfg config.WebhookConfig, logger *slog.Logger) *Notifier {
	if marker == nil {
		panic("delivery marker cannot be nil")
	}
	if events == nil {
		panic("event logger cannot be nil")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		marker:  marker,
		events:  events,
		secret:  []byte(cfg.Secret),
		timeout: timeout,
		client:  &http.Client{},
		now:     time.Now,
		logger:  logger.With("component", "webhook"),
	}
}

// Notify sends the callback for job. Failures are logged on the job and
// returned, but never change the job's status.
func (n *Notifier) Notify(ctx context.Context, job *core.Job, shareURL string, itemsAdded int) error {
	if job.WebhookURL == "" {
		return nil
	}

	if err := n.deliver(ctx, job, shareURL, itemsAdded); err != nil {
		n.logger.Warn("webhook delivery failed", "job_id", job.ID, "url", job.WebhookURL, "error", err)
		n.events.Append(job.ID, core.LogWarning, fmt.Sprintf("Webhook delivery failed: %v", err))
		return err
	}

	if err := n.marker.MarkWebhookDelivered(ctx, job.ID); err != nil {
		n.logger.Error("failed to record webhook delivery", "job_id", job.ID, "error", err)
		return fmt.Errorf("failed to record webhook delivery: %w", err)
	}
	job.WebhookDelivered = true
	n.events.Append(job.ID, core.LogInfo, "Webhook delivered successfully")
	return nil
}

func (n *Notifier) deliver(ctx context.Context, job *core.Job, shareURL string, itemsAdded int) error {
	ts := n.now().UnixMilli()
	body, err := json.Marshal(Payload{
		Event:      EventCartCompleted,
		JobID:      job.ID,
		UserID:     job.UserID,
		ShareURL:   shareURL,
		ItemsAdded: itemsAdded,
		Timestamp:  ts,
	})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	timestamp := strconv.FormatInt(ts, 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TimestampHeader, timestamp)
	if len(n.secret) > 0 {
		req.Header.Set(SignatureHeader, Sign(n.secret, timestamp, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("receiver responded with status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the signature header value for body sent at timestamp.
func Sign(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received callback. A maxAge of zero disables the
// timestamp freshness check.
func VerifySignature(secret []byte, header http.Header, body []byte, maxAge time.Duration, now time.Time) error {
	signature := header.Get(SignatureHeader)
	if signature == "" {
		return ErrMissingSignature
	}

	timestamp := header.Get(TimestampHeader)
	ms, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	if maxAge > 0 && now.Sub(time.UnixMilli(ms)) > maxAge {
		return ErrTimestampExpired
	}

	got, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return ErrInvalidSignature
	}
	want, _ := hex.DecodeString(strings.TrimPrefix(Sign(secret, timestamp, body), "sha256="))
	if !hmac.Equal(got, want) {
		return ErrInvalidSignature
	}
	return nil
}
