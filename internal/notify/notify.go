// Package notify delivers best-effort bounty notifications. Jobs are
// enqueued with river.Client.InsertTx inside the transaction that performs
// the claim or completion, so they become visible to workers only after
// that transaction commits. Delivery failures are logged and dropped; they
// never affect the primary mutation.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

type BountyClaimedArgs struct {
	BountyID    uuid.UUID `json:"bounty_id"`
	CreatorID   string    `json:"creator_id"`
	ClaimerID   string    `json:"claimer_id"`
	Description string    `json:"description"`
}

func (BountyClaimedArgs) Kind() string { return "bounty_claimed" }

type BountyCompletedArgs struct {
	BountyID    uuid.UUID `json:"bounty_id"`
	CreatorID   string    `json:"creator_id"`
	ClaimerID   string    `json:"claimer_id"`
	Description string    `json:"description"`
	Reward      int64     `json:"reward"`
}

func (BountyCompletedArgs) Kind() string { return "bounty_completed" }

// Sender posts a notification event to the configured webhook.
type Sender struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewSender(webhookURL string, logger *slog.Logger) *Sender {
	return &Sender{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Send posts the event and swallows every failure: notifications are
// best-effort and must never surface as a worker error (which would make
// River retry them).
func (s *Sender) Send(ctx context.Context, event string, payload any) {
	if s.webhookURL == "" {
		return
	}
	body, err := json.Marshal(map[string]any{"event": event, "data": payload})
	if err != nil {
		s.logger.Warn("notify: marshal failed", "event", event, "error", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("notify: build request failed", "event", event, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("notify: delivery failed", "event", event, "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("notify: webhook returned non-2xx", "event", event, "status", resp.StatusCode)
	}
}

type BountyClaimedWorker struct {
	river.WorkerDefaults[BountyClaimedArgs]
	sender *Sender
}

func NewBountyClaimedWorker(sender *Sender) *BountyClaimedWorker {
	return &BountyClaimedWorker{sender: sender}
}

func (w *BountyClaimedWorker) Work(ctx context.Context, job *river.Job[BountyClaimedArgs]) error {
	w.sender.Send(ctx, job.Args.Kind(), job.Args)
	return nil
}

type BountyCompletedWorker struct {
	river.WorkerDefaults[BountyCompletedArgs]
	sender *Sender
}

func NewBountyCompletedWorker(sender *Sender) *BountyCompletedWorker {
	return &BountyCompletedWorker{sender: sender}
}

func (w *BountyCompletedWorker) Work(ctx context.Context, job *river.Job[BountyCompletedArgs]) error {
	w.sender.Send(ctx, job.Args.Kind(), job.Args)
	return nil
}
