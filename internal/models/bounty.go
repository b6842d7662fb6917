package models

import (
	"time"

	"github.com/google/uuid"
)

// Bounty status enum.
const (
	BountyStatusOpen      = "OPEN"
	BountyStatusClaimed   = "CLAIMED"
	BountyStatusCompleted = "COMPLETED"
	BountyStatusCancelled = "CANCELLED"
)

// Bounty is an escrow-backed task. Reward is debited from the creator at
// creation and is immutable afterwards; it is paid to the claimer on
// completion or refunded to the creator on cancellation.
type Bounty struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Link        *string   `json:"link,omitempty"`
	Reward      int64     `json:"reward"`
	CreatedBy   string    `json:"created_by"`
	ClaimedBy   *string   `json:"claimed_by,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
