package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction type enum. This set is closed: downstream consumers key
// rendering decisions on these exact strings.
const (
	TxTransferSent     = "TRANSFER_SENT"
	TxTransferReceived = "TRANSFER_RECEIVED"
	TxBountyEscrow     = "BOUNTY_ESCROW"
	TxBountyReward     = "BOUNTY_REWARD"
	TxBountyRefund     = "BOUNTY_REFUND"
	TxShopPurchase     = "SHOP_PURCHASE"
	TxJobReward        = "JOB_REWARD"
)

// Transaction is one append-only audit entry. Amount is the signed delta;
// BalanceAfter snapshots the account balance at the moment the entry was
// written, so history can be rendered without replaying deltas.
type Transaction struct {
	ID           uuid.UUID      `json:"id"`
	UserID       string         `json:"user_id"`
	Type         string         `json:"type"`
	Amount       int64          `json:"amount"`
	BalanceAfter int64          `json:"balance_after"`
	Description  string         `json:"description"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
