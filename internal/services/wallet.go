package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/guildhq/backend/internal/apperr"
	"github.com/guildhq/backend/internal/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// WalletService owns per-member balances: lazy account creation, guarded
// balance mutation, peer transfers, and the audit history read.
type WalletService struct {
	db       DB
	accounts AccountStore
	log      TransactionLog
}

func NewWalletService(db DB, accounts AccountStore, log TransactionLog) *WalletService {
	return &WalletService{db: db, accounts: accounts, log: log}
}

func (s *WalletService) GetOrCreate(ctx context.Context, userID string) (*models.Account, error) {
	return s.accounts.GetOrCreate(ctx, s.db, userID)
}

func (s *WalletService) GetBalance(ctx context.Context, userID string) (int64, error) {
	acc, err := s.accounts.GetOrCreate(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// UpdateBalance applies delta to the member's balance. The non-negative
// guard lives in the UPDATE itself, so the check holds under concurrency.
// No audit entry is written; logging is the caller's explicit decision.
func (s *WalletService) UpdateBalance(ctx context.Context, userID string, delta int64) (*models.Account, error) {
	if _, err := s.accounts.GetOrCreate(ctx, s.db, userID); err != nil {
		return nil, err
	}
	acc, err := s.accounts.UpdateBalance(ctx, s.db, userID, delta)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Validation("Insufficient funds")
	}
	return acc, err
}

// TransferResult is returned by Transfer.
type TransferResult struct {
	Success bool  `json:"success"`
	Amount  int64 `json:"amount"`
}

// Transfer moves amount from one member to another. The debit, the credit,
// and both audit entries commit atomically. The balance check before Begin
// is advisory; the authoritative guard is the conditional debit inside the
// transaction.
func (s *WalletService) Transfer(ctx context.Context, fromID, toID string, amount int64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, apperr.Validation("Amount must be positive")
	}
	if fromID == toID {
		return nil, apperr.Validation("Cannot transfer to yourself")
	}

	from, err := s.accounts.GetOrCreate(ctx, s.db, fromID)
	if err != nil {
		return nil, err
	}
	if _, err := s.accounts.GetOrCreate(ctx, s.db, toID); err != nil {
		return nil, err
	}
	if from.Balance < amount {
		return nil, apperr.Validation("Insufficient funds")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transfer tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.accounts.UpdateBalance(ctx, tx, fromID, -amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Validation("Insufficient funds")
		}
		return nil, err
	}
	if _, err := s.accounts.UpdateBalance(ctx, tx, toID, amount); err != nil {
		return nil, err
	}
	if _, err := s.log.Append(ctx, tx, fromID, models.TxTransferSent, -amount,
		fmt.Sprintf("Transfer to %s", toID), map[string]any{"toUserId": toID}); err != nil {
		return nil, err
	}
	if _, err := s.log.Append(ctx, tx, toID, models.TxTransferReceived, amount,
		fmt.Sprintf("Transfer from %s", fromID), map[string]any{"fromUserId": fromID}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transfer tx: %w", err)
	}
	return &TransferResult{Success: true, Amount: amount}, nil
}

// History returns the member's audit entries newest first.
func (s *WalletService) History(ctx context.Context, userID string, limit, offset int) ([]*models.Transaction, int64, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.log.History(ctx, s.db, userID, limit, offset)
}
