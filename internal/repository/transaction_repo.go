package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/guildhq/backend/internal/models"
)

type TransactionRepo struct{}

func NewTransactionRepo() *TransactionRepo {
	return &TransactionRepo{}
}

// Append writes one audit entry, snapshotting the account's current balance
// as balance_after. The balance read uses the caller's DBTX, so inside a
// transaction no concurrent writer can interleave between the triggering
// balance mutation and this read. A missing account snapshots as 0; this
// path never hard-fails the caller's operation.
func (r *TransactionRepo) Append(ctx context.Context, db DBTX, userID, txType string, amount int64, description string, metadata map[string]any) (*models.Transaction, error) {
	var balance int64
	err := db.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, userID).Scan(&balance)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	t := &models.Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: balance,
		Description:  description,
		Metadata:     metadata,
	}
	err = db.QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, balance_after, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, t.ID, t.UserID, t.Type, t.Amount, t.BalanceAfter, t.Description, t.Metadata).Scan(&t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// History returns the member's entries newest first plus the total count.
func (r *TransactionRepo) History(ctx context.Context, db DBTX, userID string, limit, offset int) ([]*models.Transaction, int64, error) {
	var total int64
	if err := db.QueryRow(ctx, `
		SELECT count(*) FROM transactions WHERE user_id = $1
	`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.Query(ctx, `
		SELECT id, user_id, type, amount, balance_after, description, metadata, created_at
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.BalanceAfter, &t.Description, &t.Metadata, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, &t)
	}
	return list, total, rows.Err()
}
