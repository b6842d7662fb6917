package repository

import (
	"context"

	"github.com/guildhq/backend/internal/models"
)

type AccountRepo struct{}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{}
}

// GetOrCreate returns the member's account, inserting a zero-balance row on
// first access. Duplicate creation under concurrency is prevented by the
// primary key, not application-level locking.
func (r *AccountRepo) GetOrCreate(ctx context.Context, db DBTX, userID string) (*models.Account, error) {
	if _, err := db.Exec(ctx, `
		INSERT INTO accounts (id, balance) VALUES ($1, 0)
		ON CONFLICT (id) DO NOTHING
	`, userID); err != nil {
		return nil, err
	}
	return r.Get(ctx, db, userID)
}

func (r *AccountRepo) Get(ctx context.Context, db DBTX, userID string) (*models.Account, error) {
	var a models.Account
	err := db.QueryRow(ctx, `
		SELECT id, balance, created_at, updated_at FROM accounts WHERE id = $1
	`, userID).Scan(&a.ID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateBalance applies delta atomically, rejecting any result below zero.
// Returns pgx.ErrNoRows when the guard fails (or the account is missing);
// callers map that to their insufficient-funds error.
func (r *AccountRepo) UpdateBalance(ctx context.Context, db DBTX, userID string, delta int64) (*models.Account, error) {
	var a models.Account
	err := db.QueryRow(ctx, `
		UPDATE accounts SET balance = balance + $1, updated_at = now()
		WHERE id = $2 AND balance + $1 >= 0
		RETURNING id, balance, created_at, updated_at
	`, delta, userID).Scan(&a.ID, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
