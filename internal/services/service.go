package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/guildhq/backend/internal/models"
	"github.com/guildhq/backend/internal/repository"
)

// DB is the database handle services run against: the shared pgx pool in
// production. Single-statement work runs on it directly (it satisfies
// repository.DBTX); multi-step mutations open a transaction through Begin
// so debit, credit, audit entry, and state change commit together or not
// at all.
type DB interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AccountStore is the minimal account repository interface services need.
type AccountStore interface {
	GetOrCreate(ctx context.Context, db repository.DBTX, userID string) (*models.Account, error)
	Get(ctx context.Context, db repository.DBTX, userID string) (*models.Account, error)
	UpdateBalance(ctx context.Context, db repository.DBTX, userID string, delta int64) (*models.Account, error)
}

// TransactionLog is the append-only audit trail interface. Append runs
// against the caller's DBTX so the balance snapshot it records cannot be
// interleaved by another writer.
type TransactionLog interface {
	Append(ctx context.Context, db repository.DBTX, userID, txType string, amount int64, description string, metadata map[string]any) (*models.Transaction, error)
	History(ctx context.Context, db repository.DBTX, userID string, limit, offset int) ([]*models.Transaction, int64, error)
}
