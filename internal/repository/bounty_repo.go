package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/guildhq/backend/internal/models"
)

type BountyRepo struct{}

func NewBountyRepo() *BountyRepo {
	return &BountyRepo{}
}

const bountyColumns = `id, description, link, reward, created_by, claimed_by, status, created_at, updated_at`

func scanBounty(row interface{ Scan(...any) error }) (*models.Bounty, error) {
	var b models.Bounty
	err := row.Scan(&b.ID, &b.Description, &b.Link, &b.Reward, &b.CreatedBy, &b.ClaimedBy, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BountyRepo) Create(ctx context.Context, db DBTX, b *models.Bounty) error {
	return db.QueryRow(ctx, `
		INSERT INTO bounties (id, description, link, reward, created_by, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, b.ID, b.Description, b.Link, b.Reward, b.CreatedBy, b.Status).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *BountyRepo) Get(ctx context.Context, db DBTX, id uuid.UUID) (*models.Bounty, error) {
	return scanBounty(db.QueryRow(ctx, `
		SELECT `+bountyColumns+` FROM bounties WHERE id = $1
	`, id))
}

// MarkClaimed flips OPEN -> CLAIMED for the given claimer. Returns false if
// the bounty was no longer OPEN, which closes the race between two
// concurrent claimers.
func (r *BountyRepo) MarkClaimed(ctx context.Context, db DBTX, id uuid.UUID, userID string) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE bounties SET status = $1, claimed_by = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`, models.BountyStatusClaimed, userID, id, models.BountyStatusOpen)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkOpen flips CLAIMED -> OPEN, clearing the claimer. Guarded on the
// current claimer so only they can give the bounty up.
func (r *BountyRepo) MarkOpen(ctx context.Context, db DBTX, id uuid.UUID, claimer string) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE bounties SET status = $1, claimed_by = NULL, updated_at = now()
		WHERE id = $2 AND status = $3 AND claimed_by = $4
	`, models.BountyStatusOpen, id, models.BountyStatusClaimed, claimer)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BountyRepo) MarkCompleted(ctx context.Context, db DBTX, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE bounties SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, models.BountyStatusCompleted, id, models.BountyStatusClaimed)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCancelled is legal from both OPEN and CLAIMED.
func (r *BountyRepo) MarkCancelled(ctx context.Context, db DBTX, id uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE bounties SET status = $1, updated_at = now()
		WHERE id = $2 AND status IN ($3, $4)
	`, models.BountyStatusCancelled, id, models.BountyStatusOpen, models.BountyStatusClaimed)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BountyRepo) list(ctx context.Context, db DBTX, where string, args ...any) ([]*models.Bounty, error) {
	rows, err := db.Query(ctx, `
		SELECT `+bountyColumns+` FROM bounties `+where+` ORDER BY created_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Bounty
	for rows.Next() {
		b, err := scanBounty(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *BountyRepo) ListOpen(ctx context.Context, db DBTX) ([]*models.Bounty, error) {
	return r.list(ctx, db, `WHERE status = $1`, models.BountyStatusOpen)
}

func (r *BountyRepo) ListByCreator(ctx context.Context, db DBTX, userID string) ([]*models.Bounty, error) {
	return r.list(ctx, db, `WHERE created_by = $1`, userID)
}

func (r *BountyRepo) ListClaimedBy(ctx context.Context, db DBTX, userID string) ([]*models.Bounty, error) {
	return r.list(ctx, db, `WHERE claimed_by = $1 AND status = $2`, userID, models.BountyStatusClaimed)
}

func (r *BountyRepo) ListAll(ctx context.Context, db DBTX) ([]*models.Bounty, error) {
	return r.list(ctx, db, ``)
}
