package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/guildhq/backend/internal/apperr"
	"github.com/guildhq/backend/internal/models"
	"github.com/guildhq/backend/internal/notify"
	"github.com/guildhq/backend/internal/repository"
)

// BountyStore is the bounty repository interface used by the service.
type BountyStore interface {
	Create(ctx context.Context, db repository.DBTX, b *models.Bounty) error
	Get(ctx context.Context, db repository.DBTX, id uuid.UUID) (*models.Bounty, error)
	MarkClaimed(ctx context.Context, db repository.DBTX, id uuid.UUID, userID string) (bool, error)
	MarkOpen(ctx context.Context, db repository.DBTX, id uuid.UUID, claimer string) (bool, error)
	MarkCompleted(ctx context.Context, db repository.DBTX, id uuid.UUID) (bool, error)
	MarkCancelled(ctx context.Context, db repository.DBTX, id uuid.UUID) (bool, error)
	ListOpen(ctx context.Context, db repository.DBTX) ([]*models.Bounty, error)
	ListByCreator(ctx context.Context, db repository.DBTX, userID string) ([]*models.Bounty, error)
	ListClaimedBy(ctx context.Context, db repository.DBTX, userID string) ([]*models.Bounty, error)
	ListAll(ctx context.Context, db repository.DBTX) ([]*models.Bounty, error)
}

// EnqueueNotificationFunc inserts a notification job within the given
// transaction. In production this is a closure over river.Client.InsertTx,
// so the job commits (and is worked) only with the triggering transaction.
type EnqueueNotificationFunc func(ctx context.Context, tx pgx.Tx, args river.JobArgs) error

// BountyService runs the escrow state machine:
//
//	OPEN -> CLAIMED -> {COMPLETED | CANCELLED}
//	OPEN -> CANCELLED
//
// The reward is debited from the creator at creation, held by the system,
// and paid out or refunded exactly once.
type BountyService struct {
	db       DB
	accounts AccountStore
	log      TransactionLog
	bounties BountyStore
	enqueue  EnqueueNotificationFunc
}

func NewBountyService(db DB, accounts AccountStore, log TransactionLog, bounties BountyStore, enqueue EnqueueNotificationFunc) *BountyService {
	return &BountyService{db: db, accounts: accounts, log: log, bounties: bounties, enqueue: enqueue}
}

// Create escrows the reward and opens the bounty atomically.
func (s *BountyService) Create(ctx context.Context, creatorID, description string, reward int64, link *string) (*models.Bounty, error) {
	if reward <= 0 {
		return nil, apperr.Validation("Reward must be positive")
	}
	if strings.TrimSpace(description) == "" {
		return nil, apperr.Validation("Description cannot be blank")
	}
	creator, err := s.accounts.GetOrCreate(ctx, s.db, creatorID)
	if err != nil {
		return nil, err
	}
	if creator.Balance < reward {
		return nil, apperr.Validation("Insufficient funds")
	}

	b := &models.Bounty{
		ID:          uuid.New(),
		Description: description,
		Link:        link,
		Reward:      reward,
		CreatedBy:   creatorID,
		Status:      models.BountyStatusOpen,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create bounty tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.accounts.UpdateBalance(ctx, tx, creatorID, -reward); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Validation("Insufficient funds")
		}
		return nil, err
	}
	if _, err := s.log.Append(ctx, tx, creatorID, models.TxBountyEscrow, -reward,
		fmt.Sprintf("Escrow for bounty: %s", description), map[string]any{"bountyId": b.ID.String()}); err != nil {
		return nil, err
	}
	if err := s.bounties.Create(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create bounty tx: %w", err)
	}
	return b, nil
}

// Claim moves an OPEN bounty to CLAIMED and enqueues a creator
// notification that runs after commit.
func (s *BountyService) Claim(ctx context.Context, userID string, bountyID uuid.UUID) (*models.Bounty, error) {
	b, err := s.get(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BountyStatusOpen {
		return nil, apperr.Conflict("Bounty is not open")
	}
	if b.CreatedBy == userID {
		return nil, apperr.Validation("You cannot claim your own bounty")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ok, err := s.bounties.MarkClaimed(ctx, tx, bountyID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("Bounty is not open")
	}
	if err := s.enqueue(ctx, tx, notify.BountyClaimedArgs{
		BountyID:    b.ID,
		CreatorID:   b.CreatedBy,
		ClaimerID:   userID,
		Description: b.Description,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim tx: %w", err)
	}

	b.Status = models.BountyStatusClaimed
	b.ClaimedBy = &userID
	return b, nil
}

// GiveUp returns a CLAIMED bounty to OPEN. Only the current claimer may
// call it.
func (s *BountyService) GiveUp(ctx context.Context, userID string, bountyID uuid.UUID) (*models.Bounty, error) {
	b, err := s.get(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BountyStatusClaimed || b.ClaimedBy == nil || *b.ClaimedBy != userID {
		return nil, apperr.Validation("You are not the claimer of this bounty")
	}

	ok, err := s.bounties.MarkOpen(ctx, s.db, bountyID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Validation("You are not the claimer of this bounty")
	}
	b.Status = models.BountyStatusOpen
	b.ClaimedBy = nil
	return b, nil
}

// Complete pays the escrowed reward to the claimer and closes the bounty.
// Only the creator may complete, and only from CLAIMED.
func (s *BountyService) Complete(ctx context.Context, creatorID string, bountyID uuid.UUID) (*models.Bounty, error) {
	b, err := s.get(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if b.CreatedBy != creatorID {
		return nil, apperr.Forbidden("Only the bounty creator can complete it")
	}
	if b.Status != models.BountyStatusClaimed || b.ClaimedBy == nil {
		return nil, apperr.Conflict("Bounty has no active claimer")
	}
	claimer := *b.ClaimedBy

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin complete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ok, err := s.bounties.MarkCompleted(ctx, tx, bountyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("Bounty has no active claimer")
	}
	if _, err := s.accounts.GetOrCreate(ctx, tx, claimer); err != nil {
		return nil, err
	}
	if _, err := s.accounts.UpdateBalance(ctx, tx, claimer, b.Reward); err != nil {
		return nil, err
	}
	if _, err := s.log.Append(ctx, tx, claimer, models.TxBountyReward, b.Reward,
		fmt.Sprintf("Reward for bounty: %s", b.Description), map[string]any{"bountyId": b.ID.String()}); err != nil {
		return nil, err
	}
	if err := s.enqueue(ctx, tx, notify.BountyCompletedArgs{
		BountyID:    b.ID,
		CreatorID:   b.CreatedBy,
		ClaimerID:   claimer,
		Description: b.Description,
		Reward:      b.Reward,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit complete tx: %w", err)
	}

	b.Status = models.BountyStatusCompleted
	return b, nil
}

// Cancel refunds the escrowed reward to the creator from OPEN or CLAIMED.
// Cancelling a CLAIMED bounty drops the claimer without notification.
func (s *BountyService) Cancel(ctx context.Context, creatorID string, bountyID uuid.UUID) (*models.Bounty, error) {
	b, err := s.get(ctx, bountyID)
	if err != nil {
		return nil, err
	}
	if b.CreatedBy != creatorID {
		return nil, apperr.Forbidden("Only the bounty creator can cancel it")
	}
	if b.Status == models.BountyStatusCompleted || b.Status == models.BountyStatusCancelled {
		return nil, apperr.Conflict("Bounty is already settled")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ok, err := s.bounties.MarkCancelled(ctx, tx, bountyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("Bounty is already settled")
	}
	if _, err := s.accounts.UpdateBalance(ctx, tx, creatorID, b.Reward); err != nil {
		return nil, err
	}
	if _, err := s.log.Append(ctx, tx, creatorID, models.TxBountyRefund, b.Reward,
		fmt.Sprintf("Refund for bounty: %s", b.Description), map[string]any{"bountyId": b.ID.String()}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancel tx: %w", err)
	}

	b.Status = models.BountyStatusCancelled
	return b, nil
}

func (s *BountyService) Get(ctx context.Context, bountyID uuid.UUID) (*models.Bounty, error) {
	return s.get(ctx, bountyID)
}

func (s *BountyService) get(ctx context.Context, bountyID uuid.UUID) (*models.Bounty, error) {
	b, err := s.bounties.Get(ctx, s.db, bountyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Bounty not found")
	}
	return b, err
}

func (s *BountyService) ListOpen(ctx context.Context) ([]*models.Bounty, error) {
	return s.bounties.ListOpen(ctx, s.db)
}

func (s *BountyService) ListByCreator(ctx context.Context, userID string) ([]*models.Bounty, error) {
	return s.bounties.ListByCreator(ctx, s.db, userID)
}

func (s *BountyService) ListClaimedBy(ctx context.Context, userID string) ([]*models.Bounty, error) {
	return s.bounties.ListClaimedBy(ctx, s.db, userID)
}

func (s *BountyService) ListAll(ctx context.Context) ([]*models.Bounty, error) {
	return s.bounties.ListAll(ctx, s.db)
}
