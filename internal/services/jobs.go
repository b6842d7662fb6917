package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/guildhq/backend/internal/apperr"
	"github.com/guildhq/backend/internal/models"
	"github.com/guildhq/backend/internal/repository"
)

const dailyJobCount = 3

// JobStore is the job repository interface used by the service.
type JobStore interface {
	List(ctx context.Context, db repository.DBTX) ([]*models.Job, error)
	ListActive(ctx context.Context, db repository.DBTX) ([]*models.Job, error)
	Get(ctx context.Context, db repository.DBTX, id uuid.UUID) (*models.Job, error)
	GetAssignment(ctx context.Context, db repository.DBTX, userID string) (*models.JobAssignment, error)
	CreateAssignment(ctx context.Context, db repository.DBTX, a *models.JobAssignment) error
	DeleteAssignment(ctx context.Context, db repository.DBTX, userID string) (bool, error)
	AdvanceCycle(ctx context.Context, db repository.DBTX, jobCount int) (int, error)
}

// JobService tracks job assignments (at most one per member), distributes
// jobs round-robin through the persisted cycle cursor, and pays rewards on
// administrative completion.
type JobService struct {
	db       DB
	accounts AccountStore
	log      TransactionLog
	jobs     JobStore
}

func NewJobService(db DB, accounts AccountStore, log TransactionLog, jobs JobStore) *JobService {
	return &JobService{db: db, accounts: accounts, log: log, jobs: jobs}
}

// ensureUnassigned is the advisory half of the single-active-assignment
// rule; the unique index on job_assignments.user_id is authoritative.
func (s *JobService) ensureUnassigned(ctx context.Context, userID string) error {
	_, err := s.jobs.GetAssignment(ctx, s.db, userID)
	if err == nil {
		return apperr.Conflict("You already have an active job")
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// AssignJob gives the member the specific job, if it exists and is active.
func (s *JobService) AssignJob(ctx context.Context, userID string, jobID uuid.UUID) (*models.JobAssignment, error) {
	if err := s.ensureUnassigned(ctx, userID); err != nil {
		return nil, err
	}
	job, err := s.jobs.Get(ctx, s.db, jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Job not found")
	}
	if err != nil {
		return nil, err
	}
	if !job.Active {
		return nil, apperr.NotFound("Job not found")
	}

	a := &models.JobAssignment{ID: uuid.New(), JobID: jobID, UserID: userID}
	if err := s.jobs.CreateAssignment(ctx, s.db, a); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("You already have an active job")
		}
		return nil, err
	}
	return a, nil
}

// AssignRandomJob hands out the next job in the round-robin rotation. The
// cursor advance and the assignment insert share one transaction, so two
// concurrent callers reading a stale cursor cannot both receive the same
// index.
func (s *JobService) AssignRandomJob(ctx context.Context, userID string) (*models.Job, error) {
	if err := s.ensureUnassigned(ctx, userID); err != nil {
		return nil, err
	}
	active, err := s.jobs.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, apperr.NotFound("No active jobs available")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin assign tx: %w", err)
	}
	defer tx.Rollback(ctx)

	idx, err := s.jobs.AdvanceCycle(ctx, tx, len(active))
	if err != nil {
		return nil, err
	}
	job := active[idx%len(active)]

	a := &models.JobAssignment{ID: uuid.New(), JobID: job.ID, UserID: userID}
	if err := s.jobs.CreateAssignment(ctx, tx, a); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("You already have an active job")
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit assign tx: %w", err)
	}
	return job, nil
}

// QuitJob drops the member's assignment. A deliberate silent exit: no
// balance mutation and no audit entry.
func (s *JobService) QuitJob(ctx context.Context, userID string) error {
	ok, err := s.jobs.DeleteAssignment(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("You do not have an active job")
	}
	return nil
}

// CompleteJob is administrative: it removes the assignment and pays the
// reward. A zero reward performs only the deletion, with no balance call
// and no audit entry.
func (s *JobService) CompleteJob(ctx context.Context, userID string, reward int64) error {
	if reward < 0 {
		return apperr.Validation("Reward cannot be negative")
	}
	a, err := s.jobs.GetAssignment(ctx, s.db, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("You do not have an active job")
	}
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin complete job tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ok, err := s.jobs.DeleteAssignment(ctx, tx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("You do not have an active job")
	}
	if reward > 0 {
		if _, err := s.accounts.GetOrCreate(ctx, tx, userID); err != nil {
			return err
		}
		if _, err := s.accounts.UpdateBalance(ctx, tx, userID, reward); err != nil {
			return err
		}
		if _, err := s.log.Append(ctx, tx, userID, models.TxJobReward, reward,
			"Job reward", map[string]any{"jobId": a.JobID.String()}); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit complete job tx: %w", err)
	}
	return nil
}

// DailyJobs returns the day's rotation: a pseudo-random subset of the
// active pool, reseeded at each UTC midnight. Every caller within the same
// UTC day observes the same subset; nothing is persisted.
func (s *JobService) DailyJobs(ctx context.Context) ([]*models.Job, error) {
	return s.dailyJobsAt(ctx, time.Now().UTC())
}

func (s *JobService) dailyJobsAt(ctx context.Context, now time.Time) ([]*models.Job, error) {
	active, err := s.jobs.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(dayStart.Unix()))

	shuffled := make([]*models.Job, len(active))
	copy(shuffled, active)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > dailyJobCount {
		shuffled = shuffled[:dailyJobCount]
	}
	return shuffled, nil
}

func (s *JobService) Jobs(ctx context.Context) ([]*models.Job, error) {
	return s.jobs.List(ctx, s.db)
}

func (s *JobService) Job(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	j, err := s.jobs.Get(ctx, s.db, jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Job not found")
	}
	return j, err
}

// UserJob returns the member's current assignment and its job.
func (s *JobService) UserJob(ctx context.Context, userID string) (*models.JobAssignment, *models.Job, error) {
	a, err := s.jobs.GetAssignment(ctx, s.db, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperr.NotFound("You do not have an active job")
	}
	if err != nil {
		return nil, nil, err
	}
	j, err := s.jobs.Get(ctx, s.db, a.JobID)
	if err != nil {
		return nil, nil, err
	}
	return a, j, nil
}
