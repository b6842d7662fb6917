package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/guildhq/backend/internal/models"
)

type JobRepo struct{}

func NewJobRepo() *JobRepo {
	return &JobRepo{}
}

const jobColumns = `id, description, type, active, created_at`

func scanJob(row interface{ Scan(...any) error }) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.Description, &j.Type, &j.Active, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JobRepo) List(ctx context.Context, db DBTX) ([]*models.Job, error) {
	return r.list(ctx, db, ``)
}

// ListActive returns active jobs in stable creation order. The round-robin
// cursor indexes into exactly this ordering.
func (r *JobRepo) ListActive(ctx context.Context, db DBTX) ([]*models.Job, error) {
	return r.list(ctx, db, `WHERE active`)
}

func (r *JobRepo) list(ctx context.Context, db DBTX, where string) ([]*models.Job, error) {
	rows, err := db.Query(ctx, `SELECT ` + jobColumns + ` FROM jobs ` + where + ` ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, j)
	}
	return list, rows.Err()
}

func (r *JobRepo) Get(ctx context.Context, db DBTX, id uuid.UUID) (*models.Job, error) {
	return scanJob(db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}

func (r *JobRepo) GetAssignment(ctx context.Context, db DBTX, userID string) (*models.JobAssignment, error) {
	var a models.JobAssignment
	err := db.QueryRow(ctx, `
		SELECT id, job_id, user_id, assigned_at FROM job_assignments WHERE user_id = $1
	`, userID).Scan(&a.ID, &a.JobID, &a.UserID, &a.AssignedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAssignment inserts the member's claim. The unique index on user_id
// is the authoritative single-active-assignment guard; a violation
// surfaces as a pgconn.PgError with code 23505.
func (r *JobRepo) CreateAssignment(ctx context.Context, db DBTX, a *models.JobAssignment) error {
	return db.QueryRow(ctx, `
		INSERT INTO job_assignments (id, job_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING assigned_at
	`, a.ID, a.JobID, a.UserID).Scan(&a.AssignedAt)
}

func (r *JobRepo) DeleteAssignment(ctx context.Context, db DBTX, userID string) (bool, error) {
	tag, err := db.Exec(ctx, `DELETE FROM job_assignments WHERE user_id = $1`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AdvanceCycle advances the persisted round-robin cursor modulo jobCount
// and returns the index it held before the advance. The singleton row is
// seeded by db/schema.sql. The UPDATE serializes concurrent callers on
// that row, so two callers can never be handed the same index.
func (r *JobRepo) AdvanceCycle(ctx context.Context, db DBTX, jobCount int) (int, error) {
	var next int
	err := db.QueryRow(ctx, `
		UPDATE job_cycle SET current_index = mod(current_index + 1, $1)
		WHERE id = 1
		RETURNING current_index
	`, jobCount).Scan(&next)
	if err != nil {
		return 0, err
	}
	return (next + jobCount - 1) % jobCount, nil
}
