package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/techfront-institute/academy-api/internal/models"
)

// ExportRepository tracks asynchronous export jobs.
type ExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository constructs the repository.
func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create persists a freshly queued job.
func (r *ExportRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = models.ExportQueued
	}
	const query = `INSERT INTO export_jobs (id, status, params, requested_by, created_at)
        VALUES (:id, :status, :params, :requested_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// FindByID returns a job by its ID.
func (r *ExportRepository) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	const query = `SELECT id, status, params, file_path, error, requested_by, created_at, completed_at
        FROM export_jobs WHERE id = $1`
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkProcessing flips a queued job to processing.
func (r *ExportRepository) MarkProcessing(ctx context.Context, id string) error {
	const query = `UPDATE export_jobs SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportProcessing); err != nil {
		return fmt.Errorf("mark export processing: %w", err)
	}
	return nil
}

// Complete records the rendered file for a finished job.
func (r *ExportRepository) Complete(ctx context.Context, id, filePath string, completedAt time.Time) error {
	const query = `UPDATE export_jobs SET status = $2, file_path = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportCompleted, filePath, completedAt); err != nil {
		return fmt.Errorf("complete export job: %w", err)
	}
	return nil
}

// Fail records a terminal error for a job.
func (r *ExportRepository) Fail(ctx context.Context, id, message string, failedAt time.Time) error {
	const query = `UPDATE export_jobs SET status = $2, error = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportFailed, message, failedAt); err != nil {
		return fmt.Errorf("fail export job: %w", err)
	}
	return nil
}

// DeleteOlderThan drops completed and failed jobs created before the cutoff.
// Paired with the storage cleanup so stale files and rows age out together.
func (r *ExportRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM export_jobs WHERE created_at < $1 AND status IN ($2, $3)`
	res, err := r.db.ExecContext(ctx, query, cutoff, models.ExportCompleted, models.ExportFailed)
	if err != nil {
		return 0, fmt.Errorf("cleanup export jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
