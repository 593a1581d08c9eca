package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/techfront-institute/academy-api/internal/models"
)

// EnrollmentRepository handles persistence of per-course enrollments.
// Each row is one (student, course) subscription; inserting and deleting
// single rows keeps sibling enrollments untouched.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Find returns the enrollment for the (student, course) pair.
func (r *EnrollmentRepository) Find(ctx context.Context, studentID, courseID string) (*models.EnrollmentRecord, error) {
	const query = `SELECT student_id, course_id, course_name, duration_months, agreed_monthly_fee, enrolled_at, course_status, course_status_date
        FROM enrollments WHERE student_id = $1 AND course_id = $2`
	var record models.EnrollmentRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &record, nil
}

// Exists checks whether a (student, course) enrollment is present.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, studentID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// ListByStudent returns all enrollments of one student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentRecord, error) {
	const query = `SELECT student_id, course_id, course_name, duration_months, agreed_monthly_fee, enrolled_at, course_status, course_status_date
        FROM enrollments WHERE student_id = $1 ORDER BY enrolled_at ASC`
	var records []models.EnrollmentRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return records, nil
}

// Create inserts a single enrollment row.
func (r *EnrollmentRepository) Create(ctx context.Context, record *models.EnrollmentRecord) error {
	if record.EnrolledAt.IsZero() {
		record.EnrolledAt = time.Now().UTC()
	}
	if record.CourseStatus == "" {
		record.CourseStatus = models.CourseActive
	}
	const query = `INSERT INTO enrollments (student_id, course_id, course_name, duration_months, agreed_monthly_fee, enrolled_at, course_status, course_status_date)
        VALUES (:student_id, :course_id, :course_name, :duration_months, :agreed_monthly_fee, :enrolled_at, :course_status, :course_status_date)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Delete removes a single enrollment row. Historical fee transactions for the
// pair are deliberately left in place.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, courseID string) error {
	const query = `DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2`
	if _, err := r.db.ExecContext(ctx, query, studentID, courseID); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// UpdateStatusAndReconcile writes the course status change together with the
// recomputed aggregate student status in one transaction, so the derived flag
// can never drift from the course states.
func (r *EnrollmentRepository) UpdateStatusAndReconcile(ctx context.Context, studentID, courseID string, status models.CourseStatus, statusDate *time.Time, studentStatus models.StudentStatus, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const updateCourse = `UPDATE enrollments SET course_status = $3, course_status_date = $4
        WHERE student_id = $1 AND course_id = $2`
	if _, err := tx.ExecContext(ctx, updateCourse, studentID, courseID, status, statusDate); err != nil {
		return fmt.Errorf("update course status: %w", err)
	}

	const updateStudent = `UPDATE students SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateStudent, studentID, studentStatus, now); err != nil {
		return fmt.Errorf("reconcile student status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status update: %w", err)
	}
	return nil
}
