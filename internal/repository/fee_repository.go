package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/techfront-institute/academy-api/internal/models"
)

// FeeRepository handles persistence of the fee ledger and staged waiver
// approvals.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs the repository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// Upsert writes a ledger entry keyed by (student, course, month). A repeat
// submission for the same key replaces the previous one.
func (r *FeeRepository) Upsert(ctx context.Context, tx *models.FeeTransaction) error {
	if tx.RecordedAt.IsZero() {
		tx.RecordedAt = time.Now().UTC()
	}
	const query = `INSERT INTO fee_transactions (student_id, course_id, month_key, payable, paid, waived, balance, added_by, approved_by, approved_at, recorded_at)
        VALUES (:student_id, :course_id, :month_key, :payable, :paid, :waived, :balance, :added_by, :approved_by, :approved_at, :recorded_at)
        ON CONFLICT (student_id, course_id, month_key) DO UPDATE SET
            payable = EXCLUDED.payable,
            paid = EXCLUDED.paid,
            waived = EXCLUDED.waived,
            balance = EXCLUDED.balance,
            added_by = EXCLUDED.added_by,
            approved_by = EXCLUDED.approved_by,
            approved_at = EXCLUDED.approved_at,
            recorded_at = EXCLUDED.recorded_at`
	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		return fmt.Errorf("upsert fee transaction: %w", err)
	}
	return nil
}

// Find returns the ledger entry for the triple, if recorded.
func (r *FeeRepository) Find(ctx context.Context, studentID, courseID, monthKey string) (*models.FeeTransaction, error) {
	const query = `SELECT student_id, course_id, month_key, payable, paid, waived, balance, added_by, approved_by, approved_at, recorded_at
        FROM fee_transactions WHERE student_id = $1 AND course_id = $2 AND month_key = $3`
	var tx models.FeeTransaction
	if err := r.db.GetContext(ctx, &tx, query, studentID, courseID, monthKey); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListByStudentCourse returns the full ledger history of a (student, course)
// pair, newest recording first.
func (r *FeeRepository) ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]models.FeeTransaction, error) {
	const query = `SELECT student_id, course_id, month_key, payable, paid, waived, balance, added_by, approved_by, approved_at, recorded_at
        FROM fee_transactions WHERE student_id = $1 AND course_id = $2 ORDER BY recorded_at DESC`
	var txs []models.FeeTransaction
	if err := r.db.SelectContext(ctx, &txs, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("list fee transactions: %w", err)
	}
	return txs, nil
}

// ListAll loads the whole ledger into the reporting index.
func (r *FeeRepository) ListAll(ctx context.Context) (models.LedgerIndex, error) {
	const query = `SELECT student_id, course_id, month_key, payable, paid, waived, balance, added_by, approved_by, approved_at, recorded_at
        FROM fee_transactions`
	var txs []models.FeeTransaction
	if err := r.db.SelectContext(ctx, &txs, query); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	index := models.LedgerIndex{}
	for _, tx := range txs {
		index.Add(tx)
	}
	return index, nil
}

// CreatePending stages a waiver-bearing entry awaiting admin approval.
func (r *FeeRepository) CreatePending(ctx context.Context, pending *models.PendingFeeApproval) error {
	if pending.ID == "" {
		pending.ID = uuid.NewString()
	}
	if pending.SubmittedAt.IsZero() {
		pending.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO pending_fee_approvals (id, student_id, course_id, month_key, payable, paid, waived, balance, submitted_by, submitted_at)
        VALUES (:id, :student_id, :course_id, :month_key, :payable, :paid, :waived, :balance, :submitted_by, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pending); err != nil {
		return fmt.Errorf("create pending approval: %w", err)
	}
	return nil
}

// FindPending returns a staged approval by ID.
func (r *FeeRepository) FindPending(ctx context.Context, id string) (*models.PendingFeeApproval, error) {
	const query = `SELECT id, student_id, course_id, month_key, payable, paid, waived, balance, submitted_by, submitted_at
        FROM pending_fee_approvals WHERE id = $1`
	var pending models.PendingFeeApproval
	if err := r.db.GetContext(ctx, &pending, query, id); err != nil {
		return nil, err
	}
	return &pending, nil
}

// ListPending returns all staged approvals, oldest first.
func (r *FeeRepository) ListPending(ctx context.Context) ([]models.PendingFeeApproval, error) {
	const query = `SELECT id, student_id, course_id, month_key, payable, paid, waived, balance, submitted_by, submitted_at
        FROM pending_fee_approvals ORDER BY submitted_at ASC`
	var pending []models.PendingFeeApproval
	if err := r.db.SelectContext(ctx, &pending, query); err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}
	return pending, nil
}

// DeletePending removes a staged approval (reject path).
func (r *FeeRepository) DeletePending(ctx context.Context, id string) error {
	const query = `DELETE FROM pending_fee_approvals WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete pending approval: %w", err)
	}
	return nil
}

// ApprovePending materializes a staged waiver into the ledger and removes the
// staging row in one transaction. The pair either both happen or neither does.
func (r *FeeRepository) ApprovePending(ctx context.Context, pending *models.PendingFeeApproval, approvedBy string, now time.Time) (*models.FeeTransaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin approve waiver: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	entry := &models.FeeTransaction{
		StudentID:  pending.StudentID,
		CourseID:   pending.CourseID,
		MonthKey:   pending.MonthKey,
		Payable:    pending.Payable,
		Paid:       pending.Paid,
		Waived:     pending.Waived,
		Balance:    pending.Balance,
		AddedBy:    pending.SubmittedBy,
		ApprovedBy: &approvedBy,
		ApprovedAt: &now,
		RecordedAt: now,
	}

	const upsert = `INSERT INTO fee_transactions (student_id, course_id, month_key, payable, paid, waived, balance, added_by, approved_by, approved_at, recorded_at)
        VALUES (:student_id, :course_id, :month_key, :payable, :paid, :waived, :balance, :added_by, :approved_by, :approved_at, :recorded_at)
        ON CONFLICT (student_id, course_id, month_key) DO UPDATE SET
            payable = EXCLUDED.payable,
            paid = EXCLUDED.paid,
            waived = EXCLUDED.waived,
            balance = EXCLUDED.balance,
            added_by = EXCLUDED.added_by,
            approved_by = EXCLUDED.approved_by,
            approved_at = EXCLUDED.approved_at,
            recorded_at = EXCLUDED.recorded_at`
	if _, err := tx.NamedExecContext(ctx, upsert, entry); err != nil {
		return nil, fmt.Errorf("materialize waiver: %w", err)
	}

	const remove = `DELETE FROM pending_fee_approvals WHERE id = $1`
	if _, err := tx.ExecContext(ctx, remove, pending.ID); err != nil {
		return nil, fmt.Errorf("remove pending approval: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approve waiver: %w", err)
	}
	return entry, nil
}
