package models

import "time"

// FeeTransaction is one ledger entry per (student, course, billing month).
// Balance always equals Payable - Paid - Waived and is never negative;
// submissions breaking that invariant are rejected before they reach the
// ledger. Writes are idempotent upserts: last write wins for a given key.
type FeeTransaction struct {
	StudentID  string     `db:"student_id" json:"student_id"`
	CourseID   string     `db:"course_id" json:"course_id"`
	MonthKey   string     `db:"month_key" json:"month_key"`
	Payable    int64      `db:"payable" json:"payable"`
	Paid       int64      `db:"paid" json:"paid"`
	Waived     int64      `db:"waived" json:"waived"`
	Balance    int64      `db:"balance" json:"balance"`
	AddedBy    string     `db:"added_by" json:"added_by"`
	ApprovedBy *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	RecordedAt time.Time  `db:"recorded_at" json:"recorded_at"`
}

// PendingFeeApproval is a staged ledger entry created when a non-admin
// submits a waiver. It is consumed by an admin approve (materialized into the
// ledger and removed) or deleted on reject.
type PendingFeeApproval struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	MonthKey    string    `db:"month_key" json:"month_key"`
	Payable     int64     `db:"payable" json:"payable"`
	Paid        int64     `db:"paid" json:"paid"`
	Waived      int64     `db:"waived" json:"waived"`
	Balance     int64     `db:"balance" json:"balance"`
	SubmittedBy string    `db:"submitted_by" json:"submitted_by"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// PaymentStatus tags the outcome of a payment submission.
type PaymentStatus string

const (
	PaymentCommitted PaymentStatus = "committed"
	PaymentPending   PaymentStatus = "pending"
)

// PaymentResult is returned by the ledger engine for a payment submission.
// Exactly one of Transaction or Pending is set.
type PaymentResult struct {
	Status      PaymentStatus       `json:"status"`
	Transaction *FeeTransaction     `json:"transaction,omitempty"`
	Pending     *PendingFeeApproval `json:"pending,omitempty"`
}

// LedgerIndex indexes transactions by student, course and month key for the
// pure reporting layer.
type LedgerIndex map[string]map[string]map[string]FeeTransaction

// Lookup returns the transaction for the triple, if recorded.
func (ix LedgerIndex) Lookup(studentID, courseID, monthKey string) (FeeTransaction, bool) {
	byCourse, ok := ix[studentID]
	if !ok {
		return FeeTransaction{}, false
	}
	byMonth, ok := byCourse[courseID]
	if !ok {
		return FeeTransaction{}, false
	}
	tx, ok := byMonth[monthKey]
	return tx, ok
}

// Add indexes a transaction, allocating nested maps as needed.
func (ix LedgerIndex) Add(tx FeeTransaction) {
	byCourse, ok := ix[tx.StudentID]
	if !ok {
		byCourse = make(map[string]map[string]FeeTransaction)
		ix[tx.StudentID] = byCourse
	}
	byMonth, ok := byCourse[tx.CourseID]
	if !ok {
		byMonth = make(map[string]FeeTransaction)
		byCourse[tx.CourseID] = byMonth
	}
	byMonth[tx.MonthKey] = tx
}
