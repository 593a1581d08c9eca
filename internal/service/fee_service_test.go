package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techfront-institute/academy-api/internal/models"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

type mockFeeRepo struct {
	upserted    []*models.FeeTransaction
	staged      []*models.PendingFeeApproval
	pendingByID map[string]*models.PendingFeeApproval
	approved    *models.FeeTransaction
	deleted     []string
}

func (m *mockFeeRepo) Upsert(ctx context.Context, tx *models.FeeTransaction) error {
	m.upserted = append(m.upserted, tx)
	return nil
}

func (m *mockFeeRepo) Find(ctx context.Context, studentID, courseID, monthKey string) (*models.FeeTransaction, error) {
	return nil, sql.ErrNoRows
}

func (m *mockFeeRepo) ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]models.FeeTransaction, error) {
	return nil, nil
}

func (m *mockFeeRepo) CreatePending(ctx context.Context, pending *models.PendingFeeApproval) error {
	m.staged = append(m.staged, pending)
	return nil
}

func (m *mockFeeRepo) FindPending(ctx context.Context, id string) (*models.PendingFeeApproval, error) {
	if p, ok := m.pendingByID[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeRepo) ListPending(ctx context.Context) ([]models.PendingFeeApproval, error) {
	out := make([]models.PendingFeeApproval, 0, len(m.staged))
	for _, p := range m.staged {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockFeeRepo) DeletePending(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockFeeRepo) ApprovePending(ctx context.Context, pending *models.PendingFeeApproval, approvedBy string, now time.Time) (*models.FeeTransaction, error) {
	m.approved = &models.FeeTransaction{
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
	m.deleted = append(m.deleted, pending.ID)
	return m.approved, nil
}

type mockEnrollmentFinder struct {
	record *models.EnrollmentRecord
	err    error
}

func (m *mockEnrollmentFinder) Find(ctx context.Context, studentID, courseID string) (*models.EnrollmentRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

type mockInvalidator struct{ calls int }

func (m *mockInvalidator) InvalidateLedger(ctx context.Context) { m.calls++ }

func enrollmentFixture() *models.EnrollmentRecord {
	return &models.EnrollmentRecord{
		StudentID:        "stu-1",
		CourseID:         "crs-1",
		CourseName:       "Graphic Designing",
		AgreedMonthlyFee: 4500,
		EnrolledAt:       time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		CourseStatus:     models.CourseActive,
	}
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "usr-admin", Role: models.RoleAdmin}
}

func cashierClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "usr-cashier", Role: models.RoleCashier}
}

func TestRecordPaymentCommitsDirectly(t *testing.T) {
	repo := &mockFeeRepo{}
	cache := &mockInvalidator{}
	svc := NewFeeService(repo, &mockEnrollmentFinder{record: enrollmentFixture()}, cache, nil, nil)

	result, err := svc.RecordPayment(context.Background(), cashierClaims(), PaymentRequest{
		StudentID: "stu-1", CourseID: "crs-1", Month: "Jan", Year: 2025, Paid: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCommitted, result.Status)
	require.NotNil(t, result.Transaction)
	assert.Equal(t, "Jan_2025", result.Transaction.MonthKey)
	assert.EqualValues(t, 4500, result.Transaction.Payable)
	assert.EqualValues(t, 2500, result.Transaction.Balance)
	assert.Nil(t, result.Transaction.ApprovedBy)
	assert.Len(t, repo.upserted, 1)
	assert.Empty(t, repo.staged)
	assert.Equal(t, 1, cache.calls)
}

func TestRecordPaymentRejectsOverPayment(t *testing.T) {
	svc := NewFeeService(&mockFeeRepo{}, &mockEnrollmentFinder{record: enrollmentFixture()}, nil, nil, nil)

	_, err := svc.RecordPayment(context.Background(), adminClaims(), PaymentRequest{
		StudentID: "stu-1", CourseID: "crs-1", Month: "Jan", Year: 2025, Paid: 4000, Waived: 1000,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrOverPayment.Code, appErr.Code)
}

func TestRecordPaymentStagesNonAdminWaiver(t *testing.T) {
	repo := &mockFeeRepo{}
	svc := NewFeeService(repo, &mockEnrollmentFinder{record: enrollmentFixture()}, nil, nil, nil)

	result, err := svc.RecordPayment(context.Background(), cashierClaims(), PaymentRequest{
		StudentID: "stu-1", CourseID: "crs-1", Month: "Feb", Year: 2025, Paid: 2000, Waived: 2500,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, result.Status)
	require.NotNil(t, result.Pending)
	assert.Equal(t, "Feb_2025", result.Pending.MonthKey)
	assert.EqualValues(t, 0, result.Pending.Balance)
	assert.Equal(t, "usr-cashier", result.Pending.SubmittedBy)
	assert.Empty(t, repo.upserted)
	assert.Len(t, repo.staged, 1)
}

func TestRecordPaymentAdminWaiverSelfApproves(t *testing.T) {
	repo := &mockFeeRepo{}
	svc := NewFeeService(repo, &mockEnrollmentFinder{record: enrollmentFixture()}, nil, nil, nil)

	result, err := svc.RecordPayment(context.Background(), adminClaims(), PaymentRequest{
		StudentID: "stu-1", CourseID: "crs-1", Month: "Mar", Year: 2025, Paid: 0, Waived: 4500,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCommitted, result.Status)
	require.NotNil(t, result.Transaction.ApprovedBy)
	assert.Equal(t, "usr-admin", *result.Transaction.ApprovedBy)
	assert.Empty(t, repo.staged)
}

func TestRecordPaymentUnknownEnrollment(t *testing.T) {
	svc := NewFeeService(&mockFeeRepo{}, &mockEnrollmentFinder{err: sql.ErrNoRows}, nil, nil, nil)

	_, err := svc.RecordPayment(context.Background(), adminClaims(), PaymentRequest{
		StudentID: "stu-x", CourseID: "crs-x", Month: "Jan", Year: 2025, Paid: 100,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestApproveWaiverMaterializesAndRemoves(t *testing.T) {
	pending := &models.PendingFeeApproval{
		ID: "pfa-1", StudentID: "stu-1", CourseID: "crs-1", MonthKey: "Jan_2025",
		Payable: 4500, Paid: 2000, Waived: 2500, Balance: 0, SubmittedBy: "usr-cashier",
	}
	repo := &mockFeeRepo{pendingByID: map[string]*models.PendingFeeApproval{"pfa-1": pending}}
	cache := &mockInvalidator{}
	svc := NewFeeService(repo, &mockEnrollmentFinder{record: enrollmentFixture()}, cache, nil, nil)

	entry, err := svc.ApproveWaiver(context.Background(), adminClaims(), "pfa-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2500, entry.Waived)
	assert.Equal(t, "usr-cashier", entry.AddedBy)
	require.NotNil(t, entry.ApprovedBy)
	assert.Equal(t, "usr-admin", *entry.ApprovedBy)
	assert.Contains(t, repo.deleted, "pfa-1")
	assert.Equal(t, 1, cache.calls)
}

func TestApproveWaiverForbiddenForNonAdmin(t *testing.T) {
	svc := NewFeeService(&mockFeeRepo{}, &mockEnrollmentFinder{}, nil, nil, nil)

	_, err := svc.ApproveWaiver(context.Background(), cashierClaims(), "pfa-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestRejectWaiverDeletesWithoutLedgerWrite(t *testing.T) {
	pending := &models.PendingFeeApproval{ID: "pfa-2", StudentID: "stu-1"}
	repo := &mockFeeRepo{pendingByID: map[string]*models.PendingFeeApproval{"pfa-2": pending}}
	svc := NewFeeService(repo, &mockEnrollmentFinder{}, nil, nil, nil)

	require.NoError(t, svc.RejectWaiver(context.Background(), adminClaims(), "pfa-2"))
	assert.Contains(t, repo.deleted, "pfa-2")
	assert.Empty(t, repo.upserted)
}
