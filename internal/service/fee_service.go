package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/techfront-institute/academy-api/internal/billing"
	"github.com/techfront-institute/academy-api/internal/models"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

type feeRepository interface {
	Upsert(ctx context.Context, tx *models.FeeTransaction) error
	Find(ctx context.Context, studentID, courseID, monthKey string) (*models.FeeTransaction, error)
	ListByStudentCourse(ctx context.Context, studentID, courseID string) ([]models.FeeTransaction, error)
	CreatePending(ctx context.Context, pending *models.PendingFeeApproval) error
	FindPending(ctx context.Context, id string) (*models.PendingFeeApproval, error)
	ListPending(ctx context.Context) ([]models.PendingFeeApproval, error)
	DeletePending(ctx context.Context, id string) error
	ApprovePending(ctx context.Context, pending *models.PendingFeeApproval, approvedBy string, now time.Time) (*models.FeeTransaction, error)
}

type feeEnrollmentRepository interface {
	Find(ctx context.Context, studentID, courseID string) (*models.EnrollmentRecord, error)
}

type feeCacheInvalidator interface {
	InvalidateLedger(ctx context.Context)
}

// PaymentRequest is one payment or waiver submission for a billing month.
type PaymentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	Month     string `json:"month" validate:"required"`
	Year      int    `json:"year" validate:"required,min=2000,max=2100"`
	Paid      int64  `json:"paid" validate:"min=0"`
	Waived    int64  `json:"waived" validate:"min=0"`
}

// FeeService is the write side of the fee ledger. Every mutation flows
// through RecordPayment or a waiver approval so the balance invariant holds
// for every stored row.
type FeeService struct {
	fees        feeRepository
	enrollments feeEnrollmentRepository
	cache       feeCacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewFeeService constructs a FeeService.
func NewFeeService(fees feeRepository, enrollments feeEnrollmentRepository, cache feeCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeeService{fees: fees, enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

// RecordPayment submits a payment, optionally with a waiver, for one billing
// month. Payable is always the agreed monthly fee of the enrollment, never a
// caller-supplied figure. Waiver-bearing submissions from non-admins are
// staged for approval instead of hitting the ledger.
func (s *FeeService) RecordPayment(ctx context.Context, claims *models.JWTClaims, req PaymentRequest) (*models.PaymentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	period, err := billing.NewPeriod(req.Month, req.Year)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.enrollments.Find(ctx, req.StudentID, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	payable := enrollment.AgreedMonthlyFee
	balance := payable - req.Paid - req.Waived
	if balance < 0 {
		return nil, appErrors.Clone(appErrors.ErrOverPayment,
			fmt.Sprintf("paid plus waived exceeds the agreed fee of %d", payable))
	}

	now := time.Now().UTC()

	if req.Waived > 0 && !claims.IsAdmin() {
		pending := &models.PendingFeeApproval{
			StudentID:   req.StudentID,
			CourseID:    req.CourseID,
			MonthKey:    period.Key,
			Payable:     payable,
			Paid:        req.Paid,
			Waived:      req.Waived,
			Balance:     balance,
			SubmittedBy: claims.UserID,
			SubmittedAt: now,
		}
		if err := s.fees.CreatePending(ctx, pending); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stage waiver")
		}
		s.logger.Info("waiver staged for approval",
			zap.String("student_id", req.StudentID),
			zap.String("month_key", period.Key),
			zap.Int64("waived", req.Waived))
		return &models.PaymentResult{Status: models.PaymentPending, Pending: pending}, nil
	}

	entry := &models.FeeTransaction{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		MonthKey:   period.Key,
		Payable:    payable,
		Paid:       req.Paid,
		Waived:     req.Waived,
		Balance:    balance,
		AddedBy:    claims.UserID,
		RecordedAt: now,
	}
	if req.Waived > 0 {
		// admin-submitted waivers are self-approved
		entry.ApprovedBy = &claims.UserID
		entry.ApprovedAt = &now
	}

	if err := s.fees.Upsert(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	s.invalidate(ctx)
	return &models.PaymentResult{Status: models.PaymentCommitted, Transaction: entry}, nil
}

// History returns the full ledger history of a (student, course) pair,
// including months for courses the student has since left.
func (s *FeeService) History(ctx context.Context, studentID, courseID string) ([]models.FeeTransaction, error) {
	txs, err := s.fees.ListByStudentCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee history")
	}
	return txs, nil
}

// ListPendingWaivers returns every staged waiver awaiting an admin decision.
func (s *FeeService) ListPendingWaivers(ctx context.Context) ([]models.PendingFeeApproval, error) {
	pending, err := s.fees.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending waivers")
	}
	return pending, nil
}

// ApproveWaiver materializes a staged waiver into the ledger and removes the
// staging row atomically. Admin only, enforced at the route level and checked
// again here.
func (s *FeeService) ApproveWaiver(ctx context.Context, claims *models.JWTClaims, pendingID string) (*models.FeeTransaction, error) {
	if !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can approve waivers")
	}

	pending, err := s.fees.FindPending(ctx, pendingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pending waiver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending waiver")
	}

	entry, err := s.fees.ApprovePending(ctx, pending, claims.UserID, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve waiver")
	}
	s.invalidate(ctx)
	s.logger.Info("waiver approved",
		zap.String("pending_id", pendingID),
		zap.String("approved_by", claims.UserID))
	return entry, nil
}

// RejectWaiver discards a staged waiver without touching the ledger.
func (s *FeeService) RejectWaiver(ctx context.Context, claims *models.JWTClaims, pendingID string) error {
	if !claims.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can reject waivers")
	}

	if _, err := s.fees.FindPending(ctx, pendingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "pending waiver not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending waiver")
	}

	if err := s.fees.DeletePending(ctx, pendingID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject waiver")
	}
	return nil
}

func (s *FeeService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateLedger(ctx)
	}
}
