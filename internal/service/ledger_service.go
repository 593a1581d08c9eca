package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/techfront-institute/academy-api/internal/billing"
	"github.com/techfront-institute/academy-api/internal/models"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

type ledgerFeeRepository interface {
	ListAll(ctx context.Context) (models.LedgerIndex, error)
}

type ledgerStudentRepository interface {
	ListDetails(ctx context.Context) ([]models.StudentDetail, error)
}

// LedgerQuery selects the date window and filters for a report.
type LedgerQuery struct {
	FromMonth string `form:"from_month" json:"from_month" validate:"required"`
	FromYear  int    `form:"from_year" json:"from_year" validate:"required"`
	ToMonth   string `form:"to_month" json:"to_month" validate:"required"`
	ToYear    int    `form:"to_year" json:"to_year" validate:"required"`
	Search    string `form:"search" json:"search,omitempty"`
	CourseID  string `form:"course_id" json:"course_id,omitempty"`
	Status    string `form:"status" json:"status,omitempty"`
}

// LedgerService is the read side of the fee ledger: it assembles the
// flattened per-month report from students, enrollments and the transaction
// index without mutating any of them.
type LedgerService struct {
	fees     ledgerFeeRepository
	students ledgerStudentRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(fees ledgerFeeRepository, students ledgerStudentRepository, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{fees: fees, students: students, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Report builds the ledger rows for the requested window, newest month first.
func (s *LedgerService) Report(ctx context.Context, query LedgerQuery) ([]billing.Row, error) {
	periods, err := billing.MonthRange(query.FromMonth, query.FromYear, query.ToMonth, query.ToYear)
	if err != nil {
		return nil, err
	}

	students, err := s.students.ListDetails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	ledger, err := s.fees.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ledger")
	}

	rows := billing.BuildLedgerRows(students, ledger, periods, billing.RowFilters{
		Search:   query.Search,
		CourseID: query.CourseID,
		Status:   query.Status,
	}, s.now())
	billing.SortRowsByRecency(rows)
	return rows, nil
}
