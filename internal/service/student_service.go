package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/techfront-institute/academy-api/internal/models"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error)
	NextStudentID(ctx context.Context, year int) (string, error)
	CreateWithEnrollment(ctx context.Context, student *models.Student, enrollment *models.EnrollmentRecord) error
	CreatePending(ctx context.Context, pending *models.PendingStudent) error
	FindPending(ctx context.Context, id string) (*models.PendingStudent, error)
	ListPending(ctx context.Context) ([]models.PendingStudent, error)
	DeletePending(ctx context.Context, id string) error
	ApprovePending(ctx context.Context, pending *models.PendingStudent, studentID, humanID, approvedBy string, now time.Time) error
}

type studentCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// RegisterStudentRequest is the payload for registering a learner with their
// first course.
type RegisterStudentRequest struct {
	Name             string `json:"name" validate:"required"`
	Contact          string `json:"contact" validate:"required"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	AdmissionFee     int64  `json:"admission_fee" validate:"min=0"`
	CourseID         string `json:"course_id" validate:"required"`
	AgreedMonthlyFee int64  `json:"agreed_monthly_fee" validate:"min=0"`
}

// RegistrationResult reports whether a registration was committed directly or
// staged for admin approval. Exactly one of Student or Pending is set.
type RegistrationResult struct {
	Status  models.PaymentStatus   `json:"status"`
	Student *models.StudentDetail  `json:"student,omitempty"`
	Pending *models.PendingStudent `json:"pending,omitempty"`
}

// StudentService manages learner records and the registration approval
// workflow.
type StudentService struct {
	students  studentRepository
	courses   studentCourseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepository, courses studentCourseRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{students: students, courses: courses, validator: validate, logger: logger}
}

// List returns students matching the filter with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student with all enrolled courses.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	detail, err := s.students.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return detail, nil
}

// Register creates a learner record with their first enrollment. Admin
// submissions commit directly; everyone else's are staged until an admin
// approves.
func (s *StudentService) Register(ctx context.Context, claims *models.JWTClaims, req RegisterStudentRequest) (*RegistrationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	agreedFee := req.AgreedMonthlyFee
	if agreedFee == 0 {
		agreedFee = course.BaseFee
	}
	now := time.Now().UTC()

	if !claims.IsAdmin() {
		pending := &models.PendingStudent{
			Name:             req.Name,
			Contact:          req.Contact,
			Gender:           req.Gender,
			AdmissionFee:     req.AdmissionFee,
			CourseID:         course.ID,
			CourseName:       course.Name,
			DurationMonths:   course.DurationMonths,
			AgreedMonthlyFee: agreedFee,
			SubmittedBy:      claims.UserID,
			SubmittedAt:      now,
		}
		if err := s.students.CreatePending(ctx, pending); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stage registration")
		}
		s.logger.Info("student registration staged",
			zap.String("pending_id", pending.ID),
			zap.String("submitted_by", claims.UserID))
		return &RegistrationResult{Status: models.PaymentPending, Pending: pending}, nil
	}

	humanID, err := s.students.NextStudentID(ctx, now.Year())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate student id")
	}

	student := &models.Student{
		ID:           uuid.NewString(),
		StudentID:    humanID,
		Name:         req.Name,
		Contact:      req.Contact,
		Gender:       req.Gender,
		AdmissionFee: req.AdmissionFee,
		Status:       models.StudentActive,
		AddedBy:      claims.UserID,
	}
	enrollment := &models.EnrollmentRecord{
		StudentID:        student.ID,
		CourseID:         course.ID,
		CourseName:       course.Name,
		DurationMonths:   course.DurationMonths,
		AgreedMonthlyFee: agreedFee,
		EnrolledAt:       now,
		CourseStatus:     models.CourseActive,
	}
	// both rows or neither; a student must never exist without a course
	if err := s.students.CreateWithEnrollment(ctx, student, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	detail := &models.StudentDetail{Student: *student, Courses: []models.EnrollmentRecord{*enrollment}}
	return &RegistrationResult{Status: models.PaymentCommitted, Student: detail}, nil
}

// ListPendingRegistrations returns staged registrations awaiting approval.
func (s *StudentService) ListPendingRegistrations(ctx context.Context) ([]models.PendingStudent, error) {
	pending, err := s.students.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending registrations")
	}
	return pending, nil
}

// ApproveRegistration materializes a staged registration. Admin only.
func (s *StudentService) ApproveRegistration(ctx context.Context, claims *models.JWTClaims, pendingID string) (*models.StudentDetail, error) {
	if !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can approve registrations")
	}

	pending, err := s.students.FindPending(ctx, pendingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pending registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending registration")
	}

	now := time.Now().UTC()
	humanID, err := s.students.NextStudentID(ctx, now.Year())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate student id")
	}

	studentID := uuid.NewString()
	if err := s.students.ApprovePending(ctx, pending, studentID, humanID, claims.UserID, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve registration")
	}
	s.logger.Info("student registration approved",
		zap.String("pending_id", pendingID),
		zap.String("student_id", humanID))

	return s.Get(ctx, studentID)
}

// RejectRegistration discards a staged registration. Admin only.
func (s *StudentService) RejectRegistration(ctx context.Context, claims *models.JWTClaims, pendingID string) error {
	if !claims.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only admins can reject registrations")
	}

	if _, err := s.students.FindPending(ctx, pendingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "pending registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending registration")
	}

	if err := s.students.DeletePending(ctx, pendingID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject registration")
	}
	return nil
}
