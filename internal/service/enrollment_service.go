package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/techfront-institute/academy-api/internal/models"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

type enrollmentRepository interface {
	Find(ctx context.Context, studentID, courseID string) (*models.EnrollmentRecord, error)
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentRecord, error)
	Create(ctx context.Context, record *models.EnrollmentRecord) error
	Delete(ctx context.Context, studentID, courseID string) error
	UpdateStatusAndReconcile(ctx context.Context, studentID, courseID string, status models.CourseStatus, statusDate *time.Time, studentStatus models.StudentStatus, now time.Time) error
}

type enrollmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateStatus(ctx context.Context, id string, status models.StudentStatus, ts time.Time) error
}

type enrollmentCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// EnrollRequest adds a course subscription to an existing student.
type EnrollRequest struct {
	CourseID         string `json:"course_id" validate:"required"`
	AgreedMonthlyFee int64  `json:"agreed_monthly_fee" validate:"min=0"`
}

// CourseStatusRequest transitions one enrollment's lifecycle state.
type CourseStatusRequest struct {
	Status models.CourseStatus `json:"status" validate:"required"`
}

// EnrollmentService manages course subscriptions and keeps the derived
// student status in step with them.
type EnrollmentService struct {
	enrollments enrollmentRepository
	students    enrollmentStudentRepository
	courses     enrollmentCourseRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(enrollments enrollmentRepository, students enrollmentStudentRepository, courses enrollmentCourseRepository, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{enrollments: enrollments, students: students, courses: courses, validator: validate, logger: logger}
}

// Enroll subscribes a student to an additional course. A duplicate
// (student, course) pair is rejected.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID string, req EnrollRequest) (*models.EnrollmentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	exists, err := s.enrollments.Exists(ctx, studentID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "student is already enrolled in this course")
	}

	agreedFee := req.AgreedMonthlyFee
	if agreedFee == 0 {
		agreedFee = course.BaseFee
	}

	now := time.Now().UTC()
	record := &models.EnrollmentRecord{
		StudentID:        studentID,
		CourseID:         course.ID,
		CourseName:       course.Name,
		DurationMonths:   course.DurationMonths,
		AgreedMonthlyFee: agreedFee,
		EnrolledAt:       now,
		CourseStatus:     models.CourseActive,
	}
	if err := s.enrollments.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	// a fresh active enrollment always makes the student active
	if err := s.students.UpdateStatus(ctx, studentID, models.StudentActive, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student status")
	}
	return record, nil
}

// Remove drops a course subscription. Fee history for the pair is retained;
// the student's aggregate status is recomputed from the remaining courses.
func (s *EnrollmentService) Remove(ctx context.Context, studentID, courseID string) error {
	exists, err := s.enrollments.Exists(ctx, studentID, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}

	if err := s.enrollments.Delete(ctx, studentID, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove enrollment")
	}
	return s.reconcile(ctx, studentID)
}

// SetCourseStatus transitions an enrollment's lifecycle state and writes the
// recomputed student status in the same transaction. Moving to a finished
// state stamps the status date; moving back to active clears it.
func (s *EnrollmentService) SetCourseStatus(ctx context.Context, studentID, courseID string, req CourseStatusRequest) error {
	if !req.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown course status")
	}

	if _, err := s.enrollments.Find(ctx, studentID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	now := time.Now().UTC()
	var statusDate *time.Time
	if req.Status.Finished() {
		statusDate = &now
	}

	records, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	// project the transition before deriving the aggregate flag
	for i := range records {
		if records[i].CourseID == courseID {
			records[i].CourseStatus = req.Status
		}
	}
	studentStatus := DeriveStudentStatus(records)

	if err := s.enrollments.UpdateStatusAndReconcile(ctx, studentID, courseID, req.Status, statusDate, studentStatus, now); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course status")
	}
	s.logger.Info("course status updated",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID),
		zap.String("status", string(req.Status)),
		zap.String("student_status", string(studentStatus)))
	return nil
}

// reconcile recomputes and stores the aggregate student status from the
// current enrollment set.
func (s *EnrollmentService) reconcile(ctx context.Context, studentID string) error {
	records, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	status := DeriveStudentStatus(records)
	if err := s.students.UpdateStatus(ctx, studentID, status, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student status")
	}
	return nil
}

// DeriveStudentStatus computes the aggregate flag: a student is inactive if
// and only if every enrollment has finished. No enrollments also means
// inactive.
func DeriveStudentStatus(records []models.EnrollmentRecord) models.StudentStatus {
	if len(records) == 0 {
		return models.StudentInactive
	}
	for _, r := range records {
		if !r.CourseStatus.Finished() {
			return models.StudentActive
		}
	}
	return models.StudentInactive
}
