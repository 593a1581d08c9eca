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

type mockEnrollmentRepo struct {
	records         []models.EnrollmentRecord
	created         []*models.EnrollmentRecord
	deleted         [][2]string
	reconciledWith  models.StudentStatus
	statusUpdated   bool
	courseStatusSet models.CourseStatus
}

func (m *mockEnrollmentRepo) Find(ctx context.Context, studentID, courseID string) (*models.EnrollmentRecord, error) {
	for i := range m.records {
		if m.records[i].StudentID == studentID && m.records[i].CourseID == courseID {
			return &m.records[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	_, err := m.Find(ctx, studentID, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentRecord, error) {
	var out []models.EnrollmentRecord
	for _, r := range m.records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, record *models.EnrollmentRecord) error {
	m.created = append(m.created, record)
	m.records = append(m.records, *record)
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, studentID, courseID string) error {
	m.deleted = append(m.deleted, [2]string{studentID, courseID})
	kept := m.records[:0]
	for _, r := range m.records {
		if !(r.StudentID == studentID && r.CourseID == courseID) {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

func (m *mockEnrollmentRepo) UpdateStatusAndReconcile(ctx context.Context, studentID, courseID string, status models.CourseStatus, statusDate *time.Time, studentStatus models.StudentStatus, now time.Time) error {
	m.courseStatusSet = status
	m.reconciledWith = studentStatus
	m.statusUpdated = true
	return nil
}

type mockStudentStatusRepo struct {
	student   *models.Student
	statuses  []models.StudentStatus
	updateErr error
}

func (m *mockStudentStatusRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

func (m *mockStudentStatusRepo) UpdateStatus(ctx context.Context, id string, status models.StudentStatus, ts time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.statuses = append(m.statuses, status)
	return nil
}

type mockCourseFinder struct {
	course *models.Course
}

func (m *mockCourseFinder) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if m.course == nil {
		return nil, sql.ErrNoRows
	}
	return m.course, nil
}

func activeEnrollment(studentID, courseID string) models.EnrollmentRecord {
	return models.EnrollmentRecord{
		StudentID:        studentID,
		CourseID:         courseID,
		CourseName:       "Graphic Designing",
		AgreedMonthlyFee: 4500,
		EnrolledAt:       time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		CourseStatus:     models.CourseActive,
	}
}

func TestEnrollRejectsDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{records: []models.EnrollmentRecord{activeEnrollment("stu-1", "crs-1")}}
	students := &mockStudentStatusRepo{student: &models.Student{ID: "stu-1"}}
	courses := &mockCourseFinder{course: &models.Course{ID: "crs-1", Name: "Graphic Designing", BaseFee: 5000}}
	svc := NewEnrollmentService(repo, students, courses, nil, nil)

	_, err := svc.Enroll(context.Background(), "stu-1", EnrollRequest{CourseID: "crs-1"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAlreadyEnrolled.Code, appErr.Code)
}

func TestEnrollDefaultsAgreedFeeToBaseFee(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students := &mockStudentStatusRepo{student: &models.Student{ID: "stu-1", Status: models.StudentInactive}}
	courses := &mockCourseFinder{course: &models.Course{ID: "crs-2", Name: "Web Development", BaseFee: 6000, DurationMonths: 8}}
	svc := NewEnrollmentService(repo, students, courses, nil, nil)

	record, err := svc.Enroll(context.Background(), "stu-1", EnrollRequest{CourseID: "crs-2"})
	require.NoError(t, err)
	assert.EqualValues(t, 6000, record.AgreedMonthlyFee)
	assert.Equal(t, models.CourseActive, record.CourseStatus)
	// new enrollment reactivates the student
	require.NotEmpty(t, students.statuses)
	assert.Equal(t, models.StudentActive, students.statuses[len(students.statuses)-1])
}

func TestEnrollSurfacesStatusUpdateFailure(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	students := &mockStudentStatusRepo{
		student:   &models.Student{ID: "stu-1", Status: models.StudentInactive},
		updateErr: errors.New("update failed"),
	}
	courses := &mockCourseFinder{course: &models.Course{ID: "crs-2", Name: "Web Development", BaseFee: 6000}}
	svc := NewEnrollmentService(repo, students, courses, nil, nil)

	_, err := svc.Enroll(context.Background(), "stu-1", EnrollRequest{CourseID: "crs-2"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

func TestRemoveReconcilesStudentStatus(t *testing.T) {
	finished := activeEnrollment("stu-1", "crs-2")
	finished.CourseStatus = models.CourseDropout
	repo := &mockEnrollmentRepo{records: []models.EnrollmentRecord{
		activeEnrollment("stu-1", "crs-1"),
		finished,
	}}
	students := &mockStudentStatusRepo{student: &models.Student{ID: "stu-1"}}
	svc := NewEnrollmentService(repo, students, &mockCourseFinder{}, nil, nil)

	// removing the only active course leaves just the dropout, student goes inactive
	require.NoError(t, svc.Remove(context.Background(), "stu-1", "crs-1"))
	require.NotEmpty(t, students.statuses)
	assert.Equal(t, models.StudentInactive, students.statuses[len(students.statuses)-1])
}

func TestSetCourseStatusReconcilesInSameWrite(t *testing.T) {
	repo := &mockEnrollmentRepo{records: []models.EnrollmentRecord{activeEnrollment("stu-1", "crs-1")}}
	students := &mockStudentStatusRepo{student: &models.Student{ID: "stu-1"}}
	svc := NewEnrollmentService(repo, students, &mockCourseFinder{}, nil, nil)

	err := svc.SetCourseStatus(context.Background(), "stu-1", "crs-1", CourseStatusRequest{Status: models.CourseComplete})
	require.NoError(t, err)
	assert.True(t, repo.statusUpdated)
	assert.Equal(t, models.CourseComplete, repo.courseStatusSet)
	assert.Equal(t, models.StudentInactive, repo.reconciledWith)
}

func TestSetCourseStatusRejectsUnknownState(t *testing.T) {
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, &mockStudentStatusRepo{}, &mockCourseFinder{}, nil, nil)

	err := svc.SetCourseStatus(context.Background(), "stu-1", "crs-1", CourseStatusRequest{Status: "paused"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDeriveStudentStatus(t *testing.T) {
	complete := activeEnrollment("stu-1", "crs-1")
	complete.CourseStatus = models.CourseComplete
	dropout := activeEnrollment("stu-1", "crs-2")
	dropout.CourseStatus = models.CourseDropout

	assert.Equal(t, models.StudentInactive, DeriveStudentStatus(nil))
	assert.Equal(t, models.StudentInactive, DeriveStudentStatus([]models.EnrollmentRecord{complete, dropout}))
	assert.Equal(t, models.StudentActive, DeriveStudentStatus([]models.EnrollmentRecord{complete, activeEnrollment("stu-1", "crs-3")}))
}
