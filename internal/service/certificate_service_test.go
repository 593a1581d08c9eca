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

type mockCertificateStudentRepo struct {
	detail *models.StudentDetail
	err    error
}

func (m *mockCertificateStudentRepo) FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func completedStudentDetail() *models.StudentDetail {
	done := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	return &models.StudentDetail{
		Student: models.Student{
			ID:        "stu-1",
			StudentID: "STU-2025-001",
			Name:      "Ayesha Khan",
			Status:    models.StudentInactive,
		},
		Courses: []models.EnrollmentRecord{{
			StudentID:        "stu-1",
			CourseID:         "crs-1",
			CourseName:       "Graphic Designing",
			DurationMonths:   6,
			CourseStatus:     models.CourseComplete,
			CourseStatusDate: &done,
		}},
	}
}

func TestCertificateGenerateRendersPDF(t *testing.T) {
	repo := &mockCertificateStudentRepo{detail: completedStudentDetail()}
	svc := NewCertificateService(repo, CertificateConfig{InstitutePrefix: "TF", SignatoryName: "Director"}, nil)

	pdf, serial, err := svc.Generate(context.Background(), "stu-1", "crs-1")
	require.NoError(t, err)
	assert.True(t, len(pdf) > 4 && string(pdf[:4]) == "%PDF")
	assert.Contains(t, serial, "TF-GD-")
	assert.Contains(t, serial, "001")
}

func TestCertificateGenerateRejectsUnfinishedCourse(t *testing.T) {
	detail := completedStudentDetail()
	detail.Courses[0].CourseStatus = models.CourseActive
	detail.Courses[0].CourseStatusDate = nil
	svc := NewCertificateService(&mockCertificateStudentRepo{detail: detail}, CertificateConfig{}, nil)

	_, _, err := svc.Generate(context.Background(), "stu-1", "crs-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestCertificateGenerateUnknownStudent(t *testing.T) {
	svc := NewCertificateService(&mockCertificateStudentRepo{err: sql.ErrNoRows}, CertificateConfig{}, nil)

	_, _, err := svc.Generate(context.Background(), "stu-404", "crs-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCertificateGenerateSurfacesRepositoryFailure(t *testing.T) {
	svc := NewCertificateService(&mockCertificateStudentRepo{err: errors.New("connection refused")}, CertificateConfig{}, nil)

	_, _, err := svc.Generate(context.Background(), "stu-1", "crs-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}
