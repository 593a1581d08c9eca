package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/techfront-institute/academy-api/internal/models"
)

func TestStudentRepositoryNextStudentID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO student_id_counters").
		WithArgs(2025).
		WillReturnRows(sqlmock.NewRows([]string{"last_seq"}).AddRow(8))

	id, err := repo.NextStudentID(context.Background(), 2025)
	require.NoError(t, err)
	require.Equal(t, "STU-2025-008", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryNextStudentIDStartsAtOne(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("INSERT INTO student_id_counters").
		WithArgs(2026).
		WillReturnRows(sqlmock.NewRows([]string{"last_seq"}).AddRow(1))

	id, err := repo.NextStudentID(context.Background(), 2026)
	require.NoError(t, err)
	require.Equal(t, "STU-2026-001", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "name", "contact", "gender", "admission_fee", "status", "added_by", "created_at", "updated_at"}).
		AddRow("stu-1", "STU-2025-001", "Ayesha Khan", "0300-1234567", "female", int64(1000), models.StudentActive, "usr-1", now, now)
	mock.ExpectQuery("SELECT (.+) FROM students s WHERE s.status = \\$1").
		WithArgs(models.StudentActive).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students s WHERE s.status = \\$1").
		WithArgs(models.StudentActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Status: string(models.StudentActive)})
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func registrationFixture() (*models.Student, *models.EnrollmentRecord) {
	student := &models.Student{
		ID:           "stu-9",
		StudentID:    "STU-2025-009",
		Name:         "Bilal Ahmed",
		Contact:      "0301-7654321",
		Gender:       "male",
		AdmissionFee: 1000,
		Status:       models.StudentActive,
		AddedBy:      "usr-admin",
	}
	enrollment := &models.EnrollmentRecord{
		CourseID:         "crs-1",
		CourseName:       "Graphic Designing",
		DurationMonths:   6,
		AgreedMonthlyFee: 4500,
		EnrolledAt:       time.Now().UTC(),
		CourseStatus:     models.CourseActive,
	}
	return student, enrollment
}

func TestStudentRepositoryCreateWithEnrollmentCommitsBothWrites(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)
	student, enrollment := registrationFixture()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO enrollments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateWithEnrollment(context.Background(), student, enrollment))
	require.Equal(t, "stu-9", enrollment.StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithEnrollmentRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)
	student, enrollment := registrationFixture()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO enrollments").WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := repo.CreateWithEnrollment(context.Background(), student, enrollment)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryApprovePendingCommitsAllWrites(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	pending := &models.PendingStudent{
		ID:               "pst-1",
		Name:             "Bilal Ahmed",
		Contact:          "0301-7654321",
		Gender:           "male",
		AdmissionFee:     1000,
		CourseID:         "crs-1",
		CourseName:       "Graphic Designing",
		DurationMonths:   6,
		AgreedMonthlyFee: 4500,
		SubmittedBy:      "usr-teacher",
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO enrollments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM pending_students WHERE id = $1")).
		WithArgs("pst-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ApprovePending(context.Background(), pending, "stu-9", "STU-2025-009", "usr-admin", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
