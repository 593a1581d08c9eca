package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techfront-institute/academy-api/internal/models"
	"github.com/techfront-institute/academy-api/internal/service"
	"github.com/techfront-institute/academy-api/pkg/response"
)

type stubFeeIndex struct {
	index models.LedgerIndex
}

func (s *stubFeeIndex) ListAll(ctx context.Context) (models.LedgerIndex, error) {
	return s.index, nil
}

type stubStudentDetails struct {
	details []models.StudentDetail
}

func (s *stubStudentDetails) ListDetails(ctx context.Context) ([]models.StudentDetail, error) {
	return s.details, nil
}

func ledgerFixture() (*stubStudentDetails, *stubFeeIndex) {
	students := &stubStudentDetails{details: []models.StudentDetail{{
		Student: models.Student{
			ID:        "stu-1",
			StudentID: "STU-2025-001",
			Name:      "Ayesha Khan",
			Status:    models.StudentActive,
		},
		Courses: []models.EnrollmentRecord{{
			StudentID:        "stu-1",
			CourseID:         "crs-gd",
			CourseName:       "Graphic Designing",
			AgreedMonthlyFee: 4500,
			EnrolledAt:       time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
			CourseStatus:     models.CourseActive,
		}},
	}}}

	index := models.LedgerIndex{}
	index.Add(models.FeeTransaction{
		StudentID: "stu-1", CourseID: "crs-gd", MonthKey: "Jan_2025",
		Payable: 4500, Paid: 4500, Balance: 0,
	})
	return students, &stubFeeIndex{index: index}
}

func newLedgerRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	students, fees := ledgerFixture()
	svc := service.NewLedgerService(fees, students, nil)
	r := gin.New()
	r.GET("/ledger", NewLedgerHandler(svc).Report)
	return r
}

func TestLedgerReportEndpoint(t *testing.T) {
	r := newLedgerRouter(t)

	req := httptest.NewRequest(http.MethodGet,
		"/ledger?from_month=Jan&from_year=2025&to_month=Feb&to_year=2025", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Nil(t, envelope.Error)

	rows, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, rows)

	first := rows[0].(map[string]interface{})
	// newest month first
	assert.Equal(t, "Feb_2025", first["month_key"])
	assert.Equal(t, "Unpaid", first["label"])
	last := rows[len(rows)-1].(map[string]interface{})
	assert.Equal(t, "Jan_2025", last["month_key"])
	assert.Equal(t, "Paid", last["label"])
}

func TestLedgerReportRejectsInvertedRange(t *testing.T) {
	r := newLedgerRouter(t)

	req := httptest.NewRequest(http.MethodGet,
		"/ledger?from_month=Mar&from_year=2025&to_month=Jan&to_year=2025", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLedgerReportRejectsUnknownMonth(t *testing.T) {
	r := newLedgerRouter(t)

	req := httptest.NewRequest(http.MethodGet,
		"/ledger?from_month=Janvier&from_year=2025&to_month=Feb&to_year=2025", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
