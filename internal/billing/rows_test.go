package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techfront-institute/academy-api/internal/models"
)

func ts(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
}

func testStudent() models.StudentDetail {
	return models.StudentDetail{
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
			EnrolledAt:       ts(2025, time.January, 15),
			CourseStatus:     models.CourseActive,
		}},
	}
}

func mustRange(t *testing.T, fm string, fy int, tm string, ty int) []Period {
	t.Helper()
	periods, err := MonthRange(fm, fy, tm, ty)
	require.NoError(t, err)
	return periods
}

func TestBuildLedgerRowsEmitsOneRowPerVisibleMonth(t *testing.T) {
	students := []models.StudentDetail{testStudent()}
	ledger := models.LedgerIndex{}
	ledger.Add(models.FeeTransaction{
		StudentID: "stu-1", CourseID: "crs-gd", MonthKey: "Jan_2025",
		Payable: 4500, Paid: 2000, Waived: 0, Balance: 2500,
	})

	now := ts(2025, time.March, 20)
	rows := BuildLedgerRows(students, ledger, mustRange(t, "Jan", 2025, "Mar", 2025), RowFilters{Status: "active"}, now)
	require.Len(t, rows, 3)

	byKey := map[string]Row{}
	for _, r := range rows {
		byKey[r.MonthKey] = r
	}
	jan := byKey["Jan_2025"]
	assert.Equal(t, LabelPartial, jan.Label)
	assert.EqualValues(t, 2000, jan.Paid)
	assert.EqualValues(t, 2500, jan.Balance)
	assert.Equal(t, LabelUnpaid, byKey["Feb_2025"].Label)
	assert.EqualValues(t, 4500, byKey["Feb_2025"].Balance)
}

func TestBuildLedgerRowsRespectsEnrollmentBoundary(t *testing.T) {
	students := []models.StudentDetail{testStudent()}
	now := ts(2025, time.March, 20)

	// range starts before the enrollment month
	rows := BuildLedgerRows(students, models.LedgerIndex{}, mustRange(t, "Oct", 2024, "Mar", 2025), RowFilters{}, now)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.SortValue, PeriodOf(ts(2025, time.January, 1)).SortValue)
	}
}

func TestBuildLedgerRowsRespectsTerminationBoundary(t *testing.T) {
	student := testStudent()
	statusDate := ts(2025, time.February, 10)
	student.Courses[0].CourseStatus = models.CourseDropout
	student.Courses[0].CourseStatusDate = &statusDate
	student.Status = models.StudentInactive

	now := ts(2025, time.June, 1)
	rows := BuildLedgerRows([]models.StudentDetail{student}, models.LedgerIndex{}, mustRange(t, "Jan", 2025, "Jun", 2025), RowFilters{Status: "all"}, now)
	require.Len(t, rows, 2)
	keys := []string{rows[0].MonthKey, rows[1].MonthKey}
	assert.ElementsMatch(t, []string{"Jan_2025", "Feb_2025"}, keys)
}

func TestBuildLedgerRowsStudentStatusFilter(t *testing.T) {
	active := testStudent()
	inactive := testStudent()
	inactive.ID = "stu-2"
	inactive.StudentID = "STU-2025-002"
	inactive.Status = models.StudentInactive

	students := []models.StudentDetail{active, inactive}
	now := ts(2025, time.January, 31)
	periods := mustRange(t, "Jan", 2025, "Jan", 2025)

	rows := BuildLedgerRows(students, models.LedgerIndex{}, periods, RowFilters{Status: "active"}, now)
	require.Len(t, rows, 1)
	assert.Equal(t, "stu-1", rows[0].StudentKey)

	rows = BuildLedgerRows(students, models.LedgerIndex{}, periods, RowFilters{Status: "all"}, now)
	assert.Len(t, rows, 2)
}

func TestBuildLedgerRowsSearchAndCourseFilters(t *testing.T) {
	student := testStudent()
	student.Courses = append(student.Courses, models.EnrollmentRecord{
		StudentID:        "stu-1",
		CourseID:         "crs-wd",
		CourseName:       "Web Development",
		AgreedMonthlyFee: 6000,
		EnrolledAt:       ts(2025, time.January, 2),
		CourseStatus:     models.CourseActive,
	})
	students := []models.StudentDetail{student}
	now := ts(2025, time.January, 31)
	periods := mustRange(t, "Jan", 2025, "Jan", 2025)

	rows := BuildLedgerRows(students, models.LedgerIndex{}, periods, RowFilters{CourseID: "crs-wd"}, now)
	require.Len(t, rows, 1)
	assert.Equal(t, "Web Development", rows[0].CourseName)

	rows = BuildLedgerRows(students, models.LedgerIndex{}, periods, RowFilters{Search: "ayesha"}, now)
	assert.Len(t, rows, 2)

	rows = BuildLedgerRows(students, models.LedgerIndex{}, periods, RowFilters{Search: "stu-2025-001"}, now)
	assert.Len(t, rows, 2)

	rows = BuildLedgerRows(students, models.LedgerIndex{}, periods, RowFilters{Search: "nobody"}, now)
	assert.Empty(t, rows)
}

func TestBuildLedgerRowsIsReadOnly(t *testing.T) {
	students := []models.StudentDetail{testStudent()}
	ledger := models.LedgerIndex{}
	ledger.Add(models.FeeTransaction{StudentID: "stu-1", CourseID: "crs-gd", MonthKey: "Jan_2025", Payable: 4500, Paid: 4500})

	now := ts(2025, time.January, 31)
	periods := mustRange(t, "Jan", 2025, "Jan", 2025)
	first := BuildLedgerRows(students, ledger, periods, RowFilters{}, now)
	second := BuildLedgerRows(students, ledger, periods, RowFilters{}, now)
	assert.Equal(t, first, second)
	assert.Len(t, ledger["stu-1"]["crs-gd"], 1)
}

func TestSortRowsByRecency(t *testing.T) {
	rows := []Row{
		{MonthKey: "Jan_2025", SortValue: 10},
		{MonthKey: "Mar_2025", SortValue: 30},
		{MonthKey: "Feb_2025", SortValue: 20},
	}
	SortRowsByRecency(rows)
	assert.Equal(t, "Mar_2025", rows[0].MonthKey)
	assert.Equal(t, "Feb_2025", rows[1].MonthKey)
	assert.Equal(t, "Jan_2025", rows[2].MonthKey)
}
