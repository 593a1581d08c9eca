package billing

import (
	"sort"
	"strings"
	"time"

	"github.com/techfront-institute/academy-api/internal/models"
)

// Row is one flattened (student, course, month) line of the fee ledger report.
type Row struct {
	StudentKey    string               `json:"student_key"`
	StudentID     string               `json:"student_id"`
	StudentName   string               `json:"student_name"`
	StudentStatus models.StudentStatus `json:"student_status"`
	CourseID      string               `json:"course_id"`
	CourseName    string               `json:"course_name"`
	Month         string               `json:"month"`
	Year          int                  `json:"year"`
	MonthKey      string               `json:"month_key"`
	AgreedFee     int64                `json:"agreed_fee"`
	Paid          int64                `json:"paid"`
	Balance       int64                `json:"balance"`
	Label         string               `json:"label"`
	SortValue     int64                `json:"sort_value"`
}

// RowFilters narrows the report to matching students and courses.
// Status is "active", "inactive" or "all".
type RowFilters struct {
	Search   string
	CourseID string
	Status   string
}

// BuildLedgerRows produces the report rows for every enrollment month that
// falls inside both the requested range and the enrollment's own visibility
// window: from the month of enrollment to the month of the course status
// change, or the current month while the course is still active. The function
// is read-only and emits rows in no guaranteed order; callers sort.
func BuildLedgerRows(students []models.StudentDetail, ledger models.LedgerIndex, periods []Period, filters RowFilters, now time.Time) []Row {
	search := strings.ToLower(strings.TrimSpace(filters.Search))
	rows := make([]Row, 0)

	for i := range students {
		student := &students[i]
		if filters.Status != "" && filters.Status != "all" && string(student.Status) != filters.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(student.Name), search) &&
			!strings.Contains(strings.ToLower(student.StudentID), search) {
			continue
		}

		for _, course := range student.Courses {
			if filters.CourseID != "" && course.CourseID != filters.CourseID {
				continue
			}

			start := PeriodOf(course.EnrolledAt).SortValue
			endAt := now
			if course.CourseStatusDate != nil {
				endAt = *course.CourseStatusDate
			}
			end := PeriodOf(endAt).SortValue

			for _, period := range periods {
				if period.SortValue < start || period.SortValue > end {
					continue
				}

				var tx *models.FeeTransaction
				if found, ok := ledger.Lookup(student.ID, course.CourseID, period.Key); ok {
					tx = &found
				}
				status := ComputeMonthStatus(tx, course.AgreedMonthlyFee)

				rows = append(rows, Row{
					StudentKey:    student.ID,
					StudentID:     student.StudentID,
					StudentName:   student.Name,
					StudentStatus: student.Status,
					CourseID:      course.CourseID,
					CourseName:    course.CourseName,
					Month:         period.Month,
					Year:          period.Year,
					MonthKey:      period.Key,
					AgreedFee:     course.AgreedMonthlyFee,
					Paid:          status.Paid,
					Balance:       status.Balance,
					Label:         status.Label,
					SortValue:     period.SortValue,
				})
			}
		}
	}

	return rows
}

// SortRowsByRecency orders rows newest billing month first, the display order
// used by listings and exports.
func SortRowsByRecency(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SortValue > rows[j].SortValue
	})
}
