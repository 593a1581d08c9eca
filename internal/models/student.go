package models

import "time"

// StudentStatus is the aggregate active/inactive flag derived from course states.
type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentInactive StudentStatus = "inactive"
)

// CourseStatus is the lifecycle state of a single enrollment.
type CourseStatus string

const (
	CourseActive   CourseStatus = "active"
	CourseComplete CourseStatus = "coursecomplete"
	CourseDropout  CourseStatus = "dropout"
)

// Finished reports whether the enrollment no longer accrues billing months.
func (s CourseStatus) Finished() bool {
	return s == CourseComplete || s == CourseDropout
}

// Valid reports whether the value is one of the known course states.
func (s CourseStatus) Valid() bool {
	return s == CourseActive || s == CourseComplete || s == CourseDropout
}

// Student represents a learner registered in the institution.
// Status is derived from the enrollment states and is written only by the
// status reconciler, never directly by handlers.
type Student struct {
	ID           string        `db:"id" json:"id"`
	StudentID    string        `db:"student_id" json:"student_id"`
	Name         string        `db:"name" json:"name"`
	Contact      string        `db:"contact" json:"contact"`
	Gender       string        `db:"gender" json:"gender"`
	AdmissionFee int64         `db:"admission_fee" json:"admission_fee"`
	Status       StudentStatus `db:"status" json:"status"`
	AddedBy      string        `db:"added_by" json:"added_by"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// EnrollmentRecord is a student's subscription to one course.
// CourseStatusDate is set if and only if CourseStatus is not active.
type EnrollmentRecord struct {
	StudentID        string       `db:"student_id" json:"student_id"`
	CourseID         string       `db:"course_id" json:"course_id"`
	CourseName       string       `db:"course_name" json:"course_name"`
	DurationMonths   int          `db:"duration_months" json:"duration_months"`
	AgreedMonthlyFee int64        `db:"agreed_monthly_fee" json:"agreed_monthly_fee"`
	EnrolledAt       time.Time    `db:"enrolled_at" json:"enrolled_at"`
	CourseStatus     CourseStatus `db:"course_status" json:"course_status"`
	CourseStatusDate *time.Time   `db:"course_status_date" json:"course_status_date,omitempty"`
}

// StudentDetail bundles a student with all enrolled courses.
type StudentDetail struct {
	Student
	Courses []EnrollmentRecord `json:"enrolled_courses"`
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	Search    string
	Status    string // "active", "inactive" or "all"
	CourseID  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// PendingStudent is a staged registration awaiting admin approval.
type PendingStudent struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Contact          string    `db:"contact" json:"contact"`
	Gender           string    `db:"gender" json:"gender"`
	AdmissionFee     int64     `db:"admission_fee" json:"admission_fee"`
	CourseID         string    `db:"course_id" json:"course_id"`
	CourseName       string    `db:"course_name" json:"course_name"`
	DurationMonths   int       `db:"duration_months" json:"duration_months"`
	AgreedMonthlyFee int64     `db:"agreed_monthly_fee" json:"agreed_monthly_fee"`
	SubmittedBy      string    `db:"submitted_by" json:"submitted_by"`
	SubmittedAt      time.Time `db:"submitted_at" json:"submitted_at"`
}
