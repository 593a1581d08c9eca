package models

import "time"

// Course is a catalog entry students can enroll into.
// BaseFee is the advertised monthly fee; enrollments may negotiate their own.
type Course struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	BaseFee        int64     `db:"base_fee" json:"base_fee"`
	DurationMonths int       `db:"duration_months" json:"duration_months"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter provides filters for listing the catalog.
type CourseFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
