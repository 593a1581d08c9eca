package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/techfront-institute/academy-api/internal/models"
)

// StudentRepository handles persistence of students and their staged
// registrations.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the filter with a total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students s"
	var conditions []string
	var args []interface{}

	if filter.Status != "" && filter.Status != "all" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(s.name ILIKE $%d OR s.student_id ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM enrollments e WHERE e.student_id = s.id AND e.course_id = $%d)", len(args)+1))
		args = append(args, filter.CourseID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT s.id, s.student_id, s.name, s.contact, s.gender, s.admission_fee, s.status, s.added_by, s.created_at, s.updated_at
        %s ORDER BY s.created_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID returns a student by its ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, student_id, name, contact, gender, admission_fee, status, added_by, created_at, updated_at
        FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindDetailByID returns a student with every enrolled course.
func (r *StudentRepository) FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	const query = `SELECT student_id, course_id, course_name, duration_months, agreed_monthly_fee, enrolled_at, course_status, course_status_date
        FROM enrollments WHERE student_id = $1 ORDER BY enrolled_at ASC`
	var courses []models.EnrollmentRecord
	if err := r.db.SelectContext(ctx, &courses, query, id); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return &models.StudentDetail{Student: *student, Courses: courses}, nil
}

// ListDetails loads every student together with their enrollments, the input
// for the ledger report builder.
func (r *StudentRepository) ListDetails(ctx context.Context) ([]models.StudentDetail, error) {
	const studentQuery = `SELECT id, student_id, name, contact, gender, admission_fee, status, added_by, created_at, updated_at
        FROM students ORDER BY created_at ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, studentQuery); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	const enrollQuery = `SELECT student_id, course_id, course_name, duration_months, agreed_monthly_fee, enrolled_at, course_status, course_status_date
        FROM enrollments ORDER BY enrolled_at ASC`
	var enrollments []models.EnrollmentRecord
	if err := r.db.SelectContext(ctx, &enrollments, enrollQuery); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	byStudent := make(map[string][]models.EnrollmentRecord, len(students))
	for _, e := range enrollments {
		byStudent[e.StudentID] = append(byStudent[e.StudentID], e)
	}

	details := make([]models.StudentDetail, 0, len(students))
	for _, s := range students {
		details = append(details, models.StudentDetail{Student: s, Courses: byStudent[s.ID]})
	}
	return details, nil
}

// NextStudentID allocates the next human-readable sequence number for the
// admission year, e.g. "STU-2025-003". The per-year counter row makes the
// allocation atomic, so concurrent registrations never mint the same number.
func (r *StudentRepository) NextStudentID(ctx context.Context, year int) (string, error) {
	const query = `INSERT INTO student_id_counters (year, last_seq) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET last_seq = student_id_counters.last_seq + 1
        RETURNING last_seq`
	var seq int
	if err := r.db.GetContext(ctx, &seq, query, year); err != nil {
		return "", fmt.Errorf("next student id: %w", err)
	}
	return fmt.Sprintf("STU-%d-%03d", year, seq), nil
}

// CreateWithEnrollment persists a new student together with their first
// enrollment in one transaction; a student row never exists without a course.
func (r *StudentRepository) CreateWithEnrollment(ctx context.Context, student *models.Student, enrollment *models.EnrollmentRecord) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	enrollment.StudentID = student.ID

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertStudent = `INSERT INTO students (id, student_id, name, contact, gender, admission_fee, status, added_by, created_at, updated_at)
        VALUES (:id, :student_id, :name, :contact, :gender, :admission_fee, :status, :added_by, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertStudent, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	const insertEnrollment = `INSERT INTO enrollments (student_id, course_id, course_name, duration_months, agreed_monthly_fee, enrolled_at, course_status, course_status_date)
        VALUES (:student_id, :course_id, :course_name, :duration_months, :agreed_monthly_fee, :enrolled_at, :course_status, :course_status_date)`
	if _, err := tx.NamedExecContext(ctx, insertEnrollment, enrollment); err != nil {
		return fmt.Errorf("create first enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create student: %w", err)
	}
	return nil
}

// UpdateStatus writes the derived aggregate status. Only the reconciler calls
// this.
func (r *StudentRepository) UpdateStatus(ctx context.Context, id string, status models.StudentStatus, ts time.Time) error {
	const query = `UPDATE students SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, ts); err != nil {
		return fmt.Errorf("update student status: %w", err)
	}
	return nil
}

// CreatePending stages a registration awaiting admin approval.
func (r *StudentRepository) CreatePending(ctx context.Context, pending *models.PendingStudent) error {
	if pending.ID == "" {
		pending.ID = uuid.NewString()
	}
	if pending.SubmittedAt.IsZero() {
		pending.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO pending_students (id, name, contact, gender, admission_fee, course_id, course_name, duration_months, agreed_monthly_fee, submitted_by, submitted_at)
        VALUES (:id, :name, :contact, :gender, :admission_fee, :course_id, :course_name, :duration_months, :agreed_monthly_fee, :submitted_by, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pending); err != nil {
		return fmt.Errorf("create pending student: %w", err)
	}
	return nil
}

// FindPending returns a staged registration by ID.
func (r *StudentRepository) FindPending(ctx context.Context, id string) (*models.PendingStudent, error) {
	const query = `SELECT id, name, contact, gender, admission_fee, course_id, course_name, duration_months, agreed_monthly_fee, submitted_by, submitted_at
        FROM pending_students WHERE id = $1`
	var pending models.PendingStudent
	if err := r.db.GetContext(ctx, &pending, query, id); err != nil {
		return nil, err
	}
	return &pending, nil
}

// ListPending returns all staged registrations, oldest first.
func (r *StudentRepository) ListPending(ctx context.Context) ([]models.PendingStudent, error) {
	const query = `SELECT id, name, contact, gender, admission_fee, course_id, course_name, duration_months, agreed_monthly_fee, submitted_by, submitted_at
        FROM pending_students ORDER BY submitted_at ASC`
	var pending []models.PendingStudent
	if err := r.db.SelectContext(ctx, &pending, query); err != nil {
		return nil, fmt.Errorf("list pending students: %w", err)
	}
	return pending, nil
}

// DeletePending removes a staged registration (reject path).
func (r *StudentRepository) DeletePending(ctx context.Context, id string) error {
	const query = `DELETE FROM pending_students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete pending student: %w", err)
	}
	return nil
}

// ApprovePending materializes a staged registration into a student with its
// first enrollment and removes the staging row, all in one transaction.
func (r *StudentRepository) ApprovePending(ctx context.Context, pending *models.PendingStudent, studentID, humanID, approvedBy string, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertStudent = `INSERT INTO students (id, student_id, name, contact, gender, admission_fee, status, added_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`
	if _, err := tx.ExecContext(ctx, insertStudent,
		studentID, humanID, pending.Name, pending.Contact, pending.Gender,
		pending.AdmissionFee, models.StudentActive, approvedBy, now); err != nil {
		return fmt.Errorf("materialize student: %w", err)
	}

	const insertEnrollment = `INSERT INTO enrollments (student_id, course_id, course_name, duration_months, agreed_monthly_fee, enrolled_at, course_status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, insertEnrollment,
		studentID, pending.CourseID, pending.CourseName, pending.DurationMonths,
		pending.AgreedMonthlyFee, now, models.CourseActive); err != nil {
		return fmt.Errorf("materialize enrollment: %w", err)
	}

	const deletePending = `DELETE FROM pending_students WHERE id = $1`
	if _, err := tx.ExecContext(ctx, deletePending, pending.ID); err != nil {
		return fmt.Errorf("remove pending student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approve student: %w", err)
	}
	return nil
}
