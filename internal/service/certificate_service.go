package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/techfront-institute/academy-api/internal/models"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
)

type certificateStudentRepository interface {
	FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// CertificateConfig customizes rendered certificates.
type CertificateConfig struct {
	InstitutePrefix string
	SignatoryName   string
}

// CertificateService renders course completion certificates as PDF. Only an
// enrollment in the coursecomplete state qualifies.
type CertificateService struct {
	students certificateStudentRepository
	config   CertificateConfig
	logger   *zap.Logger
}

// NewCertificateService constructs a CertificateService.
func NewCertificateService(students certificateStudentRepository, config CertificateConfig, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.InstitutePrefix == "" {
		config.InstitutePrefix = "TF"
	}
	return &CertificateService{students: students, config: config, logger: logger}
}

// Generate renders the completion certificate for a finished enrollment.
// Returns the PDF bytes and the certificate serial printed on it.
func (s *CertificateService) Generate(ctx context.Context, studentID, courseID string) ([]byte, string, error) {
	detail, err := s.students.FindDetailByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	var course *models.EnrollmentRecord
	for i := range detail.Courses {
		if detail.Courses[i].CourseID == courseID {
			course = &detail.Courses[i]
			break
		}
	}
	if course == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	if course.CourseStatus != models.CourseComplete {
		return nil, "", appErrors.Clone(appErrors.ErrPreconditionFailed, "course is not completed")
	}

	serial := s.serial(detail.StudentID, course.CourseName)
	completedAt := time.Now().UTC()
	if course.CourseStatusDate != nil {
		completedAt = *course.CourseStatusDate
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetDrawColor(40, 54, 85)
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, 277, 190, "D")

	pdf.SetFont("Times", "B", 30)
	pdf.CellFormat(0, 30, "CERTIFICATE OF COMPLETION", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 10, "This is to certify that", "", 1, "C", false, 0, "")

	pdf.SetFont("Times", "B", 26)
	pdf.CellFormat(0, 18, detail.Name, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 10, "has successfully completed the course", "", 1, "C", false, 0, "")

	pdf.SetFont("Times", "B", 20)
	pdf.CellFormat(0, 14, strings.ToUpper(course.CourseName), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, fmt.Sprintf("Duration: %d months", course.DurationMonths), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, "Awarded on "+completedAt.Format("2 January 2006"), "", 1, "C", false, 0, "")

	pdf.Ln(18)
	pdf.SetFont("Arial", "I", 11)
	pdf.CellFormat(138, 8, "Certificate No: "+serial, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, s.config.SignatoryName, "", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}
	s.logger.Info("certificate rendered",
		zap.String("student_id", studentID),
		zap.String("serial", serial))
	return buf.Bytes(), serial, nil
}

// serial builds identifiers like "TF-GD-B219" from the institute prefix, the
// course initials and the tail of the student number.
func (s *CertificateService) serial(humanID, courseName string) string {
	initials := make([]byte, 0, 3)
	for _, word := range strings.Fields(courseName) {
		if len(initials) == 3 {
			break
		}
		initials = append(initials, strings.ToUpper(word[:1])[0])
	}
	tail := humanID
	if idx := strings.LastIndex(humanID, "-"); idx >= 0 {
		tail = humanID[idx+1:]
	}
	letter := 'A' + rune(len(courseName)%26)
	return fmt.Sprintf("%s-%s-%c%s", s.config.InstitutePrefix, string(initials), letter, tail)
}
