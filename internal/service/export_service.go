package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/techfront-institute/academy-api/internal/billing"
	"github.com/techfront-institute/academy-api/internal/models"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
	"github.com/techfront-institute/academy-api/pkg/export"
	"github.com/techfront-institute/academy-api/pkg/jobs"
	"github.com/techfront-institute/academy-api/pkg/storage"
)

var ledgerExportHeaders = []string{
	"Student ID", "Student Name", "Course", "Month", "Agreed Fee", "Paid", "Balance", "Status",
}

type exportRepository interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	Complete(ctx context.Context, id, filePath string, completedAt time.Time) error
	Fail(ctx context.Context, id, message string, failedAt time.Time) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type exportQueue interface {
	Enqueue(job jobs.Job) error
}

// ExportService renders the ledger report to downloadable files. Requests
// are queued, rendered by background workers and served through short-lived
// signed URLs.
type ExportService struct {
	exports exportRepository
	ledger  *LedgerService
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	queue   exportQueue
	csv     *export.CSVExporter
	xlsx    *export.XLSXExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs an ExportService. Attach the returned
// HandleJob to the queue that is passed in.
func NewExportService(exports exportRepository, ledger *LedgerService, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		exports: exports,
		ledger:  ledger,
		store:   store,
		signer:  signer,
		csv:     export.NewCSVExporter(),
		xlsx:    export.NewXLSXExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// AttachQueue wires the worker queue used by Enqueue. Separate from the
// constructor because the queue handler needs the service.
func (s *ExportService) AttachQueue(queue exportQueue) {
	s.queue = queue
}

// Enqueue records an export job and hands it to the worker pool.
func (s *ExportService) Enqueue(ctx context.Context, claims *models.JWTClaims, params models.ExportParams) (*models.ExportJob, error) {
	if !params.Format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	if _, err := billing.MonthRange(params.FromMonth, params.FromYear, params.ToMonth, params.ToYear); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode export params")
	}

	job := &models.ExportJob{
		Status:      models.ExportQueued,
		Params:      params,
		ParamsRaw:   raw,
		RequestedBy: claims.UserID,
	}
	if err := s.exports.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "ledger_export", Payload: job.ID}); err != nil {
		msg := "worker queue unavailable"
		if failErr := s.exports.Fail(ctx, job.ID, msg, time.Now().UTC()); failErr != nil {
			s.logger.Warn("failed to mark export failed", zap.Error(failErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
	}
	return job, nil
}

// Status returns a job with a signed download URL once completed.
func (s *ExportService) Status(ctx context.Context, claims *models.JWTClaims, jobID string) (*models.ExportJob, error) {
	job, err := s.exports.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.RequestedBy != claims.UserID && !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export belongs to another user")
	}

	if len(job.ParamsRaw) > 0 {
		if err := json.Unmarshal(job.ParamsRaw, &job.Params); err != nil {
			s.logger.Warn("failed to decode export params", zap.Error(err))
		}
	}

	if job.Status == models.ExportCompleted && job.FilePath != nil {
		token, _, err := s.signer.Generate(job.ID, *job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		url := "/api/v1/exports/download?token=" + token
		job.DownloadURL = &url
	}
	return job, nil
}

// Open validates a signed token and opens the underlying file.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	f, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return f, relPath, nil
}

// HandleJob is the queue handler: it renders the report and stores the file.
func (s *ExportService) HandleJob(ctx context.Context, job jobs.Job) error {
	jobID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	record, err := s.exports.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", jobID, err)
	}
	var params models.ExportParams
	if err := json.Unmarshal(record.ParamsRaw, &params); err != nil {
		_ = s.exports.Fail(ctx, jobID, "corrupt export params", time.Now().UTC())
		return nil
	}

	if err := s.exports.MarkProcessing(ctx, jobID); err != nil {
		s.logger.Warn("failed to mark export processing", zap.Error(err))
	}

	data, filename, err := s.render(ctx, jobID, params)
	if err != nil {
		if failErr := s.exports.Fail(ctx, jobID, err.Error(), time.Now().UTC()); failErr != nil {
			s.logger.Warn("failed to mark export failed", zap.Error(failErr))
		}
		return err
	}

	if _, err := s.store.Save(filename, data); err != nil {
		if failErr := s.exports.Fail(ctx, jobID, "failed to store export file", time.Now().UTC()); failErr != nil {
			s.logger.Warn("failed to mark export failed", zap.Error(failErr))
		}
		return err
	}

	if err := s.exports.Complete(ctx, jobID, filename, time.Now().UTC()); err != nil {
		return fmt.Errorf("complete export job %s: %w", jobID, err)
	}
	s.logger.Info("export rendered", zap.String("job_id", jobID), zap.String("file", filename))
	return nil
}

// Cleanup removes export files and job rows older than the TTL.
func (s *ExportService) Cleanup(ctx context.Context, ttl time.Duration) {
	if removed, err := s.store.CleanupOlderThan(ttl); err != nil {
		s.logger.Warn("export file cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		s.logger.Info("export files cleaned", zap.Int("count", len(removed)))
	}
	if n, err := s.exports.DeleteOlderThan(ctx, time.Now().UTC().Add(-ttl)); err != nil {
		s.logger.Warn("export job cleanup failed", zap.Error(err))
	} else if n > 0 {
		s.logger.Info("export jobs cleaned", zap.Int64("count", n))
	}
}

func (s *ExportService) render(ctx context.Context, jobID string, params models.ExportParams) ([]byte, string, error) {
	rows, err := s.ledger.Report(ctx, LedgerQuery{
		FromMonth: params.FromMonth,
		FromYear:  params.FromYear,
		ToMonth:   params.ToMonth,
		ToYear:    params.ToYear,
		Search:    params.Search,
		CourseID:  params.CourseID,
		Status:    params.Status,
	})
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{Headers: ledgerExportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID":   row.StudentID,
			"Student Name": row.StudentName,
			"Course":       row.CourseName,
			"Month":        row.MonthKey,
			"Agreed Fee":   strconv.FormatInt(row.AgreedFee, 10),
			"Paid":         strconv.FormatInt(row.Paid, 10),
			"Balance":      strconv.FormatInt(row.Balance, 10),
			"Status":       row.Label,
		})
	}

	var data []byte
	switch params.Format {
	case models.ExportFormatCSV:
		data, err = s.csv.Render(dataset)
	case models.ExportFormatXLSX:
		data, err = s.xlsx.Render(dataset)
	case models.ExportFormatPDF:
		title := fmt.Sprintf("Fee Ledger %s to %s",
			billing.MonthKey(params.FromMonth, params.FromYear),
			billing.MonthKey(params.ToMonth, params.ToYear))
		data, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %q", params.Format)
	}
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ledger_%s.%s", jobID, params.Format)
	return data, filename, nil
}
