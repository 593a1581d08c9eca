package models

import "time"

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ExportFormat) Valid() bool {
	return f == ExportFormatCSV || f == ExportFormatXLSX || f == ExportFormatPDF
}

// ExportStatus is the lifecycle of an export job.
type ExportStatus string

const (
	ExportQueued     ExportStatus = "queued"
	ExportProcessing ExportStatus = "processing"
	ExportCompleted  ExportStatus = "completed"
	ExportFailed     ExportStatus = "failed"
)

// ExportParams captures the ledger filters baked into an export job.
type ExportParams struct {
	Format    ExportFormat `json:"format"`
	Search    string       `json:"search,omitempty"`
	CourseID  string       `json:"course_id,omitempty"`
	Status    string       `json:"status,omitempty"`
	FromMonth string       `json:"from_month"`
	FromYear  int          `json:"from_year"`
	ToMonth   string       `json:"to_month"`
	ToYear    int          `json:"to_year"`
}

// ExportJob tracks an asynchronous ledger export from enqueue to download.
type ExportJob struct {
	ID          string       `db:"id" json:"id"`
	Status      ExportStatus `db:"status" json:"status"`
	Params      ExportParams `db:"-" json:"params"`
	ParamsRaw   []byte       `db:"params" json:"-"`
	FilePath    *string      `db:"file_path" json:"-"`
	DownloadURL *string      `db:"-" json:"download_url,omitempty"`
	Error       *string      `db:"error" json:"error,omitempty"`
	RequestedBy string       `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	CompletedAt *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}
