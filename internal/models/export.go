package models

import "time"

// ExportFormat selects the rendered artifact type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "CSV"
	ExportFormatPDF ExportFormat = "PDF"
)

// ExportResource names the dataset being exported.
type ExportResource string

const (
	ExportResourceUsers       ExportResource = "USERS"
	ExportResourceEnrollments ExportResource = "ENROLLMENTS"
	ExportResourceTickets     ExportResource = "TICKETS"
)

// ExportStatus tracks the async job lifecycle.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "PENDING"
	ExportStatusRunning   ExportStatus = "RUNNING"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

// ExportJob is an admin-requested CSV/PDF export rendered in the background.
type ExportJob struct {
	ID          string         `json:"id"`
	Resource    ExportResource `json:"resource"`
	Format      ExportFormat   `json:"format"`
	Status      ExportStatus   `json:"status"`
	RequestedBy string         `json:"requestedBy"`
	FileName    string         `json:"fileName,omitempty"`
	DownloadURL string         `json:"downloadUrl,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}
