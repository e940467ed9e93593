package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/models"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
	"github.com/agape-academy/academy-api/pkg/export"
	"github.com/agape-academy/academy-api/pkg/jobs"
	"github.com/agape-academy/academy-api/pkg/storage"
)

type exportUserLister interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

type exportEnrollmentLister interface {
	ListEnrollments(ctx context.Context, courseID, studentID string, page models.PageQuery) ([]models.Enrollment, int, error)
}

type exportTicketLister interface {
	List(ctx context.Context, filter models.TicketFilter) ([]models.SupportTicket, int, error)
}

// ExportService renders admin-requested CSV/PDF exports in the background.
// Jobs go through the worker queue, artifacts land in local storage and are
// downloaded via HMAC signed URLs.
type ExportService struct {
	users       exportUserLister
	enrollments exportEnrollmentLister
	tickets     exportTicketLister

	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	store  *storage.LocalStorage
	signer *storage.SignedURLSigner
	queue  *jobs.Queue
	logger *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportService constructs the service. Call Start before enqueuing.
func NewExportService(users exportUserLister, enrollments exportEnrollmentLister, tickets exportTicketLister,
	store *storage.LocalStorage, signer *storage.SignedURLSigner, cfg jobs.QueueConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ExportService{
		users:       users,
		enrollments: enrollments,
		tickets:     tickets,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		store:       store,
		signer:      signer,
		logger:      logger,
		jobs:        make(map[string]*models.ExportJob),
	}
	cfg.Logger = logger
	svc.queue = jobs.NewQueue("exports", svc.handle, cfg)
	return svc
}

// Start begins background processing.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Request enqueues a new export and returns the pending job.
func (s *ExportService) Request(ctx context.Context, identity *models.Identity, resource models.ExportResource, format models.ExportFormat) (*models.ExportJob, error) {
	switch resource {
	case models.ExportResourceUsers, models.ExportResourceEnrollments, models.ExportResourceTickets:
	default:
		return nil, appErrors.Validation("resource must be one of USERS, ENROLLMENTS, TICKETS")
	}
	switch format {
	case models.ExportFormatCSV, models.ExportFormatPDF:
	default:
		return nil, appErrors.Validation("format must be CSV or PDF")
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		Resource:    resource,
		Format:      format,
		Status:      models.ExportStatusPending,
		RequestedBy: identity.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(resource)}); err != nil {
		s.setFailed(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return job, nil
}

// Get returns an export job by id. Only the requester or an admin may read it.
func (s *ExportService) Get(ctx context.Context, identity *models.Identity, id string) (*models.ExportJob, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	if !identity.Role.IsAdmin() && job.RequestedBy != identity.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	copied := *job
	return &copied, nil
}

// ResolveDownload validates a signed token and returns the artifact path.
func (s *ExportService) ResolveDownload(token string) (string, error) {
	exportID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	s.mu.RLock()
	job, ok := s.jobs[exportID]
	s.mu.RUnlock()
	if !ok || job.Status != models.ExportStatusCompleted {
		return "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	return s.store.Path(relPath), nil
}

func (s *ExportService) handle(ctx context.Context, job jobs.Job) error {
	s.setStatus(job.ID, models.ExportStatusRunning)

	record := s.snapshot(job.ID)
	if record == nil {
		return fmt.Errorf("unknown export job %s", job.ID)
	}

	dataset, err := s.collect(ctx, record.Resource)
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	var payload []byte
	ext := "csv"
	switch record.Format {
	case models.ExportFormatPDF:
		ext = "pdf"
		payload, err = s.pdf.Render(dataset, strings.ToLower(string(record.Resource))+" export")
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	fileName := fmt.Sprintf("%s/%s.%s", strings.ToLower(string(record.Resource)), job.ID, ext)
	if _, err := s.store.Save(fileName, payload); err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	token, _, err := s.signer.Generate(job.ID, fileName)
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if stored, ok := s.jobs[job.ID]; ok {
		stored.Status = models.ExportStatusCompleted
		stored.FileName = fileName
		stored.DownloadURL = "/api/exports/download?token=" + token
		stored.CompletedAt = &now
	}
	s.mu.Unlock()
	return nil
}

func (s *ExportService) collect(ctx context.Context, resource models.ExportResource) (export.Dataset, error) {
	const pageSize = 100
	switch resource {
	case models.ExportResourceUsers:
		dataset := export.Dataset{Headers: []string{"id", "email", "displayName", "role", "active"}}
		for page := 1; ; page++ {
			users, total, err := s.users.List(ctx, models.UserFilter{PageQuery: models.PageQuery{Page: page, Limit: pageSize}})
			if err != nil {
				return export.Dataset{}, err
			}
			for _, u := range users {
				dataset.Rows = append(dataset.Rows, map[string]string{
					"id":          u.ID,
					"email":       u.Email,
					"displayName": u.DisplayName,
					"role":        string(u.Role),
					"active":      strconv.FormatBool(u.IsActive),
				})
			}
			if len(dataset.Rows) >= total || len(users) == 0 {
				break
			}
		}
		return dataset, nil
	case models.ExportResourceEnrollments:
		dataset := export.Dataset{Headers: []string{"id", "student", "course", "lessonProgress", "enrolledAt"}}
		for page := 1; ; page++ {
			enrollments, total, err := s.enrollments.ListEnrollments(ctx, "", "", models.PageQuery{Page: page, Limit: pageSize})
			if err != nil {
				return export.Dataset{}, err
			}
			for _, e := range enrollments {
				dataset.Rows = append(dataset.Rows, map[string]string{
					"id":             e.ID,
					"student":        e.Student.DisplayName,
					"course":         e.Course.Title,
					"lessonProgress": strconv.Itoa(e.LessonProgress),
					"enrolledAt":     e.DateCreated.Format(time.RFC3339),
				})
			}
			if len(dataset.Rows) >= total || len(enrollments) == 0 {
				break
			}
		}
		return dataset, nil
	case models.ExportResourceTickets:
		dataset := export.Dataset{Headers: []string{"id", "subject", "status", "priority", "category", "requester", "createdAt"}}
		for page := 1; ; page++ {
			tickets, total, err := s.tickets.List(ctx, models.TicketFilter{PageQuery: models.PageQuery{Page: page, Limit: pageSize}})
			if err != nil {
				return export.Dataset{}, err
			}
			for _, t := range tickets {
				dataset.Rows = append(dataset.Rows, map[string]string{
					"id":        t.ID,
					"subject":   t.Subject,
					"status":    string(t.Status),
					"priority":  string(t.Priority),
					"category":  string(t.Category),
					"requester": t.Requester.DisplayName,
					"createdAt": t.DateCreated.Format(time.RFC3339),
				})
			}
			if len(dataset.Rows) >= total || len(tickets) == 0 {
				break
			}
		}
		return dataset, nil
	}
	return export.Dataset{}, fmt.Errorf("unsupported export resource %s", resource)
}

func (s *ExportService) snapshot(id string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ExportService) setStatus(id string, status models.ExportStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
	}
}

func (s *ExportService) setFailed(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = models.ExportStatusFailed
		job.Error = err.Error()
	}
}
