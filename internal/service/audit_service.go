package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/models"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error)
}

// AuditService records mutating operations in the gateway-owned trail. A
// failed write never fails the request that triggered it.
type AuditService struct {
	repo    auditRepository
	logger  *zap.Logger
	metrics *MetricsService
}

// NewAuditService constructs the service.
func NewAuditService(repo auditRepository, logger *zap.Logger, metrics *MetricsService) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger, metrics: metrics}
}

// AuditEntry captures the fields handlers supply when recording an action.
type AuditEntry struct {
	ActorID    string
	Action     string
	Resource   string
	ResourceID string
	OldValues  interface{}
	NewValues  interface{}
	IPAddress  string
	UserAgent  string
}

// Record writes the entry. Errors are logged and counted, not returned.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	if s == nil || s.repo == nil {
		return
	}
	log := &models.AuditLog{
		Action:    entry.Action,
		Resource:  entry.Resource,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
	}
	if entry.ActorID != "" {
		actor := entry.ActorID
		log.ActorID = &actor
	}
	if entry.ResourceID != "" {
		id := entry.ResourceID
		log.ResourceID = &id
	}
	log.OldValues = marshalValues(entry.OldValues, s.logger)
	log.NewValues = marshalValues(entry.NewValues, s.logger)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.Create(writeCtx, log); err != nil {
		s.logger.Error("audit write failed",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordAuditFailure()
		}
	}
}

// List returns audit rows for admin review.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	return entries, models.NewPagination(filter.Page, filter.Limit, total), nil
}

func marshalValues(v interface{}, logger *zap.Logger) []byte {
	if v == nil {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Warn("marshal audit values", zap.Error(err))
		return nil
	}
	return payload
}
