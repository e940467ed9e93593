package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/authz"
	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type ticketRepository interface {
	List(ctx context.Context, filter models.TicketFilter) ([]models.SupportTicket, int, error)
	FindByID(ctx context.Context, id string) (*models.SupportTicket, error)
	Create(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) (*models.SupportTicket, error)
	Delete(ctx context.Context, id string) error
}

// TicketService handles support ticket workflows. Students see only the
// tickets they opened.
type TicketService struct {
	repo      ticketRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(repo ticketRepository, validate *validator.Validate, logger *zap.Logger) *TicketService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{repo: repo, validator: validate, logger: logger}
}

// CreateTicketRequest describes the create payload.
type CreateTicketRequest struct {
	Subject     string `json:"subject" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=10"`
	Priority    string `json:"priority"`
	Category    string `json:"category" validate:"required"`
}

// UpdateTicketRequest describes the sparse update payload.
type UpdateTicketRequest struct {
	Subject     *string `json:"subject" validate:"omitempty,min=3"`
	Description *string `json:"description" validate:"omitempty,min=10"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	Status      *string `json:"status"`
}

// List returns tickets. Non-admin callers are pinned to their own tickets.
func (s *TicketService) List(ctx context.Context, identity *models.Identity, filter models.TicketFilter) ([]models.SupportTicket, *models.Pagination, error) {
	if !identity.Role.IsAdmin() {
		filter.RequesterID = identity.UserID
	}
	tickets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list tickets")
	}
	return tickets, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns a ticket. Non-admin callers may only read their own.
func (s *TicketService) Get(ctx context.Context, identity *models.Identity, id string) (*models.SupportTicket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ticketError(err)
	}
	if !authz.CanView(identity.Role, identity.UserID, ticket.Requester.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return ticket, nil
}

// Create opens a new ticket for the caller.
func (s *TicketService) Create(ctx context.Context, identity *models.Identity, req CreateTicketRequest) (*models.SupportTicket, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	priority := models.TicketPriority(req.Priority)
	if req.Priority == "" {
		priority = models.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, appErrors.Validation("priority must be one of LOW, MEDIUM, HIGH, URGENT")
	}
	category := models.TicketCategory(req.Category)
	if !category.Valid() {
		return nil, appErrors.Validation("category must be one of TECHNICAL, ACADEMIC, ACCOUNT, ENROLLMENT, OTHER")
	}

	ticket := &models.SupportTicket{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    priority,
		Category:    category,
		Requester:   models.UserRef{ID: identity.UserID},
	}
	created, err := s.repo.Create(ctx, ticket)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create ticket")
	}
	return created, nil
}

// Update edits ticket fields. The requester may edit subject, description,
// priority and category; status changes are admin-only.
func (s *TicketService) Update(ctx context.Context, identity *models.Identity, id string, req UpdateTicketRequest) (*models.SupportTicket, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ticketError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, ticket.Requester.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	changes := map[string]interface{}{}
	if req.Subject != nil {
		changes["subject"] = *req.Subject
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Priority != nil {
		priority := models.TicketPriority(*req.Priority)
		if !priority.Valid() {
			return nil, appErrors.Validation("priority must be one of LOW, MEDIUM, HIGH, URGENT")
		}
		changes["priority"] = priority
	}
	if req.Category != nil {
		category := models.TicketCategory(*req.Category)
		if !category.Valid() {
			return nil, appErrors.Validation("category must be one of TECHNICAL, ACADEMIC, ACCOUNT, ENROLLMENT, OTHER")
		}
		changes["category"] = category
	}
	if req.Status != nil {
		if !identity.Role.IsAdmin() {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can change ticket status")
		}
		status := models.TicketStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.Validation("status must be one of OPEN, IN_PROGRESS, RESOLVED, CLOSED")
		}
		changes["status"] = status
	}
	if len(changes) == 0 {
		return ticket, nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, ticketError(err)
	}
	return updated, nil
}

// Assign hands the ticket to a staff member and moves it to IN_PROGRESS.
// Admin only.
func (s *TicketService) Assign(ctx context.Context, identity *models.Identity, id, assigneeID string) (*models.SupportTicket, error) {
	if !identity.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if assigneeID == "" {
		return nil, appErrors.Validation("assigneeId is required")
	}
	changes := map[string]interface{}{
		"assignedTo": map[string]interface{}{"connect": map[string]interface{}{"id": assigneeID}},
		"status":     models.TicketStatusInProgress,
	}
	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, ticketError(err)
	}
	return updated, nil
}

// Resolve records the resolution text and stamps resolvedAt. Admin only.
func (s *TicketService) Resolve(ctx context.Context, identity *models.Identity, id, resolution string) (*models.SupportTicket, error) {
	if !identity.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if resolution == "" {
		return nil, appErrors.Validation("resolution is required")
	}
	changes := map[string]interface{}{
		"status":     models.TicketStatusResolved,
		"resolution": resolution,
		"resolvedAt": time.Now().UTC(),
	}
	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, ticketError(err)
	}
	return updated, nil
}

// Close stamps closedAt. The requester may close their own ticket; admins
// may close any.
func (s *TicketService) Close(ctx context.Context, identity *models.Identity, id string) (*models.SupportTicket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ticketError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, ticket.Requester.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	changes := map[string]interface{}{
		"status":   models.TicketStatusClosed,
		"closedAt": time.Now().UTC(),
	}
	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, ticketError(err)
	}
	return updated, nil
}

// Delete removes a ticket. Admin only.
func (s *TicketService) Delete(ctx context.Context, identity *models.Identity, id string) error {
	if !identity.Role.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return ticketError(err)
	}
	return nil
}

func ticketError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "ticket not found")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "ticket backend request failed")
}
