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

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) (*models.Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService handles calendar event workflows.
type EventService struct {
	repo      eventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs the service.
func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, validator: validate, logger: logger}
}

// CreateEventRequest describes the create payload.
type CreateEventRequest struct {
	Title                string     `json:"title" validate:"required,min=3"`
	Description          string     `json:"description"`
	Date                 time.Time  `json:"date" validate:"required"`
	Time                 string     `json:"time"`
	Location             string     `json:"location"`
	EventType            string     `json:"eventType" validate:"required"`
	IsRecurring          bool       `json:"isRecurring"`
	RecurrencePattern    *string    `json:"recurrencePattern"`
	MaxAttendees         int        `json:"maxAttendees" validate:"omitempty,min=1"`
	RequiresRegistration bool       `json:"requiresRegistration"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
	CourseID             string     `json:"courseId"`
}

// UpdateEventRequest describes the sparse update payload.
type UpdateEventRequest struct {
	Title                *string    `json:"title" validate:"omitempty,min=3"`
	Description          *string    `json:"description"`
	Date                 *time.Time `json:"date"`
	Time                 *string    `json:"time"`
	Location             *string    `json:"location"`
	EventType            *string    `json:"eventType"`
	IsRecurring          *bool      `json:"isRecurring"`
	RecurrencePattern    *string    `json:"recurrencePattern"`
	MaxAttendees         *int       `json:"maxAttendees" validate:"omitempty,min=1"`
	RequiresRegistration *bool      `json:"requiresRegistration"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
}

// List returns events with pagination.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to list events")
	}
	return events, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns an event by id.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, eventError(err)
	}
	return event, nil
}

// Create registers a new event owned by the caller.
func (s *EventService) Create(ctx context.Context, identity *models.Identity, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	eventType := models.EventType(req.EventType)
	if !eventType.Valid() {
		return nil, appErrors.Validation("eventType must be one of ACADEMIC, SOCIAL, SPORTS, CULTURAL, ADMINISTRATIVE, EXAM, HOLIDAY")
	}
	var pattern *models.RecurrencePattern
	if req.IsRecurring {
		if req.RecurrencePattern == nil {
			return nil, appErrors.Validation("recurrencePattern is required for recurring events")
		}
		p := models.RecurrencePattern(*req.RecurrencePattern)
		if !p.Valid() {
			return nil, appErrors.Validation("recurrencePattern must be one of DAILY, WEEKLY, MONTHLY, YEARLY")
		}
		pattern = &p
	}
	if req.RegistrationDeadline != nil && !req.RegistrationDeadline.Before(req.Date) {
		return nil, appErrors.Validation("registrationDeadline must be before the event date")
	}

	event := &models.Event{
		Title:                req.Title,
		Description:          req.Description,
		Date:                 req.Date,
		Time:                 req.Time,
		Location:             req.Location,
		EventType:            eventType,
		IsRecurring:          req.IsRecurring,
		RecurrencePattern:    pattern,
		MaxAttendees:         req.MaxAttendees,
		RequiresRegistration: req.RequiresRegistration,
		RegistrationDeadline: req.RegistrationDeadline,
		EventCreator:         models.UserRef{ID: identity.UserID},
	}
	if req.CourseID != "" {
		event.Course = &models.CourseRef{ID: req.CourseID}
	}
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create event")
	}
	return created, nil
}

// Update applies a sparse change set. Only the creator or an admin may edit.
func (s *EventService) Update(ctx context.Context, identity *models.Identity, id string, req UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, eventError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, event.EventCreator.ID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	date := event.Date
	if req.Date != nil {
		date = *req.Date
	}
	deadline := event.RegistrationDeadline
	if req.RegistrationDeadline != nil {
		deadline = req.RegistrationDeadline
	}
	if deadline != nil && !deadline.Before(date) {
		return nil, appErrors.Validation("registrationDeadline must be before the event date")
	}

	changes := map[string]interface{}{}
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Date != nil {
		changes["date"] = *req.Date
	}
	if req.Time != nil {
		changes["time"] = *req.Time
	}
	if req.Location != nil {
		changes["location"] = *req.Location
	}
	if req.EventType != nil {
		eventType := models.EventType(*req.EventType)
		if !eventType.Valid() {
			return nil, appErrors.Validation("eventType must be one of ACADEMIC, SOCIAL, SPORTS, CULTURAL, ADMINISTRATIVE, EXAM, HOLIDAY")
		}
		changes["eventType"] = eventType
	}
	if req.IsRecurring != nil {
		changes["isRecurring"] = *req.IsRecurring
	}
	if req.RecurrencePattern != nil {
		pattern := models.RecurrencePattern(*req.RecurrencePattern)
		if !pattern.Valid() {
			return nil, appErrors.Validation("recurrencePattern must be one of DAILY, WEEKLY, MONTHLY, YEARLY")
		}
		changes["recurrencePattern"] = pattern
	}
	if req.MaxAttendees != nil {
		changes["maxAttendees"] = *req.MaxAttendees
	}
	if req.RequiresRegistration != nil {
		changes["requiresRegistration"] = *req.RequiresRegistration
	}
	if req.RegistrationDeadline != nil {
		changes["registrationDeadline"] = *req.RegistrationDeadline
	}
	if len(changes) == 0 {
		return event, nil
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, eventError(err)
	}
	return updated, nil
}

// Delete removes an event. Only the creator or an admin may delete.
func (s *EventService) Delete(ctx context.Context, identity *models.Identity, id string) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return eventError(err)
	}
	if !authz.CanMutate(identity.Role, identity.UserID, event.EventCreator.ID) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return eventError(err)
	}
	return nil
}

func eventError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "event backend request failed")
}
