package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type mockEventRepo struct {
	events  map[string]models.Event
	changes map[string]interface{}
}

func (m *mockEventRepo) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	var list []models.Event
	for _, e := range m.events {
		list = append(list, e)
	}
	return list, len(list), nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if e, ok := m.events[id]; ok {
		return &e, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if m.events == nil {
		m.events = make(map[string]models.Event)
	}
	event.ID = "new-event"
	m.events[event.ID] = *event
	return event, nil
}

func (m *mockEventRepo) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.changes = changes
	m.events[id] = e
	return &e, nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func TestEventServiceCreate(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, NewValidator(), zap.NewNop())
	identity := &models.Identity{UserID: "t1", Role: models.RoleTeacher}

	event, err := svc.Create(context.Background(), identity, CreateEventRequest{
		Title:     "Harvest Retreat",
		Date:      time.Now().Add(30 * 24 * time.Hour),
		EventType: "SOCIAL",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventTypeSocial, event.EventType)
	assert.Equal(t, "t1", event.EventCreator.ID)
}

func TestEventServiceCreateUnknownType(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), &models.Identity{UserID: "t1", Role: models.RoleTeacher}, CreateEventRequest{
		Title:     "Harvest Retreat",
		Date:      time.Now().Add(24 * time.Hour),
		EventType: "PARTY",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestEventServiceRecurringRequiresPattern(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, NewValidator(), zap.NewNop())
	identity := &models.Identity{UserID: "t1", Role: models.RoleTeacher}

	_, err := svc.Create(context.Background(), identity, CreateEventRequest{
		Title:       "Morning Prayer",
		Date:        time.Now().Add(24 * time.Hour),
		EventType:   "ACADEMIC",
		IsRecurring: true,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)

	pattern := "WEEKLY"
	event, err := svc.Create(context.Background(), identity, CreateEventRequest{
		Title:             "Morning Prayer",
		Date:              time.Now().Add(24 * time.Hour),
		EventType:         "ACADEMIC",
		IsRecurring:       true,
		RecurrencePattern: &pattern,
	})
	require.NoError(t, err)
	require.NotNil(t, event.RecurrencePattern)
	assert.Equal(t, models.RecurrenceWeekly, *event.RecurrencePattern)
}

func TestEventServiceDeadlineMustPrecedeDate(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, NewValidator(), zap.NewNop())
	identity := &models.Identity{UserID: "t1", Role: models.RoleTeacher}
	date := time.Now().Add(24 * time.Hour)
	late := date.Add(time.Hour)

	_, err := svc.Create(context.Background(), identity, CreateEventRequest{
		Title:                "Harvest Retreat",
		Date:                 date,
		EventType:            "SOCIAL",
		RegistrationDeadline: &late,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestEventServiceUpdateDeadlineAgainstStoredDate(t *testing.T) {
	date := time.Now().Add(24 * time.Hour)
	repo := &mockEventRepo{events: map[string]models.Event{
		"e1": {ID: "e1", Date: date, EventCreator: models.UserRef{ID: "t1"}},
	}}
	svc := NewEventService(repo, NewValidator(), zap.NewNop())
	identity := &models.Identity{UserID: "t1", Role: models.RoleTeacher}

	late := date.Add(time.Hour)
	_, err := svc.Update(context.Background(), identity, "e1", UpdateEventRequest{RegistrationDeadline: &late})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)

	early := date.Add(-time.Hour)
	_, err = svc.Update(context.Background(), identity, "e1", UpdateEventRequest{RegistrationDeadline: &early})
	require.NoError(t, err)
	assert.Contains(t, repo.changes, "registrationDeadline")
}

func TestEventServiceUpdateOwnership(t *testing.T) {
	repo := &mockEventRepo{events: map[string]models.Event{
		"e1": {ID: "e1", Date: time.Now().Add(24 * time.Hour), EventCreator: models.UserRef{ID: "t1"}},
	}}
	svc := NewEventService(repo, NewValidator(), zap.NewNop())
	title := "Renamed Retreat"

	_, err := svc.Update(context.Background(), &models.Identity{UserID: "t2", Role: models.RoleTeacher}, "e1", UpdateEventRequest{Title: &title})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)
}
