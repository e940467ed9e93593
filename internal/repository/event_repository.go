package repository

import (
	"context"
	"fmt"

	"github.com/agape-academy/academy-api/internal/hygraph"
	"github.com/agape-academy/academy-api/internal/models"
)

const eventFields = `
    id
    title
    description
    date
    time
    location
    eventType
    isRecurring
    recurrencePattern
    maxAttendees
    requiresRegistration
    registrationDeadline
    eventCreator { id uid displayName }
    course { id title }
    dateCreated: createdAt
    dateUpdated: updatedAt`

const getEventsQuery = `query GetEvents($where: EventWhereInput, $first: Int, $skip: Int) {
  events(where: $where, first: $first, skip: $skip, orderBy: date_ASC) {` + eventFields + `
  }
  eventsConnection(where: $where) { aggregate { count } }
}`

const getEventQuery = `query GetEvent($where: EventWhereUniqueInput!) {
  event(where: $where) {` + eventFields + `
  }
}`

const createEventMutation = `mutation CreateEvent($data: EventCreateInput!) {
  createEvent(data: $data) {` + eventFields + `
  }
}`

const updateEventMutation = `mutation UpdateEvent($where: EventWhereUniqueInput!, $data: EventUpdateInput!) {
  updateEvent(where: $where, data: $data) {` + eventFields + `
  }
}`

const deleteEventMutation = `mutation DeleteEvent($where: EventWhereUniqueInput!) {
  deleteEvent(where: $where) { id }
}`

// EventRepository proxies calendar event persistence to Hygraph.
type EventRepository struct {
	client *hygraph.Client
}

// NewEventRepository constructs the repository.
func NewEventRepository(client *hygraph.Client) *EventRepository {
	return &EventRepository{client: client}
}

// List returns events narrowed by the filter plus the aggregate count.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	where := map[string]interface{}{}
	if filter.EventType != nil {
		where["eventType"] = *filter.EventType
	}
	if filter.CourseID != "" {
		where["course"] = whereID(filter.CourseID)
	}
	if filter.CreatorID != "" {
		where["eventCreator"] = whereID(filter.CreatorID)
	}
	if filter.DateFrom != nil {
		where["date_gte"] = filter.DateFrom
	}
	if filter.DateTo != nil {
		where["date_lte"] = filter.DateTo
	}

	var out struct {
		Events     []models.Event `json:"events"`
		Connection aggregateCount `json:"eventsConnection"`
	}
	vars := map[string]interface{}{"where": where, "first": filter.Limit, "skip": filter.Offset()}
	if err := r.client.Do(ctx, getEventsQuery, vars, &out); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return out.Events, out.Connection.Aggregate.Count, nil
}

// FindByID returns an event by upstream id.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	var out struct {
		Event *models.Event `json:"event"`
	}
	if err := r.client.Do(ctx, getEventQuery, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if out.Event == nil {
		return nil, ErrNotFound
	}
	return out.Event, nil
}

// Create persists a new event upstream.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	data := map[string]interface{}{
		"title":                event.Title,
		"description":          event.Description,
		"date":                 event.Date,
		"time":                 event.Time,
		"location":             event.Location,
		"eventType":            event.EventType,
		"isRecurring":          event.IsRecurring,
		"requiresRegistration": event.RequiresRegistration,
		"eventCreator":         connectID(event.EventCreator.ID),
	}
	if event.RecurrencePattern != nil {
		data["recurrencePattern"] = *event.RecurrencePattern
	}
	if event.MaxAttendees > 0 {
		data["maxAttendees"] = event.MaxAttendees
	}
	if event.RegistrationDeadline != nil {
		data["registrationDeadline"] = event.RegistrationDeadline
	}
	if event.Course != nil && event.Course.ID != "" {
		data["course"] = connectID(event.Course.ID)
	}

	var out struct {
		CreateEvent *models.Event `json:"createEvent"`
	}
	if err := r.client.Do(ctx, createEventMutation, map[string]interface{}{"data": data}, &out); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return out.CreateEvent, nil
}

// Update applies a sparse change set to the event.
func (r *EventRepository) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.Event, error) {
	var out struct {
		UpdateEvent *models.Event `json:"updateEvent"`
	}
	vars := map[string]interface{}{"where": whereID(id), "data": changes}
	if err := r.client.Do(ctx, updateEventMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if out.UpdateEvent == nil {
		return nil, ErrNotFound
	}
	return out.UpdateEvent, nil
}

// Delete removes the event upstream.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	var out struct {
		DeleteEvent *struct {
			ID string `json:"id"`
		} `json:"deleteEvent"`
	}
	if err := r.client.Do(ctx, deleteEventMutation, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if out.DeleteEvent == nil {
		return ErrNotFound
	}
	return nil
}
