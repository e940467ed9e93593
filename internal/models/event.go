package models

import "time"

// EventType categorizes calendar events.
type EventType string

const (
	EventTypeAcademic       EventType = "ACADEMIC"
	EventTypeSocial         EventType = "SOCIAL"
	EventTypeSports         EventType = "SPORTS"
	EventTypeCultural       EventType = "CULTURAL"
	EventTypeAdministrative EventType = "ADMINISTRATIVE"
	EventTypeExam           EventType = "EXAM"
	EventTypeHoliday        EventType = "HOLIDAY"
)

// Valid reports whether the event type is a known value.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeAcademic, EventTypeSocial, EventTypeSports, EventTypeCultural,
		EventTypeAdministrative, EventTypeExam, EventTypeHoliday:
		return true
	}
	return false
}

// RecurrencePattern describes how a recurring event repeats.
type RecurrencePattern string

const (
	RecurrenceDaily   RecurrencePattern = "DAILY"
	RecurrenceWeekly  RecurrencePattern = "WEEKLY"
	RecurrenceMonthly RecurrencePattern = "MONTHLY"
	RecurrenceYearly  RecurrencePattern = "YEARLY"
)

// Valid reports whether the pattern is a known value.
func (p RecurrencePattern) Valid() bool {
	switch p {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// Event mirrors the upstream event entity. EventCreator owns the record.
type Event struct {
	ID                   string             `json:"id"`
	Title                string             `json:"title"`
	Description          string             `json:"description,omitempty"`
	Date                 time.Time          `json:"date"`
	Time                 string             `json:"time,omitempty"`
	Location             string             `json:"location,omitempty"`
	EventType            EventType          `json:"eventType"`
	IsRecurring          bool               `json:"isRecurring"`
	RecurrencePattern    *RecurrencePattern `json:"recurrencePattern,omitempty"`
	MaxAttendees         int                `json:"maxAttendees,omitempty"`
	RequiresRegistration bool               `json:"requiresRegistration"`
	RegistrationDeadline *time.Time         `json:"registrationDeadline,omitempty"`
	EventCreator         UserRef            `json:"eventCreator"`
	Course               *CourseRef         `json:"course,omitempty"`
	DateCreated          time.Time          `json:"dateCreated"`
	DateUpdated          time.Time          `json:"dateUpdated"`
}

// EventFilter narrows the upstream event query.
type EventFilter struct {
	EventType *EventType
	CourseID  string
	CreatorID string
	DateFrom  *time.Time
	DateTo    *time.Time
	PageQuery
}
