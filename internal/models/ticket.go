package models

import "time"

// TicketStatus is the support ticket lifecycle state.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the status is a known value.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority orders tickets for triage.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// TicketCategory buckets tickets by topic.
type TicketCategory string

const (
	TicketCategoryTechnical  TicketCategory = "TECHNICAL"
	TicketCategoryAcademic   TicketCategory = "ACADEMIC"
	TicketCategoryAccount    TicketCategory = "ACCOUNT"
	TicketCategoryEnrollment TicketCategory = "ENROLLMENT"
	TicketCategoryOther      TicketCategory = "OTHER"
)

// Valid reports whether the category is a known value.
func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryTechnical, TicketCategoryAcademic, TicketCategoryAccount,
		TicketCategoryEnrollment, TicketCategoryOther:
		return true
	}
	return false
}

// SupportTicket mirrors the upstream support ticket entity.
type SupportTicket struct {
	ID          string         `json:"id"`
	Subject     string         `json:"subject"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	Category    TicketCategory `json:"category"`
	Requester   UserRef        `json:"requester"`
	AssignedTo  *UserRef       `json:"assignedTo,omitempty"`
	Resolution  string         `json:"resolution,omitempty"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty"`
	ClosedAt    *time.Time     `json:"closedAt,omitempty"`
	DateCreated time.Time      `json:"dateCreated"`
	DateUpdated time.Time      `json:"dateUpdated"`
}

// TicketFilter narrows the upstream ticket query.
type TicketFilter struct {
	Status       *TicketStatus
	Priority     *TicketPriority
	Category     *TicketCategory
	RequesterID  string
	AssignedToID string
	PageQuery
}
