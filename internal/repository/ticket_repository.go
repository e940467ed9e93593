package repository

import (
	"context"
	"fmt"

	"github.com/agape-academy/academy-api/internal/hygraph"
	"github.com/agape-academy/academy-api/internal/models"
)

const ticketFields = `
    id
    subject
    description
    status
    priority
    category
    requester { id uid displayName }
    assignedTo { id uid displayName }
    resolution
    resolvedAt
    closedAt
    dateCreated: createdAt
    dateUpdated: updatedAt`

const getTicketsQuery = `query GetSupportTickets($where: SupportTicketWhereInput, $first: Int, $skip: Int) {
  supportTickets(where: $where, first: $first, skip: $skip, orderBy: createdAt_DESC) {` + ticketFields + `
  }
  supportTicketsConnection(where: $where) { aggregate { count } }
}`

const getTicketQuery = `query GetSupportTicket($where: SupportTicketWhereUniqueInput!) {
  supportTicket(where: $where) {` + ticketFields + `
  }
}`

const createTicketMutation = `mutation CreateSupportTicket($data: SupportTicketCreateInput!) {
  createSupportTicket(data: $data) {` + ticketFields + `
  }
}`

const updateTicketMutation = `mutation UpdateSupportTicket($where: SupportTicketWhereUniqueInput!, $data: SupportTicketUpdateInput!) {
  updateSupportTicket(where: $where, data: $data) {` + ticketFields + `
  }
}`

const deleteTicketMutation = `mutation DeleteSupportTicket($where: SupportTicketWhereUniqueInput!) {
  deleteSupportTicket(where: $where) { id }
}`

// TicketRepository proxies support ticket persistence to Hygraph.
type TicketRepository struct {
	client *hygraph.Client
}

// NewTicketRepository constructs the repository.
func NewTicketRepository(client *hygraph.Client) *TicketRepository {
	return &TicketRepository{client: client}
}

// List returns tickets narrowed by the filter plus the aggregate count.
func (r *TicketRepository) List(ctx context.Context, filter models.TicketFilter) ([]models.SupportTicket, int, error) {
	where := map[string]interface{}{}
	if filter.Status != nil {
		where["status"] = *filter.Status
	}
	if filter.Priority != nil {
		where["priority"] = *filter.Priority
	}
	if filter.Category != nil {
		where["category"] = *filter.Category
	}
	if filter.RequesterID != "" {
		where["requester"] = whereID(filter.RequesterID)
	}
	if filter.AssignedToID != "" {
		where["assignedTo"] = whereID(filter.AssignedToID)
	}

	var out struct {
		Tickets    []models.SupportTicket `json:"supportTickets"`
		Connection aggregateCount         `json:"supportTicketsConnection"`
	}
	vars := map[string]interface{}{"where": where, "first": filter.Limit, "skip": filter.Offset()}
	if err := r.client.Do(ctx, getTicketsQuery, vars, &out); err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	return out.Tickets, out.Connection.Aggregate.Count, nil
}

// FindByID returns a ticket by upstream id.
func (r *TicketRepository) FindByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	var out struct {
		Ticket *models.SupportTicket `json:"supportTicket"`
	}
	if err := r.client.Do(ctx, getTicketQuery, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if out.Ticket == nil {
		return nil, ErrNotFound
	}
	return out.Ticket, nil
}

// Create persists a new ticket upstream. New tickets always open as OPEN.
func (r *TicketRepository) Create(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error) {
	data := map[string]interface{}{
		"subject":     ticket.Subject,
		"description": ticket.Description,
		"status":      models.TicketStatusOpen,
		"priority":    ticket.Priority,
		"category":    ticket.Category,
		"requester":   connectID(ticket.Requester.ID),
	}
	var out struct {
		CreateTicket *models.SupportTicket `json:"createSupportTicket"`
	}
	if err := r.client.Do(ctx, createTicketMutation, map[string]interface{}{"data": data}, &out); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return out.CreateTicket, nil
}

// Update applies a sparse change set to the ticket.
func (r *TicketRepository) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.SupportTicket, error) {
	var out struct {
		UpdateTicket *models.SupportTicket `json:"updateSupportTicket"`
	}
	vars := map[string]interface{}{"where": whereID(id), "data": changes}
	if err := r.client.Do(ctx, updateTicketMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	if out.UpdateTicket == nil {
		return nil, ErrNotFound
	}
	return out.UpdateTicket, nil
}

// Delete removes the ticket upstream.
func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	var out struct {
		DeleteTicket *struct {
			ID string `json:"id"`
		} `json:"deleteSupportTicket"`
	}
	if err := r.client.Do(ctx, deleteTicketMutation, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if out.DeleteTicket == nil {
		return ErrNotFound
	}
	return nil
}
