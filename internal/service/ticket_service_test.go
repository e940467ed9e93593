package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

type mockTicketRepo struct {
	tickets map[string]models.SupportTicket
	changes map[string]interface{}
	filter  models.TicketFilter
}

func (m *mockTicketRepo) List(ctx context.Context, filter models.TicketFilter) ([]models.SupportTicket, int, error) {
	m.filter = filter
	var list []models.SupportTicket
	for _, tk := range m.tickets {
		if filter.RequesterID != "" && tk.Requester.ID != filter.RequesterID {
			continue
		}
		list = append(list, tk)
	}
	return list, len(list), nil
}

func (m *mockTicketRepo) FindByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	if tk, ok := m.tickets[id]; ok {
		return &tk, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *models.SupportTicket) (*models.SupportTicket, error) {
	if m.tickets == nil {
		m.tickets = make(map[string]models.SupportTicket)
	}
	ticket.ID = "new-ticket"
	ticket.Status = models.TicketStatusOpen
	m.tickets[ticket.ID] = *ticket
	return ticket, nil
}

func (m *mockTicketRepo) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.SupportTicket, error) {
	tk, ok := m.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.changes = changes
	if status, ok := changes["status"].(models.TicketStatus); ok {
		tk.Status = status
	}
	if resolution, ok := changes["resolution"].(string); ok {
		tk.Resolution = resolution
	}
	m.tickets[id] = tk
	return &tk, nil
}

func (m *mockTicketRepo) Delete(ctx context.Context, id string) error {
	delete(m.tickets, id)
	return nil
}

func TestTicketServiceCreateDefaults(t *testing.T) {
	repo := &mockTicketRepo{}
	svc := NewTicketService(repo, NewValidator(), zap.NewNop())

	ticket, err := svc.Create(context.Background(), &models.Identity{UserID: "s1", Role: models.RoleStudent}, CreateTicketRequest{
		Subject:     "Cannot log in",
		Description: "My dashboard shows a blank page.",
		Category:    "TECHNICAL",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)
	assert.Equal(t, models.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "s1", ticket.Requester.ID)
}

func TestTicketServiceCreateInvalidCategory(t *testing.T) {
	svc := NewTicketService(&mockTicketRepo{}, NewValidator(), zap.NewNop())

	_, err := svc.Create(context.Background(), &models.Identity{UserID: "s1", Role: models.RoleStudent}, CreateTicketRequest{
		Subject:     "Cannot log in",
		Description: "My dashboard shows a blank page.",
		Category:    "NONSENSE",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestTicketServiceListPinsNonAdmins(t *testing.T) {
	repo := &mockTicketRepo{tickets: map[string]models.SupportTicket{
		"t1": {ID: "t1", Requester: models.UserRef{ID: "s1"}},
		"t2": {ID: "t2", Requester: models.UserRef{ID: "s2"}},
	}}
	svc := NewTicketService(repo, NewValidator(), zap.NewNop())

	list, _, err := svc.List(context.Background(), &models.Identity{UserID: "s1", Role: models.RoleStudent}, models.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "s1", list[0].Requester.ID)

	list, _, err = svc.List(context.Background(), &models.Identity{UserID: "admin", Role: models.RoleAdmin}, models.TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTicketServiceGetForbiddenForStrangers(t *testing.T) {
	repo := &mockTicketRepo{tickets: map[string]models.SupportTicket{
		"t1": {ID: "t1", Requester: models.UserRef{ID: "s1"}},
	}}
	svc := NewTicketService(repo, NewValidator(), zap.NewNop())

	_, err := svc.Get(context.Background(), &models.Identity{UserID: "s2", Role: models.RoleStudent}, "t1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)
}

func TestTicketServiceStatusChangeAdminOnly(t *testing.T) {
	repo := &mockTicketRepo{tickets: map[string]models.SupportTicket{
		"t1": {ID: "t1", Status: models.TicketStatusOpen, Requester: models.UserRef{ID: "s1"}},
	}}
	svc := NewTicketService(repo, NewValidator(), zap.NewNop())
	status := "RESOLVED"

	_, err := svc.Update(context.Background(), &models.Identity{UserID: "s1", Role: models.RoleStudent}, "t1", UpdateTicketRequest{Status: &status})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	updated, err := svc.Update(context.Background(), &models.Identity{UserID: "admin", Role: models.RoleAdmin}, "t1", UpdateTicketRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusResolved, updated.Status)
}

func TestTicketServiceAssign(t *testing.T) {
	repo := &mockTicketRepo{tickets: map[string]models.SupportTicket{
		"t1": {ID: "t1", Status: models.TicketStatusOpen, Requester: models.UserRef{ID: "s1"}},
	}}
	svc := NewTicketService(repo, NewValidator(), zap.NewNop())
	admin := &models.Identity{UserID: "admin", Role: models.RoleAdmin}

	_, err := svc.Assign(context.Background(), &models.Identity{UserID: "t9", Role: models.RoleTeacher}, "t1", "staff-1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	updated, err := svc.Assign(context.Background(), admin, "t1", "staff-1")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInProgress, updated.Status)

	_, err = svc.Assign(context.Background(), admin, "t1", "")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestTicketServiceResolveAndClose(t *testing.T) {
	repo := &mockTicketRepo{tickets: map[string]models.SupportTicket{
		"t1": {ID: "t1", Status: models.TicketStatusInProgress, Requester: models.UserRef{ID: "s1"}},
	}}
	svc := NewTicketService(repo, NewValidator(), zap.NewNop())
	admin := &models.Identity{UserID: "admin", Role: models.RoleAdmin}

	updated, err := svc.Resolve(context.Background(), admin, "t1", "Cleared the session cache.")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusResolved, updated.Status)
	assert.Equal(t, "Cleared the session cache.", updated.Resolution)
	assert.Contains(t, repo.changes, "resolvedAt")

	updated, err = svc.Close(context.Background(), &models.Identity{UserID: "s1", Role: models.RoleStudent}, "t1")
	require.NoError(t, err, "requesters may close their own ticket")
	assert.Equal(t, models.TicketStatusClosed, updated.Status)
	assert.Contains(t, repo.changes, "closedAt")
}

func TestTicketServiceDeleteAdminOnly(t *testing.T) {
	repo := &mockTicketRepo{tickets: map[string]models.SupportTicket{
		"t1": {ID: "t1", Requester: models.UserRef{ID: "s1"}},
	}}
	svc := NewTicketService(repo, NewValidator(), zap.NewNop())

	err := svc.Delete(context.Background(), &models.Identity{UserID: "s1", Role: models.RoleStudent}, "t1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	require.NoError(t, svc.Delete(context.Background(), &models.Identity{UserID: "admin", Role: models.RoleAdmin}, "t1"))
	assert.Empty(t, repo.tickets)
}
