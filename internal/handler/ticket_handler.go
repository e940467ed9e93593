package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/service"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
	"github.com/agape-academy/academy-api/pkg/response"
)

// TicketHandler exposes support ticket endpoints.
type TicketHandler struct {
	tickets *service.TicketService
	audit   *service.AuditService
}

// NewTicketHandler constructs TicketHandler.
func NewTicketHandler(tickets *service.TicketService, audit *service.AuditService) *TicketHandler {
	return &TicketHandler{tickets: tickets, audit: audit}
}

// List godoc
// @Summary List support tickets
// @Tags Tickets
// @Produce json
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param category query string false "Filter by category"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	var filter models.TicketFilter
	if raw := c.Query("status"); raw != "" {
		status := models.TicketStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Validation("status must be one of OPEN, IN_PROGRESS, RESOLVED, CLOSED"))
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := models.TicketPriority(raw)
		if !priority.Valid() {
			response.Error(c, appErrors.Validation("priority must be one of LOW, MEDIUM, HIGH, URGENT"))
			return
		}
		filter.Priority = &priority
	}
	if raw := c.Query("category"); raw != "" {
		category := models.TicketCategory(raw)
		if !category.Valid() {
			response.Error(c, appErrors.Validation("category must be one of TECHNICAL, ACADEMIC, ACCOUNT, ENROLLMENT, OTHER"))
			return
		}
		filter.Category = &category
	}
	filter.PageQuery = pageQueryFromContext(c)

	tickets, pagination, err := h.tickets.List(c.Request.Context(), identityFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Tickets retrieved successfully", tickets, pagination)
}

// Get godoc
// @Summary Get ticket detail
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} response.Envelope
// @Router /tickets/{id} [get]
func (h *TicketHandler) Get(c *gin.Context) {
	ticket, err := h.tickets.Get(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Ticket retrieved successfully", ticket)
}

// Create godoc
// @Summary Open support ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param payload body service.CreateTicketRequest true "Ticket payload"
// @Success 201 {object} response.Envelope
// @Router /tickets [post]
func (h *TicketHandler) Create(c *gin.Context) {
	var req service.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ticket, err := h.tickets.Create(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionCreate, "ticket", ticket.ID, nil, ticket)
	response.Created(c, "Ticket created successfully", ticket)
}

// Update godoc
// @Summary Update ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param payload body service.UpdateTicketRequest true "Ticket payload"
// @Success 200 {object} response.Envelope
// @Router /tickets/{id} [put]
func (h *TicketHandler) Update(c *gin.Context) {
	var req service.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ticket, err := h.tickets.Update(c.Request.Context(), identityFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionUpdate, "ticket", ticket.ID, nil, req)
	response.OK(c, "Ticket updated successfully", ticket)
}

type assignTicketRequest struct {
	AssigneeID string `json:"assigneeId"`
}

// Assign godoc
// @Summary Assign ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param payload body assignTicketRequest true "Assignee"
// @Success 200 {object} response.Envelope
// @Router /tickets/{id}/assign [put]
func (h *TicketHandler) Assign(c *gin.Context) {
	var req assignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ticket, err := h.tickets.Assign(c.Request.Context(), identityFromContext(c), c.Param("id"), req.AssigneeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionAssign, "ticket", ticket.ID, nil, req)
	response.OK(c, "Ticket assigned successfully", ticket)
}

type resolveTicketRequest struct {
	Resolution string `json:"resolution"`
}

// Resolve godoc
// @Summary Resolve ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param payload body resolveTicketRequest true "Resolution"
// @Success 200 {object} response.Envelope
// @Router /tickets/{id}/resolve [put]
func (h *TicketHandler) Resolve(c *gin.Context) {
	var req resolveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ticket, err := h.tickets.Resolve(c.Request.Context(), identityFromContext(c), c.Param("id"), req.Resolution)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionResolve, "ticket", ticket.ID, nil, req)
	response.OK(c, "Ticket resolved successfully", ticket)
}

// Close godoc
// @Summary Close ticket
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} response.Envelope
// @Router /tickets/{id}/close [put]
func (h *TicketHandler) Close(c *gin.Context) {
	ticket, err := h.tickets.Close(c.Request.Context(), identityFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionClose, "ticket", ticket.ID, nil, nil)
	response.OK(c, "Ticket closed successfully", ticket)
}

// Delete godoc
// @Summary Delete ticket
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {object} response.Envelope
// @Router /tickets/{id} [delete]
func (h *TicketHandler) Delete(c *gin.Context) {
	if err := h.tickets.Delete(c.Request.Context(), identityFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionDelete, "ticket", c.Param("id"), nil, nil)
	response.OK(c, "Ticket deleted successfully", nil)
}
