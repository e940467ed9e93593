package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/service"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
	"github.com/agape-academy/academy-api/pkg/response"
)

// EventHandler exposes calendar event endpoints.
type EventHandler struct {
	events *service.EventService
	audit  *service.AuditService
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(events *service.EventService, audit *service.AuditService) *EventHandler {
	return &EventHandler{events: events, audit: audit}
}

// List godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Param type query string false "Filter by event type"
// @Param courseId query string false "Filter by course"
// @Param from query string false "Events on or after (RFC3339)"
// @Param to query string false "Events on or before (RFC3339)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	var filter models.EventFilter
	if raw := c.Query("type"); raw != "" {
		eventType := models.EventType(raw)
		if !eventType.Valid() {
			response.Error(c, appErrors.Validation("type must be a known event type"))
			return
		}
		filter.EventType = &eventType
	}
	filter.CourseID = c.Query("courseId")
	filter.CreatorID = c.Query("creatorId")
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Validation("from must be an RFC3339 timestamp"))
			return
		}
		filter.DateFrom = &parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Validation("to must be an RFC3339 timestamp"))
			return
		}
		filter.DateTo = &parsed
	}
	filter.PageQuery = pageQueryFromContext(c)

	events, pagination, err := h.events.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Events retrieved successfully", events, pagination)
}

// Get godoc
// @Summary Get event detail
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Event retrieved successfully", event)
}

// Create godoc
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.events.Create(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionCreate, "event", event.ID, nil, event)
	response.Created(c, "Event created successfully", event)
}

// Update godoc
// @Summary Update event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.UpdateEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.events.Update(c.Request.Context(), identityFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionUpdate, "event", event.ID, nil, req)
	response.OK(c, "Event updated successfully", event)
}

// Delete godoc
// @Summary Delete event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), identityFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	recordAudit(c, h.audit, models.AuditActionDelete, "event", c.Param("id"), nil, nil)
	response.OK(c, "Event deleted successfully", nil)
}
