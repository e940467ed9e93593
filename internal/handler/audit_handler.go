package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/service"
	"github.com/agape-academy/academy-api/pkg/response"
)

// AuditHandler exposes the admin audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List godoc
// @Summary List audit logs
// @Tags Audit
// @Produce json
// @Param actorId query string false "Filter by actor"
// @Param resource query string false "Filter by resource"
// @Param action query string false "Filter by action"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := models.AuditFilter{
		ActorID:   c.Query("actorId"),
		Resource:  c.Query("resource"),
		Action:    c.Query("action"),
		PageQuery: pageQueryFromContext(c),
	}
	entries, pagination, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, "Audit logs retrieved successfully", entries, pagination)
}
