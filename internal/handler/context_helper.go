package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/middleware"
	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/service"
)

func identityFromContext(c *gin.Context) *models.Identity {
	return middleware.IdentityFromContext(c)
}

func pageQueryFromContext(c *gin.Context) models.PageQuery {
	return middleware.PageQueryFromContext(c)
}

// recordAudit writes a best-effort audit row for a successful mutation.
func recordAudit(c *gin.Context, audit *service.AuditService, action, resource, resourceID string, oldValues, newValues interface{}) {
	if audit == nil {
		return
	}
	entry := service.AuditEntry{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
	if identity := identityFromContext(c); identity != nil {
		entry.ActorID = identity.UserID
	}
	audit.Record(c.Request.Context(), entry)
}
