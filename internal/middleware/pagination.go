package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/models"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
	"github.com/agape-academy/academy-api/pkg/response"
)

const contextPageQueryKey = "pageQuery"

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Pagination validates the page/limit query parameters, rejecting
// out-of-range values with 400 and storing normalized values for downstream
// handlers.
func Pagination() gin.HandlerFunc {
	return func(c *gin.Context) {
		var problems []string

		page := defaultPage
		if raw := c.Query("page"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			switch {
			case err != nil:
				problems = append(problems, "page must be an integer")
			case parsed < 1:
				problems = append(problems, "page must be at least 1")
			default:
				page = parsed
			}
		}

		limit := defaultLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			switch {
			case err != nil:
				problems = append(problems, "limit must be an integer")
			case parsed < 1 || parsed > maxLimit:
				problems = append(problems, fmt.Sprintf("limit must be between 1 and %d", maxLimit))
			default:
				limit = parsed
			}
		}

		if len(problems) > 0 {
			response.Error(c, appErrors.Validation(problems...))
			c.Abort()
			return
		}

		c.Set(contextPageQueryKey, models.PageQuery{Page: page, Limit: limit})
		c.Next()
	}
}

// PageQueryFromContext returns the normalized pagination values, falling
// back to defaults when the middleware did not run.
func PageQueryFromContext(c *gin.Context) models.PageQuery {
	if value, exists := c.Get(contextPageQueryKey); exists {
		if pq, ok := value.(models.PageQuery); ok {
			return pq
		}
	}
	return models.PageQuery{Page: defaultPage, Limit: defaultLimit}
}
