package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/service"
)

// Metrics records per-route request counts and latencies. Unmatched routes
// collapse into a single label to keep series cardinality bounded.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if route == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
