package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uninav/advisor-api/internal/service"
)

// Metrics records method, route and latency for every request. Unmatched
// paths fall back to the raw URL so 404s stay visible without exploding
// label cardinality on matched routes.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
