package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crewcall/crewcall-api/internal/service"
)

// Metrics records per-request counters and latency histograms. Routes are
// labelled by their template path so path parameters don't explode the
// label space.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.FullPath() == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
