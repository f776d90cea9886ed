package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devstorm/docstorm-api/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided
// service. Probe endpoints are excluded so scrapes do not inflate the series.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
