package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/techfront-institute/academy-api/internal/service"
)

// Metrics records one duration observation per request, labelled by the
// route pattern so path parameters do not explode cardinality.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// unmatched routes collapse into one label
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
