package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/metrics"
)

// Metrics records the latency and status of every console request, labelled
// by matched route so path parameters do not explode cardinality.
func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
