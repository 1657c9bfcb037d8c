package middleware

import (
	"strconv"
	"time"

	"cinema-reservation/internal/infra/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request latency by route template, never by raw path.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
