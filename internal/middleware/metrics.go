package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/0unveiled/backend/internal/observability"
)

// Metrics records a counter and latency sample per request. Labels use the
// route template, not the raw path, to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		observability.RequestCount.
			WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		observability.RequestDuration.
			WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
