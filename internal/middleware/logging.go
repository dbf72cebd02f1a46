package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/0unveiled/backend/internal/platform/logger"
)

// RequestLogger logs one line per request after it completes.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Streaming endpoints hold the connection open; their duration is
		// the stream lifetime, which is still worth having in the logs.
		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
			reqLog.Warn("request", fields...)
			return
		}
		if c.Writer.Status() >= 500 {
			reqLog.Error("request", fields...)
			return
		}
		reqLog.Info("request", fields...)
	}
}
