package middleware

import (
	"time"

	"star_studio/internal/logging"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"remote_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error(c.Request.Context(), "request", args...)
		case status >= 400:
			logger.Warn(c.Request.Context(), "request", args...)
		default:
			logger.Info(c.Request.Context(), "request", args...)
		}
	}
}
