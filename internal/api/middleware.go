package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitlit/internal/logger"
)

// RequestLogger logs every request through the application logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		keyvals := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
		}
		switch {
		case status >= 500:
			logger.Error("HTTP request", append(keyvals, "errors", c.Errors.String())...)
		case status >= 400:
			logger.Warn("HTTP request", keyvals...)
		default:
			logger.Info("HTTP request", keyvals...)
		}
	}
}
