package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/autotax/internal/logger"
)

const loggerKey = "logger"

// Logger attaches a request-scoped logger to the context and writes one
// access log entry per request once the handler chain has finished.
func Logger(log *logger.Logger) gin.HandlerFunc {
	httpLog := log.WithComponent("http")

	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := httpLog.WithRequestID(GetRequestID(c))
		c.Set(loggerKey, requestLogger)

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}
		if c.Request.URL.RawQuery != "" {
			fields["query"] = c.Request.URL.RawQuery
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			requestLogger.Error("Request failed", err, fields)
		case status >= 400:
			requestLogger.Warn("Request rejected", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

// GetLogger returns the request-scoped logger, or nil outside the Logger middleware.
func GetLogger(c *gin.Context) *logger.Logger {
	if value, exists := c.Get(loggerKey); exists {
		if log, ok := value.(*logger.Logger); ok {
			return log
		}
	}
	return nil
}
