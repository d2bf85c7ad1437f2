package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"dcolumn/pkg/logger"
)

// Logger middleware logs one line per request with latency and status.
func Logger(log *logger.Logger) gin.HandlerFunc {
	l := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
		}
		if query != "" {
			fields = append(fields, "query", query)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		ctxLog := l.WithContext(c.Request.Context())
		switch {
		case c.Writer.Status() >= 500:
			ctxLog.Errorw("request completed", fields...)
		case c.Writer.Status() >= 400:
			ctxLog.Warnw("request completed", fields...)
		default:
			ctxLog.Infow("request completed", fields...)
		}
	}
}
