package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"dcolumn/internal/core/apperror"
	"dcolumn/pkg/logger"
)

// Recovery middleware converts panics into internal errors so the error
// handler can render them.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
				)

				err := apperror.NewInternal(fmt.Errorf("panic: %v", r))
				if requestID := c.GetString("request_id"); requestID != "" {
					err = err.WithDetail("request_id", requestID)
				}
				_ = c.Error(err)
				c.Abort()
			}
		}()
		c.Next()
	}
}
