package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dcolumn/internal/core/apperror"
	"dcolumn/pkg/logger"
)

// errorResponse is the JSON body rendered for failed requests.
type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler renders the last error attached to the context as a JSON
// response. Handlers report failures with c.Error and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		if c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.HTTPStatus >= 500 {
				logger.Error(c.Request.Context(), "request failed",
					"code", appErr.Code,
					"error", appErr.Error(),
					"path", c.Request.URL.Path,
				)
			}
			c.JSON(appErr.HTTPStatus, errorResponse{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			})
			return
		}

		logger.Error(c.Request.Context(), "unhandled error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
		)

		resp := errorResponse{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
		}
		if requestID := c.GetString("request_id"); requestID != "" {
			resp.Details = map[string]any{"request_id": requestID}
		}
		c.JSON(http.StatusInternalServerError, resp)
	}
}
