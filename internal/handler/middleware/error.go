package middleware

import (
	"log/slog"
	"net/http"

	"cart-engine/internal/handler/httperr"
	"cart-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders public errors recorded by httperr and logs server
// failures with a trimmed stack.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, ge := range c.Errors {
			resp, ok := ge.Meta.(httperr.Response)
			if !ok || resp.Status < http.StatusInternalServerError {
				continue
			}
			logger.Error("request failed",
				"request_id", GetRequestID(c),
				"path", c.FullPath(),
				"status", resp.Status,
				"error", ge.Err.Error(),
				"stack", errs.ExtractStackLines(ge.Err, 5))
		}

		if c.Writer.Written() {
			return
		}
		// Latest public error wins.
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]
			if err.IsType(gin.ErrorTypePublic) {
				if resp, ok := err.Meta.(httperr.Response); ok {
					c.JSON(resp.Status, resp)
					return
				}
			}
		}
		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Internal server error"}})
	}
}

func CustomRecovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("recovered from panic",
					"error", err,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c))

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Message = "Internal server error"

				c.JSON(http.StatusInternalServerError, resp)
				c.Abort()
			}
		}()
		c.Next()
	}
}
