package middleware

import (
	"log/slog"
	"net/http"

	"cinema-booking/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// ErrorHandler answers requests a handler aborted without writing a body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		// last public error wins
		for i := len(c.Errors) - 1; i >= 0; i-- {
			if resp, ok := c.Errors[i].Meta.(httperr.Response); ok && c.Errors[i].IsType(gin.ErrorTypePublic) {
				c.JSON(resp.Status, resp)
				return
			}
		}

		status := c.Writer.Status()
		if status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		c.JSON(http.StatusInternalServerError,
			httperr.NewResponse(c, http.StatusInternalServerError, "Internal server error", nil))
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			slog.Error("recovered from panic",
				"error", rec,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", c.GetString(httperr.RequestIDKey))

			c.AbortWithStatusJSON(http.StatusInternalServerError,
				httperr.NewResponse(c, http.StatusInternalServerError, "Internal server error", nil))
		}()
		c.Next()
	}
}
