package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/brightpanel/brightpanel-go/pkg/errors"
	"github.com/brightpanel/brightpanel-go/pkg/utils"
)

// ErrorHandlingMiddleware recovers from panics, logs the stack trace and
// converts the panic into a 500 response.
func ErrorHandlingMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithFields(logrus.Fields{
			"panic":       recovered,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"client_ip":   c.ClientIP(),
			"stack_trace": string(debug.Stack()),
		}).Error("Panic recovered in API middleware")

		utils.SendError(c, http.StatusInternalServerError, "Internal server error")
		c.Abort()
	})
}

// ErrorResponseMiddleware converts errors attached to the context into
// standardized responses, after the handler chain has run.
func ErrorResponseMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		code := apperrors.GetStatusCode(err)

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"code":   code,
		}).WithError(err).Error("API request error")

		message := "Internal server error"
		if appErr, ok := err.(*apperrors.AppError); ok {
			message = appErr.Message
		}
		utils.SendError(c, code, message)
	}
}
