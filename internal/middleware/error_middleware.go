package middleware

import (
	"chat-rooms/internal/services"
	"chat-rooms/internal/transport/httpdto"
	"chat-rooms/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler logs errors attached with c.Error and, if the handler wrote
// nothing, answers with the mapped envelope.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.ErrorCtx(c.Request.Context(), "request error",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(services.HTTPStatus(err), httpdto.NewErrorResponse("internal server error", services.ErrorCode(err)))
	}
}
