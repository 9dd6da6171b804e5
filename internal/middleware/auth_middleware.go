package middleware

import (
	"strings"

	"chat-rooms/internal/services"
	"chat-rooms/internal/transport/httpdto"
	"chat-rooms/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token and puts the requester id on the
// request context. The identity is upserted on every request.
func AuthMiddleware(service *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := service.Authenticate(c.Request.Context(), extractBearer(c))
		if err != nil {
			c.AbortWithStatusJSON(services.HTTPStatus(err), httpdto.NewErrorResponse("unauthorized", services.ErrorCode(err)))
			return
		}

		ctx := services.WithUserContext(c.Request.Context(), u.ID)
		ctx = logger.WithUserID(ctx, u.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
