package middleware

import (
	"context"
	"net/http"
	"strconv"

	"chat-rooms/internal/redis"
	"chat-rooms/internal/services"
	"chat-rooms/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// Limiter is the subset of redis.RateLimiter the middleware needs.
type Limiter interface {
	AllowMessage(ctx context.Context, userID string) (*redis.RateLimitResult, error)
	AllowUpload(ctx context.Context, userID string) (*redis.RateLimitResult, error)
}

// MessageRateLimitMiddleware limits message creation per user. Must run
// after AuthMiddleware. A nil limiter disables it.
func MessageRateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rateLimit(limiter.AllowMessage, "message rate limit exceeded")
}

// UploadRateLimitMiddleware limits file uploads per user.
func UploadRateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rateLimit(limiter.AllowUpload, "upload rate limit exceeded")
}

func rateLimit(allow func(ctx context.Context, userID string) (*redis.RateLimitResult, error), exceeded string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := services.UserIDFromContext(c.Request.Context())
		if !ok {
			// No user context, auth middleware will reject
			c.Next()
			return
		}

		result, err := allow(c.Request.Context(), userID.String())
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, httpdto.NewErrorResponse("rate limit error", "INTERNAL_ERROR"))
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httpdto.NewErrorResponse(exceeded, "RATE_LIMITED"))
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
