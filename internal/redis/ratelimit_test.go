package redis

import (
	"testing"
	"time"

	"chat-rooms/config"

	"github.com/stretchr/testify/require"
)

func TestRateLimitConfigFrom(t *testing.T) {
	t.Run("should apply configured limits", func(t *testing.T) {
		req := require.New(t)
		got := RateLimitConfigFrom(&config.Config{MessageRateLimit: 5, UploadRateLimit: 2})
		req.Equal(5, got.MessageLimit)
		req.Equal(2, got.UploadLimit)
		req.Equal(time.Minute, got.MessageWindow)
		req.Equal(time.Minute, got.UploadWindow)
	})

	t.Run("should keep defaults for unset limits", func(t *testing.T) {
		req := require.New(t)
		got := RateLimitConfigFrom(&config.Config{})
		req.Equal(DefaultRateLimitConfig(), got)
	})

	t.Run("should key counters per user and action", func(t *testing.T) {
		req := require.New(t)
		req.Equal("ratelimit:u1:messages", messageKey("u1"))
		req.Equal("ratelimit:u1:uploads", uploadKey("u1"))
		req.Equal("cache:6380", Config{Host: "cache", Port: "6380"}.Addr())
	})
}
