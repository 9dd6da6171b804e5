package redis

import (
	"context"
	"fmt"
	"time"

	"chat-rooms/config"

	goredis "github.com/redis/go-redis/v9"
)

// Key patterns:
// - ratelimit:{user_id}:messages
// - ratelimit:{user_id}:uploads

type RateLimitConfig struct {
	MessageLimit  int
	MessageWindow time.Duration
	UploadLimit   int
	UploadWindow  time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MessageLimit:  60,
		MessageWindow: time.Minute,
		UploadLimit:   10,
		UploadWindow:  time.Minute,
	}
}

// RateLimitConfigFrom applies the per-minute limits from the application
// config. Non-positive values keep the defaults.
func RateLimitConfigFrom(cfg *config.Config) RateLimitConfig {
	out := DefaultRateLimitConfig()
	if cfg.MessageRateLimit > 0 {
		out.MessageLimit = cfg.MessageRateLimit
	}
	if cfg.UploadRateLimit > 0 {
		out.UploadLimit = cfg.UploadRateLimit
	}
	return out
}

type RateLimiter struct {
	client goredis.Cmdable
	config RateLimitConfig
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

func NewRateLimiter(client goredis.Cmdable, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
	}
}

func (r *RateLimiter) AllowMessage(ctx context.Context, userID string) (*RateLimitResult, error) {
	return r.checkLimit(ctx, messageKey(userID), r.config.MessageLimit, r.config.MessageWindow)
}

func (r *RateLimiter) AllowUpload(ctx context.Context, userID string) (*RateLimitResult, error) {
	return r.checkLimit(ctx, uploadKey(userID), r.config.UploadLimit, r.config.UploadWindow)
}

func messageKey(userID string) string {
	return fmt.Sprintf("ratelimit:%s:messages", userID)
}

func uploadKey(userID string) string {
	return fmt.Sprintf("ratelimit:%s:uploads", userID)
}

// fixedWindow increments the counter while under the limit. The window
// starts with the first hit.
var fixedWindow = goredis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])

	local current = tonumber(redis.call('GET', key) or '0')
	local ttl = redis.call('TTL', key)
	if ttl < 0 then
		ttl = window
	end

	if current < limit then
		local n = redis.call('INCR', key)
		if n == 1 then
			redis.call('EXPIRE', key, window)
		end
		return {1, limit - n, ttl}
	end
	return {0, 0, ttl}
`)

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) (*RateLimitResult, error) {
	result, err := fixedWindow.Run(ctx, r.client, []string{key}, limit, int(window.Seconds())).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(result) < 3 {
		return nil, fmt.Errorf("unexpected rate limit result format")
	}

	return &RateLimitResult{
		Allowed:   result[0] == 1,
		Remaining: int(result[1]),
		ResetIn:   time.Duration(result[2]) * time.Second,
		Limit:     limit,
	}, nil
}
