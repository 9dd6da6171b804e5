package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-rooms/internal/redis"
	"chat-rooms/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct {
	result *redis.RateLimitResult
	err    error
	calls  int
}

func (s *stubLimiter) AllowMessage(context.Context, string) (*redis.RateLimitResult, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubLimiter) AllowUpload(context.Context, string) (*redis.RateLimitResult, error) {
	s.calls++
	return s.result, s.err
}

func withUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(services.WithUserContext(c.Request.Context(), userID))
		c.Next()
	}
}

func serve(handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/", append(handlers, func(c *gin.Context) { c.Status(http.StatusCreated) })...)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("should pass requests under the limit and set headers", func(t *testing.T) {
		req := require.New(t)
		lim := &stubLimiter{result: &redis.RateLimitResult{Allowed: true, Remaining: 4, Limit: 5, ResetIn: 30 * time.Second}}
		w := serve(withUser(uuid.New()), MessageRateLimitMiddleware(lim))
		req.Equal(http.StatusCreated, w.Code)
		req.Equal("5", w.Header().Get("X-RateLimit-Limit"))
		req.Equal("4", w.Header().Get("X-RateLimit-Remaining"))
		req.Equal("30", w.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("should answer 429 over the limit", func(t *testing.T) {
		req := require.New(t)
		lim := &stubLimiter{result: &redis.RateLimitResult{Allowed: false, Limit: 5}}
		w := serve(withUser(uuid.New()), UploadRateLimitMiddleware(lim))
		req.Equal(http.StatusTooManyRequests, w.Code)
		req.Contains(w.Body.String(), "RATE_LIMITED")
	})

	t.Run("should fail closed when the limiter errors", func(t *testing.T) {
		req := require.New(t)
		lim := &stubLimiter{err: errors.New("redis down")}
		w := serve(withUser(uuid.New()), MessageRateLimitMiddleware(lim))
		req.Equal(http.StatusInternalServerError, w.Code)
	})

	t.Run("should skip without a user or a limiter", func(t *testing.T) {
		req := require.New(t)
		lim := &stubLimiter{}
		w := serve(MessageRateLimitMiddleware(lim))
		req.Equal(http.StatusCreated, w.Code)
		req.Zero(lim.calls)

		w = serve(withUser(uuid.New()), MessageRateLimitMiddleware(nil))
		req.Equal(http.StatusCreated, w.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("should keep a caller supplied id", func(t *testing.T) {
		req := require.New(t)
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.Use(RequestIDMiddleware())
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		httpReq := httptest.NewRequest(http.MethodGet, "/", nil)
		httpReq.Header.Set(RequestIDHeader, "abc123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httpReq)
		req.Equal("abc123", w.Header().Get(RequestIDHeader))

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		req.Len(w.Header().Get(RequestIDHeader), 32)
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("should only allow configured origins", func(t *testing.T) {
		req := require.New(t)
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.Use(CORSMiddleware([]string{"https://app.example"}))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		httpReq := httptest.NewRequest(http.MethodGet, "/", nil)
		httpReq.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httpReq)
		req.Equal("https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

		httpReq = httptest.NewRequest(http.MethodGet, "/", nil)
		httpReq.Header.Set("Origin", "https://evil.example")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httpReq)
		req.Equal(http.StatusForbidden, w.Code)
	})
}
