package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg *Config) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, cfg)
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rl := newTestLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, BookingRequests: 2})
	ctx := context.Background()

	first, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)

	second, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.False(t, third.Allowed)

	other, err := rl.IsAllowed(ctx, "10.0.0.2", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRateLimiter_DisabledAndWhitelisted(t *testing.T) {
	ctx := context.Background()

	disabled := newTestLimiter(t, &Config{Enabled: false, WindowDuration: time.Minute, DefaultRequests: 1})
	for i := 0; i < 3; i++ {
		res, err := disabled.IsAllowed(ctx, "10.0.0.1", RateLimitTypeDefault)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	whitelisted := newTestLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, DefaultRequests: 1, WhitelistedIPs: []string{"127.0.0.1"}})
	for i := 0; i < 3; i++ {
		res, err := whitelisted.IsAllowed(ctx, "127.0.0.1", RateLimitTypeDefault)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
}

func TestMiddleware_Returns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := newTestLimiter(t, &Config{Enabled: true, WindowDuration: time.Minute, BookingRequests: 1})

	r := gin.New()
	r.Use(Middleware(rl))
	r.POST("/api/v1/bookings", func(c *gin.Context) { c.Status(http.StatusCreated) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, do().Code)
	w := do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
}

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodPost, "/api/v1/bookings/create-checkout-session", RateLimitTypePayment},
		{http.MethodPost, "/api/v1/bookings/session-status", RateLimitTypePayment},
		{http.MethodDelete, "/api/v1/bookings/:id", RateLimitTypeBooking},
		{http.MethodDelete, "/api/v1/users/delete/:id", RateLimitTypeAdmin},
		{http.MethodGet, "/api/v1/events/:id", RateLimitTypePublic},
		{http.MethodPost, "/api/v1/events", RateLimitTypeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, getRateLimitType(tt.method, tt.path))
		})
	}
}
