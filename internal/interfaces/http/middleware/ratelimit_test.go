package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func newTestLimiter(requests int, window time.Duration) (*RateLimiter, *stepClock) {
	clock := &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(requests, window)
	rl.now = clock.Now
	return rl, clock
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows burst then blocks", func(t *testing.T) {
		limiter, _ := newTestLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("client"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client"))
		assert.Equal(t, 0, limiter.Remaining("client"))
	})

	t.Run("separate limits per client", func(t *testing.T) {
		limiter, _ := newTestLimiter(1, time.Minute)

		assert.True(t, limiter.Allow("a"))
		assert.False(t, limiter.Allow("a"))
		assert.True(t, limiter.Allow("b"))
	})

	t.Run("refills over the window", func(t *testing.T) {
		limiter, clock := newTestLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("client"))
		assert.True(t, limiter.Allow("client"))
		assert.False(t, limiter.Allow("client"))

		clock.now = clock.now.Add(30 * time.Second)
		assert.True(t, limiter.Allow("client"))
		assert.False(t, limiter.Allow("client"))
	})

	t.Run("cleanup evicts idle clients", func(t *testing.T) {
		limiter, clock := newTestLimiter(2, time.Minute)
		limiter.Allow("old")

		clock.now = clock.now.Add(3 * time.Minute)
		limiter.Allow("fresh")

		assert.Equal(t, 1, limiter.Cleanup())
		assert.Len(t, limiter.clients, 1)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		limiter, _ := newTestLimiter(2, time.Minute)
		limiter.StartCleanup(time.Hour)
		limiter.Stop()
		limiter.Stop()
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter, _ := newTestLimiter(2, time.Minute)
	router := gin.New()
	router.Use(RequestID(), RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
	assert.Contains(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}
