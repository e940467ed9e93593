package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	appErrors "github.com/agape-academy/academy-api/pkg/errors"
	"github.com/agape-academy/academy-api/pkg/response"
)

// RateLimiter enforces a blunt global fixed-window request budget. With a
// Redis client the window is shared across instances; without one it falls
// back to an in-process counter.
type RateLimiter struct {
	client    *redis.Client
	perMinute int

	mu          sync.Mutex
	windowStart int64
	count       int
}

// NewRateLimiter builds a limiter. client may be nil.
func NewRateLimiter(client *redis.Client, perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 300
	}
	return &RateLimiter{client: client, perMinute: perMinute}
}

// Middleware rejects requests over budget with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c) {
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) allow(c *gin.Context) bool {
	window := time.Now().Unix() / 60

	if l.client != nil {
		key := fmt.Sprintf("ratelimit:%d", window)
		count, err := l.client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down must not take the API with it.
			return true
		}
		if count == 1 {
			l.client.Expire(c.Request.Context(), key, 2*time.Minute)
		}
		return count <= int64(l.perMinute)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.windowStart != window {
		l.windowStart = window
		l.count = 0
	}
	l.count++
	return l.count <= l.perMinute
}
