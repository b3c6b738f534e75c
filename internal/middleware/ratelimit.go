package middleware

import (
	"fmt"
	"net/http"
	"time"
	"vibeapps/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per user (or client IP when anonymous).
type RateLimiter struct {
	limiters *utils.TTLCache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per key with the given burst.
// Idle buckets are forgotten after ten minutes.
func NewRateLimiter(perMinute, burst int) (*RateLimiter, error) {
	cache, err := utils.NewTTLCache[string, *rate.Limiter](10000, 10*time.Minute)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		limiters: cache,
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
	}, nil
}

func (l *RateLimiter) allow(key string) bool {
	limiter := l.limiters.GetOrCreate(key, func() *rate.Limiter {
		return rate.NewLimiter(l.limit, l.burst)
	})
	return limiter.Allow()
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if user, ok := CurrentUser(c); ok {
			key = fmt.Sprintf("user:%d", user.ID)
		}
		if !l.allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
