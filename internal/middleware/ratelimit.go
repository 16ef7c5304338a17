package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicsafe/civicsafe-api/internal/pkg/logger"
	"github.com/civicsafe/civicsafe-api/internal/pkg/response"
)

// RateLimiter is a fixed-window counter in Redis
type RateLimiter struct {
	redis  *redis.Client
	scope  string
	limit  int
	window time.Duration
}

// NewRateLimiter creates a limiter; a nil client or non-positive limit allows everything
func NewRateLimiter(redisClient *redis.Client, scope string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		scope:  scope,
		limit:  limit,
		window: window,
	}
}

// Allow reports whether key may make another request in the current window
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	if rl == nil || rl.redis == nil || rl.limit <= 0 {
		return true
	}

	redisKey := fmt.Sprintf("ratelimit:%s:%s", rl.scope, key)

	count, err := rl.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		// Fail open
		logger.LogWarn(ctx, "Rate limiter unavailable", "scope", rl.scope, "error", err.Error())
		return true
	}

	if count == 1 {
		rl.redis.Expire(ctx, redisKey, rl.window)
	}

	return count <= int64(rl.limit)
}

// Middleware limits requests per client address
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(r.Context(), clientIP(r)) {
			response.TooManyRequests(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP relies on chi's RealIP having already rewritten RemoteAddr
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
