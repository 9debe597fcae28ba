package middleware

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when the limiter's Redis
// backend cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed rejects the request with 503.
	FailClosed
)

// limiter is a fixed-window counter backed by Redis. The first hit in a
// window creates the key with an expiry equal to the window length.
type limiter struct {
	rdb      *redis.Client
	limit    int
	window   time.Duration
	resource string
}

func (l *limiter) allow(ctx context.Context, callerID string) (bool, error) {
	if l.rdb == nil {
		return false, fmt.Errorf("rate limiter has no redis client")
	}

	key := fmt.Sprintf("rl:%s:%s", l.resource, callerID)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, l.window)
	}
	return count <= int64(l.limit), nil
}

// callerKey identifies the caller for rate limiting purposes. Authenticated
// requests are limited per user so a shared NAT does not starve dreamers on
// the same network; anonymous requests fall back to the remote IP.
func callerKey(c *fiber.Ctx) string {
	if uid := c.Locals("userID"); uid != nil {
		return fmt.Sprintf("user:%v", uid)
	}
	return "ip:" + c.IP()
}

// limitingDisabled reports whether rate limits should be bypassed entirely.
// Dev and test workflows are never throttled.
func limitingDisabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "development", "test":
		return true
	}
	return false
}

// RateLimit enforces `limit` requests per `window` per caller, failing open
// when Redis is down. An optional name overrides the request path as the
// limited resource, letting several routes share one budget.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limitingDisabled() {
			return c.Next()
		}

		l := limiter{rdb: rdb, limit: limit, window: window, resource: c.Path()}
		if len(name) > 0 {
			l.resource = name[0]
		}

		allowed, err := l.allow(context.Background(), callerKey(c))
		if err != nil {
			if policy == FailClosed {
				Logger.Warn("rate limiter unavailable, failing closed",
					"resource", l.resource, "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
