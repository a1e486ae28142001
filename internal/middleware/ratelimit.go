package middleware

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is
// unavailable.
type FailPolicy int

const (
	// FailOpen lets the request through when Redis is unreachable.
	FailOpen FailPolicy = iota
	// FailClosed rejects with 503 when Redis is unreachable.
	FailClosed
)

// rateLimitingEnabled reports whether limits apply in the current profile.
// Dev and test workflows run unthrottled.
func rateLimitingEnabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return false
	}
	return true
}

// CheckRateLimit applies a fixed-window counter for (resource, id) and
// reports whether the request is within limit.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if !rateLimitingEnabled() {
		return true, nil
	}
	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit returns a Fiber middleware enforcing limit requests per window,
// failing open when the store is down. Requests are keyed by authenticated
// user ID when present, otherwise by remote IP.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit store-failure policy.
// The optional name overrides the request path as the counter's resource key,
// letting several routes share one budget.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(context.Background(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailOpen {
				return c.Next()
			}
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
				"resource", resource, "error", err.Error())
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"data":    nil,
				"error":   "rate limit unavailable",
			})
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"data":    nil,
				"error":   "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
