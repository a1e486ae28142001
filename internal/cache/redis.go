// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"campdir/internal/observability"

	"github.com/redis/go-redis/v9"
)

// client is nil when Redis is unavailable; every helper degrades to a
// no-op so the API keeps serving from the database.
var client *redis.Client

// metricsHook counts command failures. redis.Nil is a miss, not a failure.
type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects the package client to addr, which is either a bare
// host:port or a redis:// URL. Connection failures are logged and leave the
// cache disabled rather than failing startup.
func InitRedis(addr string) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Printf("Redis disabled: invalid REDIS_URL %q: %v", addr, err)
			client = nil
			return
		}
		opts = parsed
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		log.Printf("Redis disabled: %v", err)
		client = nil
		return
	}

	log.Println("Redis connected")
	client = c
}

// SetClient replaces the package client. Intended for tests (miniredis).
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the current Redis client, or nil when caching is off.
func GetClient() *redis.Client {
	return client
}
