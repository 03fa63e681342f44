// Package cache provides a Redis client wrapper and the per-student
// plan-generation lock.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client.
type Cache struct {
	Client *redis.Client
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New creates a new cache client.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return &Cache{Client: client}, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// releaseScript deletes the lock key only if the caller still owns
// it, so a run that outlived its TTL cannot drop a newer run's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// PlanLock serializes plan generation per student. Two concurrent
// runs would race to replace the same schedule; the second caller
// must fail fast instead.
type PlanLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPlanLock creates a plan lock with the given TTL. The TTL bounds
// how long a crashed run can block its student.
func NewPlanLock(c *Cache, ttl time.Duration) *PlanLock {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PlanLock{client: c.Client, ttl: ttl}
}

// Acquire takes the student's lock. When acquired, the returned
// release func must be called once the run finishes.
func (l *PlanLock) Acquire(ctx context.Context, studentID string) (func(context.Context), bool, error) {
	key := "studyflow:planlock:" + studentID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			slog.Warn("failed to release plan lock", "key", key, "error", err)
		}
	}
	return release, true, nil
}
