package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adityatechndevoops/OliveStore/internal/models"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/fixed_window.lua
var fixedWindowScript string

const (
	dashboardStatsKey = "dashboard:stats"
	idempotencyMarker = "processing"
	idempotencyLock   = 30 * time.Second
)

type Client struct {
	rdb         *redis.Client
	limitScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewFromRedis(rdb), nil
}

// NewFromRedis wraps an existing go-redis client.
func NewFromRedis(rdb *redis.Client) *Client {
	return &Client{
		rdb:         rdb,
		limitScript: redis.NewScript(fixedWindowScript),
	}
}

// Ping checks the connection, used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Allow counts one hit against key in a fixed window and reports whether
// the hit is within limit.
func (c *Client) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	result, err := c.limitScript.Run(ctx, c.rdb, []string{key}, limit, int(window.Seconds())).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script failed: %w", err)
	}
	return result == 1, nil
}

// AllowLogin rate limits login attempts per identifier.
func (c *Client) AllowLogin(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:login:%s", strings.ToLower(strings.TrimSpace(identifier)))
	return c.Allow(ctx, key, limit, window)
}

// BeginIdempotent claims key for a new request. When the key was already
// claimed, started is false and result holds the stored result, or is empty
// while the first request is still running.
func (c *Client) BeginIdempotent(ctx context.Context, key string) (result string, started bool, err error) {
	storageKey := fmt.Sprintf("idempotency:%s", key)

	ok, err := c.rdb.SetNX(ctx, storageKey, idempotencyMarker, idempotencyLock).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	val, err := c.rdb.Get(ctx, storageKey).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET, try once more
		ok, err = c.rdb.SetNX(ctx, storageKey, idempotencyMarker, idempotencyLock).Result()
		if err != nil {
			return "", false, fmt.Errorf("failed to claim idempotency key: %w", err)
		}
		return "", ok, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if val == idempotencyMarker {
		return "", false, nil
	}
	return val, false, nil
}

// CompleteIdempotent stores the result of a claimed key for ttl.
func (c *Client) CompleteIdempotent(ctx context.Context, key, result string, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("idempotency:%s", key), result, ttl).Err()
}

// AbortIdempotent releases a claimed key so the request can be retried.
func (c *Client) AbortIdempotent(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("idempotency:%s", key)).Err()
}

// GetDashboardStats returns the cached stats; found is false on a miss.
func (c *Client) GetDashboardStats(ctx context.Context) (*models.DashboardStats, bool, error) {
	val, err := c.rdb.Get(ctx, dashboardStatsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read dashboard cache: %w", err)
	}

	var stats models.DashboardStats
	if err := json.Unmarshal(val, &stats); err != nil {
		return nil, false, fmt.Errorf("failed to decode dashboard cache: %w", err)
	}
	return &stats, true, nil
}

// SetDashboardStats caches stats for ttl.
func (c *Client) SetDashboardStats(ctx context.Context, stats *models.DashboardStats, ttl time.Duration) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard stats: %w", err)
	}
	return c.rdb.Set(ctx, dashboardStatsKey, b, ttl).Err()
}

// InvalidateDashboardStats drops the cached stats.
func (c *Client) InvalidateDashboardStats(ctx context.Context) error {
	return c.rdb.Del(ctx, dashboardStatsKey).Err()
}
