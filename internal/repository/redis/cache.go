// Package redis caches computed analytics in Redis. Entries are JSON values
// stored under a generation counter that every issue write bumps.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
)

const defaultPrefix = "civic:analytics:"

// Options configures the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects and pings Redis
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: failed to ping %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

// AnalyticsCache stores analytics results with a fixed TTL
type AnalyticsCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

// NewAnalyticsCache wraps client; ttl of zero means entries never expire
func NewAnalyticsCache(client redis.Cmdable, ttl time.Duration, logger logging.Logger) *AnalyticsCache {
	return &AnalyticsCache{
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
		logger: logger.Named("analytics-cache"),
	}
}

func (c *AnalyticsCache) key(gen int64, k string) string {
	return c.prefix + "v" + strconv.FormatInt(gen, 10) + ":" + k
}

func (c *AnalyticsCache) generationKey() string {
	return c.prefix + "generation"
}

// Generation returns the current cache generation. Entries are stored under
// the generation they were computed in, so bumping it hides them all.
func (c *AnalyticsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis: failed to read cache generation: %w", err)
	}
	return gen, nil
}

// Get decodes the entry cached under gen into dest. A miss returns false with
// no error.
func (c *AnalyticsCache) Get(ctx context.Context, gen int64, key string, dest interface{}) (bool, error) {
	k := c.key(gen, key)
	data, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis: failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("dropping undecodable cache entry", logging.String("key", key), logging.Err(err))
		c.client.Del(ctx, k)
		return false, nil
	}
	return true, nil
}

// Set stores value as JSON under gen
func (c *AnalyticsCache) Set(ctx context.Context, gen int64, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis: failed to encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.key(gen, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to set %s: %w", key, err)
	}
	return nil
}

// Invalidate bumps the generation, then deletes the entries left behind.
// A result computed before the bump can only be written under the old
// generation, where no reader will look for it.
func (c *AnalyticsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("redis: failed to bump cache generation: %w", err)
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"v*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis: failed to scan analytics keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis: failed to delete analytics keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping checks the connection
func (c *AnalyticsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
