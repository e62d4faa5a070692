// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/reelmatch/internal/logging"
)

const defaultRedisOpTimeout = 500 * time.Millisecond

// RedisOptions configures RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces every key so several deployments can share a DB.
	KeyPrefix string

	TTL       time.Duration
	OpTimeout time.Duration
}

// RedisCache stores entries in Redis. Get returns the stored bytes as
// []byte; non-[]byte values passed to Set are JSON encoded first.
//
// Redis errors are logged and reported as cache misses so a Redis outage
// degrades to uncached operation instead of failing callers.
type RedisCache struct {
	client    *redis.Client
	prefix    string
	ttl       time.Duration
	opTimeout time.Duration

	mu    sync.Mutex
	stats Stats
}

// NewRedisCache connects to Redis and pings it once.
func NewRedisCache(opts RedisOptions) (*RedisCache, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	c := newRedisCacheWithClient(client, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	logging.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("Connected to Redis cache")
	return c, nil
}

func newRedisCacheWithClient(client *redis.Client, opts RedisOptions) *RedisCache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	opTimeout := opts.OpTimeout
	if opTimeout <= 0 {
		opTimeout = defaultRedisOpTimeout
	}
	return &RedisCache{
		client:    client,
		prefix:    opts.KeyPrefix,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

// Get fetches key. Redis errors count as misses.
func (c *RedisCache) Get(key string) (interface{}, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Warn().Err(err).Str("key", key).Msg("Redis GET failed")
		}
		c.bump(func(s *Stats) { s.Misses++ })
		return nil, false
	}

	c.bump(func(s *Stats) { s.Hits++ })
	return data, true
}

// Set stores value with the default TTL.
func (c *RedisCache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key. Write failures are logged only.
func (c *RedisCache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	data, err := encodeValue(value)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Redis value not encodable, skipping")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Redis SET failed")
	}
}

// Delete removes key.
func (c *RedisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	n, err := c.client.Del(ctx, c.prefix+key).Result()
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Redis DEL failed")
		return
	}
	c.bump(func(s *Stats) { s.Evictions += n })
}

// Clear removes every key under the prefix. With an empty prefix it
// refuses, since that would wipe unrelated data in a shared DB.
func (c *RedisCache) Clear() {
	if c.prefix == "" {
		logging.Warn().Msg("Refusing to clear Redis cache without a key prefix")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*c.opTimeout)
	defer cancel()

	var removed int64
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 500).Iterator()
	batch := make([]string, 0, 500)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			logging.Warn().Err(err).Msg("Redis DEL batch failed")
		}
		removed += n
		batch = batch[:0]
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			flush()
		}
	}
	flush()
	if err := iter.Err(); err != nil {
		logging.Warn().Err(err).Msg("Redis SCAN failed")
	}

	c.bump(func(s *Stats) { s.Evictions += removed })
}

// GetStats returns local hit and miss counters. TotalKeys is not tracked.
func (c *RedisCache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// HitRate returns hits as a percentage of lookups.
func (c *RedisCache) HitRate() float64 {
	return hitRate(c.GetStats())
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) bump(fn func(*Stats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}

func encodeValue(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(v)
	}
}
