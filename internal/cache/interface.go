// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package cache provides the enrichment cache behind a single Cacher
// interface. Two in-process policies (TTL map and bounded LRU) and a shared
// Redis backend are available; NewCacher picks one from configuration.
//
// Values handed to Set should be []byte when the cache may be Redis backed,
// since Redis returns the stored bytes rather than the original Go value.
package cache

import (
	"fmt"
	"time"
)

// Cacher is the common surface of every cache backend.
type Cacher interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	SetWithTTL(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Clear()
	GetStats() Stats
	HitRate() float64
}

// CacheType selects the eviction policy.
type CacheType string

const (
	// CacheTypeTTL expires entries after a fixed time. Unbounded in size.
	CacheTypeTTL CacheType = "ttl"

	// CacheTypeLRU bounds the entry count and also honors a TTL.
	CacheTypeLRU CacheType = "lru"

	// CacheTypeRedis stores entries in a shared Redis instance.
	CacheTypeRedis CacheType = "redis"
)

// CacheConfig configures NewCacher.
type CacheConfig struct {
	Type     CacheType
	TTL      time.Duration
	Capacity int // lru only

	Redis RedisOptions // redis only
}

// NewCacher builds the configured backend. Redis connectivity is verified
// with a ping so a misconfigured address fails at startup.
func NewCacher(cfg CacheConfig) (Cacher, error) {
	switch cfg.Type {
	case CacheTypeTTL, "":
		return New(cfg.TTL), nil
	case CacheTypeLRU:
		if cfg.Capacity < 1 {
			return nil, fmt.Errorf("lru cache capacity must be at least 1, got %d", cfg.Capacity)
		}
		return NewLRUCache(cfg.Capacity, cfg.TTL), nil
	case CacheTypeRedis:
		opts := cfg.Redis
		if opts.TTL == 0 {
			opts.TTL = cfg.TTL
		}
		return NewRedisCache(opts)
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
