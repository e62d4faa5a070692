// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package config loads Reelmatch configuration from struct defaults, an
// optional YAML file and environment variables (in that order of precedence)
// using koanf, and validates the result before anything else starts.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
	Session   SessionConfig   `koanf:"session"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig controls the HTTP listener and on-disk state.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// DataDir holds the BadgerDB directory for accounts and durable sessions.
	DataDir string `koanf:"data_dir"`
}

// BlobConfig describes one remotely stored artifact.
type BlobConfig struct {
	// URL is fetched only when File is missing locally. May be empty when the
	// file is provisioned out of band.
	URL string `koanf:"url"`

	// SHA256 is the expected hex digest. Empty disables verification.
	SHA256 string `koanf:"sha256"`

	// File is the name of the cached copy inside CatalogConfig.Dir.
	File string `koanf:"file"`
}

// CatalogConfig controls how the movie catalog and similarity matrix are
// fetched and cached.
type CatalogConfig struct {
	Dir             string        `koanf:"dir"`
	FetchTimeout    time.Duration `koanf:"fetch_timeout"`
	RefreshInterval time.Duration `koanf:"refresh_interval"` // 0 disables periodic reload
	WarmupBackoff   time.Duration `koanf:"warmup_backoff"`
	WarmupMaxWait   time.Duration `koanf:"warmup_max_backoff"`

	Catalog    BlobConfig `koanf:"catalog"`
	Similarity BlobConfig `koanf:"similarity"`
}

// TMDBConfig configures the movie metadata API used for enrichment.
type TMDBConfig struct {
	BaseURL        string        `koanf:"base_url"`
	APIKey         string        `koanf:"api_key"`
	Language       string        `koanf:"language"`
	ImageBaseURL   string        `koanf:"image_base_url"`
	DetailBaseURL  string        `koanf:"detail_base_url"`
	PlaceholderURL string        `koanf:"placeholder_url"`
	Timeout        time.Duration `koanf:"timeout"`

	// RequestsPerSecond paces outbound calls; Burst allows short spikes.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	BreakerMaxRequests uint32        `koanf:"breaker_max_requests"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// CacheConfig selects the enrichment cache backend.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string `koanf:"backend"`

	// Type is the in-memory policy: "ttl" or "lru". Ignored for redis.
	Type     string        `koanf:"type"`
	TTL      time.Duration `koanf:"ttl"`
	Capacity int           `koanf:"capacity"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	KeyPrefix     string `koanf:"key_prefix"`
}

// RecommendConfig holds the API's k limits and the enrichment fan-out.
// Requests that omit k get DefaultK; a k above MaxK is rejected.
type RecommendConfig struct {
	DefaultK          int `koanf:"default_k"`
	MaxK              int `koanf:"max_k"`
	EnrichConcurrency int `koanf:"enrich_concurrency"`
}

// SessionConfig controls the visitor session state machine.
type SessionConfig struct {
	// Store is "memory" or "badger".
	Store           string        `koanf:"store"`
	TTL             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	MinAge int `koanf:"min_age"`

	// SimulatedDOB is returned for every well-formed Aadhaar number until a
	// real identity provider is wired in. Format: YYYY-MM-DD.
	SimulatedDOB string `koanf:"simulated_dob"`
}

// SecurityConfig holds secrets, password policy, CORS and rate limits.
type SecurityConfig struct {
	// JWTSecret signs session tokens. When empty an ephemeral secret is
	// generated at startup and sessions do not survive a restart.
	JWTSecret string `koanf:"jwt_secret"`

	// AdminToken authorizes operator endpoints such as catalog reload.
	// Empty disables those endpoints.
	AdminToken string `koanf:"admin_token"`

	BcryptCost        int `koanf:"bcrypt_cost"`
	MinPasswordLength int `koanf:"min_password_length"`

	RateLimitReqs        int           `koanf:"rate_limit_requests"`
	RateLimitWindow      time.Duration `koanf:"rate_limit_window"`
	SessionRateLimitReqs int           `koanf:"session_rate_limit_requests"`
	RateLimitDisabled    bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json (production) or console (development).
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// Load loads configuration using the layered koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
