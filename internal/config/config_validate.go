// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

var (
	validLogLevels     = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats    = map[string]bool{"json": true, "console": true}
	validCacheBackends = map[string]bool{"memory": true, "redis": true}
	validCacheTypes    = map[string]bool{"ttl": true, "lru": true}
	validSessionStores = map[string]bool{"memory": true, "badger": true}
)

// Validate checks that configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Dir == "" {
		return fmt.Errorf("CATALOG_DIR is required")
	}
	if c.Catalog.FetchTimeout <= 0 {
		return fmt.Errorf("CATALOG_FETCH_TIMEOUT must be positive")
	}
	if c.Catalog.RefreshInterval < 0 {
		return fmt.Errorf("CATALOG_REFRESH_INTERVAL must not be negative")
	}
	if err := validateBackoff(c.Catalog.WarmupBackoff, c.Catalog.WarmupMaxWait); err != nil {
		return err
	}
	if err := validateBlob(c.Catalog.Catalog, "CATALOG"); err != nil {
		return err
	}
	return validateBlob(c.Catalog.Similarity, "SIMILARITY")
}

func validateBackoff(initial, maxWait time.Duration) error {
	if initial <= 0 {
		return fmt.Errorf("CATALOG_WARMUP_BACKOFF must be positive")
	}
	if maxWait < initial {
		return fmt.Errorf("CATALOG_WARMUP_MAX_BACKOFF must be >= CATALOG_WARMUP_BACKOFF")
	}
	return nil
}

func validateBlob(b BlobConfig, prefix string) error {
	if b.File == "" {
		return fmt.Errorf("%s_FILE is required", prefix)
	}
	if strings.ContainsAny(b.File, `/\`) {
		return fmt.Errorf("%s_FILE must be a bare file name, got %q", prefix, b.File)
	}
	if b.URL != "" {
		if err := validateFetchURL(b.URL, prefix+"_URL"); err != nil {
			return err
		}
	}
	if b.SHA256 != "" {
		raw, err := hex.DecodeString(b.SHA256)
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("%s_SHA256 must be a 64 character hex digest", prefix)
		}
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if err := validateHTTPURL(c.TMDB.BaseURL, "TMDB_BASE_URL"); err != nil {
		return err
	}
	if err := validateHTTPURL(c.TMDB.ImageBaseURL, "TMDB_IMAGE_BASE_URL"); err != nil {
		return err
	}
	if err := validateHTTPURL(c.TMDB.DetailBaseURL, "TMDB_DETAIL_BASE_URL"); err != nil {
		return err
	}
	if err := validateHTTPURL(c.TMDB.PlaceholderURL, "TMDB_PLACEHOLDER_URL"); err != nil {
		return err
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		return fmt.Errorf("TMDB_REQUESTS_PER_SECOND must be positive")
	}
	if c.TMDB.Burst < 1 {
		return fmt.Errorf("TMDB_BURST must be at least 1")
	}
	if c.TMDB.BreakerMaxRequests == 0 {
		return fmt.Errorf("TMDB_BREAKER_MAX_REQUESTS must be at least 1")
	}
	if c.TMDB.BreakerTimeout <= 0 {
		return fmt.Errorf("TMDB_BREAKER_TIMEOUT must be positive")
	}
	if c.TMDB.APIKey != "" && containsPlaceholder(c.TMDB.APIKey) {
		return fmt.Errorf("TMDB_API_KEY contains a placeholder value")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("CACHE_BACKEND must be one of memory, redis; got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
	}
	if c.Cache.Backend == "memory" && !validCacheTypes[c.Cache.Type] {
		return fmt.Errorf("CACHE_TYPE must be one of ttl, lru; got %q", c.Cache.Type)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Cache.Type == "lru" && c.Cache.Capacity < 1 {
		return fmt.Errorf("CACHE_CAPACITY must be at least 1 for lru caches")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultK < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_K must be at least 1")
	}
	if c.Recommend.MaxK < c.Recommend.DefaultK {
		return fmt.Errorf("RECOMMEND_MAX_K (%d) must be >= RECOMMEND_DEFAULT_K (%d)", c.Recommend.MaxK, c.Recommend.DefaultK)
	}
	if c.Recommend.EnrichConcurrency < 1 {
		return fmt.Errorf("RECOMMEND_ENRICH_CONCURRENCY must be at least 1")
	}
	return nil
}

func (c *Config) validateSession() error {
	if !validSessionStores[c.Session.Store] {
		return fmt.Errorf("SESSION_STORE must be one of memory, badger; got %q", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Session.CleanupInterval <= 0 {
		return fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive")
	}
	if c.Session.MinAge < 0 || c.Session.MinAge > 150 {
		return fmt.Errorf("SESSION_MIN_AGE must be between 0 and 150")
	}
	if _, err := time.Parse(time.DateOnly, c.Session.SimulatedDOB); err != nil {
		return fmt.Errorf("SESSION_SIMULATED_DOB must be YYYY-MM-DD: %w", err)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if s.JWTSecret != "" {
		if len(s.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters")
		}
		if containsPlaceholder(s.JWTSecret) {
			return fmt.Errorf("JWT_SECRET contains a placeholder value, generate one with: openssl rand -base64 48")
		}
	}
	if s.AdminToken != "" && len(s.AdminToken) < 16 {
		return fmt.Errorf("ADMIN_TOKEN must be at least 16 characters")
	}
	if s.BcryptCost < 4 || s.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", s.BcryptCost)
	}
	if s.MinPasswordLength < 8 {
		return fmt.Errorf("MIN_PASSWORD_LENGTH must be at least 8")
	}
	if !s.RateLimitDisabled {
		if s.RateLimitReqs < 1 || s.SessionRateLimitReqs < 1 {
			return fmt.Errorf("rate limits must be at least 1 request per window")
		}
		if s.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	for _, origin := range s.CORSOrigins {
		if origin == "*" {
			continue
		}
		if err := validateHTTPURL(origin, "CORS_ORIGINS"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be json or console; got %q", c.Logging.Format)
	}
	return nil
}

// containsPlaceholder reports whether a secret still carries an example value.
func containsPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	for _, p := range []string{"changeme", "change_me", "replace_with", "your_", "example", "xxxxxxxx"} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
