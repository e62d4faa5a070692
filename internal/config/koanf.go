// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelmatch/config.yaml",
	"/etc/reelmatch/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8501,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			DataDir:         "/data/reelmatch",
		},
		Catalog: CatalogConfig{
			Dir:             "/data/reelmatch/catalog",
			FetchTimeout:    2 * time.Minute,
			RefreshInterval: 0,
			WarmupBackoff:   2 * time.Second,
			WarmupMaxWait:   time.Minute,
			Catalog: BlobConfig{
				File: "movies.json",
			},
			Similarity: BlobConfig{
				File: "similarity.json",
			},
		},
		TMDB: TMDBConfig{
			BaseURL:            "https://api.themoviedb.org/3",
			Language:           "en-US",
			ImageBaseURL:       "https://image.tmdb.org/t/p/w500",
			DetailBaseURL:      "https://www.themoviedb.org/movie",
			PlaceholderURL:     "https://via.placeholder.com/200",
			Timeout:            5 * time.Second,
			RequestsPerSecond:  20,
			Burst:              10,
			BreakerMaxRequests: 3,
			BreakerInterval:    time.Minute,
			BreakerTimeout:     30 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			Type:      "ttl",
			TTL:       6 * time.Hour,
			Capacity:  5000,
			RedisAddr: "",
			KeyPrefix: "reelmatch:",
		},
		Recommend: RecommendConfig{
			DefaultK:          6,
			MaxK:              50,
			EnrichConcurrency: 6,
		},
		Session: SessionConfig{
			Store:           "memory",
			TTL:             24 * time.Hour,
			CleanupInterval: 10 * time.Minute,
			MinAge:          18,
			SimulatedDOB:    "2005-04-01",
		},
		Security: SecurityConfig{
			BcryptCost:           12,
			MinPasswordLength:    8,
			RateLimitReqs:        120,
			RateLimitWindow:      time.Minute,
			SessionRateLimitReqs: 20,
			CORSOrigins:          []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf layers struct defaults, an optional YAML file and
// environment variables, then validates the merged result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are accepted as comma-separated strings from env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unlisted variables are ignored so unrelated environment never leaks in.
var envMappings = map[string]string{
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"data_dir":              "server.data_dir",

	"catalog_dir":                "catalog.dir",
	"catalog_fetch_timeout":      "catalog.fetch_timeout",
	"catalog_refresh_interval":   "catalog.refresh_interval",
	"catalog_warmup_backoff":     "catalog.warmup_backoff",
	"catalog_warmup_max_backoff": "catalog.warmup_max_backoff",
	"catalog_url":                "catalog.catalog.url",
	"catalog_sha256":             "catalog.catalog.sha256",
	"catalog_file":               "catalog.catalog.file",
	"similarity_url":             "catalog.similarity.url",
	"similarity_sha256":          "catalog.similarity.sha256",
	"similarity_file":            "catalog.similarity.file",

	"tmdb_base_url":             "tmdb.base_url",
	"tmdb_api_key":              "tmdb.api_key",
	"tmdb_language":             "tmdb.language",
	"tmdb_image_base_url":       "tmdb.image_base_url",
	"tmdb_detail_base_url":      "tmdb.detail_base_url",
	"tmdb_placeholder_url":      "tmdb.placeholder_url",
	"tmdb_timeout":              "tmdb.timeout",
	"tmdb_requests_per_second":  "tmdb.requests_per_second",
	"tmdb_burst":                "tmdb.burst",
	"tmdb_breaker_max_requests": "tmdb.breaker_max_requests",
	"tmdb_breaker_interval":     "tmdb.breaker_interval",
	"tmdb_breaker_timeout":      "tmdb.breaker_timeout",

	"cache_backend":    "cache.backend",
	"cache_type":       "cache.type",
	"cache_ttl":        "cache.ttl",
	"cache_capacity":   "cache.capacity",
	"redis_addr":       "cache.redis_addr",
	"redis_password":   "cache.redis_password",
	"redis_db":         "cache.redis_db",
	"cache_key_prefix": "cache.key_prefix",

	"recommend_default_k":          "recommend.default_k",
	"recommend_max_k":              "recommend.max_k",
	"recommend_enrich_concurrency": "recommend.enrich_concurrency",

	"session_store":            "session.store",
	"session_ttl":              "session.ttl",
	"session_cleanup_interval": "session.cleanup_interval",
	"session_min_age":          "session.min_age",
	"session_simulated_dob":    "session.simulated_dob",

	"jwt_secret":                  "security.jwt_secret",
	"admin_token":                 "security.admin_token",
	"bcrypt_cost":                 "security.bcrypt_cost",
	"min_password_length":         "security.min_password_length",
	"rate_limit_requests":         "security.rate_limit_requests",
	"rate_limit_window":           "security.rate_limit_window",
	"session_rate_limit_requests": "security.session_rate_limit_requests",
	"disable_rate_limit":          "security.rate_limit_disabled",
	"cors_origins":                "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
