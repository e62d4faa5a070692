// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"fmt"
	"net/url"
)

const (
	// DefaultK is the neighbor count used when a request does not name one.
	DefaultK = 6

	// DefaultMaxK is the largest k the HTTP API accepts.
	DefaultMaxK = 50

	DefaultEnrichConcurrency = 6
	DefaultDetailBaseURL     = "https://www.themoviedb.org/movie"
)

// Config contains the enrichment settings.
type Config struct {
	// EnrichConcurrency bounds parallel metadata lookups per request.
	EnrichConcurrency int `json:"enrich_concurrency"`

	// DetailBaseURL prefixes the movie id in each item's detail link.
	DetailBaseURL string `json:"detail_base_url"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		EnrichConcurrency: DefaultEnrichConcurrency,
		DetailBaseURL:     DefaultDetailBaseURL,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.EnrichConcurrency < 1 {
		return fmt.Errorf("enrich_concurrency must be at least 1, got %d", c.EnrichConcurrency)
	}
	u, err := url.Parse(c.DetailBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("detail_base_url %q is not an absolute URL", c.DetailBaseURL)
	}
	return nil
}
