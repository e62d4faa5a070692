// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package enrich decorates catalog movies with poster art and a rating from
// the movie metadata API. Enrichment is best effort: Enricher.Enrich always
// returns usable metadata and falls back to a placeholder poster with a zero
// rating when the lookup fails for any reason.
package enrich

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

const (
	DefaultImageBaseURL   = "https://image.tmdb.org/t/p/w500"
	DefaultPlaceholderURL = "https://via.placeholder.com/200"

	cacheName = "enrichment"
)

// Metadata is what a recommendation item shows besides title and score.
type Metadata struct {
	PosterURL string  `json:"poster_url"`
	Rating    float64 `json:"rating"`
	Enriched  bool    `json:"enriched"`
}

// MovieFetcher is satisfied by *Client.
type MovieFetcher interface {
	FetchMovie(ctx context.Context, id int64) (*MovieDetails, error)
}

// Config configures an Enricher.
type Config struct {
	ImageBaseURL   string
	PlaceholderURL string

	// CacheTTL overrides the cache default for successful lookups.
	CacheTTL time.Duration
}

// Enricher resolves Metadata for movie ids.
type Enricher struct {
	fetcher MovieFetcher
	cache   cache.Cacher
	cfg     Config
	logger  zerolog.Logger
}

// NewEnricher builds an Enricher. A nil fetcher disables upstream lookups
// and every movie gets the placeholder; a nil cache disables caching.
func NewEnricher(fetcher MovieFetcher, c cache.Cacher, cfg Config) *Enricher {
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.PlaceholderURL == "" {
		cfg.PlaceholderURL = DefaultPlaceholderURL
	}
	return &Enricher{
		fetcher: fetcher,
		cache:   c,
		cfg:     cfg,
		logger:  logging.WithComponent("enrich"),
	}
}

// Placeholder is the metadata served when a lookup fails.
func (e *Enricher) Placeholder() Metadata {
	return Metadata{PosterURL: e.cfg.PlaceholderURL}
}

// Enrich returns poster and rating for id. It never fails.
func (e *Enricher) Enrich(ctx context.Context, id int64) (md Metadata) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Int64("movie_id", id).Interface("panic", r).Msg("Enrichment panicked; serving placeholder")
			metrics.RecordEnrichment("panic")
			md = e.Placeholder()
		}
	}()

	if e.fetcher == nil {
		metrics.RecordEnrichment("disabled")
		return e.Placeholder()
	}

	key := cacheKey(id)
	if cached, ok := e.fromCache(key); ok {
		metrics.RecordEnrichment("cached")
		return cached
	}

	details, err := e.fetcher.FetchMovie(ctx, id)
	if err == nil && (details == nil || details.VoteAverage == nil) {
		err = &FetchError{Kind: KindMalformed, MovieID: id}
	}
	if err != nil {
		kind := KindOf(err)
		if kind == "" {
			kind = KindTransport
		}
		logging.Ctx(ctx).Warn().
			Str("component", "enrich").
			Int64("movie_id", id).
			Str("kind", string(kind)).
			Err(err).
			Msg("Metadata lookup failed; serving placeholder")
		metrics.RecordEnrichment(string(kind))
		return e.Placeholder()
	}

	md = Metadata{
		PosterURL: e.posterURL(details.PosterPath),
		Rating:    roundRating(*details.VoteAverage),
		Enriched:  true,
	}
	e.store(key, md)
	metrics.RecordEnrichment("success")
	return md
}

func (e *Enricher) fromCache(key string) (Metadata, bool) {
	if e.cache == nil {
		return Metadata{}, false
	}
	v, ok := e.cache.Get(key)
	if !ok {
		metrics.RecordCacheMiss(cacheName)
		return Metadata{}, false
	}

	var raw []byte
	switch val := v.(type) {
	case []byte:
		raw = val
	case string:
		raw = []byte(val)
	default:
		e.cache.Delete(key)
		metrics.RecordCacheMiss(cacheName)
		return Metadata{}, false
	}

	var md Metadata
	if err := json.Unmarshal(raw, &md); err != nil {
		e.logger.Debug().Str("key", key).Err(err).Msg("Dropping undecodable cache entry")
		e.cache.Delete(key)
		metrics.RecordCacheMiss(cacheName)
		return Metadata{}, false
	}
	metrics.RecordCacheHit(cacheName)
	return md, true
}

func (e *Enricher) store(key string, md Metadata) {
	if e.cache == nil {
		return
	}
	raw, err := json.Marshal(md)
	if err != nil {
		return
	}
	if e.cfg.CacheTTL > 0 {
		e.cache.SetWithTTL(key, raw, e.cfg.CacheTTL)
		return
	}
	e.cache.Set(key, raw)
}

func (e *Enricher) posterURL(path string) string {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return e.cfg.PlaceholderURL
	}
	return strings.TrimRight(e.cfg.ImageBaseURL, "/") + "/" + path
}

func cacheKey(id int64) string {
	return "movie:" + strconv.FormatInt(id, 10)
}

// roundRating rounds to one decimal and clamps to [0,10].
func roundRating(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Round(v*10) / 10
	return math.Max(0, math.Min(10, v))
}
