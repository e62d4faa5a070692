// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package catalog loads the movie catalog and its similarity matrix from
// remote blob storage, verifies and validates them, and serves an immutable
// Snapshot.
//
// Loading is memoized: the first Load does the work under a mutex and
// later calls return the published snapshot without locking. A failed load
// is not memoized. Reload replaces the snapshot atomically and keeps the
// previous one serving if the new load fails.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/reelmatch/internal/events"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// Load triggers.
const (
	TriggerInitial = "initial"
	TriggerReload  = "reload"
	TriggerRefresh = "refresh"
)

// Config configures a Store.
type Config struct {
	Dir          string
	FetchTimeout time.Duration
	Catalog      BlobSpec
	Similarity   BlobSpec
}

// ReloadPublisher receives one event per load attempt.
type ReloadPublisher interface {
	PublishCatalogReload(ctx context.Context, evt events.CatalogReloaded)
}

// Option customizes a Store.
type Option func(*Store)

// WithHTTPClient overrides the client used for blob downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		s.fetcher.client = client
	}
}

// WithPublisher sets where load events go.
func WithPublisher(p ReloadPublisher) Option {
	return func(s *Store) {
		s.publisher = p
	}
}

// Store owns the current catalog snapshot.
type Store struct {
	cfg       Config
	fetcher   *fetcher
	publisher ReloadPublisher

	// mu serializes loads; current is read without it.
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store. Nothing is fetched until Load.
func NewStore(cfg Config, opts ...Option) *Store {
	if cfg.Catalog.Name == "" {
		cfg.Catalog.Name = BlobCatalog
	}
	if cfg.Similarity.Name == "" {
		cfg.Similarity.Name = BlobSimilarity
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 2 * time.Minute
	}

	s := &Store{
		cfg: cfg,
		fetcher: &fetcher{
			dir:     cfg.Dir,
			client:  &http.Client{},
			timeout: cfg.FetchTimeout,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the snapshot, loading it on first use. Concurrent first
// callers wait for a single load. Errors wrap ErrDataUnavailable or
// ErrCorruptData and are not cached.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.loadLocked(ctx, TriggerInitial)
}

// Reload loads fresh data and swaps it in. On failure the previous
// snapshot, if any, keeps serving and the error is returned.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	return s.reload(ctx, TriggerReload)
}

// Refresh is Reload with the periodic trigger label.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	return s.reload(ctx, TriggerRefresh)
}

func (s *Store) reload(ctx context.Context, trigger string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx, trigger)
}

// Snapshot returns the current snapshot without blocking.
func (s *Store) Snapshot() (*Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

func (s *Store) loadLocked(ctx context.Context, trigger string) (*Snapshot, error) {
	start := time.Now()
	log := logging.Ctx(ctx).With().Str("component", "catalog").Str("trigger", trigger).Logger()

	snap, err := s.build(ctx)
	took := time.Since(start)
	outcome := Outcome(err)

	size := 0
	if snap != nil {
		size = snap.Len()
	}
	metrics.RecordCatalogLoad(trigger, outcome, took, size)

	evt := events.CatalogReloaded{
		Trigger:    trigger,
		Outcome:    outcome,
		Movies:     size,
		DurationMS: took.Milliseconds(),
	}

	if err != nil {
		evt.Error = err.Error()
		s.publish(ctx, evt)
		e := log.Error().Err(err).Dur("took", took)
		if prev := s.current.Load(); prev != nil {
			e = e.Int("serving_movies", prev.Len())
		}
		e.Msg("Catalog load failed")
		return nil, err
	}

	s.current.Store(snap)
	s.publish(ctx, evt)

	log.Info().
		Int("movies", snap.Len()).
		Int("duplicate_titles", snap.Duplicates).
		Dur("took", took).
		Msg("Catalog loaded")
	return snap, nil
}

func (s *Store) publish(ctx context.Context, evt events.CatalogReloaded) {
	if s.publisher != nil {
		s.publisher.PublishCatalogReload(ctx, evt)
	}
}

// build runs fetch, checksum, decode and validation for both blobs.
func (s *Store) build(ctx context.Context) (*Snapshot, error) {
	catInfo, err := s.fetcher.ensure(ctx, s.cfg.Catalog)
	if err != nil {
		return nil, err
	}
	simInfo, err := s.fetcher.ensure(ctx, s.cfg.Similarity)
	if err != nil {
		return nil, err
	}

	catData, err := os.ReadFile(catInfo.Path)
	if err != nil {
		return nil, unavailable(BlobCatalog, "read %s: %v", catInfo.Path, err)
	}
	movies, err := DecodeCatalog(catData)
	if err != nil {
		return nil, err
	}

	simData, err := os.ReadFile(simInfo.Path)
	if err != nil {
		return nil, unavailable(BlobSimilarity, "read %s: %v", simInfo.Path, err)
	}
	flat, err := DecodeMatrix(simData)
	if err != nil {
		return nil, err
	}

	snap, err := newSnapshot(movies, flat)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	snap.Sources[BlobCatalog] = catInfo
	snap.Sources[BlobSimilarity] = simInfo
	return snap, nil
}
