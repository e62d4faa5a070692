// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/catalog"
)

// MaxWarmupBackoff caps the delay between failed initial loads.
const MaxWarmupBackoff = time.Minute

// CatalogLoader is satisfied by *catalog.Store.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Snapshot, error)
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// CatalogWarmupConfig configures a CatalogWarmupService.
type CatalogWarmupConfig struct {
	// Backoff is the delay after the first failed load. It doubles per
	// failure. Default: 2s
	Backoff time.Duration

	// MaxBackoff caps the delay. Values above MaxWarmupBackoff are lowered
	// to it. Default: MaxWarmupBackoff
	MaxBackoff time.Duration

	// RefreshInterval reloads the catalog periodically once loaded.
	// Zero disables refresh.
	RefreshInterval time.Duration
}

// CatalogWarmupService loads the catalog in the background so the API can
// start serving health checks immediately.
type CatalogWarmupService struct {
	loader CatalogLoader
	config CatalogWarmupConfig
	logger zerolog.Logger
	name   string

	// sleep waits for d or ctx; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCatalogWarmupService creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCatalogWarmupService(loader CatalogLoader, cfg CatalogWarmupConfig, logger zerolog.Logger) *CatalogWarmupService {
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	if cfg.MaxBackoff <= 0 || cfg.MaxBackoff > MaxWarmupBackoff {
		cfg.MaxBackoff = MaxWarmupBackoff
	}
	if cfg.Backoff > cfg.MaxBackoff {
		cfg.Backoff = cfg.MaxBackoff
	}
	return &CatalogWarmupService{
		loader: loader,
		config: cfg,
		logger: logger.With().Str("service", "catalog-warmup").Logger(),
		name:   "catalog-warmup",
		sleep:  sleepCtx,
	}
}

// Serve implements suture.Service. Load failures are retried here rather
// than returned, so the supervisor's failure budget is not spent on an
// unreachable blob host.
func (s *CatalogWarmupService) Serve(ctx context.Context) error {
	if err := s.warmup(ctx); err != nil {
		return err
	}

	if s.config.RefreshInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snap, err := s.loader.Refresh(ctx)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Catalog refresh failed, keeping previous snapshot")
				continue
			}
			s.logger.Debug().Int("movies", snap.Len()).Msg("Catalog refreshed")
		}
	}
}

func (s *CatalogWarmupService) warmup(ctx context.Context) error {
	backoff := s.config.Backoff
	for attempt := 1; ; attempt++ {
		start := time.Now()
		snap, err := s.loader.Load(ctx)
		if err == nil {
			s.logger.Info().
				Int("movies", snap.Len()).
				Int("attempt", attempt).
				Dur("duration", time.Since(start)).
				Msg("Catalog loaded")
			return nil
		}

		s.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Msg("Catalog load failed")

		if err := s.sleep(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
		if backoff > s.config.MaxBackoff {
			backoff = s.config.MaxBackoff
		}
	}
}

// String implements fmt.Stringer.
func (s *CatalogWarmupService) String() string {
	return s.name
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
