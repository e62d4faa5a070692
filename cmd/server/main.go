// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/reelmatch/internal/accounts"
	"github.com/tomtom215/reelmatch/internal/api"
	"github.com/tomtom215/reelmatch/internal/authz"
	"github.com/tomtom215/reelmatch/internal/cache"
	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/enrich"
	"github.com/tomtom215/reelmatch/internal/events"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/session"
	"github.com/tomtom215/reelmatch/internal/supervisor"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", api.Version).
		Str("data_dir", cfg.Server.DataDir).
		Str("session_store", cfg.Session.Store).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("enrichment", cfg.TMDB.APIKey != "").
		Msg("Starting Reelmatch")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Reelmatch stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential wiring
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === STORAGE ===

	db, err := openBadger(cfg.Server.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing BadgerDB")
		}
	}()

	// === ENRICHMENT ===

	cacher, err := cache.NewCacher(cacheConfig(cfg))
	if err != nil {
		return fmt.Errorf("enrichment cache: %w", err)
	}
	defer closeCache(cacher)

	var fetcher enrich.MovieFetcher
	if cfg.TMDB.APIKey != "" {
		fetcher = enrich.NewClient(enrich.ClientConfig{
			BaseURL:            cfg.TMDB.BaseURL,
			APIKey:             cfg.TMDB.APIKey,
			Language:           cfg.TMDB.Language,
			Timeout:            cfg.TMDB.Timeout,
			RequestsPerSecond:  cfg.TMDB.RequestsPerSecond,
			Burst:              cfg.TMDB.Burst,
			BreakerMaxRequests: cfg.TMDB.BreakerMaxRequests,
			BreakerInterval:    cfg.TMDB.BreakerInterval,
			BreakerTimeout:     cfg.TMDB.BreakerTimeout,
		}, nil)
	} else {
		logging.Warn().Msg("TMDB_API_KEY not set, recommendations will use placeholder posters")
	}
	enricher := enrich.NewEnricher(fetcher, cacher, enrich.Config{
		ImageBaseURL:   cfg.TMDB.ImageBaseURL,
		PlaceholderURL: cfg.TMDB.PlaceholderURL,
		CacheTTL:       cfg.Cache.TTL,
	})

	// === EVENTS ===

	bus := events.NewBus(events.DefaultBusConfig())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	// === CATALOG & RECOMMENDATIONS ===

	store := catalog.NewStore(catalog.Config{
		Dir:          cfg.Catalog.Dir,
		FetchTimeout: cfg.Catalog.FetchTimeout,
		Catalog: catalog.BlobSpec{
			URL:    cfg.Catalog.Catalog.URL,
			SHA256: cfg.Catalog.Catalog.SHA256,
			File:   cfg.Catalog.Catalog.File,
		},
		Similarity: catalog.BlobSpec{
			URL:    cfg.Catalog.Similarity.URL,
			SHA256: cfg.Catalog.Similarity.SHA256,
			File:   cfg.Catalog.Similarity.File,
		},
	}, catalog.WithPublisher(bus))

	recCfg := recommend.DefaultConfig()
	recCfg.EnrichConcurrency = cfg.Recommend.EnrichConcurrency
	recCfg.DetailBaseURL = cfg.TMDB.DetailBaseURL
	recommender, err := recommend.NewRecommender(store, recCfg, logging.WithComponent("recommend"))
	if err != nil {
		return fmt.Errorf("recommender: %w", err)
	}
	recs := recommend.NewService(recommender, enricher)

	// === SESSIONS & ACCESS ===

	creds := accounts.NewStore(db, accounts.Config{
		BcryptCost:        cfg.Security.BcryptCost,
		MinPasswordLength: cfg.Security.MinPasswordLength,
	})

	sessionStore, cleaner := newSessionStore(cfg.Session.Store, db)

	dob, err := session.NewSimulatedDOB(cfg.Session.SimulatedDOB)
	if err != nil {
		return err
	}
	sessions, err := session.NewManager(sessionStore, dob, creds, bus, session.Config{
		TTL:    cfg.Session.TTL,
		MinAge: cfg.Session.MinAge,
	})
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}

	if cfg.Security.JWTSecret == "" {
		logging.Warn().Msg("JWT_SECRET not set, session tokens will not survive a restart")
	}
	tokens, err := session.NewTokens(cfg.Security.JWTSecret, cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("session tokens: %w", err)
	}

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return fmt.Errorf("authz enforcer: %w", err)
	}
	defer enforcer.Close()

	if cfg.Security.AdminToken == "" {
		logging.Info().Msg("ADMIN_TOKEN not set, catalog reload endpoint disabled")
	}

	// === HTTP ===

	handler := api.NewHandler(api.HandlerDeps{
		Catalog:    store,
		Recs:       recs,
		Sessions:   sessions,
		Tokens:     tokens,
		AdminToken: cfg.Security.AdminToken,
		DefaultK:   cfg.Recommend.DefaultK,
		MaxK:       cfg.Recommend.MaxK,
	})
	router := api.NewRouter(handler, enforcer, &api.ChiMiddlewareConfig{
		CORSAllowedOrigins:       cfg.Security.CORSOrigins,
		CORSMaxAge:               86400,
		RateLimitRequests:        cfg.Security.RateLimitReqs,
		RateLimitWindow:          cfg.Security.RateLimitWindow,
		SessionRateLimitRequests: cfg.Security.SessionRateLimitReqs,
		RateLimitDisabled:        cfg.Security.RateLimitDisabled,
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	tree.AddDataService(services.NewCatalogWarmupService(store, services.CatalogWarmupConfig{
		Backoff:         cfg.Catalog.WarmupBackoff,
		MaxBackoff:      cfg.Catalog.WarmupMaxWait,
		RefreshInterval: cfg.Catalog.RefreshInterval,
	}, logging.Logger()))
	tree.AddDataService(services.NewSessionCleanupService(cleaner, cfg.Session.CleanupInterval))
	tree.AddMessagingService(events.NewAuditConsumer(bus))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree...")
	err = tree.Serve(ctx)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	return nil
}

func openBadger(dir string) (*badger.DB, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	logging.Info().Str("path", dir).Msg("BadgerDB opened")
	return db, nil
}

func cacheConfig(cfg *config.Config) cache.CacheConfig {
	cc := cache.CacheConfig{
		Type:     cache.CacheType(cfg.Cache.Type),
		TTL:      cfg.Cache.TTL,
		Capacity: cfg.Cache.Capacity,
	}
	if cfg.Cache.Backend == "redis" {
		cc.Type = cache.CacheTypeRedis
		cc.Redis = cache.RedisOptions{
			Addr:      cfg.Cache.RedisAddr,
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.KeyPrefix,
		}
	}
	return cc
}

func closeCache(c cache.Cacher) {
	switch v := c.(type) {
	case *cache.RedisCache:
		if err := v.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing Redis cache")
		}
	case *cache.Cache:
		v.Close()
	}
}

// sessionStoreWithCleanup is a session store that can purge expired entries.
type sessionStoreWithCleanup interface {
	session.Store
	session.Cleaner
}

func newSessionStore(kind string, db *badger.DB) (session.Store, session.Cleaner) {
	var s sessionStoreWithCleanup
	if kind == "badger" {
		s = session.NewBadgerStore(db)
	} else {
		s = session.NewMemoryStore()
	}
	return s, s
}
