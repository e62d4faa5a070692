// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package main is the entry point for the Reelmatch server.

Reelmatch answers "movies similar to X" from a precomputed similarity
matrix, enriches each neighbor with poster and rating data from TMDB, and
gates access behind an age check and an account.

Initialization order:

 1. Configuration: koanf v2 (defaults, optional YAML, environment)
 2. Logging: zerolog
 3. BadgerDB under DATA_DIR for accounts and, optionally, sessions
 4. Enrichment cache (memory or Redis) and the TMDB client
 5. Catalog store, recommender and recommendation service
 6. Session manager, token codec and Casbin enforcer
 7. Watermill event bus and the audit consumer
 8. Supervisor tree, then the HTTP server

The process exits when SIGINT or SIGTERM cancels the root context and the
supervisor tree has drained.

# Configuration

Common environment variables:

	HTTP_PORT          listen port (default 8501)
	DATA_DIR           BadgerDB directory
	CATALOG_URL        movie list blob
	SIMILARITY_URL     similarity matrix blob
	TMDB_API_KEY       empty disables enrichment lookups
	CACHE_BACKEND      memory or redis
	REDIS_ADDR         required when CACHE_BACKEND=redis
	SESSION_STORE      memory or badger
	JWT_SECRET         empty generates an ephemeral key
	ADMIN_TOKEN        enables POST /api/v1/catalog/reload
	LOG_LEVEL          trace through panic
*/
package main
