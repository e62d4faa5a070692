// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

import "time"

// SessionResponse describes a visitor session. Token is only set when the
// session is created.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token,omitempty"`
}

// MovieSummary is one catalog entry in a listing.
type MovieSummary struct {
	ID    int64  `json:"movie_id"`
	Title string `json:"title"`
}

// MovieListResponse is the body of GET /api/v1/movies.
type MovieListResponse struct {
	Movies     []MovieSummary `json:"movies"`
	Pagination PaginationInfo `json:"pagination"`
}

// CatalogReloadResponse reports the snapshot produced by a reload.
type CatalogReloadResponse struct {
	Movies   int       `json:"movies"`
	LoadedAt time.Time `json:"loaded_at"`
	Duration int64     `json:"duration_ms"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status          string     `json:"status"`
	Version         string     `json:"version,omitempty"`
	CatalogLoaded   bool       `json:"catalog_loaded"`
	CatalogMovies   int        `json:"catalog_movies,omitempty"`
	CatalogLoadedAt *time.Time `json:"catalog_loaded_at,omitempty"`
	Uptime          float64    `json:"uptime_seconds"`
}
