// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
)

// HealthLive reports that the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, r, http.StatusOK, h.health("ok"), start)
}

// HealthReady reports 200 once a catalog snapshot is installed.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := h.health("ready")
	if !resp.CatalogLoaded {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeNotReady, "catalog not loaded yet", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, resp, start)
}

func (h *Handler) health(status string) *models.HealthResponse {
	resp := &models.HealthResponse{
		Status:  status,
		Version: Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}
	if snap, ok := h.catalog.Snapshot(); ok {
		loadedAt := snap.LoadedAt
		resp.CatalogLoaded = true
		resp.CatalogMovies = snap.Len()
		resp.CatalogLoadedAt = &loadedAt
	}
	return resp
}
