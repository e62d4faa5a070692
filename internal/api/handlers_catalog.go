// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/models"
)

// CatalogReload rebuilds the catalog from its sources. The previous
// snapshot keeps serving when the reload fails.
func (h *Handler) CatalogReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snap, err := h.catalog.Reload(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	elapsed := time.Since(start)
	logging.Ctx(r.Context()).Info().
		Int("movies", snap.Len()).
		Dur("duration", elapsed).
		Msg("Catalog reloaded by operator")

	respondSuccess(w, r, http.StatusOK, &models.CatalogReloadResponse{
		Movies:   snap.Len(),
		LoadedAt: snap.LoadedAt,
		Duration: elapsed.Milliseconds(),
	}, start)
}
