// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
)

// Recommendations returns the enriched neighbors of ?title=. A missing k
// selects the configured default; k above the configured maximum is
// rejected rather than truncated.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	k, ok := queryInt(r, "k", h.defaultK)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "k must be an integer", nil)
		return
	}
	query := models.RecommendationQuery{Title: r.URL.Query().Get("title"), K: k}
	if !validateRequest(w, r, &query) {
		return
	}
	if query.K > h.maxK {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation,
			fmt.Sprintf("k must be at most %d", h.maxK), map[string]interface{}{"max_k": h.maxK})
		return
	}

	resp, err := h.recs.Recommendations(r.Context(), query.Title, query.K)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, resp, start)
}
