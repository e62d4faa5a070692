// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/reelmatch/internal/models"
)

const defaultMovieLimit = 50

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MoviesList pages through catalog titles in collated order.
func (h *Handler) MoviesList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, ok := queryInt(r, "limit", defaultMovieLimit)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "limit must be an integer", nil)
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "offset must be an integer", nil)
		return
	}
	query := models.MovieListQuery{Q: r.URL.Query().Get("q"), Limit: limit, Offset: offset}
	if !validateRequest(w, r, &query) {
		return
	}

	snap, err := h.catalog.Load(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	idx, total := snap.Search(query.Q, query.Limit, query.Offset)
	movies := make([]models.MovieSummary, 0, len(idx))
	for _, i := range idx {
		m := snap.Movie(i)
		movies = append(movies, models.MovieSummary{ID: m.ID, Title: m.Title})
	}

	respondSuccess(w, r, http.StatusOK, &models.MovieListResponse{
		Movies: movies,
		Pagination: models.PaginationInfo{
			Limit:   query.Limit,
			Offset:  query.Offset,
			Total:   total,
			HasMore: query.Offset+len(movies) < total,
		},
	}, start)
}
