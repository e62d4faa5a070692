// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

func TestHealth(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	w, env := s.do(t, http.MethodGet, "/api/v1/health/live", "", "")
	if w.Code != http.StatusOK || env.Status != "success" {
		t.Fatalf("live: status = %d env = %+v", w.Code, env)
	}

	w, env = s.do(t, http.MethodGet, "/api/v1/health/ready", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ready: status = %d", w.Code)
	}
	var health models.HealthResponse
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatal(err)
	}
	if !health.CatalogLoaded || health.CatalogMovies != 4 || health.CatalogLoadedAt == nil {
		t.Errorf("health = %+v", health)
	}
}

func TestHealthReady_NoCatalog(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	s.catalog.snap = nil

	w, env := s.do(t, http.MethodGet, "/api/v1/health/ready", "", "")
	if w.Code != http.StatusServiceUnavailable || errorCode(env) != ErrCodeNotReady {
		t.Errorf("status = %d code = %q", w.Code, errorCode(env))
	}
	if w, _ := s.do(t, http.MethodGet, "/api/v1/health/live", "", ""); w.Code != http.StatusOK {
		t.Errorf("live without catalog: status = %d", w.Code)
	}
}

func TestMoviesList(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	token := s.registeredSession(t, "movies@example.org")

	tests := []struct {
		name       string
		query      string
		wantTitles []string
		wantTotal  int
		wantMore   bool
	}{
		{"all sorted", "", []string{"Avatar", "Pirates of the Caribbean: At World's End", "Spectre", "The Dark Knight Rises"}, 4, false},
		{"page", "?limit=2&offset=1", []string{"Pirates of the Caribbean: At World's End", "Spectre"}, 4, true},
		{"filter", "?q=the", []string{"Pirates of the Caribbean: At World's End", "The Dark Knight Rises"}, 2, false},
		{"past end", "?offset=10", []string{}, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, http.MethodGet, "/api/v1/movies"+tt.query, token, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d body %s", w.Code, w.Body.String())
			}
			var resp models.MovieListResponse
			if err := json.Unmarshal(env.Data, &resp); err != nil {
				t.Fatal(err)
			}
			titles := make([]string, 0, len(resp.Movies))
			for _, m := range resp.Movies {
				titles = append(titles, m.Title)
			}
			if fmt.Sprint(titles) != fmt.Sprint(tt.wantTitles) {
				t.Errorf("titles = %v, want %v", titles, tt.wantTitles)
			}
			if resp.Pagination.Total != tt.wantTotal || resp.Pagination.HasMore != tt.wantMore {
				t.Errorf("pagination = %+v", resp.Pagination)
			}
		})
	}
}

func TestMoviesList_BadParams(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	token := s.registeredSession(t, "params@example.org")

	for _, q := range []string{"?limit=abc", "?limit=0", "?limit=501", "?offset=-1", "?offset=x"} {
		t.Run(q, func(t *testing.T) {
			w, env := s.do(t, http.MethodGet, "/api/v1/movies"+q, token, "")
			if w.Code != http.StatusBadRequest || errorCode(env) != ErrCodeValidation {
				t.Errorf("status = %d code = %q", w.Code, errorCode(env))
			}
		})
	}
}

func TestMoviesList_CatalogUnavailable(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	token := s.registeredSession(t, "down@example.org")
	s.catalog.loadErr = &catalog.LoadError{Blob: "movies", Err: fmt.Errorf("%w: fetch failed", catalog.ErrDataUnavailable)}

	w, env := s.do(t, http.MethodGet, "/api/v1/movies", token, "")
	if w.Code != http.StatusServiceUnavailable || errorCode(env) != ErrCodeDataUnavailable {
		t.Errorf("status = %d code = %q", w.Code, errorCode(env))
	}
	if env.Error != nil && env.Error.Details["blob"] != "movies" {
		t.Errorf("details = %v", env.Error.Details)
	}
}

func TestRecommendations(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	token := s.registeredSession(t, "recs@example.org")
	s.recs.resp = &recommend.Response{
		Query: "Avatar",
		Items: []recommend.Item{
			{MovieID: 49026, Title: "The Dark Knight Rises", Score: 0.3, Enriched: true},
		},
		TotalCandidates: 3,
	}

	w, env := s.do(t, http.MethodGet, "/api/v1/recommendations?title=Avatar&k=1", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if s.recs.lastTitle != "Avatar" || s.recs.lastK != 1 {
		t.Errorf("called with (%q, %d)", s.recs.lastTitle, s.recs.lastK)
	}
	var resp recommend.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].MovieID != 49026 {
		t.Errorf("items = %+v", resp.Items)
	}

	s.do(t, http.MethodGet, "/api/v1/recommendations?title=Spectre", token, "")
	if s.recs.lastK != recommend.DefaultK {
		t.Errorf("default k = %d, want %d", s.recs.lastK, recommend.DefaultK)
	}

	// The largest accepted k reaches the service unchanged.
	query := fmt.Sprintf("/api/v1/recommendations?title=Spectre&k=%d", recommend.DefaultMaxK)
	if w, _ := s.do(t, http.MethodGet, query, token, ""); w.Code != http.StatusOK {
		t.Fatalf("k=max status = %d", w.Code)
	}
	if s.recs.lastK != recommend.DefaultMaxK {
		t.Errorf("k = %d, want %d", s.recs.lastK, recommend.DefaultMaxK)
	}
}

func TestRecommendations_KAboveMaxRejected(t *testing.T) {
	tests := []struct {
		name  string
		maxK  int
		query string
	}{
		{"default max", 0, fmt.Sprintf("?title=Avatar&k=%d", recommend.DefaultMaxK+1)},
		{"far above default max", 0, "?title=Avatar&k=1000"},
		{"configured max", 3, "?title=Avatar&k=4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, serverOptions{maxK: tt.maxK})
			token := s.registeredSession(t, "maxk@example.org")

			w, env := s.do(t, http.MethodGet, "/api/v1/recommendations"+tt.query, token, "")
			if w.Code != http.StatusBadRequest || errorCode(env) != ErrCodeValidation {
				t.Errorf("status = %d code = %q, want 400 %s", w.Code, errorCode(env), ErrCodeValidation)
			}
			if s.recs.lastTitle != "" {
				t.Error("service called despite k above max")
			}
		})
	}
}

func TestRecommendations_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing title", "", nil, http.StatusBadRequest, ErrCodeValidation},
		{"non-integer k", "?title=Avatar&k=five", nil, http.StatusBadRequest, ErrCodeValidation},
		{"negative k", "?title=Avatar&k=-1", nil, http.StatusBadRequest, ErrCodeValidation},
		{"zero k", "?title=Avatar&k=0", nil, http.StatusBadRequest, ErrCodeValidation},
		{"unknown title", "?title=Nope", fmt.Errorf("rank: %w", recommend.ErrNotFound), http.StatusNotFound, ErrCodeNotFound},
		{"data unavailable", "?title=Avatar", catalog.ErrDataUnavailable, http.StatusServiceUnavailable, ErrCodeDataUnavailable},
		{"corrupt data", "?title=Avatar", catalog.ErrCorruptData, http.StatusInternalServerError, ErrCodeCorruptData},
		{"unexpected", "?title=Avatar", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, serverOptions{})
			token := s.registeredSession(t, "errs@example.org")
			s.recs.err = tt.err

			w, env := s.do(t, http.MethodGet, "/api/v1/recommendations"+tt.query, token, "")
			if w.Code != tt.wantStatus || errorCode(env) != tt.wantCode {
				t.Errorf("status = %d code = %q, want %d %s", w.Code, errorCode(env), tt.wantStatus, tt.wantCode)
			}
			if tt.wantCode == ErrCodeInternal && env.Error != nil && env.Error.Message == "boom" {
				t.Error("internal error text leaked to client")
			}
		})
	}
}

func TestCatalogReload(t *testing.T) {
	s := newTestServer(t, serverOptions{adminToken: testAdminToken})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/reload", nil)
	if w, env := s.send(t, req); w.Code != http.StatusUnauthorized || errorCode(env) != ErrCodeAuthentication {
		t.Errorf("no token: status = %d code = %q", w.Code, errorCode(env))
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/catalog/reload", nil)
	req.Header.Set(AdminTokenHeader, "wrong")
	if w, _ := s.send(t, req); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/catalog/reload", nil)
	req.Header.Set(AdminTokenHeader, testAdminToken)
	w, env := s.send(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("reload: status = %d body %s", w.Code, w.Body.String())
	}
	var resp models.CatalogReloadResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Movies != 4 || s.catalog.reloads != 1 {
		t.Errorf("resp = %+v reloads = %d", resp, s.catalog.reloads)
	}

	// A session token is not an operator credential.
	token := s.registeredSession(t, "notop@example.org")
	if w, _ := s.do(t, http.MethodPost, "/api/v1/catalog/reload", token, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("session token on reload: status = %d", w.Code)
	}
}

func TestCatalogReload_Failure(t *testing.T) {
	s := newTestServer(t, serverOptions{adminToken: testAdminToken})
	s.catalog.reloadErr = fmt.Errorf("%w: bad matrix", catalog.ErrCorruptData)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/reload", nil)
	req.Header.Set(AdminTokenHeader, testAdminToken)
	w, env := s.send(t, req)
	if w.Code != http.StatusInternalServerError || errorCode(env) != ErrCodeCorruptData {
		t.Errorf("status = %d code = %q", w.Code, errorCode(env))
	}
}

func TestCatalogReload_DisabledWithoutAdminToken(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/reload", nil)
	req.Header.Set(AdminTokenHeader, "")
	if w, env := s.send(t, req); w.Code != http.StatusNotFound || errorCode(env) != ErrCodeNotFound {
		t.Errorf("status = %d code = %q", w.Code, errorCode(env))
	}
}
