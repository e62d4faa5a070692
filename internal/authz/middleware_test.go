// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware_AuthorizeRequest(t *testing.T) {
	e := newTestEnforcer(t)

	subjectFromHeader := func(r *http.Request) string { return r.Header.Get("X-Test-Subject") }
	var deniedWith int
	deny := func(w http.ResponseWriter, _ *http.Request, status int) {
		deniedWith = status
		w.WriteHeader(status)
	}
	m := NewMiddleware(e, subjectFromHeader, deny)

	tests := []struct {
		name       string
		subject    string
		method     string
		path       string
		wantStatus int
		wantCalled bool
	}{
		{"registered lists movies", "registered", http.MethodGet, "/api/v1/movies", http.StatusOK, true},
		{"age verified cannot list", "age_verified", http.MethodGet, "/api/v1/movies", http.StatusForbidden, false},
		{"no subject", "", http.MethodGet, "/api/v1/session", http.StatusForbidden, false},
		{"operator reloads", "operator", http.MethodPost, "/api/v1/catalog/reload", http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			deniedWith = 0
			h := m.AuthorizeRequest(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("X-Test-Subject", tt.subject)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if !tt.wantCalled && deniedWith != tt.wantStatus {
				t.Errorf("deny status = %d", deniedWith)
			}
		})
	}
}

func TestMiddleware_DefaultDeny(t *testing.T) {
	m := NewMiddleware(newTestEnforcer(t), func(*http.Request) string { return "" }, nil)
	rec := httptest.NewRecorder()
	m.AuthorizeRequest(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
