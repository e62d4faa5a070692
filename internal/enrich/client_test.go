// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testAPIKey = "k3y-0123456789"

func testClient(t *testing.T, baseURL string, mutate func(*ClientConfig)) *Client {
	t.Helper()
	cfg := ClientConfig{
		BaseURL:            baseURL,
		APIKey:             testAPIKey,
		Timeout:            2 * time.Second,
		BreakerName:        "tmdb-" + t.Name(),
		BreakerMaxRequests: 1,
		BreakerTimeout:     time.Hour,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg, nil)
}

func TestFetchMovie_Success(t *testing.T) {
	var gotPath, gotKey, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		gotLang = r.URL.Query().Get("language")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":19995,"poster_path":"/kyeqWdyUXW608qlYkRqosgbbJyK.jpg","vote_average":7.573}`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL+"/3/", nil)
	details, err := c.FetchMovie(context.Background(), 19995)
	if err != nil {
		t.Fatalf("FetchMovie() error = %v", err)
	}
	if gotPath != "/3/movie/19995" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != testAPIKey || gotLang != "en-US" {
		t.Errorf("query api_key=%q language=%q", gotKey, gotLang)
	}
	if details.PosterPath != "/kyeqWdyUXW608qlYkRqosgbbJyK.jpg" || *details.VoteAverage != 7.573 {
		t.Errorf("details = %+v", details)
	}
	if c.State() != "closed" {
		t.Errorf("State() = %q", c.State())
	}
}

func TestFetchMovie_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   FailureKind
		wantStatus int
	}{
		{"not found", http.StatusNotFound, `{"status_code":34}`, KindStatus, 404},
		{"server error", http.StatusBadGateway, ``, KindStatus, 502},
		{"invalid json", http.StatusOK, `{"vote_average":`, KindMalformed, 0},
		{"missing rating", http.StatusOK, `{"poster_path":"/a.jpg"}`, KindMalformed, 0},
		{"rating out of range", http.StatusOK, `{"vote_average":11.5}`, KindMalformed, 0},
		{"negative rating", http.StatusOK, `{"vote_average":-1}`, KindMalformed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := testClient(t, srv.URL, nil).FetchMovie(context.Background(), 42)
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *FetchError", err)
			}
			if fe.Kind != tt.wantKind || fe.StatusCode != tt.wantStatus || fe.MovieID != 42 {
				t.Errorf("FetchError = %+v, want kind %s status %d", fe, tt.wantKind, tt.wantStatus)
			}
			if !errors.Is(err, ErrFetch) {
				t.Error("errors.Is(err, ErrFetch) = false")
			}
		})
	}
}

func TestFetchMovie_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testClient(t, srv.URL, nil).FetchMovie(ctx, 7)
	if got := KindOf(err); got != KindTimeout {
		t.Fatalf("kind = %q (err %v), want timeout", got, err)
	}
}

func TestFetchMovie_TransportErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(t, url, nil).FetchMovie(context.Background(), 7)
	if got := KindOf(err); got != KindTransport {
		t.Fatalf("kind = %q (err %v), want transport", got, err)
	}
	if strings.Contains(err.Error(), testAPIKey) {
		t.Errorf("error leaks api key: %v", err)
	}
	if !strings.Contains(err.Error(), "REDACTED") {
		t.Errorf("error %v should carry the redacted marker", err)
	}
}

func TestFetchMovie_CircuitOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	for i := 0; i < 10; i++ {
		if got := KindOf(mustFail(t, c)); got != KindStatus {
			t.Fatalf("call %d kind = %q, want status", i, got)
		}
	}

	if got := KindOf(mustFail(t, c)); got != KindCircuitOpen {
		t.Fatalf("kind after 10 failures = %q, want circuit_open", got)
	}
	if hits.Load() != 10 {
		t.Errorf("upstream hits = %d, want 10", hits.Load())
	}
	if c.State() != "open" {
		t.Errorf("State() = %q, want open", c.State())
	}
}

func TestFetchMovie_NotFoundDoesNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := testClient(t, srv.URL, nil)
	for i := 0; i < 15; i++ {
		if got := KindOf(mustFail(t, c)); got != KindStatus {
			t.Fatalf("call %d kind = %q, want status", i, got)
		}
	}
	if c.State() != "closed" {
		t.Errorf("State() = %q, want closed", c.State())
	}
}

func TestFetchMovie_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"vote_average":5}`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, func(cfg *ClientConfig) {
		cfg.RequestsPerSecond = 0.001
		cfg.Burst = 1
	})
	if _, err := c.FetchMovie(context.Background(), 1); err != nil {
		t.Fatalf("first call error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.FetchMovie(ctx, 2)
	if got := KindOf(err); got != KindRateLimited {
		t.Fatalf("kind = %q (err %v), want rate_limited", got, err)
	}
}

func TestBreakerSuccess(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{&FetchError{Kind: KindStatus, StatusCode: 404}, true},
		{&FetchError{Kind: KindStatus, StatusCode: 429}, false},
		{&FetchError{Kind: KindStatus, StatusCode: 500}, false},
		{&FetchError{Kind: KindTimeout}, false},
		{&FetchError{Kind: KindMalformed}, false},
		{&FetchError{Kind: KindTransport, Err: context.Canceled}, true},
		{&FetchError{Kind: KindTransport, Err: errors.New("connection refused")}, false},
		{errors.New("other"), false},
	}
	for _, tt := range tests {
		if got := breakerSuccess(tt.err); got != tt.want {
			t.Errorf("breakerSuccess(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestFetchErrorMessage(t *testing.T) {
	tests := []struct {
		err  *FetchError
		want string
	}{
		{&FetchError{Kind: KindStatus, MovieID: 3, StatusCode: 401}, "movie 3: status: unexpected status 401"},
		{&FetchError{Kind: KindMalformed, MovieID: 3, Err: errors.New("bad")}, "movie 3: malformed: bad"},
		{&FetchError{Kind: KindCircuitOpen, MovieID: 3}, "movie 3: circuit_open"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func mustFail(t *testing.T, c *Client) error {
	t.Helper()
	_, err := c.FetchMovie(context.Background(), 99)
	if err == nil {
		t.Fatal("FetchMovie() succeeded, want error")
	}
	return err
}
