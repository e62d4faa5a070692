// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package enrich

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/reelmatch/internal/cache"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	details map[int64]*MovieDetails
	err     error
	panicOn int64
}

func (f *fakeFetcher) FetchMovie(_ context.Context, id int64) (*MovieDetails, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if id == f.panicOn && id != 0 {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, &FetchError{Kind: KindStatus, MovieID: id, StatusCode: 404}
	}
	return d, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func rating(v float64) *float64 { return &v }

func TestEnrich_Success(t *testing.T) {
	f := &fakeFetcher{details: map[int64]*MovieDetails{
		19995: {PosterPath: "/kyeqWdyUXW608qlYkRqosgbbJyK.jpg", VoteAverage: rating(7.573)},
	}}
	e := NewEnricher(f, nil, Config{})

	md := e.Enrich(context.Background(), 19995)
	want := Metadata{
		PosterURL: "https://image.tmdb.org/t/p/w500/kyeqWdyUXW608qlYkRqosgbbJyK.jpg",
		Rating:    7.6,
		Enriched:  true,
	}
	if md != want {
		t.Errorf("Enrich() = %+v, want %+v", md, want)
	}
}

func TestEnrich_Failures(t *testing.T) {
	tests := []struct {
		name string
		f    *fakeFetcher
		id   int64
	}{
		{"not found", &fakeFetcher{}, 1},
		{"timeout", &fakeFetcher{err: &FetchError{Kind: KindTimeout, Err: context.DeadlineExceeded}}, 2},
		{"untyped error", &fakeFetcher{err: errors.New("weird")}, 3},
		{"nil details", &fakeFetcher{details: map[int64]*MovieDetails{4: nil}}, 4},
		{"missing rating", &fakeFetcher{details: map[int64]*MovieDetails{5: {PosterPath: "/p.jpg"}}}, 5},
		{"panic", &fakeFetcher{panicOn: 6}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewEnricher(tt.f, nil, Config{}).Enrich(context.Background(), tt.id)
			if md.PosterURL != DefaultPlaceholderURL || md.Rating != 0 || md.Enriched {
				t.Errorf("Enrich() = %+v, want placeholder", md)
			}
		})
	}
}

func TestEnrich_DisabledWithoutFetcher(t *testing.T) {
	md := NewEnricher(nil, nil, Config{PlaceholderURL: "https://img.example/none.png"}).Enrich(context.Background(), 1)
	if md.PosterURL != "https://img.example/none.png" || md.Enriched {
		t.Errorf("Enrich() = %+v", md)
	}
}

func TestEnrich_EmptyPosterPathUsesPlaceholder(t *testing.T) {
	f := &fakeFetcher{details: map[int64]*MovieDetails{8: {PosterPath: "", VoteAverage: rating(6.04)}}}
	md := NewEnricher(f, nil, Config{}).Enrich(context.Background(), 8)
	if md.PosterURL != DefaultPlaceholderURL || md.Rating != 6 || !md.Enriched {
		t.Errorf("Enrich() = %+v", md)
	}
}

func TestEnrich_CachesSuccessOnly(t *testing.T) {
	c := cache.New(time.Minute)
	defer c.Close()

	f := &fakeFetcher{details: map[int64]*MovieDetails{10: {PosterPath: "a.jpg", VoteAverage: rating(8)}}}
	e := NewEnricher(f, c, Config{})

	first := e.Enrich(context.Background(), 10)
	second := e.Enrich(context.Background(), 10)
	if first != second {
		t.Errorf("cached result %+v differs from fetched %+v", second, first)
	}
	if f.callCount() != 1 {
		t.Errorf("fetch calls = %d, want 1", f.callCount())
	}
	if _, ok := c.Get("movie:10"); !ok {
		t.Error("expected movie:10 in cache")
	}

	e.Enrich(context.Background(), 11)
	e.Enrich(context.Background(), 11)
	if f.callCount() != 3 {
		t.Errorf("fetch calls = %d, want 3; failures must not be cached", f.callCount())
	}
	if _, ok := c.Get("movie:11"); ok {
		t.Error("failed lookup was cached")
	}
}

func TestEnrich_DropsUndecodableCacheEntry(t *testing.T) {
	c := cache.NewLRUCache(10, time.Minute)
	c.Set("movie:12", "not json")
	c.Set("movie:13", 42)

	f := &fakeFetcher{details: map[int64]*MovieDetails{
		12: {PosterPath: "b.jpg", VoteAverage: rating(5)},
		13: {PosterPath: "c.jpg", VoteAverage: rating(5)},
	}}
	e := NewEnricher(f, c, Config{})

	for _, id := range []int64{12, 13} {
		if md := e.Enrich(context.Background(), id); !md.Enriched {
			t.Errorf("Enrich(%d) = %+v, want enriched", id, md)
		}
	}
	if f.callCount() != 2 {
		t.Errorf("fetch calls = %d, want 2", f.callCount())
	}
}

func TestEnrich_AgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/1":
			fmt.Fprint(w, `{"poster_path":"/one.jpg","vote_average":9.96}`)
		case "/movie/2":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			fmt.Fprint(w, `<html>`)
		}
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "x", BreakerName: "tmdb-" + t.Name()}, srv.Client())
	e := NewEnricher(client, nil, Config{ImageBaseURL: "https://img.example/w500/"})

	tests := []struct {
		id   int64
		want Metadata
	}{
		{1, Metadata{PosterURL: "https://img.example/w500/one.jpg", Rating: 10, Enriched: true}},
		{2, Metadata{PosterURL: DefaultPlaceholderURL}},
		{3, Metadata{PosterURL: DefaultPlaceholderURL}},
	}
	for _, tt := range tests {
		if got := e.Enrich(context.Background(), tt.id); got != tt.want {
			t.Errorf("Enrich(%d) = %+v, want %+v", tt.id, got, tt.want)
		}
	}
}

func TestRoundRating(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{7.573, 7.6},
		{7.54, 7.5},
		{0, 0},
		{10, 10},
		{9.99, 10},
		{-0.3, 0},
		{12, 10},
		{math.NaN(), 0},
		{math.Inf(1), 10},
	}
	for _, tt := range tests {
		if got := roundRating(tt.in); got != tt.want {
			t.Errorf("roundRating(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEnrich_RatingAlwaysInRange(t *testing.T) {
	details := map[int64]*MovieDetails{}
	for i := int64(1); i <= 50; i++ {
		details[i] = &MovieDetails{VoteAverage: rating(float64(i)*0.37 - 3)}
	}
	e := NewEnricher(&fakeFetcher{details: details}, nil, Config{})
	for i := int64(0); i <= 60; i++ {
		md := e.Enrich(context.Background(), i)
		if md.Rating < 0 || md.Rating > 10 {
			t.Fatalf("Enrich(%d).Rating = %v out of range", i, md.Rating)
		}
	}
}
