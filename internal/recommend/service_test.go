// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/enrich"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// slowEnricher finishes lookups in reverse rank order and tracks how many
// run at once.
type slowEnricher struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	seen     []int64
}

func (e *slowEnricher) Enrich(_ context.Context, id int64) enrich.Metadata {
	cur := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		p := e.peak.Load()
		if cur <= p || e.peak.CompareAndSwap(p, cur) {
			break
		}
	}

	// Higher ids (lower rank in the fixtures below) return first.
	time.Sleep(time.Duration(200-id%100) * 100 * time.Microsecond)

	e.mu.Lock()
	e.seen = append(e.seen, id)
	e.mu.Unlock()

	return enrich.Metadata{
		PosterURL: fmt.Sprintf("https://img.example/%d.jpg", id),
		Rating:    float64(id%10) + 0.5,
		Enriched:  true,
	}
}

func newTestService(t *testing.T, snap *catalog.Snapshot, cfg Config, e Enricher) *Service {
	t.Helper()
	rec, err := NewRecommender(&staticLoader{snap: snap}, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRecommender() error = %v", err)
	}
	return NewService(rec, e)
}

func TestRecommendations_EnrichesInRankOrder(t *testing.T) {
	const n = 20
	titles := make([]string, n)
	matrix := make([][]float64, n)
	for i := range titles {
		titles[i] = fmt.Sprintf("Film %d", i)
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			// Row 0 ranks 1, 2, 3, ... in order.
			matrix[i][j] = 1 - float64(j)/n
		}
	}
	snap := mustSnapshot(t, titles, matrix)

	cfg := DefaultConfig()
	cfg.EnrichConcurrency = 3
	enr := &slowEnricher{}
	svc := newTestService(t, snap, cfg, enr)

	ctx := logging.ContextWithRequestID(context.Background(), "req-42")
	resp, err := svc.Recommendations(ctx, "Film 0", 10)
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}

	if len(resp.Items) != 10 {
		t.Fatalf("items = %d, want 10", len(resp.Items))
	}
	for i, item := range resp.Items {
		wantID := int64(100 + i + 1)
		if item.MovieID != wantID {
			t.Errorf("item[%d].MovieID = %d, want %d", i, item.MovieID, wantID)
		}
		if item.PosterURL != fmt.Sprintf("https://img.example/%d.jpg", wantID) {
			t.Errorf("item[%d] carries metadata of another movie: %s", i, item.PosterURL)
		}
		if item.DetailLink != fmt.Sprintf("https://www.themoviedb.org/movie/%d", wantID) {
			t.Errorf("item[%d].DetailLink = %s", i, item.DetailLink)
		}
	}
	if peak := enr.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
	if resp.Query != "Film 0" || resp.TotalCandidates != n-1 {
		t.Errorf("Query=%q TotalCandidates=%d", resp.Query, resp.TotalCandidates)
	}
	if resp.Metadata.RequestID != "req-42" {
		t.Errorf("RequestID = %q", resp.Metadata.RequestID)
	}
	if !resp.Metadata.CatalogLoadedAt.Equal(snap.LoadedAt) {
		t.Errorf("CatalogLoadedAt = %v, want %v", resp.Metadata.CatalogLoadedAt, snap.LoadedAt)
	}
}

func TestRecommendations_Scenario(t *testing.T) {
	svc := newTestService(t, abcSnapshot(t), DefaultConfig(), nil)

	resp, err := svc.Recommendations(context.Background(), "A", 2)
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	want := []Item{
		{MovieID: 101, Title: "B", Score: 0.9, PosterURL: enrich.DefaultPlaceholderURL, DetailLink: "https://www.themoviedb.org/movie/101"},
		{MovieID: 102, Title: "C", Score: 0.2, PosterURL: enrich.DefaultPlaceholderURL, DetailLink: "https://www.themoviedb.org/movie/102"},
	}
	if len(resp.Items) != len(want) {
		t.Fatalf("items = %+v", resp.Items)
	}
	for i := range want {
		if resp.Items[i] != want[i] {
			t.Errorf("item[%d] = %+v, want %+v", i, resp.Items[i], want[i])
		}
	}
}

func TestRecommendations_Errors(t *testing.T) {
	notFoundBefore := testutil.ToFloat64(metrics.RecommendationsTotal.WithLabelValues("not_found"))

	svc := newTestService(t, abcSnapshot(t), DefaultConfig(), nil)
	if _, err := svc.Recommendations(context.Background(), "Z", 6); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if got := testutil.ToFloat64(metrics.RecommendationsTotal.WithLabelValues("not_found")); got != notFoundBefore+1 {
		t.Errorf("not_found counter = %v, want %v", got, notFoundBefore+1)
	}

	loadErr := &catalog.LoadError{Blob: catalog.BlobCatalog, Err: catalog.ErrDataUnavailable}
	rec, err := NewRecommender(&staticLoader{err: loadErr}, DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewService(rec, nil).Recommendations(context.Background(), "A", 2); !errors.Is(err, catalog.ErrDataUnavailable) {
		t.Errorf("error = %v, want ErrDataUnavailable", err)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: %q", ErrNotFound, "Z"), "not_found"},
		{&catalog.LoadError{Err: catalog.ErrCorruptData}, "corrupt_data"},
		{&catalog.LoadError{Err: catalog.ErrDataUnavailable}, "data_unavailable"},
		{errors.New("other"), "error"},
	}
	for _, tt := range tests {
		if got := outcome(tt.err); got != tt.want {
			t.Errorf("outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
