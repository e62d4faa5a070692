// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/enrich"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// Enricher is satisfied by *enrich.Enricher. Enrich must not fail.
type Enricher interface {
	Enrich(ctx context.Context, id int64) enrich.Metadata
}

// Item is a neighbor decorated with display metadata.
type Item struct {
	MovieID    int64   `json:"movie_id"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	PosterURL  string  `json:"poster_url"`
	DetailLink string  `json:"detail_link"`
	Rating     float64 `json:"rating"`
	Enriched   bool    `json:"enriched"`
}

// Response is the enriched answer to a recommendation query.
type Response struct {
	Query           string           `json:"query"`
	Items           []Item           `json:"items"`
	TotalCandidates int              `json:"total_candidates"`
	Metadata        ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID       string    `json:"request_id,omitempty"`
	LatencyMS       int64     `json:"latency_ms"`
	CatalogLoadedAt time.Time `json:"catalog_loaded_at"`
}

// Service combines ranking with metadata enrichment.
type Service struct {
	rec      *Recommender
	enricher Enricher
	cfg      Config
	logger   zerolog.Logger
}

// NewService wires a Recommender to an Enricher. A nil enricher serves
// placeholders for every item.
func NewService(rec *Recommender, enricher Enricher) *Service {
	if enricher == nil {
		enricher = enrich.NewEnricher(nil, nil, enrich.Config{})
	}
	return &Service{
		rec:      rec,
		enricher: enricher,
		cfg:      rec.cfg,
		logger:   rec.logger,
	}
}

// Recommendations ranks neighbors of title and enriches each one. Lookups
// run concurrently up to EnrichConcurrency; item order always matches rank.
func (s *Service) Recommendations(ctx context.Context, title string, k int) (*Response, error) {
	start := time.Now()

	rk, err := s.rec.rank(ctx, title, k)
	if err != nil {
		metrics.RecordRecommendation(outcome(err), time.Since(start))
		return nil, err
	}

	snap, neighbors := rk.snap, rk.neighbors
	items := make([]Item, len(neighbors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EnrichConcurrency)
	for i, nb := range neighbors {
		g.Go(func() error {
			md := s.enricher.Enrich(gctx, nb.Movie.ID)
			items[i] = Item{
				MovieID:    nb.Movie.ID,
				Title:      nb.Movie.Title,
				Score:      nb.Score,
				PosterURL:  md.PosterURL,
				DetailLink: s.detailLink(nb.Movie.ID),
				Rating:     md.Rating,
				Enriched:   md.Enriched,
			}
			return nil
		})
	}
	// Enrich never fails, so Wait only synchronizes.
	_ = g.Wait()

	resp := &Response{
		Query:           snap.Movie(rk.query).Title,
		Items:           items,
		TotalCandidates: snap.Len() - 1,
		Metadata: ResponseMetadata{
			RequestID:       logging.RequestIDFromContext(ctx),
			LatencyMS:       time.Since(start).Milliseconds(),
			CatalogLoadedAt: snap.LoadedAt,
		},
	}
	metrics.RecordRecommendation("success", time.Since(start))

	logging.Ctx(ctx).Debug().
		Str("component", "recommend").
		Str("title", resp.Query).
		Int("returned", len(items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

func (s *Service) detailLink(id int64) string {
	return strings.TrimRight(s.cfg.DetailBaseURL, "/") + "/" + strconv.FormatInt(id, 10)
}

func outcome(err error) string {
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}
	return catalog.Outcome(err)
}
