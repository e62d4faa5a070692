// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommend answers "more like this" queries against the loaded
// catalog snapshot.
//
// Ranking is a pure function of the similarity row: every other movie is
// paired with its score, the pairs are stable-sorted by descending score
// and the first k are returned. Equal scores keep ascending catalog order,
// so results are deterministic for a given snapshot.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/catalog"
)

// ErrNotFound is returned when the query title is not in the catalog.
var ErrNotFound = errors.New("movie not found in catalog")

// SnapshotLoader is satisfied by *catalog.Store.
type SnapshotLoader interface {
	Load(ctx context.Context) (*catalog.Snapshot, error)
}

// Neighbor is one ranked result.
type Neighbor struct {
	Movie catalog.Movie
	Index int
	Score float64
}

// Recommender ranks catalog neighbors. It is safe for concurrent use.
type Recommender struct {
	loader SnapshotLoader
	cfg    Config
	logger zerolog.Logger
}

// NewRecommender creates a Recommender over loader.
func NewRecommender(loader SnapshotLoader, cfg Config, logger zerolog.Logger) (*Recommender, error) {
	if loader == nil {
		return nil, errors.New("recommend: snapshot loader is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Recommender{
		loader: loader,
		cfg:    cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend returns the min(k, N-1) movies most similar to title, best
// first. k < 1 returns no neighbors.
// Catalog load failures are returned unchanged so callers can match
// catalog.ErrDataUnavailable and catalog.ErrCorruptData.
func (r *Recommender) Recommend(ctx context.Context, title string, k int) ([]Neighbor, error) {
	rk, err := r.rank(ctx, title, k)
	if err != nil {
		return nil, err
	}
	return rk.neighbors, nil
}

// ranking is the result of one lookup together with the snapshot it used.
type ranking struct {
	snap      *catalog.Snapshot
	query     int
	neighbors []Neighbor
}

func (r *Recommender) rank(ctx context.Context, title string, k int) (*ranking, error) {
	snap, err := r.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx, ok := snap.IndexOf(title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}

	neighbors := TopK(snap, idx, k)

	r.logger.Debug().
		Str("title", snap.Movie(idx).Title).
		Int("k", k).
		Int("returned", len(neighbors)).
		Msg("ranked neighbors")

	return &ranking{snap: snap, query: idx, neighbors: neighbors}, nil
}

// TopK ranks every movie except query by its similarity to query and
// returns the first min(k, N-1).
func TopK(snap *catalog.Snapshot, query, k int) []Neighbor {
	n := snap.Len()
	if k <= 0 || n < 2 || query < 0 || query >= n {
		return []Neighbor{}
	}

	row := snap.Row(query)
	ranked := make([]Neighbor, 0, n-1)
	for j := 0; j < n; j++ {
		if j == query {
			continue
		}
		ranked = append(ranked, Neighbor{Index: j, Score: row[j]})
	}

	// Built in index order, so a stable sort leaves ties ascending by index.
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	for i := range ranked {
		ranked[i].Movie = snap.Movie(ranked[i].Index)
	}
	return ranked
}
