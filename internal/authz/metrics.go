// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecisionsTotal counts decisions by subject and outcome. Subjects are
	// session states and operator, so cardinality stays small.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"subject", "decision"},
	)

	// CacheHitsTotal counts decision cache hits.
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmatch_authz_cache_hits_total",
			Help: "Total number of authorization cache hits",
		},
	)

	// CacheMissesTotal counts decision cache misses.
	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmatch_authz_cache_misses_total",
			Help: "Total number of authorization cache misses",
		},
	)
)

func recordDecision(subject string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	DecisionsTotal.WithLabelValues(subject, decision).Inc()
}

func recordCacheHit()  { CacheHitsTotal.Inc() }
func recordCacheMiss() { CacheMissesTotal.Inc() }
