// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package metrics defines the Prometheus collectors exported on /metrics and
// small Record helpers so call sites never touch label plumbing directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Catalog Metrics
	CatalogLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_catalog_load_duration_seconds",
			Help:    "Time to fetch, decode and validate the catalog",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"trigger"}, // "initial", "reload"
	)

	CatalogLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_catalog_loads_total",
			Help: "Catalog load attempts by outcome",
		},
		[]string{"trigger", "outcome"}, // outcome: "success", "data_unavailable", "corrupt_data", "error"
	)

	CatalogMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_catalog_movies",
			Help: "Number of movies in the active catalog snapshot",
		},
	)

	CatalogBlobFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_catalog_blob_fetches_total",
			Help: "Remote blob downloads by blob and outcome",
		},
		[]string{"blob", "outcome"}, // outcome: "success", "failure", "checksum_mismatch"
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_recommendations_total",
			Help: "Recommendation lookups by outcome",
		},
		[]string{"outcome"}, // "success", "not_found", "unavailable"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelmatch_recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency including enrichment",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// Enrichment Metrics
	EnrichmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_enrichments_total",
			Help: "Metadata enrichment results; failures are served the placeholder",
		},
		[]string{"result"}, // "success", "cached", "disabled", or a failure kind
	)

	EnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelmatch_enrichment_fetch_duration_seconds",
			Help:    "Duration of upstream metadata API calls",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_cache_hits_total",
			Help: "Cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_cache_misses_total",
			Help: "Cache misses by cache name",
		},
		[]string{"cache"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Session Metrics
	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_session_transitions_total",
			Help: "Session state machine transitions",
		},
		[]string{"event", "from_state", "to_state"},
	)

	SessionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_session_rejections_total",
			Help: "Rejected session events by reason",
		},
		[]string{"event", "reason"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_events_published_total",
			Help: "Events published to the in-process bus",
		},
		[]string{"topic", "outcome"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_events_consumed_total",
			Help: "Events handled by the audit consumer",
		},
		[]string{"topic"},
	)
)

// RecordAPIRequest records an API request with its status and duration.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCatalogLoad records one catalog load attempt. size is only applied
// on success.
func RecordCatalogLoad(trigger, outcome string, duration time.Duration, size int) {
	CatalogLoadsTotal.WithLabelValues(trigger, outcome).Inc()
	CatalogLoadDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	if outcome == "success" {
		CatalogMovies.Set(float64(size))
	}
}

// RecordBlobFetch records a remote blob download outcome.
func RecordBlobFetch(blob, outcome string) {
	CatalogBlobFetches.WithLabelValues(blob, outcome).Inc()
}

// RecordRecommendation records a recommendation request.
func RecordRecommendation(outcome string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		RecommendationDuration.Observe(duration.Seconds())
	}
}

// RecordEnrichment counts an enrichment result.
func RecordEnrichment(result string) {
	EnrichmentsTotal.WithLabelValues(result).Inc()
}

// RecordEnrichmentFetch observes an upstream metadata call.
func RecordEnrichmentFetch(duration time.Duration) {
	EnrichmentDuration.Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit for the named cache.
func RecordCacheHit(cache string) {
	CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss for the named cache.
func RecordCacheMiss(cache string) {
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordSessionTransition counts an accepted state machine transition.
func RecordSessionTransition(event, from, to string) {
	SessionTransitions.WithLabelValues(event, from, to).Inc()
}

// RecordSessionRejection counts a rejected state machine event.
func RecordSessionRejection(event, reason string) {
	SessionRejections.WithLabelValues(event, reason).Inc()
}

// RecordEventPublished counts a publish attempt on the event bus.
func RecordEventPublished(topic string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	EventsPublished.WithLabelValues(topic, outcome).Inc()
}

// RecordEventConsumed counts an event handled by a subscriber.
func RecordEventConsumed(topic string) {
	EventsConsumed.WithLabelValues(topic).Inc()
}
