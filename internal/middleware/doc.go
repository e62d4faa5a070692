// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package middleware provides the infrastructure middleware shared by every
route: request identification and Prometheus instrumentation.

Both are chi-compatible (func(http.Handler) http.Handler):

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

RequestID accepts an upstream X-Request-ID when it is a sane token and
otherwise generates a UUID. The ID is echoed in the response header and
attached to the logging context together with a fresh correlation ID, so
every log line written through logging.Ctx carries both.

PrometheusMetrics labels requests by chi route pattern rather than raw path,
so query strings and unmatched paths cannot inflate label cardinality.
*/
package middleware
