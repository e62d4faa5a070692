// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelmatch/internal/authz"
	"github.com/tomtom215/reelmatch/internal/middleware"
)

// Router assembles the chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authz         *authz.Middleware
}

// NewRouter creates a Router. enforcer decides which session states reach
// which routes.
func NewRouter(handler *Handler, enforcer *authz.Enforcer, config *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(config),
		authz:         authz.NewMiddleware(enforcer, subjectFromRequest, denyRequest),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	h := router.handler

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/session", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitSession())
		r.Use(APISecurityHeaders())

		r.Post("/", h.SessionStart)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Use(router.authz.AuthorizeRequest)

			r.Get("/", h.SessionGet)
			r.Post("/age", h.SessionVerifyAge)
			r.Post("/register", h.SessionRegister)
			r.Post("/login", h.SessionLogin)
			r.Post("/logout", h.SessionLogout)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(h.Authenticate)
		r.Use(router.authz.AuthorizeRequest)

		r.Get("/api/v1/movies", h.MoviesList)
		r.Get("/api/v1/recommendations", h.Recommendations)
	})

	if h.adminToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitSession())
			r.Use(h.RequireOperator)
			r.Use(router.authz.AuthorizeRequest)

			r.Post("/api/v1/catalog/reload", h.CatalogReload)
		})
	}

	r.Handle("/metrics", promhttp.Handler())

	return r
}
