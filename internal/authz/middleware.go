// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package authz

import (
	"net/http"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// SubjectFunc extracts the caller's subject from a request. An empty string
// means the request carries no identity.
type SubjectFunc func(r *http.Request) string

// DenyFunc writes the response for a refused request. status is 403 for a
// policy denial and 500 for an enforcement error.
type DenyFunc func(w http.ResponseWriter, r *http.Request, status int)

// Middleware enforces the policy on each request path.
type Middleware struct {
	enforcer *Enforcer
	subject  SubjectFunc
	deny     DenyFunc
}

// NewMiddleware creates an authorization middleware.
func NewMiddleware(enforcer *Enforcer, subject SubjectFunc, deny DenyFunc) *Middleware {
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, status int) {
			http.Error(w, http.StatusText(status), status)
		}
	}
	return &Middleware{enforcer: enforcer, subject: subject, deny: deny}
}

// AuthorizeRequest checks the request path and method against the policy.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := m.subject(r)

		allowed, err := m.enforcer.Allow(subject, r.URL.Path, r.Method)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			m.deny(w, r, http.StatusInternalServerError)
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Debug().
				Str("subject", subject).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("Authorization denied")
			m.deny(w, r, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
