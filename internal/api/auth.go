// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/reelmatch/internal/authz"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/session"
)

// AdminTokenHeader carries the operator token.
const AdminTokenHeader = "X-Admin-Token"

type contextKey string

const (
	sessionKey contextKey = "session"
	subjectKey contextKey = "subject"
)

// sessionFromContext returns the session attached by Authenticate.
func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

// subjectFromRequest is the authz subject: the session state, or operator.
func subjectFromRequest(r *http.Request) string {
	s, _ := r.Context().Value(subjectKey).(string)
	return s
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// Authenticate resolves the bearer token to a live session.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, r, http.StatusUnauthorized, ErrCodeAuthentication, "missing session token", nil)
			return
		}

		id, err := h.tokens.Parse(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected session token")
			respondError(w, r, http.StatusUnauthorized, ErrCodeAuthentication, "invalid session token", nil)
			return
		}

		s, err := h.sessions.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrSessionExpired) {
				respondError(w, r, http.StatusUnauthorized, ErrCodeAuthentication, "session expired or unknown", nil)
				return
			}
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, s)
		ctx = context.WithValue(ctx, subjectKey, string(s.State))
		ctx = logging.ContextWithSessionID(ctx, logging.MaskToken(s.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOperator admits requests carrying the configured admin token.
func (h *Handler) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(AdminTokenHeader)
		if h.adminToken == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.adminToken)) != 1 {
			respondError(w, r, http.StatusUnauthorized, ErrCodeAuthentication, "missing or invalid admin token", nil)
			return
		}
		ctx := context.WithValue(r.Context(), subjectKey, authz.SubjectOperator)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// denyRequest renders authz refusals in the envelope.
func denyRequest(w http.ResponseWriter, r *http.Request, status int) {
	if status == http.StatusForbidden {
		respondError(w, r, status, ErrCodeForbidden, "session state does not permit this request", nil)
		return
	}
	respondError(w, r, status, ErrCodeInternal, "internal server error", nil)
}
