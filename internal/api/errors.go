// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/reelmatch/internal/accounts"
	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/session"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings translates domain errors, first match wins.
var errorMappings = []errorMapping{
	{recommend.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, "movie not found in catalog"},
	{catalog.ErrDataUnavailable, http.StatusServiceUnavailable, ErrCodeDataUnavailable, "movie data is temporarily unavailable"},
	{catalog.ErrCorruptData, http.StatusInternalServerError, ErrCodeCorruptData, "movie data failed validation"},
	{session.ErrInvalidAadhaar, http.StatusBadRequest, ErrCodeValidation, "aadhaar must be exactly 12 digits"},
	{accounts.ErrInvalidPassword, http.StatusBadRequest, ErrCodeValidation, "password does not meet requirements"},
	{session.ErrUnderage, http.StatusForbidden, ErrCodeUnderage, "minimum age requirement not met"},
	{session.ErrInvalidTransition, http.StatusConflict, ErrCodeInvalidState, "action not allowed in the current session state"},
	{accounts.ErrAccountExists, http.StatusConflict, ErrCodeAccountExists, "an account with this email already exists"},
	{accounts.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password"},
	{session.ErrSessionNotFound, http.StatusUnauthorized, ErrCodeAuthentication, "session not found"},
	{session.ErrSessionExpired, http.StatusUnauthorized, ErrCodeAuthentication, "session expired"},
	{session.ErrInvalidToken, http.StatusUnauthorized, ErrCodeAuthentication, "invalid session token"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, ErrCodeDataUnavailable, "request timed out"},
}

// writeError maps err to its envelope. Unmapped errors are logged and
// reported as INTERNAL_ERROR without their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			respondError(w, r, m.status, m.code, m.message, errorDetails(err))
			if m.status >= http.StatusInternalServerError {
				logging.Ctx(r.Context()).Error().Str("error", sanitizeLogValue(err.Error())).Str("code", m.code).Msg("API error")
			}
			return
		}
	}

	logging.Ctx(r.Context()).Error().Str("error", sanitizeLogValue(err.Error())).Msg("Unhandled API error")
	respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "internal server error", nil)
}

func errorDetails(err error) map[string]interface{} {
	var ue *session.UnderageError
	if errors.As(err, &ue) {
		return map[string]interface{}{"age": ue.Age, "min_age": ue.MinAge}
	}
	var te *session.TransitionError
	if errors.As(err, &te) {
		return map[string]interface{}{"event": string(te.Event), "state": string(te.From)}
	}
	var le *catalog.LoadError
	if errors.As(err, &le) {
		return map[string]interface{}{"blob": le.Blob}
	}
	return nil
}
