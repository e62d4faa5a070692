// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/models"
	"github.com/tomtom215/reelmatch/internal/session"
)

func sessionResponse(s *session.Session, token string) *models.SessionResponse {
	return &models.SessionResponse{
		SessionID: s.ID,
		State:     string(s.State),
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
		Token:     token,
	}
}

// SessionStart creates an unverified session and returns its bearer token.
func (h *Handler) SessionStart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	s, err := h.sessions.Start(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, _, err := h.tokens.Issue(s.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().Str("session_id", logging.MaskToken(s.ID)).Msg("Session token issued")
	respondSuccess(w, r, http.StatusCreated, sessionResponse(s, token), start)
}

// SessionGet returns the caller's session.
func (h *Handler) SessionGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, ErrCodeAuthentication, "missing session", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, sessionResponse(s, ""), start)
}

// SessionVerifyAge applies the age check to the caller's session.
func (h *Handler) SessionVerifyAge(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, ErrCodeAuthentication, "missing session", nil)
		return
	}

	var req models.AgeVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.sessions.VerifyAge(r.Context(), s.ID, req.Aadhaar)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, sessionResponse(updated, ""), start)
}

// SessionRegister creates an account and registers the caller's session.
func (h *Handler) SessionRegister(w http.ResponseWriter, r *http.Request) {
	h.credentialsEvent(w, r, h.sessions.Register)
}

// SessionLogin authenticates the caller's session.
func (h *Handler) SessionLogin(w http.ResponseWriter, r *http.Request) {
	h.credentialsEvent(w, r, h.sessions.Login)
}

func (h *Handler) credentialsEvent(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, id, email, password string) (*session.Session, error)) {
	start := time.Now()
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, ErrCodeAuthentication, "missing session", nil)
		return
	}

	var req models.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := apply(r.Context(), s.ID, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, sessionResponse(updated, ""), start)
}

// SessionLogout resets the caller's session to unverified.
func (h *Handler) SessionLogout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s := sessionFromContext(r.Context())
	if s == nil {
		respondError(w, r, http.StatusUnauthorized, ErrCodeAuthentication, "missing session", nil)
		return
	}

	updated, err := h.sessions.Logout(r.Context(), s.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, sessionResponse(updated, ""), start)
}
