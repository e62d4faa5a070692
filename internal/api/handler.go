// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"time"

	"github.com/tomtom215/reelmatch/internal/catalog"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/session"
)

// Version is reported by the health endpoints. Set at build time.
var Version = "dev"

// CatalogStore is satisfied by *catalog.Store.
type CatalogStore interface {
	Load(ctx context.Context) (*catalog.Snapshot, error)
	Reload(ctx context.Context) (*catalog.Snapshot, error)
	Snapshot() (*catalog.Snapshot, bool)
}

// Recommender is satisfied by *recommend.Service.
type Recommender interface {
	Recommendations(ctx context.Context, title string, k int) (*recommend.Response, error)
}

// SessionManager is satisfied by *session.Manager.
type SessionManager interface {
	Start(ctx context.Context) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	VerifyAge(ctx context.Context, id, aadhaar string) (*session.Session, error)
	Register(ctx context.Context, id, email, password string) (*session.Session, error)
	Login(ctx context.Context, id, email, password string) (*session.Session, error)
	Logout(ctx context.Context, id string) (*session.Session, error)
}

// TokenCodec is satisfied by *session.Tokens.
type TokenCodec interface {
	Issue(sessionID string) (string, time.Time, error)
	Parse(token string) (string, error)
}

// Handler serves the API endpoints.
type Handler struct {
	catalog  CatalogStore
	recs     Recommender
	sessions SessionManager
	tokens   TokenCodec

	adminToken string
	defaultK   int
	maxK       int
	startTime  time.Time
}

// HandlerDeps are the collaborators of a Handler.
type HandlerDeps struct {
	Catalog  CatalogStore
	Recs     Recommender
	Sessions SessionManager
	Tokens   TokenCodec

	// AdminToken enables operator routes when non-empty.
	AdminToken string

	// DefaultK is used when a recommendation request omits k. MaxK is the
	// largest k accepted; larger values are rejected. Zero selects the
	// recommend package defaults.
	DefaultK int
	MaxK     int
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	if deps.DefaultK <= 0 {
		deps.DefaultK = recommend.DefaultK
	}
	if deps.MaxK <= 0 {
		deps.MaxK = recommend.DefaultMaxK
	}
	return &Handler{
		catalog:    deps.Catalog,
		recs:       deps.Recs,
		sessions:   deps.Sessions,
		tokens:     deps.Tokens,
		adminToken: deps.AdminToken,
		defaultK:   deps.DefaultK,
		maxK:       deps.MaxK,
		startTime:  time.Now(),
	}
}
