// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"time"

	"github.com/tomtom215/reelmatch/internal/session"
)

// SessionCleanupService purges expired sessions on an interval.
type SessionCleanupService struct {
	store    session.Cleaner
	interval time.Duration
	name     string
}

// NewSessionCleanupService creates the service. A non-positive interval
// selects 10 minutes.
func NewSessionCleanupService(store session.Cleaner, interval time.Duration) *SessionCleanupService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SessionCleanupService{
		store:    store,
		interval: interval,
		name:     "session-cleanup",
	}
}

// Serve implements suture.Service.
func (s *SessionCleanupService) Serve(ctx context.Context) error {
	return session.RunCleanup(ctx, s.store, s.interval)
}

// String implements fmt.Stringer.
func (s *SessionCleanupService) String() string {
	return s.name
}
