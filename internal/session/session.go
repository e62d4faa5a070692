// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package session tracks a viewer's progress through age verification and
// account sign-in. A Manager applies events to server-side sessions, which
// live in a Store and are referenced by signed tokens.
package session

import "time"

// Session is the server-side record for one visitor.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session) clone() *Session {
	c := *s
	return &c
}
