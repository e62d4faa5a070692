// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/validation"
)

// DefaultSimulatedDOB is the birth date returned for every valid number by
// SimulatedDOB.
const DefaultSimulatedDOB = "2005-04-01"

// DOBProvider resolves an identity number to a date of birth.
type DOBProvider interface {
	DateOfBirth(ctx context.Context, aadhaar string) (time.Time, error)
}

// SimulatedDOB returns a fixed date for every well-formed number. It stands
// in for an identity provider lookup.
type SimulatedDOB struct {
	DOB time.Time
}

// NewSimulatedDOB parses a YYYY-MM-DD date. An empty string selects
// DefaultSimulatedDOB.
func NewSimulatedDOB(date string) (*SimulatedDOB, error) {
	if date == "" {
		date = DefaultSimulatedDOB
	}
	dob, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("parse simulated dob %q: %w", date, err)
	}
	return &SimulatedDOB{DOB: dob}, nil
}

// DateOfBirth implements DOBProvider.
func (s *SimulatedDOB) DateOfBirth(_ context.Context, aadhaar string) (time.Time, error) {
	if !validation.IsAadhaar(aadhaar) {
		return time.Time{}, ErrInvalidAadhaar
	}
	return s.DOB, nil
}

// AgeAt is whole elapsed days divided by 365, truncated.
func AgeAt(dob, now time.Time) int {
	if now.Before(dob) {
		return 0
	}
	days := int(now.Sub(dob).Hours() / 24)
	return days / 365
}
