// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package enrich

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a metadata lookup failed.
type FailureKind string

const (
	KindTimeout     FailureKind = "timeout"
	KindStatus      FailureKind = "status"
	KindMalformed   FailureKind = "malformed"
	KindTransport   FailureKind = "transport"
	KindCircuitOpen FailureKind = "circuit_open"
	KindRateLimited FailureKind = "rate_limited"
)

// ErrFetch is matched by every *FetchError.
var ErrFetch = errors.New("metadata fetch failed")

// FetchError is returned by Client.FetchMovie for any failed lookup.
// StatusCode is only set for KindStatus.
type FetchError struct {
	Kind       FailureKind
	MovieID    int64
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("movie %d: %s: unexpected status %d", e.MovieID, e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("movie %d: %s: %v", e.MovieID, e.Kind, e.Err)
	default:
		return fmt.Sprintf("movie %d: %s", e.MovieID, e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// KindOf reports the failure kind of err, or "" when err is not a FetchError.
func KindOf(err error) FailureKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
