// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package session

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a session is not found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when trying to access an expired session.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidAadhaar is returned for anything but exactly 12 ASCII digits.
	ErrInvalidAadhaar = errors.New("aadhaar number must be exactly 12 digits")

	// ErrUnderage is matched by every *UnderageError.
	ErrUnderage = errors.New("age requirement not met")

	// ErrInvalidTransition is returned when an event is not allowed in the
	// session's current state.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrInvalidToken is returned for tokens that fail signature or claim checks.
	ErrInvalidToken = errors.New("invalid session token")
)

// UnderageError reports the computed age that failed the minimum.
type UnderageError struct {
	Age    int
	MinAge int
}

func (e *UnderageError) Error() string {
	return fmt.Sprintf("%s: age %d is below %d", ErrUnderage, e.Age, e.MinAge)
}

func (e *UnderageError) Is(target error) bool { return target == ErrUnderage }

// TransitionError names the rejected event and the state it was tried in.
type TransitionError struct {
	Event Event
	From  State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s not allowed from %s", ErrInvalidTransition, e.Event, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
