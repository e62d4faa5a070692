// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package session

// State is a session's position in the access flow.
type State string

const (
	StateUnverified  State = "unverified"
	StateAgeVerified State = "age_verified"
	StateRegistered  State = "registered"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateUnverified, StateAgeVerified, StateRegistered:
		return true
	}
	return false
}

// Event drives a state change.
type Event string

const (
	EventVerifyAge Event = "verify_age"
	EventRegister  Event = "register"
	EventLogin     Event = "login"
	EventLogout    Event = "logout"
)

// transitions lists the allowed (from, event) pairs. Logout is handled
// separately because it applies from every state.
var transitions = map[State]map[Event]State{
	StateUnverified: {
		EventVerifyAge: StateAgeVerified,
	},
	StateAgeVerified: {
		EventRegister: StateRegistered,
		EventLogin:    StateRegistered,
	},
}

// Next returns the state reached by applying ev in from. Guards (age,
// credentials) are checked by the Manager before Next is consulted.
func Next(from State, ev Event) (State, error) {
	if ev == EventLogout {
		return StateUnverified, nil
	}
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return from, &TransitionError{Event: ev, From: from}
}
