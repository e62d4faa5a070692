// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package session

import (
	"errors"
	"testing"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from    State
		ev      Event
		want    State
		wantErr bool
	}{
		{StateUnverified, EventVerifyAge, StateAgeVerified, false},
		{StateUnverified, EventRegister, StateUnverified, true},
		{StateUnverified, EventLogin, StateUnverified, true},
		{StateAgeVerified, EventVerifyAge, StateAgeVerified, true},
		{StateAgeVerified, EventRegister, StateRegistered, false},
		{StateAgeVerified, EventLogin, StateRegistered, false},
		{StateRegistered, EventVerifyAge, StateRegistered, true},
		{StateRegistered, EventRegister, StateRegistered, true},
		{StateRegistered, EventLogin, StateRegistered, true},
		{StateUnverified, EventLogout, StateUnverified, false},
		{StateAgeVerified, EventLogout, StateUnverified, false},
		{StateRegistered, EventLogout, StateUnverified, false},
		{StateUnverified, Event("bogus"), StateUnverified, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.ev), func(t *testing.T) {
			got, err := Next(tt.from, tt.ev)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Next() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Next() = %s, want %s", got, tt.want)
			}
			if err != nil {
				var te *TransitionError
				if !errors.As(err, &te) || te.From != tt.from || te.Event != tt.ev {
					t.Errorf("error = %#v, want TransitionError", err)
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Error("error does not match ErrInvalidTransition")
				}
			}
		})
	}
}

func TestState_Valid(t *testing.T) {
	for _, s := range []State{StateUnverified, StateAgeVerified, StateRegistered} {
		if !s.Valid() {
			t.Errorf("%s.Valid() = false", s)
		}
	}
	if State("admin").Valid() {
		t.Error("unknown state reported valid")
	}
}
