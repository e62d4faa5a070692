// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
	}
}

func TestNewSupervisorTree_KeepsExplicitValues(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 2,
		FailureBackoff:   time.Second,
	})
	if tree.config.FailureThreshold != 2 || tree.config.FailureBackoff != time.Second {
		t.Errorf("config = %+v", tree.config)
	}
	if tree.config.FailureDecay != 30 || tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("zero fields not defaulted: %+v", tree.config)
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := newMockService("data")
	messaging := newMockService("messaging")
	api := newMockService("api")
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	if !waitFor(t, time.Second, func() bool {
		return data.starts() > 0 && messaging.starts() > 0 && api.starts() > 0
	}) {
		t.Errorf("starts: data=%d messaging=%d api=%d", data.starts(), messaging.starts(), api.starts())
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("tree did not shut down in time")
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := newMockService("failing")
	failing.setFailCount(2)
	stable := newMockService("stable")
	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	if !waitFor(t, 2*time.Second, func() bool { return failing.starts() >= 3 }) {
		t.Errorf("failing service starts = %d, want >= 3", failing.starts())
	}
	if stable.starts() != 1 {
		t.Errorf("stable service starts = %d, want 1", stable.starts())
	}
}

func TestNewSupervisorTree_RejectsNegativeConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  TreeConfig
	}{
		{"threshold", TreeConfig{FailureThreshold: -1}},
		{"decay", TreeConfig{FailureDecay: -1}},
		{"backoff", TreeConfig{FailureBackoff: -time.Second}},
		{"shutdown", TreeConfig{ShutdownTimeout: -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSupervisorTree(testLogger(), tt.cfg); err == nil {
				t.Error("expected error for negative value")
			}
		})
	}
}

func TestSupervisorTree_AddByLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	if _, err := tree.Add(Layer("cache"), newMockService("orphan")); err == nil {
		t.Error("Add() to an unknown layer should fail")
	}

	svcs := make(map[Layer]*mockService, len(layers))
	for _, l := range layers {
		svcs[l] = newMockService(string(l))
		if _, err := tree.Add(l, svcs[l]); err != nil {
			t.Fatalf("Add(%s) error = %v", l, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	for l, svc := range svcs {
		if !waitFor(t, time.Second, func() bool { return svc.starts() > 0 }) {
			t.Errorf("service in %s layer never started", l)
		}
	}
}
