// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package events carries domain events between components over an
// in-process Watermill pub/sub. Publishers never fail their caller on a
// bus error; the AuditConsumer turns events into audit log lines and
// counters.
package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Topics.
const (
	TopicSessionTransitioned = "session.transitioned"
	TopicCatalogReloaded     = "catalog.reloaded"
)

// SchemaVersion is bumped on breaking payload changes.
const SchemaVersion = 1

// SessionTransitioned is published after a session state change is persisted.
type SessionTransitioned struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	SessionID     string    `json:"session_id"`
	Event         string    `json:"event"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Account       string    `json:"account,omitempty"` // masked email
	CorrelationID string    `json:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// CatalogReloaded is published after every catalog load attempt.
type CatalogReloaded struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	Trigger       string    `json:"trigger"` // initial, reload, refresh
	Outcome       string    `json:"outcome"` // success, data_unavailable, corrupt_data
	Movies        int       `json:"movies"`
	DurationMS    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DecodeSessionTransitioned parses a session.transitioned payload.
func DecodeSessionTransitioned(data []byte) (*SessionTransitioned, error) {
	var evt SessionTransitioned
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("unmarshal session event: %w", err)
	}
	return &evt, nil
}

// DecodeCatalogReloaded parses a catalog.reloaded payload.
func DecodeCatalogReloaded(data []byte) (*CatalogReloaded, error) {
	var evt CatalogReloaded
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, fmt.Errorf("unmarshal catalog event: %w", err)
	}
	return &evt, nil
}
