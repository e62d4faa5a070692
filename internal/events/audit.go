// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// AuditConsumer writes one structured audit line per domain event. It
// implements suture.Service.
type AuditConsumer struct {
	bus    *Bus
	logger zerolog.Logger
}

// NewAuditConsumer creates a consumer reading from bus.
func NewAuditConsumer(bus *Bus) *AuditConsumer {
	return &AuditConsumer{
		bus:    bus,
		logger: logging.With().Str("component", "audit").Logger(),
	}
}

// Serve subscribes to every topic and blocks until ctx is cancelled or
// the bus is closed.
func (c *AuditConsumer) Serve(ctx context.Context) error {
	sessions, err := c.bus.Subscribe(ctx, TopicSessionTransitioned)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicSessionTransitioned, err)
	}
	catalogs, err := c.bus.Subscribe(ctx, TopicCatalogReloaded)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicCatalogReloaded, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sessions:
			if !ok {
				return ErrBusClosed
			}
			c.handleSession(msg)
		case msg, ok := <-catalogs:
			if !ok {
				return ErrBusClosed
			}
			c.handleCatalog(msg)
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (c *AuditConsumer) String() string {
	return "audit-consumer"
}

func (c *AuditConsumer) handleSession(msg *message.Message) {
	// Malformed payloads are acked too; redelivery would not fix them.
	defer msg.Ack()

	evt, err := DecodeSessionTransitioned(msg.Payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed session event")
		return
	}

	metrics.RecordEventConsumed(TopicSessionTransitioned)
	metrics.RecordSessionTransition(evt.Event, evt.From, evt.To)

	c.logger.Info().
		Str("event_id", evt.EventID).
		Str("session_id", evt.SessionID).
		Str("event", evt.Event).
		Str("from", evt.From).
		Str("to", evt.To).
		Str("account", evt.Account).
		Str("correlation_id", evt.CorrelationID).
		Time("at", evt.Timestamp).
		Msg("session transition")
}

func (c *AuditConsumer) handleCatalog(msg *message.Message) {
	defer msg.Ack()

	evt, err := DecodeCatalogReloaded(msg.Payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping malformed catalog event")
		return
	}

	metrics.RecordEventConsumed(TopicCatalogReloaded)

	level := zerolog.InfoLevel
	if evt.Outcome != "success" {
		level = zerolog.WarnLevel
	}
	c.logger.WithLevel(level).
		Str("error", evt.Error).
		Str("event_id", evt.EventID).
		Str("trigger", evt.Trigger).
		Str("outcome", evt.Outcome).
		Int("movies", evt.Movies).
		Int64("duration_ms", evt.DurationMS).
		Msg("catalog load")
}
