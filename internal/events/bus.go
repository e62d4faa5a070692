// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// ErrBusClosed is returned by Subscribe after Close.
var ErrBusClosed = errors.New("event bus closed")

// BusConfig tunes the in-process pub/sub.
type BusConfig struct {
	// OutputChannelBuffer is the per-subscriber buffer. Publishing blocks
	// once a subscriber falls this far behind.
	OutputChannelBuffer int64

	// Logger receives Watermill's internal logs. Defaults to the global
	// zerolog logger through the slog bridge.
	Logger watermill.LoggerAdapter
}

// DefaultBusConfig returns production defaults.
func DefaultBusConfig() BusConfig {
	return BusConfig{OutputChannelBuffer: 256}
}

// Bus publishes domain events. A nil *Bus is valid and drops everything,
// which keeps unit tests of publishers free of bus setup.
type Bus struct {
	pubsub *gochannel.GoChannel

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a Watermill GoChannel bus.
func NewBus(cfg BusConfig) *Bus {
	logger := cfg.Logger
	if logger == nil {
		logger = watermill.NewSlogLogger(logging.NewSlogLogger())
	}
	if cfg.OutputChannelBuffer <= 0 {
		cfg.OutputChannelBuffer = DefaultBusConfig().OutputChannelBuffer
	}

	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputChannelBuffer,
		}, logger),
	}
}

// PublishSessionTransition publishes evt, filling EventID and Timestamp
// when unset. Failures are logged and counted.
func (b *Bus) PublishSessionTransition(ctx context.Context, evt SessionTransitioned) {
	if b == nil {
		return
	}
	evt.SchemaVersion = SchemaVersion
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if evt.CorrelationID == "" {
		evt.CorrelationID = logging.CorrelationIDFromContext(ctx)
	}
	b.publish(ctx, TopicSessionTransitioned, evt.EventID, evt)
}

// PublishCatalogReload publishes evt. Failures are logged and counted.
func (b *Bus) PublishCatalogReload(ctx context.Context, evt CatalogReloaded) {
	if b == nil {
		return
	}
	evt.SchemaVersion = SchemaVersion
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	b.publish(ctx, TopicCatalogReloaded, evt.EventID, evt)
}

func (b *Bus) publish(ctx context.Context, topic, id string, payload interface{}) {
	err := b.doPublish(ctx, topic, id, payload)
	metrics.RecordEventPublished(topic, err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("topic", topic).Str("event_id", id).Msg("Failed to publish event")
	}
}

func (b *Bus) doPublish(ctx context.Context, topic, id string, payload interface{}) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	data, err := encode(payload)
	if err != nil {
		return err
	}

	msg := message.NewMessage(id, data)
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		msg.Metadata.Set("correlation_id", cid)
	}
	return b.pubsub.Publish(topic, msg)
}

// Subscribe returns a channel of messages on topic. Messages must be
// acked or nacked by the receiver.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the bus down and closes every subscription channel.
func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}
