// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
)

// interactionTopic is the single in-process topic events flow over.
const interactionTopic = "interaction.events"

// EventBus is the in-process transport between ingestion and the learning
// queue. Publishing blocks until the subscriber acks, so an event is either
// queued (or critically processed) by the time TrackInteraction returns, or
// dropped because no subscriber is running. Loss is tolerated; no error
// surfaces to the caller.
type EventBus struct {
	pubsub     *gochannel.GoChannel
	serializer *Serializer
	logger     zerolog.Logger
}

// NewEventBus creates the in-process event bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventBus(buffer int64, logger zerolog.Logger) *EventBus {
	log := logger.With().Str("component", "bus").Logger()

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            buffer,
		BlockPublishUntilSubscriberAck: true,
	}, newBusLogger(log))

	return &EventBus{
		pubsub:     pubsub,
		serializer: NewSerializer(),
		logger:     log,
	}
}

// Publish sends one event over the bus.
func (b *EventBus) Publish(evt *InteractionEvent) error {
	data, err := b.serializer.Marshal(evt)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(evt.ID, data)
	if err := b.pubsub.Publish(interactionTopic, msg); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscribe starts a consumer goroutine delivering decoded events to the
// handler in publish order. The goroutine exits when ctx is canceled or the
// bus is closed.
func (b *EventBus) Subscribe(ctx context.Context, handler func(*InteractionEvent)) error {
	messages, err := b.pubsub.Subscribe(ctx, interactionTopic)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	go func() {
		for msg := range messages {
			evt, err := b.serializer.Unmarshal(msg.Payload)
			if err != nil {
				// Undecodable events are dropped, not redelivered.
				b.logger.Warn().Str("message_id", msg.UUID).Err(err).Msg("discarding undecodable event")
				msg.Ack()
				continue
			}

			handler(evt)
			msg.Ack()
		}
	}()

	return nil
}

// Close shuts the bus down. Pending publishes fail afterward.
func (b *EventBus) Close() error {
	return b.pubsub.Close()
}

// busLogger adapts zerolog to watermill's LoggerAdapter.
type busLogger struct {
	logger zerolog.Logger
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newBusLogger(logger zerolog.Logger) busLogger {
	return busLogger{logger: logger}
}

// Error implements watermill.LoggerAdapter.
func (l busLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.event(l.logger.Error().Err(err), fields).Msg(msg)
}

// Info implements watermill.LoggerAdapter.
func (l busLogger) Info(msg string, fields watermill.LogFields) {
	l.event(l.logger.Info(), fields).Msg(msg)
}

// Debug implements watermill.LoggerAdapter.
func (l busLogger) Debug(msg string, fields watermill.LogFields) {
	l.event(l.logger.Debug(), fields).Msg(msg)
}

// Trace implements watermill.LoggerAdapter.
func (l busLogger) Trace(msg string, fields watermill.LogFields) {
	l.event(l.logger.Trace(), fields).Msg(msg)
}

// With implements watermill.LoggerAdapter.
func (l busLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return busLogger{logger: ctx.Logger()}
}

func (l busLogger) event(evt *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		evt = evt.Interface(k, v)
	}
	return evt
}
