// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// eventEnvelope is the wire form of an InteractionEvent. The payload is a
// raw JSON blob tagged by the event type so each variant decodes into its
// own struct.
type eventEnvelope struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Context   ContextSnapshot `json:"context"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"user_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
}

// Serializer encodes and decodes InteractionEvents for the event bus.
type Serializer struct{}

// NewSerializer creates a new serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Marshal converts an event to JSON bytes.
func (s *Serializer) Marshal(event *InteractionEvent) ([]byte, error) {
	env := eventEnvelope{
		ID:        event.ID,
		Type:      event.Type,
		Context:   event.Context,
		Timestamp: event.Timestamp,
		UserID:    event.UserID,
		SessionID: event.SessionID,
	}

	if event.Payload != nil {
		data, err := json.Marshal(event.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		env.Payload = data
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return data, nil
}

// Unmarshal converts JSON bytes to an event. A malformed payload blob is not
// an error: the event carries the zero value of its payload variant (an
// empty pattern) so tracking never fails upstream.
func (s *Serializer) Unmarshal(data []byte) (*InteractionEvent, error) {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}

	event := &InteractionEvent{
		ID:        env.ID,
		Type:      env.Type,
		Context:   env.Context,
		Timestamp: env.Timestamp,
		UserID:    env.UserID,
		SessionID: env.SessionID,
	}

	event.Payload = NewPayload(env.Type)
	if event.Payload != nil && len(env.Payload) > 0 {
		// Best effort: a partial decode leaves the remaining fields zero.
		_ = json.Unmarshal(env.Payload, event.Payload)
	}

	return event, nil
}

// NewPayload returns the zero-value payload variant for an event type, or
// nil for unknown types.
func NewPayload(t EventType) Payload {
	switch t {
	case EventSearchPerformed:
		return &SearchPayload{}
	case EventPlaceViewed:
		return &PlaceViewPayload{}
	case EventFavoriteAdded:
		return &FavoritePayload{}
	case EventItineraryAdded:
		return &ItineraryPayload{}
	case EventRecommendationClicked:
		return &RecommendationClickPayload{}
	case EventRecommendationIgnored:
		return &RecommendationIgnoredPayload{}
	case EventStrongRejection:
		return &StrongRejectionPayload{}
	case EventBookingStarted:
		return &BookingPayload{}
	case EventBookingCompleted:
		return &BookingPayload{Completed: true}
	case EventSessionStarted:
		return &SessionStartPayload{}
	case EventSessionEnded:
		return &SessionEndPayload{}
	case EventPageViewed:
		return &PageViewPayload{}
	case EventPageExit:
		return &PageExitPayload{}
	default:
		return nil
	}
}
