// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"testing"
	"time"
)

func TestSerializerRoundTrip(t *testing.T) {
	s := NewSerializer()
	evt := &InteractionEvent{
		ID:   "evt-1",
		Type: EventFavoriteAdded,
		Payload: &FavoritePayload{
			PlaceID:   "p1",
			PlaceName: "Sagrada Familia",
			Category:  "Cultural",
		},
		Context: ContextSnapshot{
			TimeOfDay: Morning,
			DayOfWeek: "tuesday",
			Season:    Summer,
			Weather:   "sunny",
		},
		Timestamp: time.Date(2026, time.June, 2, 9, 0, 0, 0, time.UTC),
		UserID:    "u1",
		SessionID: "s1",
	}

	data, err := s.Marshal(evt)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got, err := s.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.ID != evt.ID || got.Type != evt.Type || got.UserID != evt.UserID || got.SessionID != evt.SessionID {
		t.Errorf("identity fields differ: got %+v", got)
	}
	if got.Context != evt.Context {
		t.Errorf("Context = %+v, want %+v", got.Context, evt.Context)
	}
	if !got.Timestamp.Equal(evt.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, evt.Timestamp)
	}

	fav, ok := got.Payload.(*FavoritePayload)
	if !ok {
		t.Fatalf("Payload type = %T, want *FavoritePayload", got.Payload)
	}
	if *fav != *evt.Payload.(*FavoritePayload) {
		t.Errorf("Payload = %+v, want %+v", fav, evt.Payload)
	}
}

func TestSerializerBookingCompletionSurvivesRoundTrip(t *testing.T) {
	s := NewSerializer()
	evt := &InteractionEvent{
		ID:      "evt-2",
		Type:    EventBookingCompleted,
		Payload: &BookingPayload{PlaceID: "p2", Category: "Outdoor", Completed: true},
	}

	data, err := s.Marshal(evt)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := s.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	booking, ok := got.Payload.(*BookingPayload)
	if !ok {
		t.Fatalf("Payload type = %T, want *BookingPayload", got.Payload)
	}
	if !booking.Completed {
		t.Error("Completed = false after round trip, want true")
	}
}

func TestSerializerMalformedPayloadDegradesToEmptyPattern(t *testing.T) {
	s := NewSerializer()
	data := []byte(`{"id":"evt-3","type":"favorite_added","payload":{"category":12345}}`)

	got, err := s.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v, want degraded event", err)
	}

	fav, ok := got.Payload.(*FavoritePayload)
	if !ok {
		t.Fatalf("Payload type = %T, want *FavoritePayload", got.Payload)
	}
	if fav.Category != "" {
		t.Errorf("Category = %q, want empty after degraded decode", fav.Category)
	}
}

func TestSerializerUnknownTypeHasNilPayload(t *testing.T) {
	s := NewSerializer()
	data := []byte(`{"id":"evt-4","type":"teleported"}`)

	got, err := s.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Payload != nil {
		t.Errorf("Payload = %+v, want nil for unknown type", got.Payload)
	}
}

func TestSerializerRejectsInvalidJSON(t *testing.T) {
	s := NewSerializer()
	if _, err := s.Unmarshal([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for invalid envelope")
	}
}

func TestNewPayloadCoversEveryEventType(t *testing.T) {
	all := []EventType{
		EventSearchPerformed, EventPlaceViewed, EventFavoriteAdded,
		EventItineraryAdded, EventRecommendationClicked, EventRecommendationIgnored,
		EventStrongRejection, EventBookingStarted, EventBookingCompleted,
		EventSessionStarted, EventSessionEnded, EventPageViewed, EventPageExit,
	}

	for _, et := range all {
		p := NewPayload(et)
		if p == nil {
			t.Errorf("NewPayload(%q) = nil", et)
			continue
		}
		if got := p.EventType(); got != et {
			t.Errorf("NewPayload(%q).EventType() = %q", et, got)
		}
	}

	if p := NewPayload("teleported"); p != nil {
		t.Errorf("NewPayload(unknown) = %+v, want nil", p)
	}
}
