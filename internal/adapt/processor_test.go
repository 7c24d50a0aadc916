// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestProcessor(maxQueue int) (*Processor, *RuleStore) {
	clock := &FixedClock{Time: time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)}
	rules := NewRuleStore(clock, zerolog.Nop())
	return NewProcessor(rules, maxQueue, zerolog.Nop()), rules
}

func testEvent(t EventType, payload Payload) *InteractionEvent {
	return &InteractionEvent{
		ID:      "evt-" + string(t),
		Type:    t,
		Payload: payload,
		UserID:  "u1",
		Context: ContextSnapshot{
			TimeOfDay: Morning,
			DayOfWeek: "wednesday",
			Season:    Spring,
			Weather:   "sunny",
		},
	}
}

func TestLearnHandlerTable(t *testing.T) {
	tests := []struct {
		name           string
		event          *InteractionEvent
		wantType       RuleType
		wantConfidence float64
		wantWeight     float64
		wantCategory   string
	}{
		{
			name:           "search",
			event:          testEvent(EventSearchPerformed, &SearchPayload{Query: "hiking", Activities: []string{"hiking"}}),
			wantType:       RuleContextualSearch,
			wantConfidence: 0.7,
			wantWeight:     1.0,
		},
		{
			name:           "place view",
			event:          testEvent(EventPlaceViewed, &PlaceViewPayload{Category: "Outdoor", ViewDuration: 45}),
			wantType:       RuleViewPattern,
			wantConfidence: 0.5,
			wantWeight:     1.0,
			wantCategory:   "Outdoor",
		},
		{
			name:           "favorite",
			event:          testEvent(EventFavoriteAdded, &FavoritePayload{Category: "Cultural"}),
			wantType:       RuleStrongPreference,
			wantConfidence: 0.9,
			wantWeight:     3.0,
			wantCategory:   "Cultural",
		},
		{
			name:           "itinerary",
			event:          testEvent(EventItineraryAdded, &ItineraryPayload{Category: "Food", Day: 2}),
			wantType:       RulePlanningPreference,
			wantConfidence: 0.8,
			wantWeight:     2.0,
			wantCategory:   "Food",
		},
		{
			name:           "recommendation click",
			event:          testEvent(EventRecommendationClicked, &RecommendationClickPayload{Category: "Nightlife", Source: "home", Position: 2}),
			wantType:       RuleRecommendationResponse,
			wantConfidence: 0.7,
			wantWeight:     1.5,
			wantCategory:   "Nightlife",
		},
		{
			name:           "recommendation ignored",
			event:          testEvent(EventRecommendationIgnored, &RecommendationIgnoredPayload{Category: "Nightlife", Position: 1}),
			wantType:       RuleNegativeFeedback,
			wantConfidence: 0.6,
			wantWeight:     -1.0,
			wantCategory:   "Nightlife",
		},
		{
			name:           "strong rejection",
			event:          testEvent(EventStrongRejection, &StrongRejectionPayload{Category: "Nightlife", Reason: "not interested"}),
			wantType:       RuleNegativeFeedback,
			wantConfidence: 0.8,
			wantWeight:     -2.0,
			wantCategory:   "Nightlife",
		},
		{
			name:           "booking completed",
			event:          testEvent(EventBookingCompleted, &BookingPayload{Category: "Cultural", Completed: true}),
			wantType:       RuleStrongPreference,
			wantConfidence: 0.9,
			wantWeight:     3.0,
			wantCategory:   "Cultural",
		},
		{
			name:           "session end",
			event:          testEvent(EventSessionEnded, &SessionEndPayload{EngagementLevel: EngagementHigh, ConversionRate: 0.5}),
			wantType:       RuleSessionBehavior,
			wantConfidence: 0.6,
			wantWeight:     1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, rules := newTestProcessor(10)
			proc.ProcessEvent(tt.event)

			all := rules.All()
			if len(all) != 1 {
				t.Fatalf("rules created = %d, want 1", len(all))
			}
			rule := all[0]
			if rule.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", rule.Type, tt.wantType)
			}
			if rule.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", rule.Confidence, tt.wantConfidence)
			}
			if rule.Weight != tt.wantWeight {
				t.Errorf("Weight = %v, want %v", rule.Weight, tt.wantWeight)
			}
			if rule.Pattern.Category != tt.wantCategory {
				t.Errorf("Pattern.Category = %q, want %q", rule.Pattern.Category, tt.wantCategory)
			}
			if rule.UserID != "u1" {
				t.Errorf("UserID = %q, want u1", rule.UserID)
			}
		})
	}
}

func TestLearnNoRuleEvents(t *testing.T) {
	events := []*InteractionEvent{
		testEvent(EventBookingStarted, &BookingPayload{Category: "Food"}),
		testEvent(EventSessionStarted, &SessionStartPayload{}),
		testEvent(EventPageViewed, &PageViewPayload{Page: "/home"}),
		testEvent(EventPageExit, &PageExitPayload{Page: "/home"}),
	}

	proc, rules := newTestProcessor(10)
	for _, evt := range events {
		proc.ProcessEvent(evt)
	}
	if rules.Count() != 0 {
		t.Errorf("rules created = %d, want 0", rules.Count())
	}
}

func TestLearnNilPayloadUsesZeroVariant(t *testing.T) {
	proc, rules := newTestProcessor(10)
	evt := testEvent(EventFavoriteAdded, nil)
	proc.ProcessEvent(evt)

	all := rules.All()
	if len(all) != 1 {
		t.Fatalf("rules created = %d, want 1", len(all))
	}
	if all[0].Pattern.Category != "" {
		t.Errorf("Pattern.Category = %q, want empty", all[0].Pattern.Category)
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	proc, _ := newTestProcessor(2)

	for i := 0; i < 5; i++ {
		proc.Enqueue(testEvent(EventPlaceViewed, &PlaceViewPayload{Category: "Outdoor"}))
	}
	if got := proc.QueueSize(); got != 2 {
		t.Errorf("QueueSize = %d, want capped at 2", got)
	}
}

func TestProcessQueueDrainsInOrder(t *testing.T) {
	proc, rules := newTestProcessor(10)

	proc.Enqueue(testEvent(EventPlaceViewed, &PlaceViewPayload{Category: "Outdoor"}))
	proc.Enqueue(testEvent(EventFavoriteAdded, &FavoritePayload{Category: "Cultural"}))
	proc.ProcessQueue()

	if rules.Count() != 2 {
		t.Fatalf("rules = %d, want 2", rules.Count())
	}
	if got := proc.QueueSize(); got != 0 {
		t.Errorf("QueueSize = %d after drain, want 0", got)
	}

	// A second drain of the now-empty queue is a no-op.
	proc.ProcessQueue()
	if rules.Count() != 2 {
		t.Errorf("rules = %d after empty drain, want 2", rules.Count())
	}
}

func TestProcessQueueBatchReinforcement(t *testing.T) {
	proc, rules := newTestProcessor(10)

	// Two same-category views in one batch: each creation pass rule gets the
	// reinforcement pass applied per event.
	proc.Enqueue(testEvent(EventPlaceViewed, &PlaceViewPayload{Category: "Outdoor"}))
	proc.Enqueue(testEvent(EventPlaceViewed, &PlaceViewPayload{Category: "Outdoor"}))
	proc.ProcessQueue()

	for _, rule := range rules.UserRules("u1") {
		if rule.AppliedCount != 2 {
			t.Errorf("AppliedCount = %d, want 2 (one per batch event)", rule.AppliedCount)
		}
	}
}

func TestProcessOneIsolatesFailure(t *testing.T) {
	proc, rules := newTestProcessor(10)

	// An unknown payload type fails its event without aborting the batch.
	proc.Enqueue(&InteractionEvent{ID: "bad", Type: "teleported", UserID: "u1"})
	proc.Enqueue(testEvent(EventFavoriteAdded, &FavoritePayload{Category: "Cultural"}))
	proc.ProcessQueue()

	if rules.Count() != 1 {
		t.Errorf("rules = %d, want 1 (good event survives bad one)", rules.Count())
	}
}
