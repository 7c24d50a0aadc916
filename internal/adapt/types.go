// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"time"
)

// AnonymousUser is the user id carried by events with no signed-in user.
// Anonymous events still create global rules but are never user-indexed.
const AnonymousUser = ""

// IsAnonymous reports whether a user id represents anonymous traffic.
func IsAnonymous(userID string) bool {
	return userID == AnonymousUser || userID == "anonymous"
}

// EventType identifies the kind of user interaction an event carries.
type EventType string

// Interaction event types emitted by the surrounding application.
const (
	EventSearchPerformed       EventType = "search_performed"
	EventPlaceViewed           EventType = "place_viewed"
	EventFavoriteAdded         EventType = "favorite_added"
	EventItineraryAdded        EventType = "itinerary_added"
	EventRecommendationClicked EventType = "recommendation_clicked"
	EventRecommendationIgnored EventType = "recommendation_ignored"
	EventStrongRejection       EventType = "strong_rejection"
	EventBookingStarted        EventType = "booking_started"
	EventBookingCompleted      EventType = "booking_completed"
	EventSessionStarted        EventType = "session_started"
	EventSessionEnded          EventType = "session_ended"
	EventPageViewed            EventType = "page_viewed"
	EventPageExit              EventType = "page_exit"
)

// Critical reports whether this event type takes the low-latency path:
// processed synchronously at ingestion instead of waiting for the periodic
// batch. High-value signals (a favorite, a hard rejection, a completed
// booking) must influence the very next recommendation request.
func (t EventType) Critical() bool {
	switch t {
	case EventFavoriteAdded, EventStrongRejection, EventBookingCompleted:
		return true
	default:
		return false
	}
}

// Conversion reports whether this event type counts toward the session
// conversion rate.
func (t EventType) Conversion() bool {
	switch t {
	case EventFavoriteAdded, EventItineraryAdded, EventBookingStarted:
		return true
	default:
		return false
	}
}

// Valid reports whether the event type is one the engine knows.
func (t EventType) Valid() bool {
	switch t {
	case EventSearchPerformed, EventPlaceViewed, EventFavoriteAdded,
		EventItineraryAdded, EventRecommendationClicked, EventRecommendationIgnored,
		EventStrongRejection, EventBookingStarted, EventBookingCompleted,
		EventSessionStarted, EventSessionEnded, EventPageViewed, EventPageExit:
		return true
	default:
		return false
	}
}

// TimeOfDay is a coarse bucket of the local hour.
type TimeOfDay string

// Time of day buckets: 06-12 morning, 12-17 afternoon, 17-21 evening, else night.
const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// Season is a coarse bucket of the month.
type Season string

// Season buckets: Feb-Apr spring, May-Jul summer, Aug-Oct autumn, else winter.
const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// WeatherUnknown is the best-effort default when no weather lookup succeeded.
const WeatherUnknown = "unknown"

// ContextSnapshot is a point-in-time capture of environmental factors.
// Each InteractionEvent captures it by value at creation time, so later
// context changes never retroactively alter past events.
type ContextSnapshot struct {
	TimeOfDay   TimeOfDay `json:"time_of_day"`
	DayOfWeek   string    `json:"day_of_week"`
	Season      Season    `json:"season"`
	IsWeekend   bool      `json:"is_weekend"`
	IsMobile    bool      `json:"is_mobile"`
	Weather     string    `json:"weather"`
	Temperature float64   `json:"temperature"`
}

// Payload is the typed content of an InteractionEvent. Each event type has
// its own variant so handler dispatch is exhaustive; a decode failure
// degrades to the zero value of the variant (an empty pattern) rather than
// an error, so the calling UI is never blocked by tracking.
type Payload interface {
	// EventType returns the event type this payload belongs to.
	EventType() EventType
}

// SearchPayload carries a performed search.
type SearchPayload struct {
	Query      string   `json:"query,omitempty"`
	Activities []string `json:"activities,omitempty"`
}

// EventType implements Payload.
func (*SearchPayload) EventType() EventType { return EventSearchPerformed }

// PlaceViewPayload carries a place detail view.
type PlaceViewPayload struct {
	PlaceID      string `json:"place_id,omitempty"`
	PlaceName    string `json:"place_name,omitempty"`
	Category     string `json:"category,omitempty"`
	ViewDuration int    `json:"view_duration,omitempty"` // seconds
}

// EventType implements Payload.
func (*PlaceViewPayload) EventType() EventType { return EventPlaceViewed }

// FavoritePayload carries a favorite addition.
type FavoritePayload struct {
	PlaceID   string `json:"place_id,omitempty"`
	PlaceName string `json:"place_name,omitempty"`
	Category  string `json:"category,omitempty"`
}

// EventType implements Payload.
func (*FavoritePayload) EventType() EventType { return EventFavoriteAdded }

// ItineraryPayload carries an itinerary addition.
type ItineraryPayload struct {
	PlaceID   string `json:"place_id,omitempty"`
	PlaceName string `json:"place_name,omitempty"`
	Category  string `json:"category,omitempty"`
	Day       int    `json:"day,omitempty"`
}

// EventType implements Payload.
func (*ItineraryPayload) EventType() EventType { return EventItineraryAdded }

// RecommendationClickPayload carries a click on a served recommendation.
type RecommendationClickPayload struct {
	Source   string `json:"source,omitempty"`
	Position int    `json:"position,omitempty"`
	Category string `json:"category,omitempty"`
	PlaceID  string `json:"place_id,omitempty"`
}

// EventType implements Payload.
func (*RecommendationClickPayload) EventType() EventType { return EventRecommendationClicked }

// RecommendationIgnoredPayload carries a recommendation the user dismissed
// or scrolled past without engaging.
type RecommendationIgnoredPayload struct {
	Category string `json:"category,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Position int    `json:"position,omitempty"`
}

// EventType implements Payload.
func (*RecommendationIgnoredPayload) EventType() EventType { return EventRecommendationIgnored }

// StrongRejectionPayload carries an explicit negative signal, e.g. "not
// interested" or a removed favorite.
type StrongRejectionPayload struct {
	Category string `json:"category,omitempty"`
	Reason   string `json:"reason,omitempty"`
	PlaceID  string `json:"place_id,omitempty"`
}

// EventType implements Payload.
func (*StrongRejectionPayload) EventType() EventType { return EventStrongRejection }

// BookingPayload carries a booking start or completion.
type BookingPayload struct {
	PlaceID   string  `json:"place_id,omitempty"`
	PlaceName string  `json:"place_name,omitempty"`
	Category  string  `json:"category,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Completed bool    `json:"completed,omitempty"`
}

// EventType implements Payload.
func (p *BookingPayload) EventType() EventType {
	if p.Completed {
		return EventBookingCompleted
	}
	return EventBookingStarted
}

// SessionStartPayload carries a session start.
type SessionStartPayload struct {
	Referrer string `json:"referrer,omitempty"`
}

// EventType implements Payload.
func (*SessionStartPayload) EventType() EventType { return EventSessionStarted }

// SessionEndPayload summarizes a finished session.
type SessionEndPayload struct {
	EngagementLevel string  `json:"engagement_level,omitempty"`
	ConversionRate  float64 `json:"conversion_rate,omitempty"`
	DurationSeconds int     `json:"duration_seconds,omitempty"`
	ActionCount     int     `json:"action_count,omitempty"`
}

// EventType implements Payload.
func (*SessionEndPayload) EventType() EventType { return EventSessionEnded }

// PageViewPayload carries a page navigation.
type PageViewPayload struct {
	Page string `json:"page,omitempty"`
}

// EventType implements Payload.
func (*PageViewPayload) EventType() EventType { return EventPageViewed }

// PageExitPayload carries a page exit.
type PageExitPayload struct {
	Page            string `json:"page,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// EventType implements Payload.
func (*PageExitPayload) EventType() EventType { return EventPageExit }

// Category extracts the place category from a payload, if it carries one.
// Used both for learned rule patterns and for reinforcement matching.
func Category(p Payload) string {
	switch pl := p.(type) {
	case *PlaceViewPayload:
		return pl.Category
	case *FavoritePayload:
		return pl.Category
	case *ItineraryPayload:
		return pl.Category
	case *RecommendationClickPayload:
		return pl.Category
	case *RecommendationIgnoredPayload:
		return pl.Category
	case *StrongRejectionPayload:
		return pl.Category
	case *BookingPayload:
		return pl.Category
	default:
		return ""
	}
}

// InteractionEvent is a single typed user interaction. Immutable once
// created; produced by ingestion and consumed exactly once by the learning
// queue processor.
type InteractionEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Payload   Payload         `json:"-"`
	Context   ContextSnapshot `json:"context"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"user_id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
}

// RuleType names the learning method that produced an adaptation rule.
type RuleType string

// Rule types, one per learning method.
const (
	RuleContextualSearch       RuleType = "contextual_search_preference"
	RuleStrongPreference       RuleType = "strong_preference"
	RuleViewPattern            RuleType = "view_pattern"
	RulePlanningPreference     RuleType = "planning_preference"
	RuleRecommendationResponse RuleType = "recommendation_response"
	RuleNegativeFeedback       RuleType = "negative_feedback"
	RuleSessionBehavior        RuleType = "session_behavior"
)

// ContextualFactors is the environmental slice of a rule pattern. Only the
// factors relevant to the rule's learning method are populated.
type ContextualFactors struct {
	TimeOfDay TimeOfDay `json:"time_of_day,omitempty"`
	DayOfWeek string    `json:"day_of_week,omitempty"`
	Season    Season    `json:"season,omitempty"`
	Weather   string    `json:"weather,omitempty"`
	IsWeekend bool      `json:"is_weekend,omitempty"`
	Device    string    `json:"device,omitempty"`
}

// RulePattern describes the learned condition of an adaptation rule.
type RulePattern struct {
	Category        string            `json:"category,omitempty"`
	PlaceName       string            `json:"place_name,omitempty"`
	Activities      []string          `json:"activities,omitempty"`
	Source          string            `json:"source,omitempty"`
	Position        int               `json:"position,omitempty"`
	Reason          string            `json:"reason,omitempty"`
	ViewDuration    int               `json:"view_duration,omitempty"`
	EngagementLevel string            `json:"engagement_level,omitempty"`
	ConversionRate  float64           `json:"conversion_rate,omitempty"`
	Contextual      ContextualFactors `json:"contextual_factors,omitempty"`
}

// AdaptationRule is a weighted, confidence-scored pattern learned from one
// category of user behavior. Rules are owned jointly by the global table
// (by id) and the per-user index; the index holds references, not copies.
type AdaptationRule struct {
	ID            string      `json:"id"`
	Type          RuleType    `json:"type"`
	UserID        string      `json:"user_id,omitempty"`
	Pattern       RulePattern `json:"pattern"`
	Confidence    float64     `json:"confidence"`
	Weight        float64     `json:"weight"`
	AppliedCount  int         `json:"applied_count"`
	LastAppliedAt time.Time   `json:"last_applied_at,omitempty"`
	Custom        bool        `json:"custom,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Candidate is one entry of a recommendation candidate list. The adapter
// annotates output candidates with the score breakdown so a caller can
// audit why ranking changed.
type Candidate struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Category string  `json:"category,omitempty"`
	Score    float64 `json:"score"`

	// Set only on adapted output.
	OriginalScore   float64 `json:"original_score,omitempty"`
	AdaptationScore float64 `json:"adaptation_score,omitempty"`
	Adapted         bool    `json:"adapted,omitempty"`
}

// LearningStats is a read-only diagnostic snapshot of the engine.
type LearningStats struct {
	TotalRules   int  `json:"total_rules"`
	QueueSize    int  `json:"queue_size"`
	UserCount    int  `json:"user_count"`
	IsProcessing bool `json:"is_processing"`
}

// SessionSummary is the aggregate view of a tracked session.
type SessionSummary struct {
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id,omitempty"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int       `json:"duration_seconds"`
	ActionCount     int       `json:"action_count"`
	ConversionRate  float64   `json:"conversion_rate"`
	EngagementScore int       `json:"engagement_score"`
	EngagementLevel string    `json:"engagement_level"`
}
