// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engagement levels derived from the engagement score.
const (
	EngagementHigh   = "high"
	EngagementMedium = "medium"
	EngagementLow    = "low"
)

// interactionRecord is the lightweight per-event entry of the session buffer.
type interactionRecord struct {
	Type      EventType
	Timestamp time.Time
}

// Session is the state of one tracked session. It lives for the process
// lifetime and is flushed on session end.
type Session struct {
	ID          string
	UserID      string
	StartTime   time.Time
	buffer      []interactionRecord
	lastContext ContextSnapshot
}

// SessionTracker aggregates session duration, action counts, and conversion
// signals into an engagement classification.
type SessionTracker struct {
	mu      sync.Mutex
	current *Session

	clock  Clock
	logger zerolog.Logger
}

// NewSessionTracker creates a tracker with no active session.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSessionTracker(clock Clock, logger zerolog.Logger) *SessionTracker {
	return &SessionTracker{
		clock:  clock,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// Start begins a new session bound to the given user (anonymous allowed).
// An already-active session is replaced without a summary; callers that
// want the summary end the previous session first.
func (t *SessionTracker) Start(userID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		StartTime: t.clock.Now(),
	}
	t.logger.Debug().
		Str("session_id", t.current.ID).
		Str("user_id", userID).
		Msg("session started")
	return t.current.ID
}

// Current returns the active session and user ids. ok is false when no
// session has been started.
func (t *SessionTracker) Current() (sessionID, userID string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return "", "", false
	}
	return t.current.ID, t.current.UserID, true
}

// Record appends an interaction to the session buffer. Events arriving with
// no active session are counted against an implicit anonymous session.
func (t *SessionTracker) Record(evt *InteractionEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		t.current = &Session{
			ID:        evt.SessionID,
			StartTime: t.clock.Now(),
		}
		if t.current.ID == "" {
			t.current.ID = uuid.New().String()
		}
	}

	t.current.buffer = append(t.current.buffer, interactionRecord{
		Type:      evt.Type,
		Timestamp: evt.Timestamp,
	})
	t.current.lastContext = evt.Context
}

// Summary computes the aggregate view of the active session. ok is false
// when no session is active.
func (t *SessionTracker) Summary() (SessionSummary, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return SessionSummary{}, false
	}
	return t.summarizeLocked(), true
}

// End summarizes and flushes the active session.
func (t *SessionTracker) End() (SessionSummary, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return SessionSummary{}, false
	}

	summary := t.summarizeLocked()
	t.logger.Debug().
		Str("session_id", summary.SessionID).
		Int("actions", summary.ActionCount).
		Str("engagement", summary.EngagementLevel).
		Msg("session ended")

	t.current = nil
	return summary, true
}

// summarizeLocked builds the summary for the active session. Caller holds mu.
func (t *SessionTracker) summarizeLocked() SessionSummary {
	duration := int(t.clock.Now().Sub(t.current.StartTime).Seconds())
	actions := len(t.current.buffer)
	conversion := conversionRate(t.current.buffer)
	score := engagementScore(duration, actions, conversion)

	return SessionSummary{
		SessionID:       t.current.ID,
		UserID:          t.current.UserID,
		StartTime:       t.current.StartTime,
		DurationSeconds: duration,
		ActionCount:     actions,
		ConversionRate:  conversion,
		EngagementScore: score,
		EngagementLevel: EngagementLevelFor(score),
	}
}

// conversionRate is the share of buffered events that are conversion
// signals. Zero for an empty buffer.
func conversionRate(buffer []interactionRecord) float64 {
	if len(buffer) == 0 {
		return 0
	}

	conversions := 0
	for _, rec := range buffer {
		if rec.Type.Conversion() {
			conversions++
		}
	}
	return float64(conversions) / float64(len(buffer))
}

// engagementScore combines three independent buckets into a 0-100 score:
// session duration, action count, and conversion rate.
func engagementScore(durationSeconds, actionCount int, conversion float64) int {
	score := 0

	switch {
	case durationSeconds >= 300:
		score += 40
	case durationSeconds >= 120:
		score += 25
	case durationSeconds >= 60:
		score += 15
	}

	switch {
	case actionCount >= 10:
		score += 30
	case actionCount >= 5:
		score += 20
	case actionCount >= 2:
		score += 10
	}

	score += int(conversion * 30)
	return score
}

// EngagementLevelFor classifies a 0-100 engagement score.
func EngagementLevelFor(score int) string {
	switch {
	case score >= 80:
		return EngagementHigh
	case score >= 50:
		return EngagementMedium
	default:
		return EngagementLow
	}
}
