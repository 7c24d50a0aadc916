// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/wanderkit/adapt/internal/metrics"
)

// Engine owns the behavioral adaptation pipeline: context monitoring, event
// ingestion, the learning queue, the rule store, the recommendation adapter,
// and the session tracker. All dependencies (clock, weather provider,
// persister) are constructor-injected; all periodic work is exposed as tick
// methods so timers live in the supervisor services and tests drive time
// directly.
type Engine struct {
	config Config
	logger zerolog.Logger

	clock     Clock
	contexts  *ContextMonitor
	rules     *RuleStore
	processor *Processor
	adapter   *Adapter
	sessions  *SessionTracker
	bus       *EventBus
	persister RulePersister

	// criticalLimiter bounds the synchronous fast path. When exhausted,
	// critical events degrade to the periodic batch.
	criticalLimiter *rate.Limiter
}

// NewEngine builds an engine. The persister may be nil, in which case
// Save/Load are no-ops and learning is memory-only.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, clock Clock, weather WeatherProvider, persister RulePersister, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	log := logger.With().Str("component", "engine").Logger()

	if weather == nil {
		log.Warn().Msg("no weather provider supplied, falling back to simulated weather")
		weather = NewSimulatedWeather(clock.Now().UnixNano())
	}

	rules := NewRuleStore(clock, logger)
	contexts := NewContextMonitor(clock, weather, cfg.IsMobile, logger)

	e := &Engine{
		config:          cfg,
		logger:          log,
		clock:           clock,
		contexts:        contexts,
		rules:           rules,
		processor:       NewProcessor(rules, cfg.MaxQueue, logger),
		adapter:         NewAdapter(rules, contexts, logger),
		sessions:        NewSessionTracker(clock, logger),
		bus:             NewEventBus(int64(cfg.MaxQueue), logger),
		persister:       persister,
		criticalLimiter: rate.NewLimiter(rate.Limit(cfg.CriticalPerSecond), cfg.CriticalBurst),
	}
	return e, nil
}

// Start attaches the engine's consumer to the event bus. Events tracked
// before Start are dropped, the same tolerated loss as termination before
// a drain.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.bus.Subscribe(ctx, e.consume); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	e.logger.Info().Msg("adaptation engine started")
	return nil
}

// TrackInteraction accepts one typed interaction. It never fails and never
// blocks on I/O: the event is stamped with the current context, buffered
// for the session, and handed to the bus. Critical event types are learned
// synchronously before this returns.
func (e *Engine) TrackInteraction(eventType EventType, payload Payload) {
	evt := e.newEvent(eventType, payload)

	e.sessions.Record(evt)
	metrics.EventsIngested.WithLabelValues(string(eventType)).Inc()

	if err := e.bus.Publish(evt); err != nil {
		// Tracking must not block or fail the caller; the event is lost.
		e.logger.Warn().
			Str("event_id", evt.ID).
			Str("event_type", string(eventType)).
			Err(err).
			Msg("event not enqueued")
	}
}

// consume routes one event off the bus: critical types take the synchronous
// learning path (subject to the fast-path limiter), everything else waits
// for the periodic batch. An event takes exactly one of the two paths, so a
// single interaction is never counted into two rules.
func (e *Engine) consume(evt *InteractionEvent) {
	if evt.Type.Critical() {
		if e.criticalLimiter.Allow() {
			metrics.CriticalFastPath.Inc()
			e.processor.ProcessEvent(evt)
			return
		}
		metrics.CriticalDeferred.Inc()
	}
	e.processor.Enqueue(evt)
}

// newEvent constructs an immutable event stamped with the current context
// and session identity.
func (e *Engine) newEvent(eventType EventType, payload Payload) *InteractionEvent {
	sessionID, userID, _ := e.sessions.Current()
	return &InteractionEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   payload,
		Context:   e.contexts.Snapshot(),
		Timestamp: e.clock.Now(),
		UserID:    userID,
		SessionID: sessionID,
	}
}

// Adapt re-ranks a candidate list for a user. Anonymous or rule-less users
// get the input back untouched.
func (e *Engine) Adapt(candidates []Candidate, userID string) []Candidate {
	return e.adapter.Adapt(candidates, userID)
}

// StartSession begins a session bound to the given user and emits the
// session_started event.
func (e *Engine) StartSession(userID string) string {
	id := e.sessions.Start(userID)
	e.TrackInteraction(EventSessionStarted, &SessionStartPayload{})
	return id
}

// EndSession summarizes the active session, emits the session_ended event
// (which the processor learns as session behavior), and flushes the buffer.
func (e *Engine) EndSession() (SessionSummary, bool) {
	summary, ok := e.sessions.Summary()
	if !ok {
		return SessionSummary{}, false
	}

	e.TrackInteraction(EventSessionEnded, &SessionEndPayload{
		EngagementLevel: summary.EngagementLevel,
		ConversionRate:  summary.ConversionRate,
		DurationSeconds: summary.DurationSeconds,
		ActionCount:     summary.ActionCount,
	})
	e.sessions.End()
	return summary, true
}

// ProcessQueue drains the learning queue once. Tick method for the learner
// service.
func (e *Engine) ProcessQueue() {
	e.processor.ProcessQueue()
}

// RefreshContext recomputes time-derived context. Tick method for the
// context service.
func (e *Engine) RefreshContext() {
	e.contexts.RefreshTime()
}

// RefreshWeather runs the best-effort weather lookup. Tick method for the
// context service.
func (e *Engine) RefreshWeather(ctx context.Context) {
	e.contexts.RefreshWeather(ctx)
}

// SaveRules persists the rule table to the durable slot. Persistence errors
// are absorbed: the engine continues with in-memory state.
func (e *Engine) SaveRules(ctx context.Context) {
	if e.persister == nil {
		return
	}

	start := time.Now()
	rules := e.rules.All()
	if err := e.persister.SaveRules(ctx, rules); err != nil {
		metrics.PersistErrors.Inc()
		e.logger.Warn().Err(err).Msg("rule save failed, continuing in memory")
		return
	}

	metrics.PersistDuration.Observe(time.Since(start).Seconds())
	e.logger.Debug().Int("rules", len(rules)).Msg("rule table saved")
}

// LoadRules restores the rule table from the durable slot and rebuilds the
// per-user index. Best-effort: a corrupt or missing slot yields an empty
// rule set.
func (e *Engine) LoadRules(ctx context.Context) {
	if e.persister == nil {
		return
	}

	rules, err := e.persister.LoadRules(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("rule load failed, starting with empty rule set")
		return
	}

	e.rules.Replace(rules)
	e.logger.Info().Int("rules", len(rules)).Msg("rule table loaded")
}

// CurrentContext returns the current context snapshot.
func (e *Engine) CurrentContext() ContextSnapshot {
	return e.contexts.Snapshot()
}

// Stats returns a read-only diagnostic snapshot.
func (e *Engine) Stats() LearningStats {
	return LearningStats{
		TotalRules:   e.rules.Count(),
		QueueSize:    e.processor.QueueSize(),
		UserCount:    e.rules.UserCount(),
		IsProcessing: e.processor.IsProcessing(),
	}
}

// UserRules returns the user's rules, never nil.
func (e *Engine) UserRules(userID string) []*AdaptationRule {
	return e.rules.UserRules(userID)
}

// Close flushes the active session, drains what is queued, saves rules one
// last time, and shuts the bus down.
func (e *Engine) Close(ctx context.Context) error {
	e.EndSession()
	e.ProcessQueue()
	e.SaveRules(ctx)

	if err := e.bus.Close(); err != nil {
		return fmt.Errorf("close bus: %w", err)
	}
	e.logger.Info().Msg("adaptation engine stopped")
	return nil
}
