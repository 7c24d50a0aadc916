// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/wanderkit/adapt/internal/metrics"
)

// Processor drains the learning queue and turns events into adaptation
// rules. A single atomic flag guards re-entrancy: if a drain is already
// running when the timer fires, the tick is a no-op and state reconciles on
// the next one.
type Processor struct {
	mu       sync.Mutex
	queue    []*InteractionEvent
	maxQueue int

	processing atomic.Bool

	rules  *RuleStore
	logger zerolog.Logger
}

// NewProcessor creates a processor writing rules into the given store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProcessor(rules *RuleStore, maxQueue int, logger zerolog.Logger) *Processor {
	return &Processor{
		maxQueue: maxQueue,
		rules:    rules,
		logger:   logger.With().Str("component", "processor").Logger(),
	}
}

// Enqueue appends an event to the learning queue. When the queue is full the
// event is dropped with a warning; learning loss is tolerated, blocking the
// producer is not.
func (p *Processor) Enqueue(evt *InteractionEvent) {
	p.mu.Lock()
	if len(p.queue) >= p.maxQueue {
		p.mu.Unlock()
		metrics.EventsDropped.Inc()
		p.logger.Warn().
			Str("event_id", evt.ID).
			Str("event_type", string(evt.Type)).
			Msg("learning queue full, event dropped")
		return
	}
	p.queue = append(p.queue, evt)
	depth := len(p.queue)
	p.mu.Unlock()

	metrics.QueueDepth.Set(float64(depth))
}

// QueueSize returns the current queue depth.
func (p *Processor) QueueSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// IsProcessing reports whether a batch drain is in flight.
func (p *Processor) IsProcessing() bool {
	return p.processing.Load()
}

// ProcessQueue drains the queue in arrival order. The queue contents are
// swapped out atomically so events arriving mid-batch land in a fresh queue.
// A failure while processing one event never aborts the batch.
func (p *Processor) ProcessQueue() {
	if !p.processing.CompareAndSwap(false, true) {
		return
	}
	defer p.processing.Store(false)

	p.mu.Lock()
	batch := p.queue
	p.queue = nil
	p.mu.Unlock()

	metrics.QueueDepth.Set(0)
	if len(batch) == 0 {
		return
	}
	metrics.BatchSize.Observe(float64(len(batch)))

	for _, evt := range batch {
		p.processOne(evt)
	}

	for _, evt := range batch {
		p.reinforce(evt)
	}

	p.logger.Debug().Int("batch", len(batch)).Msg("learning batch processed")
}

// ProcessEvent handles one event outside the batch cycle. This is the
// critical fast path: the rule and its reinforcement are visible before the
// call returns.
func (p *Processor) ProcessEvent(evt *InteractionEvent) {
	p.processOne(evt)
	p.reinforce(evt)
}

// processOne dispatches a single event to its learning handler, isolating
// failures per event.
func (p *Processor) processOne(evt *InteractionEvent) {
	defer func() {
		if r := recover(); r != nil {
			metrics.EventProcessErrors.WithLabelValues(string(evt.Type)).Inc()
			p.logger.Error().
				Str("event_id", evt.ID).
				Str("event_type", string(evt.Type)).
				Interface("panic", r).
				Msg("event handler panicked, batch continues")
		}
	}()

	if err := p.learn(evt); err != nil {
		metrics.EventProcessErrors.WithLabelValues(string(evt.Type)).Inc()
		p.logger.Warn().
			Str("event_id", evt.ID).
			Str("event_type", string(evt.Type)).
			Err(err).
			Msg("event handler failed, batch continues")
	}
}

// learn synthesizes one adaptation rule from the event. Event types that
// carry no learnable signal (page navigation, session start) produce none.
func (p *Processor) learn(evt *InteractionEvent) error {
	payload := evt.Payload
	if payload == nil {
		payload = NewPayload(evt.Type)
		if payload == nil {
			return fmt.Errorf("unknown event type %q", evt.Type)
		}
	}

	switch pl := payload.(type) {
	case *SearchPayload:
		p.rules.Create(RuleContextualSearch, RuleSeed{
			UserID:     evt.UserID,
			Confidence: 0.7,
			Weight:     1.0,
			Pattern: RulePattern{
				Activities: pl.Activities,
				Contextual: ContextualFactors{
					TimeOfDay: evt.Context.TimeOfDay,
					DayOfWeek: evt.Context.DayOfWeek,
					Season:    evt.Context.Season,
					Weather:   evt.Context.Weather,
				},
			},
		})

	case *PlaceViewPayload:
		p.rules.Create(RuleViewPattern, RuleSeed{
			UserID:     evt.UserID,
			Confidence: 0.5,
			Weight:     1.0,
			Pattern: RulePattern{
				Category:     pl.Category,
				PlaceName:    pl.PlaceName,
				ViewDuration: pl.ViewDuration,
				Contextual: ContextualFactors{
					TimeOfDay: evt.Context.TimeOfDay,
					Device:    deviceClass(evt.Context),
				},
			},
		})

	case *FavoritePayload:
		p.rules.Create(RuleStrongPreference, RuleSeed{
			UserID:     evt.UserID,
			Confidence: 0.9,
			Weight:     3.0,
			Pattern: RulePattern{
				Category:  pl.Category,
				PlaceName: pl.PlaceName,
				Contextual: ContextualFactors{
					TimeOfDay: evt.Context.TimeOfDay,
					Season:    evt.Context.Season,
					Weather:   evt.Context.Weather,
				},
			},
		})

	case *ItineraryPayload:
		p.rules.Create(RulePlanningPreference, RuleSeed{
			UserID:     evt.UserID,
			Confidence: 0.8,
			Weight:     2.0,
			Pattern: RulePattern{
				Category:  pl.Category,
				PlaceName: pl.PlaceName,
				Contextual: ContextualFactors{
					TimeOfDay: evt.Context.TimeOfDay,
					IsWeekend: evt.Context.IsWeekend,
				},
			},
		})

	case *RecommendationClickPayload:
		p.rules.Create(RuleRecommendationResponse, RuleSeed{
			UserID:     evt.UserID,
			Confidence: 0.7,
			Weight:     1.5,
			Pattern: RulePattern{
				Category:   pl.Category,
				Source:     pl.Source,
				Position:   pl.Position,
				Contextual: allFactors(evt.Context),
			},
		})

	case *RecommendationIgnoredPayload:
		p.rules.Create(RuleNegativeFeedback, RuleSeed{
			UserID:     evt.UserID,
			Confidence: 0.6,
			Weight:     -1.0,
			Pattern: RulePattern{
				Category:   pl.Category,
				Reason:     pl.Reason,
				Contextual: allFactors(evt.Context),
			},
		})

	case *StrongRejectionPayload:
		// Explicit rejection learns like ignored feedback, twice as heavy.
		p.rules.Create(RuleNegativeFeedback, RuleSeed{
			UserID:     evt.UserID,
			Confidence: 0.8,
			Weight:     -2.0,
			Pattern: RulePattern{
				Category:   pl.Category,
				Reason:     pl.Reason,
				Contextual: allFactors(evt.Context),
			},
		})

	case *BookingPayload:
		if !pl.Completed {
			return nil // booking_started only feeds the conversion rate
		}
		p.rules.Create(RuleStrongPreference, RuleSeed{
			UserID:     evt.UserID,
			Confidence: 0.9,
			Weight:     3.0,
			Pattern: RulePattern{
				Category:  pl.Category,
				PlaceName: pl.PlaceName,
				Contextual: ContextualFactors{
					TimeOfDay: evt.Context.TimeOfDay,
					Season:    evt.Context.Season,
					Weather:   evt.Context.Weather,
				},
			},
		})

	case *SessionEndPayload:
		p.rules.Create(RuleSessionBehavior, RuleSeed{
			UserID:     evt.UserID,
			Confidence: 0.6,
			Weight:     1.0,
			Pattern: RulePattern{
				EngagementLevel: pl.EngagementLevel,
				ConversionRate:  pl.ConversionRate,
				Contextual:      allFactors(evt.Context),
			},
		})

	case *SessionStartPayload, *PageViewPayload, *PageExitPayload:
		// Navigation noise: buffered for engagement, no rule.

	default:
		return fmt.Errorf("no handler for payload %T", payload)
	}

	return nil
}

// reinforce runs the post-processing pass for one event: user rules whose
// type or pattern category matches are applied and their confidence
// ratcheted.
func (p *Processor) reinforce(evt *InteractionEvent) {
	ruleType, ok := ruleTypeFor(evt.Type)
	if !ok {
		return
	}
	p.rules.ReinforceMatching(evt.UserID, ruleType, eventCategory(evt))
}

// ruleTypeFor maps an event type to the rule type its handler produces.
func ruleTypeFor(t EventType) (RuleType, bool) {
	switch t {
	case EventSearchPerformed:
		return RuleContextualSearch, true
	case EventPlaceViewed:
		return RuleViewPattern, true
	case EventFavoriteAdded, EventBookingCompleted:
		return RuleStrongPreference, true
	case EventItineraryAdded:
		return RulePlanningPreference, true
	case EventRecommendationClicked:
		return RuleRecommendationResponse, true
	case EventRecommendationIgnored, EventStrongRejection:
		return RuleNegativeFeedback, true
	case EventSessionEnded:
		return RuleSessionBehavior, true
	default:
		return "", false
	}
}

// eventCategory extracts the payload category, if any.
func eventCategory(evt *InteractionEvent) string {
	if evt.Payload == nil {
		return ""
	}
	return Category(evt.Payload)
}

// deviceClass renders the context device class for rule patterns.
func deviceClass(ctx ContextSnapshot) string {
	if ctx.IsMobile {
		return "mobile"
	}
	return "desktop"
}

// allFactors copies every contextual factor into a rule pattern.
func allFactors(ctx ContextSnapshot) ContextualFactors {
	return ContextualFactors{
		TimeOfDay: ctx.TimeOfDay,
		DayOfWeek: ctx.DayOfWeek,
		Season:    ctx.Season,
		Weather:   ctx.Weather,
		IsWeekend: ctx.IsWeekend,
		Device:    deviceClass(ctx),
	}
}
