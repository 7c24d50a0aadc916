// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wanderkit/adapt/internal/metrics"
)

// Confidence ratchet: raise by confidenceStep once applied more than
// reinforceThreshold times, never past confidenceCap.
const (
	reinforceThreshold = 3
	confidenceStep     = 0.05
	confidenceCap      = 0.95
)

// RulePersister stores and restores the full rule table in a durable slot.
// Implemented by internal/storage; injected so tests can use an in-memory
// double.
type RulePersister interface {
	// SaveRules writes the complete rule table. Lossless for every rule field.
	SaveRules(ctx context.Context, rules []*AdaptationRule) error

	// LoadRules reads the complete rule table. A missing slot yields an
	// empty slice and no error.
	LoadRules(ctx context.Context) ([]*AdaptationRule, error)
}

// RuleSeed carries the initial values for a new rule.
type RuleSeed struct {
	UserID     string
	Pattern    RulePattern
	Confidence float64
	Weight     float64
	Custom     bool
}

// RuleStore holds adaptation rules keyed by id and indexed by user. The
// per-user index holds references into the global table, not copies, so a
// mutation through either path is visible through the other.
type RuleStore struct {
	mu     sync.RWMutex
	rules  map[string]*AdaptationRule
	byUser map[string][]*AdaptationRule

	clock  Clock
	logger zerolog.Logger
}

// NewRuleStore creates an empty rule store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRuleStore(clock Clock, logger zerolog.Logger) *RuleStore {
	return &RuleStore{
		rules:  make(map[string]*AdaptationRule),
		byUser: make(map[string][]*AdaptationRule),
		clock:  clock,
		logger: logger.With().Str("component", "rules").Logger(),
	}
}

// Create allocates a rule, inserts it into the global table, and indexes it
// under its user unless the user is anonymous.
func (s *RuleStore) Create(t RuleType, seed RuleSeed) *AdaptationRule {
	rule := &AdaptationRule{
		ID:         uuid.New().String(),
		Type:       t,
		UserID:     seed.UserID,
		Pattern:    seed.Pattern,
		Confidence: seed.Confidence,
		Weight:     seed.Weight,
		Custom:     seed.Custom,
		CreatedAt:  s.clock.Now(),
	}

	s.mu.Lock()
	s.insertLocked(rule)
	s.mu.Unlock()

	metrics.RulesCreated.WithLabelValues(string(t)).Inc()
	s.logger.Debug().
		Str("rule_id", rule.ID).
		Str("rule_type", string(t)).
		Str("user_id", seed.UserID).
		Msg("rule created")

	return rule
}

// insertLocked adds a rule to the table and user index. Caller holds mu.
func (s *RuleStore) insertLocked(rule *AdaptationRule) {
	s.rules[rule.ID] = rule
	if !IsAnonymous(rule.UserID) {
		s.byUser[rule.UserID] = append(s.byUser[rule.UserID], rule)
	}
}

// Get returns the rule with the given id.
func (s *RuleStore) Get(id string) (*AdaptationRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[id]
	return rule, ok
}

// UserRules returns the user's rule list, never nil. The slice is a copy;
// the rules it references are shared.
func (s *RuleStore) UserRules(userID string) []*AdaptationRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	indexed := s.byUser[userID]
	rules := make([]*AdaptationRule, len(indexed))
	copy(rules, indexed)
	return rules
}

// All returns every rule ordered by creation time for deterministic saves.
func (s *RuleStore) All() []*AdaptationRule {
	s.mu.RLock()
	rules := make([]*AdaptationRule, 0, len(s.rules))
	for _, r := range s.rules {
		rules = append(rules, r)
	}
	s.mu.RUnlock()

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].ID < rules[j].ID
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
	return rules
}

// Replace swaps the entire rule table, rebuilding the per-user index. Used
// when loading from the durable slot.
func (s *RuleStore) Replace(rules []*AdaptationRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = make(map[string]*AdaptationRule, len(rules))
	s.byUser = make(map[string][]*AdaptationRule)
	for _, rule := range rules {
		s.insertLocked(rule)
	}
}

// Count returns the number of rules in the global table.
func (s *RuleStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// UserCount returns the number of users with at least one indexed rule.
func (s *RuleStore) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser)
}

// ReinforceMatching updates every rule of the user whose type or pattern
// category matches the event: appliedCount is incremented, lastAppliedAt
// set, and confidence raised by one step (capped) once the rule has been
// applied more than the threshold. Returns the number of rules touched.
func (s *RuleStore) ReinforceMatching(userID string, ruleType RuleType, category string) int {
	if IsAnonymous(userID) {
		return 0
	}

	now := s.clock.Now()
	touched := 0

	s.mu.Lock()
	for _, rule := range s.byUser[userID] {
		if rule.Type != ruleType && (category == "" || rule.Pattern.Category != category) {
			continue
		}

		rule.AppliedCount++
		rule.LastAppliedAt = now
		if rule.AppliedCount > reinforceThreshold {
			rule.Confidence += confidenceStep
			if rule.Confidence > confidenceCap {
				rule.Confidence = confidenceCap
			}
		}
		touched++
	}
	s.mu.Unlock()

	if touched > 0 {
		metrics.RulesReinforced.Add(float64(touched))
	}
	return touched
}
