// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wanderkit/adapt/internal/metrics"
)

// Applicability contributions. The sum is capped at 1.0.
const (
	categoryMatchScore  = 0.5
	timeOfDayMatchScore = 0.3
	weatherMatchScore   = 0.2
)

// Adapter re-ranks candidate lists using a user's learned rules and the
// current context.
type Adapter struct {
	rules   *RuleStore
	context *ContextMonitor
	logger  zerolog.Logger
}

// NewAdapter creates an adapter over the given rule store and context.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAdapter(rules *RuleStore, ctxMon *ContextMonitor, logger zerolog.Logger) *Adapter {
	return &Adapter{
		rules:   rules,
		context: ctxMon,
		logger:  logger.With().Str("component", "adapter").Logger(),
	}
}

// Adapt computes a per-candidate adaptation score from the user's rules and
// returns the list re-ranked by final score. Anonymous users and users with
// no rules get the input back unchanged, in original order, with the
// adapted marker unset. Personalization degrades to identity, never to an
// error.
func (a *Adapter) Adapt(candidates []Candidate, userID string) []Candidate {
	start := time.Now()

	if IsAnonymous(userID) {
		metrics.RankRequests.WithLabelValues("false").Inc()
		return candidates
	}

	rules := a.rules.UserRules(userID)
	if len(rules) == 0 {
		metrics.RankRequests.WithLabelValues("false").Inc()
		return candidates
	}

	current := a.context.Snapshot()

	ranked := make([]Candidate, len(candidates))
	for i, c := range candidates {
		score := a.adaptationScore(c, rules, current)

		c.OriginalScore = c.Score
		c.AdaptationScore = score
		c.Score += score
		c.Adapted = true
		ranked[i] = c
	}

	// Stable: ties keep original relative order so identical inputs always
	// rank identically.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	metrics.RankRequests.WithLabelValues("true").Inc()
	metrics.RankDuration.Observe(time.Since(start).Seconds())

	a.logger.Debug().
		Str("user_id", userID).
		Int("candidates", len(candidates)).
		Int("rules", len(rules)).
		Msg("candidates re-ranked")

	return ranked
}

// adaptationScore sums each rule's contribution for one candidate.
func (a *Adapter) adaptationScore(c Candidate, rules []*AdaptationRule, current ContextSnapshot) float64 {
	total := 0.0
	for _, rule := range rules {
		applies := applicability(rule, c, current)
		if applies == 0 {
			continue
		}
		total += applies * rule.Weight * rule.Confidence
	}
	return total
}

// applicability measures how well a rule matches a candidate in the current
// context, in [0, 1].
func applicability(rule *AdaptationRule, c Candidate, current ContextSnapshot) float64 {
	// A rule scoped to a category only ever applies within that category.
	// Rules without one are pure context rules and match on time and
	// weather alone.
	if rule.Pattern.Category != "" && rule.Pattern.Category != c.Category {
		return 0
	}

	score := 0.0

	if rule.Pattern.Category != "" {
		score += categoryMatchScore
	}
	if rule.Pattern.Contextual.TimeOfDay != "" && rule.Pattern.Contextual.TimeOfDay == current.TimeOfDay {
		score += timeOfDayMatchScore
	}
	// Two failed lookups agreeing on "unknown" is not a weather match.
	if rule.Pattern.Contextual.Weather != "" && rule.Pattern.Contextual.Weather != WeatherUnknown &&
		rule.Pattern.Contextual.Weather == current.Weather {
		score += weatherMatchScore
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
