// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package adapt

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestStore() (*RuleStore, *FixedClock) {
	clock := &FixedClock{Time: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	return NewRuleStore(clock, zerolog.Nop()), clock
}

func TestRuleStoreCreateIndexesByUser(t *testing.T) {
	store, _ := newTestStore()

	rule := store.Create(RuleStrongPreference, RuleSeed{
		UserID:     "u1",
		Confidence: 0.9,
		Weight:     3.0,
		Pattern:    RulePattern{Category: "Cultural"},
	})

	if rule.ID == "" {
		t.Fatal("rule id not assigned")
	}
	if got, ok := store.Get(rule.ID); !ok || got != rule {
		t.Fatal("rule not retrievable by id")
	}

	user := store.UserRules("u1")
	if len(user) != 1 || user[0] != rule {
		t.Fatalf("UserRules = %v, want the created rule", user)
	}
	if store.Count() != 1 || store.UserCount() != 1 {
		t.Errorf("Count = %d, UserCount = %d, want 1, 1", store.Count(), store.UserCount())
	}
}

func TestRuleStoreAnonymousNotIndexed(t *testing.T) {
	store, _ := newTestStore()

	for _, userID := range []string{"", "anonymous"} {
		store.Create(RuleViewPattern, RuleSeed{UserID: userID, Confidence: 0.5, Weight: 1.0})
	}

	if store.Count() != 2 {
		t.Errorf("Count = %d, want 2 (anonymous rules still stored)", store.Count())
	}
	if store.UserCount() != 0 {
		t.Errorf("UserCount = %d, want 0", store.UserCount())
	}
	if got := store.UserRules(""); len(got) != 0 {
		t.Errorf("UserRules(anonymous) = %v, want empty", got)
	}
}

func TestUserRulesNeverNil(t *testing.T) {
	store, _ := newTestStore()
	if got := store.UserRules("nobody"); got == nil {
		t.Fatal("UserRules returned nil, want empty slice")
	}
}

func TestReinforceMatchingRatchetsConfidence(t *testing.T) {
	store, clock := newTestStore()
	rule := store.Create(RuleStrongPreference, RuleSeed{
		UserID:     "u1",
		Confidence: 0.9,
		Weight:     3.0,
		Pattern:    RulePattern{Category: "Cultural"},
	})

	// First three applications only count; the ratchet starts past the
	// threshold.
	for i := 1; i <= 3; i++ {
		if touched := store.ReinforceMatching("u1", RuleStrongPreference, "Cultural"); touched != 1 {
			t.Fatalf("application %d touched %d rules, want 1", i, touched)
		}
		if rule.Confidence != 0.9 {
			t.Fatalf("application %d: Confidence = %v, want unchanged 0.9", i, rule.Confidence)
		}
	}

	store.ReinforceMatching("u1", RuleStrongPreference, "Cultural")
	if math.Abs(rule.Confidence-0.95) > 1e-9 {
		t.Errorf("Confidence after 4th application = %v, want 0.95", rule.Confidence)
	}

	// Capped: applications past the cap never push confidence higher.
	for i := 0; i < 10; i++ {
		store.ReinforceMatching("u1", RuleStrongPreference, "Cultural")
	}
	if rule.Confidence > 0.95 {
		t.Errorf("Confidence = %v, want capped at 0.95", rule.Confidence)
	}
	if rule.AppliedCount != 14 {
		t.Errorf("AppliedCount = %d, want 14", rule.AppliedCount)
	}
	if !rule.LastAppliedAt.Equal(clock.Time) {
		t.Errorf("LastAppliedAt = %v, want %v", rule.LastAppliedAt, clock.Time)
	}
}

func TestReinforceMatchingByCategoryAcrossTypes(t *testing.T) {
	store, _ := newTestStore()
	view := store.Create(RuleViewPattern, RuleSeed{
		UserID:     "u1",
		Confidence: 0.5,
		Weight:     1.0,
		Pattern:    RulePattern{Category: "Outdoor"},
	})
	other := store.Create(RuleViewPattern, RuleSeed{
		UserID:     "u1",
		Confidence: 0.5,
		Weight:     1.0,
		Pattern:    RulePattern{Category: "Nightlife"},
	})

	// A strong-preference event in the same category reinforces the view
	// rule through the category match, not the type match.
	touched := store.ReinforceMatching("u1", RuleStrongPreference, "Outdoor")
	if touched != 1 {
		t.Fatalf("touched = %d, want 1", touched)
	}
	if view.AppliedCount != 1 {
		t.Errorf("matching rule AppliedCount = %d, want 1", view.AppliedCount)
	}
	if other.AppliedCount != 0 {
		t.Errorf("non-matching rule AppliedCount = %d, want 0", other.AppliedCount)
	}
}

func TestReinforceMatchingAnonymousNoop(t *testing.T) {
	store, _ := newTestStore()
	if touched := store.ReinforceMatching("", RuleStrongPreference, "Cultural"); touched != 0 {
		t.Errorf("touched = %d for anonymous, want 0", touched)
	}
}

func TestAllOrderedByCreation(t *testing.T) {
	store, clock := newTestStore()

	first := store.Create(RuleViewPattern, RuleSeed{UserID: "u1"})
	clock.Time = clock.Time.Add(time.Minute)
	second := store.Create(RuleViewPattern, RuleSeed{UserID: "u2"})

	all := store.All()
	if len(all) != 2 || all[0] != first || all[1] != second {
		t.Fatalf("All() order wrong: %v", all)
	}
}

func TestReplaceRebuildsUserIndex(t *testing.T) {
	store, _ := newTestStore()
	store.Create(RuleViewPattern, RuleSeed{UserID: "old"})

	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	store.Replace([]*AdaptationRule{
		{ID: "r1", Type: RuleStrongPreference, UserID: "new", Confidence: 0.9, Weight: 3.0, CreatedAt: now},
		{ID: "r2", Type: RuleViewPattern, UserID: "", Confidence: 0.5, Weight: 1.0, CreatedAt: now},
	})

	if store.Count() != 2 {
		t.Errorf("Count = %d after replace, want 2", store.Count())
	}
	if len(store.UserRules("old")) != 0 {
		t.Error("old user still indexed after replace")
	}
	if len(store.UserRules("new")) != 1 {
		t.Error("new user not indexed after replace")
	}
}
