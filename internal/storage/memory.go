// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package storage

import (
	"context"
	"sync"

	"github.com/goccy/go-json"

	"github.com/wanderkit/adapt/internal/adapt"
)

// MemoryStore is an in-memory RulePersister. It round-trips rules through
// JSON so tests exercise the same serialization path as the badger slot.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte

	// FailSave and FailLoad force errors, for degradation tests.
	FailSave error
	FailLoad error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveRules implements adapt.RulePersister.
func (s *MemoryStore) SaveRules(_ context.Context, rules []*adapt.AdaptationRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSave != nil {
		return s.FailSave
	}

	data, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}

// LoadRules implements adapt.RulePersister.
func (s *MemoryStore) LoadRules(_ context.Context) ([]*adapt.AdaptationRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailLoad != nil {
		return nil, s.FailLoad
	}

	if len(s.data) == 0 {
		return []*adapt.AdaptationRule{}, nil
	}

	var rules []*adapt.AdaptationRule
	if err := json.Unmarshal(s.data, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
