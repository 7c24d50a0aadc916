// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

// Package storage provides durable persistence for the adaptation rule
// table. The production implementation is an embedded BadgerDB slot; an
// in-memory implementation backs tests.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/wanderkit/adapt/internal/adapt"
)

// ruleTableKey is the fixed durable slot the full rule table serializes to.
// Saving happens on a timer, not per mutation, so the slot is always a
// complete snapshot.
const ruleTableKey = "adaptation_rules"

// BadgerStore persists the rule table in an embedded BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// OpenBadger opens (or creates) a BadgerDB at the given path and returns a
// store over it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadger(path string, logger zerolog.Logger) (*BadgerStore, error) {
	log := logger.With().Str("component", "storage").Logger()

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is noisy; failures surface as errors

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}

	return &BadgerStore{db: db, logger: log}, nil
}

// NewBadgerStore wraps an already-open BadgerDB.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStore(db *badger.DB, logger zerolog.Logger) *BadgerStore {
	return &BadgerStore{
		db:     db,
		logger: logger.With().Str("component", "storage").Logger(),
	}
}

// SaveRules writes the complete rule table to the slot as a JSON list.
func (s *BadgerStore) SaveRules(_ context.Context, rules []*adapt.AdaptationRule) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ruleTableKey), data)
	})
	if err != nil {
		return fmt.Errorf("write rule table: %w", err)
	}
	return nil
}

// LoadRules reads the complete rule table from the slot. A missing slot is
// an empty rule set, not an error; a corrupt slot is reported so the caller
// can fall back to empty.
func (s *BadgerStore) LoadRules(_ context.Context) ([]*adapt.AdaptationRule, error) {
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ruleTableKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read rule table: %w", err)
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return []*adapt.AdaptationRule{}, nil
	}

	var rules []*adapt.AdaptationRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("unmarshal rule table: %w", err)
	}
	return rules, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
