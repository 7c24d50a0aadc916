// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

/*
Package adapt implements the behavioral adaptation engine: an online rule
accumulator that turns a stream of typed user-interaction events into
weighted personalization rules and uses them to re-rank candidate
recommendation lists in real time.

# Pipeline

	Event Producer -> TrackInteraction -> EventBus -> Processor -> RuleStore
	                                                                  |
	Recommendation Source -> Adapt  <---------------------------------+

Events are stamped with a by-value ContextSnapshot at creation, carried over
an in-process Watermill channel, and drained into adaptation rules on a
fixed cadence. Critical event types (favorite_added, strong_rejection,
booking_completed) are learned synchronously at ingestion so they influence
the very next recommendation request; a critical event never also enters
the batch, so it is counted exactly once.

# Degradation

This is a heuristic personalization layer, not a trained model. Every
failure on the learning path (malformed payloads, persistence errors,
per-event handler failures) degrades to "no personalization" rather than
surfacing an error to the caller: ingestion never rejects an event and
Adapt falls back to the identity ranking.

# Concurrency

The engine is safe for concurrent use. The queue drain is guarded by an
atomic re-entrancy flag (overlapping timer fires are no-ops), the rule
table and per-user index are updated atomically together under one lock,
and context snapshots are values, so readers never observe partial updates.
*/
package adapt
