// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

// Package metrics provides Prometheus collectors for the adaptation engine.
//
// Metrics are registered with the default registry via promauto and exposed
// at the /metrics endpoint in Prometheus text format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics

	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapt_events_ingested_total",
			Help: "Total interaction events accepted by ingestion",
		},
		[]string{"type"},
	)

	CriticalFastPath = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adapt_critical_fast_path_total",
			Help: "Critical events processed synchronously at ingestion",
		},
	)

	CriticalDeferred = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adapt_critical_deferred_total",
			Help: "Critical events deferred to the batch by the fast-path rate limiter",
		},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adapt_events_dropped_total",
			Help: "Events dropped because the learning queue was full",
		},
	)

	// Learning queue metrics

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adapt_queue_depth",
			Help: "Current learning queue depth",
		},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adapt_batch_size",
			Help:    "Events per learning batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	EventProcessErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapt_event_process_errors_total",
			Help: "Per-event processing failures isolated during a batch",
		},
		[]string{"type"},
	)

	// Rule store metrics

	RulesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapt_rules_created_total",
			Help: "Adaptation rules created",
		},
		[]string{"rule_type"},
	)

	RulesReinforced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adapt_rules_reinforced_total",
			Help: "Rule reinforcement applications",
		},
	)

	// Adapter metrics

	RankRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapt_rank_requests_total",
			Help: "Re-ranking requests",
		},
		[]string{"adapted"}, // "true" when rules applied, "false" for identity fallback
	)

	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adapt_rank_duration_seconds",
			Help:    "Re-ranking latency in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// Persistence metrics

	PersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adapt_persist_duration_seconds",
			Help:    "Rule table save duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PersistErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adapt_persist_errors_total",
			Help: "Rule persistence failures (engine continues in-memory)",
		},
	)

	// Context metrics

	WeatherLookupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adapt_weather_lookup_failures_total",
			Help: "Weather lookups that failed or were short-circuited",
		},
	)
)
