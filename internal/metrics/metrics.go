// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the scoring pipeline:
// - Gate decisions and block reasons
// - Judge call outcomes and latency
// - Batch scoring throughput
// - Selection and persistence counts
// - Learning recomputes

var (
	// Gate metrics
	GateEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curio_gate_evaluations_total",
			Help: "Total heuristic gate evaluations by outcome",
		},
		[]string{"outcome"}, // "pass", "block"
	)

	// Novelty metrics
	NoveltyPenalties = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curio_novelty_penalties_total",
			Help: "Total redundancy penalties applied to near-duplicate chunks",
		},
	)

	CollapseDegradedRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curio_collapse_degraded_runs_total",
			Help: "Scoring runs executed in degraded mode due to preference-signal collapse",
		},
	)

	// Preference model metrics
	SeparationQuality = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curio_model_separation_quality",
			Help:    "Held-out separation quality of the preference model per scoring run",
			Buckets: []float64{-0.2, -0.1, -0.05, 0, 0.05, 0.1, 0.2, 0.4, 0.8},
		},
	)

	UninformativeModelRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curio_uninformative_model_runs_total",
			Help: "Scoring runs downweighted because held-out separation fell below the floor",
		},
	)

	// Judge metrics
	JudgeCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curio_judge_calls_total",
			Help: "Total LLM judge invocations by outcome",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	JudgeLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curio_judge_latency_seconds",
			Help:    "LLM judge call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	JudgeRetryDeferrals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curio_judge_retry_deferrals_total",
			Help: "Chunks held back from signal creation pending a judge retry",
		},
	)

	// Batch scoring metrics
	ChunksScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curio_chunks_scored_total",
			Help: "Total chunks scored by result",
		},
		[]string{"result"}, // "scored", "skipped", "deferred", "failed"
	)

	ScoringRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curio_scoring_run_duration_seconds",
			Help:    "Duration of one per-user scoring run in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// Selector metrics
	SignalsSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curio_signals_selected_total",
			Help: "Total chunks selected as signals by selection mode",
		},
		[]string{"mode"}, // "topk", "stratified"
	)

	SignalsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curio_signals_persisted_total",
			Help: "Signal persistence outcomes",
		},
		[]string{"outcome"}, // "created", "duplicate"
	)

	// Learning metrics
	ProfileRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curio_profile_recomputes_total",
			Help: "Preference profile recomputations by outcome",
		},
		[]string{"outcome"}, // "ok", "error", "empty"
	)

	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curio_feedback_events_total",
			Help: "Feedback events recorded by action",
		},
		[]string{"action"}, // "saved", "skipped"
	)

	// Store metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curio_store_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
