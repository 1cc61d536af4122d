// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package metrics exposes Prometheus instrumentation for the scoring
// pipeline, the LLM judge, candidate selection, and the learning loop.
// Metrics are registered via promauto at package load and served on the
// operational HTTP endpoint.
package metrics
