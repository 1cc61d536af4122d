// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package scoring orchestrates the relevance cascade: heuristic gate,
// embedding preference model with novelty adjustment, and the LLM judge
// for borderline chunks, blended into exactly one auditable score per
// (user, chunk).
//
// The orchestrator is total: for any structurally valid chunk it returns
// a score in [0, 1] with provenance breadcrumbs for every contributing
// stage. Stage failures degrade to the best available prior score; they
// never abort the chunk, let alone the batch.
package scoring
