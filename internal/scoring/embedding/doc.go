// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package embedding implements the embedding-space preference model:
// centroid aggregation, cosine similarity, and per-user scoring with a
// mandatory cold-start exploration mode.
//
// Topic-level embeddings may not separate deep from shallow treatment of
// the same subject. SeparationQuality is therefore a first-class monitored
// property rather than an assumption; when it falls below the configured
// floor the orchestrator shifts weight to the heuristic and judge stages.
package embedding
