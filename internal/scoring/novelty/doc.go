// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package novelty adjusts embedding scores for redundancy and monitors
// preference-signal health: a fixed penalty for near-duplicates of content
// the user already saved, and a collapse detector that flags when the
// positive and negative centroids are too close to discriminate.
package novelty
