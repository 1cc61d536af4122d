// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package novelty

import (
	"github.com/curiofeed/curio/internal/scoring/embedding"
)

// Config holds the novelty adjuster tunables.
type Config struct {
	// RedundancyThreshold is the cosine similarity above which a chunk
	// counts as a near-duplicate of recently saved content. Default: 0.75.
	RedundancyThreshold float64

	// RedundancyPenalty is the fixed score reduction applied to
	// near-duplicates, on the 0-1 score scale. Default: 0.20.
	RedundancyPenalty float64

	// CollapseFloor is the minimum positive/negative centroid separation
	// (1 - cosine) below which the preference signal has collapsed and
	// embedding scores are uninformative. Default: 0.15.
	CollapseFloor float64

	// RecentWindow is how many most-recently-saved chunks participate in
	// redundancy checks. Default: 20.
	RecentWindow int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		RedundancyThreshold: 0.75,
		RedundancyPenalty:   0.20,
		CollapseFloor:       0.15,
		RecentWindow:        20,
	}
}

// Adjuster penalizes near-duplicates of already-endorsed content and
// detects preference-signal collapse. Stateless and safe for concurrent use.
type Adjuster struct {
	cfg Config
}

// New creates an adjuster with the given configuration.
func New(cfg Config) *Adjuster {
	if cfg.RedundancyThreshold <= 0 {
		cfg.RedundancyThreshold = 0.75
	}
	if cfg.RedundancyPenalty <= 0 {
		cfg.RedundancyPenalty = 0.20
	}
	if cfg.CollapseFloor <= 0 {
		cfg.CollapseFloor = 0.15
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = 20
	}
	return &Adjuster{cfg: cfg}
}

// Penalty returns the score adjustment (always <= 0) for a chunk given the
// user's most recently saved chunk embeddings. If the maximum similarity to
// any of them exceeds the redundancy threshold, the fixed penalty applies;
// otherwise the adjustment is zero.
func (a *Adjuster) Penalty(chunkEmbedding []float64, recentSaved [][]float64) float64 {
	if len(chunkEmbedding) == 0 || len(recentSaved) == 0 {
		return 0
	}

	window := recentSaved
	if len(window) > a.cfg.RecentWindow {
		window = window[:a.cfg.RecentWindow]
	}

	maxSim := -1.0
	for _, saved := range window {
		if sim := embedding.Cosine(chunkEmbedding, saved); sim > maxSim {
			maxSim = sim
		}
	}

	if maxSim > a.cfg.RedundancyThreshold {
		return -a.cfg.RedundancyPenalty
	}
	return 0
}

// CollapseSeparation measures how discriminative the positive and negative
// centroids are: 1 - cosine(pos, neg). Small values mean the centroids
// nearly coincide and embedding similarity cannot tell liked from disliked.
// Returns 1 (fully separated) when either centroid is absent, since there
// is nothing to collapse.
func (a *Adjuster) CollapseSeparation(positive, negative []float64) float64 {
	if len(positive) == 0 || len(negative) == 0 {
		return 1
	}
	return 1 - embedding.Cosine(positive, negative)
}

// Degraded reports whether the given separation indicates signal collapse.
// In degraded mode the orchestrator must downweight the embedding score
// relative to the heuristic and judge scores for the run.
func (a *Adjuster) Degraded(separation float64) bool {
	return separation < a.cfg.CollapseFloor
}
