// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package embedding

import (
	"math/rand"
	"sync"

	"github.com/curiofeed/curio/internal/models"
)

// ModelState describes how a user's preference model scores candidates.
type ModelState int

const (
	// StateUntrained means too little saved feedback exists; scores are
	// drawn from a seedable uniform distribution. Deterministic
	// low-information scoring before any preference exists would starve
	// the system of the feedback needed to ever train, so exploration
	// is mandatory in this state.
	StateUntrained ModelState = iota

	// StateTrained means scores come from similarity to the positive
	// centroid, optionally contrasted against the negative centroid.
	StateTrained
)

// String returns a human-readable state name.
func (s ModelState) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateTrained:
		return "trained"
	default:
		return "unknown"
	}
}

// ModelConfig holds the tunables of the preference model.
type ModelConfig struct {
	// ColdStartThreshold is the saved-event count below which the model
	// stays in exploration mode. Default: 10.
	ColdStartThreshold int

	// MinSkipsForContrast is the skipped-event count required before the
	// negative centroid participates in scoring. Default: 10.
	MinSkipsForContrast int

	// ContrastWeight scales how strongly proximity to the negative
	// centroid subtracts from the score. Default: 0.5.
	ContrastWeight float64

	// SeparationFloor is the minimum separation quality below which the
	// model is considered uninformative. Default: 0.05.
	SeparationFloor float64
}

// DefaultModelConfig returns the production defaults.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		ColdStartThreshold:  10,
		MinSkipsForContrast: 10,
		ContrastWeight:      0.5,
		SeparationFloor:     0.05,
	}
}

// Model scores chunks by geometric proximity to a user's preference
// centroids. It is safe for concurrent use; the RNG used for cold-start
// exploration is mutex-protected.
type Model struct {
	cfg ModelConfig

	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewModel creates a preference model. A zero seed selects a fixed default
// so behavior is reproducible unless a caller opts into varied seeds.
func NewModel(cfg ModelConfig, seed int64) *Model {
	if cfg.ColdStartThreshold <= 0 {
		cfg.ColdStartThreshold = 10
	}
	if cfg.MinSkipsForContrast <= 0 {
		cfg.MinSkipsForContrast = 10
	}
	if cfg.ContrastWeight <= 0 {
		cfg.ContrastWeight = 0.5
	}
	if cfg.SeparationFloor <= 0 {
		cfg.SeparationFloor = 0.05
	}
	if seed == 0 {
		seed = 42
	}

	return &Model{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // exploration sampling, not security
	}
}

// State returns the scoring state for the given profile.
func (m *Model) State(profile *models.UserPreferenceProfile) ModelState {
	if profile.Trained(m.cfg.ColdStartThreshold) {
		return StateTrained
	}
	return StateUntrained
}

// Score returns the model's score in [0, 1] for the chunk embedding under
// the given profile. In the untrained state the score is a uniform random
// draw independent of the embedding, so no region of embedding space is
// systematically favored before preferences exist.
func (m *Model) Score(profile *models.UserPreferenceProfile, chunkEmbedding []float64) float64 {
	if m.State(profile) == StateUntrained {
		return m.explorationScore()
	}

	positive := CosineUnit(profile.PositiveCentroid, chunkEmbedding)

	if profile.TotalSkipped >= m.cfg.MinSkipsForContrast && len(profile.NegativeCentroid) > 0 {
		negative := CosineUnit(profile.NegativeCentroid, chunkEmbedding)
		score := positive - m.cfg.ContrastWeight*(negative-0.5)
		return clampUnit(score)
	}

	return positive
}

// explorationScore draws a uniform random score for cold-start users.
func (m *Model) explorationScore() float64 {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.Float64()
}

// SeparationQuality measures whether the positive centroid is informative:
// mean similarity-to-positive over held-out positives minus mean over a
// random sample of the corpus. Below the configured floor the model cannot
// discriminate and downstream weighting must shift away from it.
func (m *Model) SeparationQuality(profile *models.UserPreferenceProfile, heldOutPositives, randomSample [][]float64) float64 {
	if len(profile.PositiveCentroid) == 0 || len(heldOutPositives) == 0 || len(randomSample) == 0 {
		return 0
	}
	return meanSim(profile.PositiveCentroid, heldOutPositives) - meanSim(profile.PositiveCentroid, randomSample)
}

// Informative reports whether the given separation quality clears the floor.
func (m *Model) Informative(separation float64) bool {
	return separation >= m.cfg.SeparationFloor
}

func meanSim(centroid []float64, vectors [][]float64) float64 {
	var sum float64
	for _, v := range vectors {
		sum += CosineUnit(centroid, v)
	}
	return sum / float64(len(vectors))
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
