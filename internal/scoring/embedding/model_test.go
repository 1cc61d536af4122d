// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package embedding

import (
	"math"
	"testing"
	"time"

	"github.com/curiofeed/curio/internal/models"
)

func trainedProfile() *models.UserPreferenceProfile {
	return &models.UserPreferenceProfile{
		UserID:           "u1",
		PositiveCentroid: []float64{1, 0, 0},
		TotalSaved:       25,
		LastUpdated:      time.Now(),
	}
}

func TestModel_State(t *testing.T) {
	m := NewModel(DefaultModelConfig(), 1)

	tests := []struct {
		name    string
		profile *models.UserPreferenceProfile
		want    ModelState
	}{
		{"zero saved", &models.UserPreferenceProfile{UserID: "u1"}, StateUntrained},
		{"below threshold", &models.UserPreferenceProfile{TotalSaved: 9, PositiveCentroid: []float64{1}}, StateUntrained},
		{"at threshold", &models.UserPreferenceProfile{TotalSaved: 10, PositiveCentroid: []float64{1}}, StateTrained},
		{"enough saves but no centroid yet", &models.UserPreferenceProfile{TotalSaved: 50}, StateUntrained},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.State(tt.profile); got != tt.want {
				t.Errorf("State() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModel_Score_UntrainedDeterministicWithFixedSeed(t *testing.T) {
	profile := &models.UserPreferenceProfile{UserID: "cold"}
	chunk := []float64{0.5, 0.5, 0}

	scoresA := make([]float64, 20)
	scoresB := make([]float64, 20)

	mA := NewModel(DefaultModelConfig(), 7)
	for i := range scoresA {
		scoresA[i] = mA.Score(profile, chunk)
	}

	mB := NewModel(DefaultModelConfig(), 7)
	for i := range scoresB {
		scoresB[i] = mB.Score(profile, chunk)
	}

	for i := range scoresA {
		if scoresA[i] != scoresB[i] {
			t.Fatalf("seeded exploration not deterministic at draw %d: %f vs %f", i, scoresA[i], scoresB[i])
		}
		if scoresA[i] < 0 || scoresA[i] >= 1 {
			t.Errorf("exploration score %f outside [0, 1)", scoresA[i])
		}
	}
}

func TestModel_Score_UntrainedIgnoresEmbedding(t *testing.T) {
	// Exploration scores must not be biased toward any embedding region:
	// the draw is independent of the chunk vector entirely.
	profile := &models.UserPreferenceProfile{UserID: "cold"}

	m1 := NewModel(DefaultModelConfig(), 99)
	m2 := NewModel(DefaultModelConfig(), 99)

	for i := 0; i < 50; i++ {
		near := m1.Score(profile, []float64{1, 0, 0})
		far := m2.Score(profile, []float64{-1, 0, 0})
		if near != far {
			t.Fatalf("draw %d depends on embedding: %f vs %f", i, near, far)
		}
	}
}

func TestModel_Score_UntrainedUniform(t *testing.T) {
	profile := &models.UserPreferenceProfile{UserID: "cold"}
	m := NewModel(DefaultModelConfig(), 7)

	const n = 10000
	var sum float64
	for i := 0; i < n; i++ {
		sum += m.Score(profile, []float64{1, 0, 0})
	}

	// Mean of n uniform draws concentrates around 0.5; 0.02 leaves
	// ~7 standard deviations of slack at n=10000.
	mean := sum / n
	if math.Abs(mean-0.5) > 0.02 {
		t.Errorf("exploration mean = %f, want ~0.5", mean)
	}
}

func TestModel_Score_TrainedSimilarity(t *testing.T) {
	m := NewModel(DefaultModelConfig(), 1)
	profile := trainedProfile()

	aligned := m.Score(profile, []float64{1, 0, 0})
	opposed := m.Score(profile, []float64{-1, 0, 0})

	if math.Abs(aligned-1) > epsilon {
		t.Errorf("aligned chunk score = %f, want 1", aligned)
	}
	if math.Abs(opposed) > epsilon {
		t.Errorf("opposed chunk score = %f, want 0", opposed)
	}
}

func TestModel_Score_NegativeContrast(t *testing.T) {
	m := NewModel(DefaultModelConfig(), 1)

	profile := trainedProfile()
	profile.NegativeCentroid = []float64{0, 1, 0}
	profile.TotalSkipped = 30

	// A chunk aligned with the negative centroid scores lower than the
	// same-position chunk would without contrast.
	nearNegative := m.Score(profile, []float64{0, 1, 0})
	plain := CosineUnit(profile.PositiveCentroid, []float64{0, 1, 0})

	if nearNegative >= plain {
		t.Errorf("contrast did not reduce score: got %f, plain %f", nearNegative, plain)
	}
	if nearNegative < 0 || nearNegative > 1 {
		t.Errorf("contrasted score %f outside [0, 1]", nearNegative)
	}
}

func TestModel_Score_ContrastRequiresSkipVolume(t *testing.T) {
	m := NewModel(DefaultModelConfig(), 1)

	profile := trainedProfile()
	profile.NegativeCentroid = []float64{0, 1, 0}
	profile.TotalSkipped = 3 // Below MinSkipsForContrast

	got := m.Score(profile, []float64{0, 1, 0})
	want := CosineUnit(profile.PositiveCentroid, []float64{0, 1, 0})

	if math.Abs(got-want) > epsilon {
		t.Errorf("contrast applied below skip volume: got %f, want %f", got, want)
	}
}

func TestModel_SeparationQuality(t *testing.T) {
	m := NewModel(DefaultModelConfig(), 1)
	profile := trainedProfile()

	heldOut := [][]float64{{0.9, 0.1, 0}, {0.95, -0.05, 0}}
	random := [][]float64{{0, 1, 0}, {0, 0, 1}, {-1, 0, 0}}

	sep := m.SeparationQuality(profile, heldOut, random)
	if sep <= 0 {
		t.Errorf("separation = %f, want > 0 for a discriminative centroid", sep)
	}
	if !m.Informative(sep) {
		t.Errorf("separation %f should clear the default floor", sep)
	}

	// A centroid that scores held-out positives no better than random
	// material is uninformative.
	if m.Informative(0.01) {
		t.Error("separation below floor should not be informative")
	}
}

func TestModel_SeparationQuality_EmptyInputs(t *testing.T) {
	m := NewModel(DefaultModelConfig(), 1)

	if got := m.SeparationQuality(trainedProfile(), nil, [][]float64{{1}}); got != 0 {
		t.Errorf("empty held-out set: separation = %f, want 0", got)
	}
	if got := m.SeparationQuality(&models.UserPreferenceProfile{}, [][]float64{{1}}, [][]float64{{1}}); got != 0 {
		t.Errorf("missing centroid: separation = %f, want 0", got)
	}
}

func TestModelState_String(t *testing.T) {
	if StateUntrained.String() != "untrained" || StateTrained.String() != "trained" {
		t.Error("unexpected ModelState string values")
	}
	if ModelState(99).String() != "unknown" {
		t.Error("out-of-range state should stringify as unknown")
	}
}
