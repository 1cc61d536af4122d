// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package embedding

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyInput is returned when an aggregate is requested over zero vectors.
// Per the error taxonomy this is fatal only for the affected user's run;
// other users in the same batch are unaffected.
var ErrEmptyInput = errors.New("embedding: empty input set")

// ErrDimensionMismatch is returned when vectors of different dimensions are
// combined. It indicates corrupted input, not a transient condition.
var ErrDimensionMismatch = errors.New("embedding: dimension mismatch")

// Centroid computes the arithmetic mean of the given vectors, per dimension.
// The result is permutation-invariant: any ordering of the input yields the
// same vector. Returns ErrEmptyInput for an empty set and
// ErrDimensionMismatch when the vectors disagree on dimension.
func Centroid(vectors [][]float64) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dim %d, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		for d, x := range v {
			sum[d] += x
		}
	}

	n := float64(len(vectors))
	for d := range sum {
		sum[d] /= n
	}
	return sum, nil
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero vector on either side yields 0 (no directional information).
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Guard against floating-point drift outside [-1, 1].
	return math.Max(-1, math.Min(1, sim))
}

// CosineUnit maps cosine similarity onto the [0, 1] score scale used by
// the orchestrator: (cos + 1) / 2.
func CosineUnit(a, b []float64) float64 {
	return (Cosine(a, b) + 1) / 2
}
