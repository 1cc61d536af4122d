// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package scoring

import "errors"

// Error taxonomy for the scoring cascade. Per-chunk and per-user failures
// are isolated to their unit of work; none of these aborts a batch.
var (
	// ErrInvalidChunk marks structurally invalid input (nil chunk,
	// empty text). The chunk is skipped, logged, and the batch continues.
	ErrInvalidChunk = errors.New("scoring: invalid chunk")

	// ErrMissingEmbedding marks a chunk whose embedding has not been
	// attached yet. The chunk is deferred to a later run, not failed.
	ErrMissingEmbedding = errors.New("scoring: missing embedding")
)
