// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package scoring

import (
	"context"
	"fmt"

	"github.com/curiofeed/curio/internal/models"
	"github.com/curiofeed/curio/internal/scoring/judge"
)

// ScoredChunk is the orchestrator's final output for one (user, chunk).
type ScoredChunk struct {
	// UserID is the user the score applies to.
	UserID string `json:"user_id"`

	// ChunkID is the scored chunk.
	ChunkID string `json:"chunk_id"`

	// Score is the final relevance score in [0, 1].
	Score float64 `json:"score"`

	// Provenance records every stage that contributed.
	Provenance models.Provenance `json:"provenance"`

	// NeedsJudgeRetry marks chunks whose judge call failed and should be
	// re-judged on a later run.
	NeedsJudgeRetry bool `json:"needs_judge_retry,omitempty"`
}

// RunContext carries per-run, per-user state shared across chunk scoring:
// an immutable snapshot captured before the batch starts.
type RunContext struct {
	// Profile is the user's preference profile (may be nil for new users).
	Profile *models.UserPreferenceProfile

	// RecentSaved holds embeddings of the user's most recently saved
	// chunks, newest first, for redundancy checks.
	RecentSaved [][]float64

	// Degraded indicates preference-signal collapse was detected for
	// this run; the embedding weight is reduced accordingly.
	Degraded bool
}

// ChunkJudge is the orchestrator's view of the LLM judge stage. It is an
// interface so the stage can be disabled (nil) or faked in tests.
type ChunkJudge interface {
	Score(ctx context.Context, text string) (judge.Verdict, error)
}

// Weights is the stage blend for borderline chunks. Values are normalized
// at use, so they need not sum to 1.
type Weights struct {
	// Heuristic is the gate score weight. Default: 0.4.
	Heuristic float64 `json:"heuristic"`

	// Embedding is the preference model weight. Default: 0.3.
	Embedding float64 `json:"embedding"`

	// Judge is the LLM judge weight. Default: 0.3.
	Judge float64 `json:"judge"`
}

// Validate rejects negative or all-zero weights.
func (w Weights) Validate() error {
	if w.Heuristic < 0 || w.Embedding < 0 || w.Judge < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if w.Heuristic+w.Embedding+w.Judge == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}
