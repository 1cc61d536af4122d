// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package models

import "time"

// SignalState is the lifecycle state of a presented signal.
type SignalState string

const (
	// SignalPending means the signal awaits user feedback.
	SignalPending SignalState = "pending"

	// SignalSaved is the terminal state after a save action.
	SignalSaved SignalState = "saved"

	// SignalSkipped is the terminal state after a skip action.
	SignalSkipped SignalState = "skipped"
)

// Terminal reports whether the state admits no further transition.
func (s SignalState) Terminal() bool {
	return s == SignalSaved || s == SignalSkipped
}

// ScoreStage identifies a scoring stage that contributed to a final score.
type ScoreStage string

const (
	// StageHeuristic is the lexical gate stage.
	StageHeuristic ScoreStage = "heuristic"

	// StageExploration is the cold-start random exploration stage.
	StageExploration ScoreStage = "exploration"

	// StageEmbedding is the embedding preference model stage.
	StageEmbedding ScoreStage = "embedding"

	// StageNovelty is the redundancy-penalty adjustment stage.
	StageNovelty ScoreStage = "novelty"

	// StageJudge is the LLM judge stage.
	StageJudge ScoreStage = "judge"
)

// Breadcrumb records one stage's contribution to a final score.
type Breadcrumb struct {
	// Stage is the contributing stage.
	Stage ScoreStage `json:"stage"`

	// Score is the stage's output normalized to [0,1] for comparability.
	Score float64 `json:"score"`

	// Degraded marks a stage that failed and fell back to prior signal.
	Degraded bool `json:"degraded,omitempty"`

	// Detail is an optional short annotation (rule IDs, judge reasoning).
	Detail string `json:"detail,omitempty"`
}

// Provenance is the ordered list of stage breadcrumbs behind a score.
// Every stage that contributed to the final value appears exactly once.
type Provenance []Breadcrumb

// Degraded reports whether any contributing stage ran in degraded mode.
func (p Provenance) Degraded() bool {
	for _, b := range p {
		if b.Degraded {
			return true
		}
	}
	return false
}

// Stages returns the ordered stage names, for logging and persistence.
func (p Provenance) Stages() []string {
	out := make([]string, 0, len(p))
	for _, b := range p {
		out = append(out, string(b.Stage))
	}
	return out
}

// Signal is one (user, chunk) pairing presented for feedback.
//
// Invariant: at most one Signal ever exists per (UserID, ChunkID) pair;
// candidate generation is idempotent against prior runs. A signal
// transitions pending to saved or pending to skipped exactly once, or
// expires under an external retention policy.
type Signal struct {
	// ID is the unique signal identifier.
	ID string `json:"id"`

	// UserID is the user the signal was generated for.
	UserID string `json:"user_id"`

	// ChunkID is the presented chunk.
	ChunkID string `json:"chunk_id"`

	// RelevanceScore is the final orchestrated score in [0,1].
	RelevanceScore float64 `json:"relevance_score"`

	// Provenance records which stages produced the score.
	Provenance Provenance `json:"provenance"`

	// State is the lifecycle state.
	State SignalState `json:"state"`

	// CreatedAt is when the scoring run emitted the signal.
	CreatedAt time.Time `json:"created_at"`
}
