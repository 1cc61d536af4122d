// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package models

import "time"

// FeedbackAction is the user's verdict on a presented signal.
type FeedbackAction string

const (
	// ActionSaved indicates the user kept the content (positive signal).
	ActionSaved FeedbackAction = "saved"

	// ActionSkipped indicates the user dismissed the content (negative signal).
	ActionSkipped FeedbackAction = "skipped"
)

// Valid reports whether the action is one of the known feedback verdicts.
func (a FeedbackAction) Valid() bool {
	return a == ActionSaved || a == ActionSkipped
}

// UserFeedbackEvent is one append-only feedback record. The event log is
// the source of truth for all preference state; events are never mutated
// or deleted, and UserPreferenceProfile is always a deterministic function
// of the log up to the current time.
type UserFeedbackEvent struct {
	// UserID is the user who acted.
	UserID string `json:"user_id"`

	// ChunkID is the chunk the user acted on.
	ChunkID string `json:"chunk_id"`

	// Action is the verdict: saved or skipped.
	Action FeedbackAction `json:"action"`

	// Timestamp is when the action occurred.
	Timestamp time.Time `json:"timestamp"`
}

// UserPreferenceProfile is per-user derived state summarizing accumulated
// taste. It is fully recomputable from the feedback event log at any time:
// derived state, not a log itself.
type UserPreferenceProfile struct {
	// UserID is the profile owner.
	UserID string `json:"user_id"`

	// PositiveCentroid is the mean embedding of saved chunks, or nil
	// before any saved chunk had an embedding.
	PositiveCentroid []float64 `json:"positive_centroid,omitempty"`

	// NegativeCentroid is the mean embedding of skipped chunks, or nil
	// when skip volume is insufficient.
	NegativeCentroid []float64 `json:"negative_centroid,omitempty"`

	// TotalSaved is the number of saved events in the log.
	TotalSaved int `json:"total_saved"`

	// TotalSkipped is the number of skipped events in the log.
	TotalSkipped int `json:"total_skipped"`

	// LastUpdated is when the profile was last recomputed.
	LastUpdated time.Time `json:"last_updated"`
}

// Trained reports whether the profile has accumulated enough saved
// feedback to leave cold-start exploration.
func (p *UserPreferenceProfile) Trained(coldStartThreshold int) bool {
	return p != nil && p.TotalSaved >= coldStartThreshold && len(p.PositiveCentroid) > 0
}
