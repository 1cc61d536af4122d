// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package models

import "testing"

func TestFeedbackAction_Valid(t *testing.T) {
	tests := []struct {
		name   string
		action FeedbackAction
		want   bool
	}{
		{"saved", ActionSaved, true},
		{"skipped", ActionSkipped, true},
		{"empty", FeedbackAction(""), false},
		{"unknown", FeedbackAction("liked"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignalState_Terminal(t *testing.T) {
	tests := []struct {
		name  string
		state SignalState
		want  bool
	}{
		{"pending is not terminal", SignalPending, false},
		{"saved is terminal", SignalSaved, true},
		{"skipped is terminal", SignalSkipped, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProvenance_Degraded(t *testing.T) {
	tests := []struct {
		name string
		prov Provenance
		want bool
	}{
		{"empty", Provenance{}, false},
		{"healthy stages", Provenance{{Stage: StageHeuristic, Score: 0.5}, {Stage: StageEmbedding, Score: 0.6}}, false},
		{"one degraded stage", Provenance{{Stage: StageHeuristic, Score: 0.5}, {Stage: StageJudge, Score: 0.5, Degraded: true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.prov.Degraded(); got != tt.want {
				t.Errorf("Degraded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProvenance_Stages(t *testing.T) {
	p := Provenance{
		{Stage: StageHeuristic, Score: 0.4},
		{Stage: StageEmbedding, Score: 0.7},
		{Stage: StageNovelty, Score: -0.2},
	}

	got := p.Stages()
	want := []string{"heuristic", "embedding", "novelty"}

	if len(got) != len(want) {
		t.Fatalf("Stages() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Stages()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestContentChunk_HasEmbedding(t *testing.T) {
	withEmb := &ContentChunk{ID: "c1", Embedding: []float64{0.1, 0.2}}
	withoutEmb := &ContentChunk{ID: "c2"}

	if !withEmb.HasEmbedding() {
		t.Error("chunk with embedding should report HasEmbedding() = true")
	}
	if withoutEmb.HasEmbedding() {
		t.Error("chunk without embedding should report HasEmbedding() = false")
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single word", "hello", 1},
		{"sentence", "the quick brown fox", 4},
		{"extra whitespace", "  spaced \t out\nwords  ", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.text); got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestUserPreferenceProfile_Trained(t *testing.T) {
	tests := []struct {
		name      string
		profile   *UserPreferenceProfile
		threshold int
		want      bool
	}{
		{"nil profile", nil, 10, false},
		{"below threshold", &UserPreferenceProfile{TotalSaved: 5, PositiveCentroid: []float64{1}}, 10, false},
		{"at threshold", &UserPreferenceProfile{TotalSaved: 10, PositiveCentroid: []float64{1}}, 10, true},
		{"above threshold without centroid", &UserPreferenceProfile{TotalSaved: 20}, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.Trained(tt.threshold); got != tt.want {
				t.Errorf("Trained(%d) = %v, want %v", tt.threshold, got, tt.want)
			}
		})
	}
}
