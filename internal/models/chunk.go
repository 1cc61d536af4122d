// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package models

import (
	"strings"
	"time"
)

// ContentChunk is an immutable unit of ingested text (a podcast transcript
// segment or an article paragraph) produced by the ingestion pipeline.
//
// The embedding is attached once by an external embedding step and cached
// forever; it may be absent, and scoring must tolerate absence by skipping
// or deferring the chunk rather than failing.
type ContentChunk struct {
	// ID is the unique chunk identifier assigned at ingestion.
	ID string `json:"id"`

	// Text is the chunk content. Immutable after creation.
	Text string `json:"text"`

	// Embedding is the chunk's vector representation, or nil when the
	// external embedding step has not run yet.
	Embedding []float64 `json:"embedding,omitempty"`

	// WordCount is the number of whitespace-separated words in Text.
	WordCount int `json:"word_count"`

	// SourceID identifies the feed/show/publication the chunk came from.
	SourceID string `json:"source_id"`

	// CreatedAt is when the chunk was ingested.
	CreatedAt time.Time `json:"created_at"`
}

// HasEmbedding reports whether the external embedding step has populated
// the chunk's vector.
func (c *ContentChunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// CountWords returns the number of whitespace-separated words in s.
// Used by ingestion boundaries when WordCount was not supplied.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
