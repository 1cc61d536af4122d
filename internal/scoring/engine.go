// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package scoring

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/metrics"
	"github.com/curiofeed/curio/internal/models"
)

// BatchResult gathers the outcome of one bounded concurrent batch.
type BatchResult struct {
	// Scored holds the successfully scored chunks, in input order.
	Scored []ScoredChunk

	// Deferred holds IDs of chunks skipped for missing embeddings;
	// they stay eligible for a later run.
	Deferred []string

	// Skipped holds IDs of structurally invalid chunks.
	Skipped []string
}

// slot is one chunk's outcome within a batch. Exactly one field is set.
type slot struct {
	scored   *ScoredChunk
	deferred string
	skipped  string
}

// Engine runs the orchestrator over chunk batches with bounded
// concurrency. Per-chunk work is independent: one slow judge call does not
// stall sibling chunks, and a join barrier collects all results before the
// caller proceeds to selection.
type Engine struct {
	orch   *Orchestrator
	logger zerolog.Logger
}

// NewEngine creates a batch engine around an orchestrator.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(orch *Orchestrator, logger zerolog.Logger) *Engine {
	return &Engine{
		orch:   orch,
		logger: logger.With().Str("component", "scoring-engine").Logger(),
	}
}

// ScoreBatch scores all chunks for one user under a shared run context.
// Failures are isolated per chunk; cancellation stops dispatching new work
// but in-flight chunks complete so partial results remain consistent.
func (e *Engine) ScoreBatch(ctx context.Context, chunks []*models.ContentChunk, run *RunContext) BatchResult {
	n := len(chunks)
	if n == 0 {
		return BatchResult{}
	}

	slots := make([]slot, n)
	sem := make(chan struct{}, e.orch.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk *models.ContentChunk) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[i] = e.scoreOne(ctx, chunk, run)
		}(i, chunk)
	}

	// Join barrier: the selector must only ever see a fully scored,
	// immutable snapshot.
	wg.Wait()

	var result BatchResult
	for _, s := range slots {
		switch {
		case s.scored != nil:
			result.Scored = append(result.Scored, *s.scored)
		case s.deferred != "":
			result.Deferred = append(result.Deferred, s.deferred)
		case s.skipped != "":
			result.Skipped = append(result.Skipped, s.skipped)
		}
	}
	return result
}

// scoreOne isolates a single chunk's scoring, including panic recovery:
// the orchestrator is total and a defect in one stage must not take down
// the batch.
func (e *Engine) scoreOne(ctx context.Context, chunk *models.ContentChunk, run *RunContext) (out slot) {
	defer func() {
		if r := recover(); r != nil {
			id := ""
			if chunk != nil {
				id = chunk.ID
			}
			e.logger.Error().Interface("panic", r).Str("chunk_id", id).Msg("scoring panic recovered")
			metrics.ChunksScored.WithLabelValues("failed").Inc()
			out = slot{skipped: id}
		}
	}()

	sc, err := e.orch.ScoreChunk(ctx, chunk, run)
	switch {
	case errors.Is(err, ErrMissingEmbedding):
		metrics.ChunksScored.WithLabelValues("deferred").Inc()
		out.deferred = chunk.ID
	case errors.Is(err, ErrInvalidChunk):
		metrics.ChunksScored.WithLabelValues("skipped").Inc()
		if chunk != nil {
			out.skipped = chunk.ID
		}
		e.logger.Debug().Err(err).Msg("skipped invalid chunk")
	case err != nil:
		// The orchestrator contract says this cannot happen for valid
		// chunks; treat it as a skip rather than poisoning the batch.
		metrics.ChunksScored.WithLabelValues("failed").Inc()
		out.skipped = chunk.ID
		e.logger.Error().Err(err).Str("chunk_id", chunk.ID).Msg("unexpected scoring error")
	default:
		metrics.ChunksScored.WithLabelValues("scored").Inc()
		out.scored = &sc
	}
	return out
}
