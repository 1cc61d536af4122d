// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/metrics"
	"github.com/curiofeed/curio/internal/models"
	"github.com/curiofeed/curio/internal/scoring"
	"github.com/curiofeed/curio/internal/scoring/embedding"
	"github.com/curiofeed/curio/internal/scoring/novelty"
	"github.com/curiofeed/curio/internal/selector"
	"github.com/curiofeed/curio/internal/store"
)

// Store is the persistence surface one scoring run needs.
type Store interface {
	ActiveUserIDs(ctx context.Context) ([]string, error)
	ListChunks(ctx context.Context, limit int) ([]*models.ContentChunk, error)
	RecentSavedEmbeddings(ctx context.Context, userID string, limit int) ([][]float64, error)
	SignaledChunkIDs(ctx context.Context, userID string) (map[string]bool, error)
	CreateSignal(ctx context.Context, signal *models.Signal) error
}

// Profiles resolves a user's derived preference state.
type Profiles interface {
	Get(ctx context.Context, userID string) (*models.UserPreferenceProfile, error)
}

// Recomputer rebuilds one user's profile from the event log.
type Recomputer interface {
	RecomputeProfile(ctx context.Context, userID string) (*models.UserPreferenceProfile, error)
}

// Config holds run-level tunables.
type Config struct {
	// ColdStartThreshold mirrors the preference model's training gate.
	ColdStartThreshold int

	// RecentWindow caps the redundancy-check history per user.
	RecentWindow int

	// BatchLimit caps chunks fetched per run; 0 fetches all.
	BatchLimit int

	// SeparationSample caps the chunk-pool sample used for the held-out
	// separation check.
	SeparationSample int
}

// Pipeline executes one full scoring run: recompute profiles, score every
// chunk per user, select signal candidates under budget, persist. Signals
// are created one at a time, so a run interrupted mid-user leaves valid
// state and the next run is an idempotent continuation.
type Pipeline struct {
	store      Store
	profiles   Profiles
	recomputer Recomputer
	engine     *scoring.Engine
	model      *embedding.Model
	adjuster   *novelty.Adjuster
	selector   *selector.Selector
	cfg        Config
	logger     zerolog.Logger
}

// New wires a pipeline.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(st Store, profiles Profiles, recomputer Recomputer, engine *scoring.Engine, model *embedding.Model, adjuster *novelty.Adjuster, sel *selector.Selector, cfg Config, logger zerolog.Logger) *Pipeline {
	if cfg.ColdStartThreshold <= 0 {
		cfg.ColdStartThreshold = 10
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = 20
	}
	if cfg.SeparationSample <= 0 {
		cfg.SeparationSample = 50
	}
	return &Pipeline{
		store:      st,
		profiles:   profiles,
		recomputer: recomputer,
		engine:     engine,
		model:      model,
		adjuster:   adjuster,
		selector:   sel,
		cfg:        cfg,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// RunOnce scores all chunks for all active users. Per-user failures are
// logged and skipped so one bad profile cannot starve the rest.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.ScoringRunDuration.Observe(time.Since(start).Seconds())
	}()

	users, err := p.store.ActiveUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}
	chunks, err := p.store.ListChunks(ctx, p.cfg.BatchLimit)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}

	p.logger.Info().Int("users", len(users)).Int("chunks", len(chunks)).Msg("scoring run started")

	var failed int
	for _, userID := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.runUser(ctx, userID, chunks); err != nil {
			failed++
			p.logger.Error().Err(err).Str("user_id", userID).Msg("user scoring failed")
		}
	}

	p.logger.Info().
		Int("users", len(users)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("scoring run finished")
	return nil
}

func (p *Pipeline) runUser(ctx context.Context, userID string, chunks []*models.ContentChunk) error {
	// Fold in any feedback the bus notification may have missed.
	profile, err := p.recomputer.RecomputeProfile(ctx, userID)
	if err != nil {
		// Stale profile still scores; only a missing one falls back to
		// cold start.
		profile, err = p.profiles.Get(ctx, userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("load profile: %w", err)
		}
	}

	recent, err := p.store.RecentSavedEmbeddings(ctx, userID, p.cfg.RecentWindow)
	if err != nil {
		return fmt.Errorf("load recent saved: %w", err)
	}

	run := &scoring.RunContext{
		Profile:     profile,
		RecentSaved: recent,
	}
	if profile != nil {
		sep := p.adjuster.CollapseSeparation(profile.PositiveCentroid, profile.NegativeCentroid)
		if p.adjuster.Degraded(sep) {
			run.Degraded = true
			metrics.CollapseDegradedRuns.Inc()
			p.logger.Warn().
				Str("user_id", userID).
				Float64("separation", sep).
				Msg("preference signal collapse detected, embedding downweighted")
		}

		// Held-out check: a trained centroid that scores recent saves no
		// higher than a random slice of the pool cannot discriminate.
		sample := sampleEmbeddings(chunks, p.cfg.SeparationSample)
		if p.model.State(profile) == embedding.StateTrained && len(recent) > 0 && len(sample) > 0 {
			quality := p.model.SeparationQuality(profile, recent, sample)
			metrics.SeparationQuality.Observe(quality)
			if !p.model.Informative(quality) {
				if !run.Degraded {
					run.Degraded = true
					metrics.UninformativeModelRuns.Inc()
				}
				p.logger.Warn().
					Str("user_id", userID).
					Float64("separation_quality", quality).
					Msg("preference model uninformative on held-out saves, embedding downweighted")
			}
		}
	}

	result := p.engine.ScoreBatch(ctx, chunks, run)

	wordCounts := make(map[string]int, len(chunks))
	for _, c := range chunks {
		n := c.WordCount
		if n == 0 {
			n = models.CountWords(c.Text)
		}
		wordCounts[c.ID] = n
	}
	// Chunks whose judge call failed are held back entirely: a persisted
	// signal would exclude the (user, chunk) pair from every later run,
	// so withholding it is what lets the next run re-judge.
	candidates := make([]selector.Candidate, 0, len(result.Scored))
	var judgeRetries int
	for _, sc := range result.Scored {
		if sc.NeedsJudgeRetry {
			judgeRetries++
			continue
		}
		candidates = append(candidates, selector.Candidate{
			Scored:    sc,
			WordCount: wordCounts[sc.ChunkID],
		})
	}
	if judgeRetries > 0 {
		metrics.JudgeRetryDeferrals.Add(float64(judgeRetries))
		p.logger.Info().
			Str("user_id", userID).
			Int("held_back", judgeRetries).
			Msg("judge-failed chunks held back for a later run")
	}

	signaled, err := p.store.SignaledChunkIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("load signaled chunks: %w", err)
	}

	trained := profile.Trained(p.cfg.ColdStartThreshold)
	picked := p.selector.Select(candidates, signaled, trained)

	var created int
	for _, c := range picked {
		sig := &models.Signal{
			UserID:         userID,
			ChunkID:        c.Scored.ChunkID,
			RelevanceScore: c.Scored.Score,
			Provenance:     c.Scored.Provenance,
		}
		err := p.store.CreateSignal(ctx, sig)
		if errors.Is(err, store.ErrDuplicateSignal) {
			continue
		}
		if err != nil {
			return fmt.Errorf("persist signal for chunk %s: %w", c.Scored.ChunkID, err)
		}
		created++
	}

	p.logger.Debug().
		Str("user_id", userID).
		Bool("trained", trained).
		Bool("degraded", run.Degraded).
		Int("scored", len(result.Scored)).
		Int("deferred", len(result.Deferred)).
		Int("held_back", judgeRetries).
		Int("created", created).
		Msg("user scoring complete")
	return nil
}

// sampleEmbeddings takes an evenly strided sample of chunk embeddings,
// capped at n. Striding keeps the sample stable across runs over the same
// pool without shuffling.
func sampleEmbeddings(chunks []*models.ContentChunk, n int) [][]float64 {
	withEmbedding := make([]*models.ContentChunk, 0, len(chunks))
	for _, c := range chunks {
		if c.HasEmbedding() {
			withEmbedding = append(withEmbedding, c)
		}
	}
	if len(withEmbedding) == 0 {
		return nil
	}
	stride := 1
	if len(withEmbedding) > n {
		stride = len(withEmbedding) / n
	}
	sample := make([][]float64, 0, n)
	for i := 0; i < len(withEmbedding) && len(sample) < n; i += stride {
		sample = append(sample, withEmbedding[i].Embedding)
	}
	return sample
}
