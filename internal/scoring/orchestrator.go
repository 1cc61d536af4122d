// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/metrics"
	"github.com/curiofeed/curio/internal/models"
	"github.com/curiofeed/curio/internal/scoring/embedding"
	"github.com/curiofeed/curio/internal/scoring/gate"
	"github.com/curiofeed/curio/internal/scoring/judge"
	"github.com/curiofeed/curio/internal/scoring/novelty"
)

// Config holds the orchestrator tunables.
type Config struct {
	// Weights is the heuristic/embedding/judge blend for borderline
	// chunks. Default: 0.4 / 0.3 / 0.3.
	Weights Weights

	// BorderlineLow and BorderlineHigh bound the score band (on the
	// 0-100 scale) in which the LLM judge is consulted. Defaults: 40, 70.
	BorderlineLow  float64
	BorderlineHigh float64

	// ExplorationJitter scales how far the cold-start random draw moves
	// a gate score. Default: 0.2 on the unit scale.
	ExplorationJitter float64

	// DegradedEmbeddingFactor multiplies the embedding weight when
	// preference-signal collapse is detected. Default: 0.25.
	DegradedEmbeddingFactor float64

	// Concurrency bounds in-flight chunk scoring within a batch, to
	// respect provider rate limits. Default: 10.
	Concurrency int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Weights:                 Weights{Heuristic: 0.4, Embedding: 0.3, Judge: 0.3},
		BorderlineLow:           40,
		BorderlineHigh:          70,
		ExplorationJitter:       0.2,
		DegradedEmbeddingFactor: 0.25,
		Concurrency:             10,
	}
}

// Orchestrator sequences the scoring cascade into exactly one auditable
// score per (user, chunk). It is total over structurally valid chunks: any
// single stage failure degrades to the best available prior score instead
// of propagating.
type Orchestrator struct {
	gate     *gate.Gate
	model    *embedding.Model
	adjuster *novelty.Adjuster
	judge    ChunkJudge
	cfg      Config
	logger   zerolog.Logger
}

// NewOrchestrator wires the cascade. The judge may be nil, which disables
// the LLM stage entirely (borderline chunks finalize on cheap signal).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOrchestrator(g *gate.Gate, m *embedding.Model, a *novelty.Adjuster, j ChunkJudge, cfg Config, logger zerolog.Logger) (*Orchestrator, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}
	if cfg.BorderlineLow <= 0 {
		cfg.BorderlineLow = 40
	}
	if cfg.BorderlineHigh <= 0 {
		cfg.BorderlineHigh = 70
	}
	if cfg.BorderlineLow >= cfg.BorderlineHigh {
		return nil, fmt.Errorf("borderline band [%f, %f] is empty", cfg.BorderlineLow, cfg.BorderlineHigh)
	}
	if cfg.ExplorationJitter <= 0 {
		cfg.ExplorationJitter = 0.2
	}
	if cfg.DegradedEmbeddingFactor <= 0 {
		cfg.DegradedEmbeddingFactor = 0.25
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}

	return &Orchestrator{
		gate:     g,
		model:    m,
		adjuster: a,
		judge:    j,
		cfg:      cfg,
		logger:   logger.With().Str("component", "orchestrator").Logger(),
	}, nil
}

// ScoreChunk produces the final score and provenance for one chunk under
// the given run context. It returns an error only for structurally invalid
// input (ErrInvalidChunk, ErrMissingEmbedding); every downstream stage
// failure degrades instead.
func (o *Orchestrator) ScoreChunk(ctx context.Context, chunk *models.ContentChunk, run *RunContext) (ScoredChunk, error) {
	if chunk == nil || strings.TrimSpace(chunk.Text) == "" {
		return ScoredChunk{}, ErrInvalidChunk
	}

	userID := ""
	if run.Profile != nil {
		userID = run.Profile.UserID
	}

	result := ScoredChunk{UserID: userID, ChunkID: chunk.ID}

	// Stage 1: heuristic gate. Total, never fails.
	gateRes := o.gate.Evaluate(chunk.Text)
	gateUnit := gateRes.Score / 100
	result.Provenance = append(result.Provenance, models.Breadcrumb{
		Stage:  models.StageHeuristic,
		Score:  gateUnit,
		Detail: joinReasons(gateRes.Reasons),
	})
	metrics.GateEvaluations.WithLabelValues(passLabel(gateRes.Pass)).Inc()

	if !gateRes.Pass {
		result.Score = clampUnit(gateUnit)
		return result, nil
	}

	// Stage 2: cold start takes the exploration path; no embedding needed.
	if run.Profile == nil || o.model.State(run.Profile) == embedding.StateUntrained {
		expl := o.model.Score(run.Profile, nil)
		result.Provenance = append(result.Provenance, models.Breadcrumb{
			Stage: models.StageExploration,
			Score: expl,
		})
		result.Score = clampUnit(gateUnit + (expl-0.5)*o.cfg.ExplorationJitter)
		return result, nil
	}

	// Trained path needs the chunk's embedding.
	if !chunk.HasEmbedding() {
		return ScoredChunk{}, ErrMissingEmbedding
	}

	embScore := o.model.Score(run.Profile, chunk.Embedding)
	result.Provenance = append(result.Provenance, models.Breadcrumb{
		Stage:    models.StageEmbedding,
		Score:    embScore,
		Degraded: run.Degraded,
	})

	// Stage 3: novelty adjustment against recently saved content.
	adjusted := embScore
	if penalty := o.adjuster.Penalty(chunk.Embedding, run.RecentSaved); penalty != 0 {
		adjusted = clampUnit(embScore + penalty)
		result.Provenance = append(result.Provenance, models.Breadcrumb{
			Stage: models.StageNovelty,
			Score: penalty,
		})
		metrics.NoveltyPenalties.Inc()
	}

	wHeuristic := o.cfg.Weights.Heuristic
	wEmbedding := o.cfg.Weights.Embedding
	if run.Degraded {
		wEmbedding *= o.cfg.DegradedEmbeddingFactor
	}

	combined := weighted(gateUnit, wHeuristic, adjusted, wEmbedding)
	combined100 := combined * 100

	// Stage 4: the judge is consulted only inside the borderline band.
	// Strong agreement on either side skips the expensive call.
	if o.judge == nil || combined100 < o.cfg.BorderlineLow || combined100 > o.cfg.BorderlineHigh {
		result.Score = clampUnit(combined)
		return result, nil
	}

	judgeStart := time.Now()
	verdict, err := o.judge.Score(ctx, chunk.Text)
	metrics.JudgeLatency.Observe(time.Since(judgeStart).Seconds())
	if err != nil {
		// Fail soft: prior-stage score stands, provenance is flagged,
		// and the chunk is queued for a later retry.
		if !errors.Is(err, judge.ErrUnavailable) {
			o.logger.Error().Err(err).Str("chunk_id", chunk.ID).Msg("unexpected judge error")
		}
		metrics.JudgeCalls.WithLabelValues("error").Inc()
		result.Provenance = append(result.Provenance, models.Breadcrumb{
			Stage:    models.StageJudge,
			Score:    combined,
			Degraded: true,
		})
		result.Score = clampUnit(combined)
		result.NeedsJudgeRetry = true
		return result, nil
	}

	metrics.JudgeCalls.WithLabelValues("ok").Inc()
	judgeUnit := verdict.Score / 100
	result.Provenance = append(result.Provenance, models.Breadcrumb{
		Stage:  models.StageJudge,
		Score:  judgeUnit,
		Detail: verdict.Reasoning,
	})

	wJudge := o.cfg.Weights.Judge
	sum := wHeuristic + wEmbedding + wJudge
	final := (wHeuristic*gateUnit + wEmbedding*adjusted + wJudge*judgeUnit) / sum
	result.Score = clampUnit(final)
	return result, nil
}

// weighted blends two unit scores by their weights.
func weighted(a, wa, b, wb float64) float64 {
	if wa+wb == 0 {
		return 0
	}
	return (a*wa + b*wb) / (wa + wb)
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func joinReasons(reasons []gate.RuleID) string {
	if len(reasons) == 0 {
		return ""
	}
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func passLabel(pass bool) string {
	if pass {
		return "pass"
	}
	return "block"
}
