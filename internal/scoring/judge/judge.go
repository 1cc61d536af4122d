// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package judge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrUnavailable wraps provider failures, timeouts, and an open circuit.
// Callers must treat it as an external-service error: degrade to the best
// prior-stage score, flag provenance as degraded, and queue a retry. It
// never aborts a batch.
var ErrUnavailable = errors.New("judge: provider unavailable")

// Verdict is the judge's validated assessment of one chunk.
type Verdict struct {
	// Score is the precise quality score in [0, 100].
	Score float64 `json:"score"`

	// Reasoning is the judge's short justification.
	Reasoning string `json:"reasoning"`

	// Pass is derived from Score against the configured cutoff.
	Pass bool `json:"pass"`
}

// Config holds the judge tunables.
type Config struct {
	// Model is the provider model identifier.
	Model string

	// Cutoff is the score at or above which Pass is true. Default: 60.
	Cutoff float64

	// RequestTimeout bounds one provider call. Default: 20s.
	RequestTimeout time.Duration

	// RequestsPerSecond rate-limits provider calls. Default: 2.
	RequestsPerSecond float64

	// Burst is the rate limiter burst size. Default: 4.
	Burst int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Model:             "gpt-4o-mini",
		Cutoff:            60,
		RequestTimeout:    20 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
	}
}

// ChatCompleter is the narrow provider boundary. Implementations return the
// raw model output for a system/user prompt pair.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Judge invokes an LLM with a fixed rubric to score chunks whose
// prior-stage signal is ambiguous. All provider calls pass through a rate
// limiter and a circuit breaker; the loosely-typed provider response is
// validated at the boundary before it enters the scoring core.
type Judge struct {
	provider ChatCompleter
	breaker  *gobreaker.CircuitBreaker[Verdict]
	limiter  *rate.Limiter
	cfg      Config
	logger   zerolog.Logger
}

// New creates a judge around the given provider.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(provider ChatCompleter, cfg Config, logger zerolog.Logger) *Judge {
	if cfg.Cutoff <= 0 {
		cfg.Cutoff = 60
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 20 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}

	log := logger.With().Str("component", "judge").Logger()

	breaker := gobreaker.NewCircuitBreaker[Verdict](gobreaker.Settings{
		Name:        "llm-judge",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("judge circuit breaker state change")
		},
	})

	return &Judge{
		provider: provider,
		breaker:  breaker,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cfg:      cfg,
		logger:   log,
	}
}

// Score asks the LLM to judge one chunk against the fixed rubric.
// Any provider failure, timeout, malformed response, or open circuit is
// reported as ErrUnavailable; the caller falls back to prior-stage signal.
func (j *Judge) Score(ctx context.Context, text string) (Verdict, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return Verdict{}, fmt.Errorf("%w: rate limiter: %w", ErrUnavailable, err)
	}

	verdict, err := j.breaker.Execute(func() (Verdict, error) {
		callCtx, cancel := context.WithTimeout(ctx, j.cfg.RequestTimeout)
		defer cancel()

		raw, err := j.provider.Complete(callCtx, rubricSystemPrompt, userPrompt(text))
		if err != nil {
			return Verdict{}, fmt.Errorf("provider call: %w", err)
		}

		v, err := parseVerdict(raw)
		if err != nil {
			return Verdict{}, fmt.Errorf("parse response: %w", err)
		}
		return v, nil
	})
	if err != nil {
		j.logger.Warn().Err(err).Msg("judge call failed, caller will degrade")
		return Verdict{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	verdict.Pass = verdict.Score >= j.cfg.Cutoff
	return verdict, nil
}
