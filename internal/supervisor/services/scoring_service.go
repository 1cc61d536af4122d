// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Runner executes a single scoring pass over the candidate pool.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// ScoringService schedules scoring runs on a cron expression. Runs are
// serialized: a tick that fires while a run is still in flight is
// skipped rather than overlapped.
type ScoringService struct {
	runner       Runner
	schedule     string
	runOnStartup bool
	logger       zerolog.Logger

	cron    *cron.Cron
	running chan struct{}
}

// NewScoringService builds a supervised scoring scheduler. The schedule
// is a standard 5-field cron expression evaluated in UTC.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewScoringService(runner Runner, schedule string, runOnStartup bool, logger zerolog.Logger) *ScoringService {
	return &ScoringService{
		runner:       runner,
		schedule:     schedule,
		runOnStartup: runOnStartup,
		logger:       logger.With().Str("component", "scoring-service").Logger(),
		running:      make(chan struct{}, 1),
	}
}

// Serve implements suture.Service. It blocks until the context is
// canceled, then stops the cron scheduler and waits for any in-flight
// run to finish.
func (s *ScoringService) Serve(ctx context.Context) error {
	s.cron = cron.New(cron.WithLocation(time.UTC))

	if _, err := s.cron.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("invalid scoring schedule %q: %w", s.schedule, err)
	}

	if s.runOnStartup {
		s.run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("scoring scheduler started")

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	// Drain the run slot so an in-flight pass completes before we report
	// the service stopped.
	s.running <- struct{}{}
	<-s.running

	return ctx.Err()
}

func (s *ScoringService) run(ctx context.Context) {
	select {
	case s.running <- struct{}{}:
	default:
		s.logger.Warn().Msg("scoring run still in flight, skipping tick")
		return
	}
	defer func() { <-s.running }()

	start := time.Now()
	if err := s.runner.RunOnce(ctx); err != nil {
		s.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("scoring run failed")
		return
	}
	s.logger.Info().Dur("elapsed", time.Since(start)).Msg("scoring run completed")
}

// String implements fmt.Stringer for supervisor logging.
func (s *ScoringService) String() string {
	return "scoring-scheduler"
}
