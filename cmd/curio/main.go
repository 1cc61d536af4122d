// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

// Package main is the entry point for the Curio scoring daemon.
//
// Curio scores content chunks against per-user preference profiles and
// surfaces the most relevant ones as signals. A scheduled run walks a
// cascade per chunk: a cheap heuristic gate, an embedding preference
// model with novelty adjustment, and an optional LLM judge for the
// borderline band. Feedback on surfaced signals feeds a continuous
// learning loop that recomputes preference centroids from the
// append-only event log.
//
// # Application Architecture
//
// The daemon initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config file, and
//     environment variables (Koanf v2)
//  2. Stores: DuckDB for chunks, feedback events, and signals; Badger
//     for derived preference profiles
//  3. Learning: the profile updater and the feedback event bus
//  4. Scoring: gate, embedding model, novelty adjuster, optional judge,
//     orchestrator, and batch engine
//  5. Supervisor tree: data, scoring, and ops layers under suture
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables with the CURIO_ prefix
//     (e.g. CURIO_SELECTOR_BUDGET=20)
//   - Config file (CONFIG_PATH, ./config.yaml, or /etc/curio/config.yaml)
//   - Built-in defaults
//
// The LLM judge is off by default; enable it with CURIO_JUDGE_ENABLED=true
// and CURIO_JUDGE_API_KEY. Without it, borderline chunks finalize on the
// cheap signal.
//
// # Signal Handling
//
// The daemon shuts down gracefully on SIGINT and SIGTERM: the cron
// scheduler stops, an in-flight scoring run finishes its current signal
// write, and the HTTP listener drains within the shutdown timeout.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/config"
	"github.com/curiofeed/curio/internal/feedback"
	"github.com/curiofeed/curio/internal/learning"
	"github.com/curiofeed/curio/internal/logging"
	"github.com/curiofeed/curio/internal/ops"
	"github.com/curiofeed/curio/internal/pipeline"
	"github.com/curiofeed/curio/internal/scoring"
	"github.com/curiofeed/curio/internal/scoring/embedding"
	"github.com/curiofeed/curio/internal/scoring/gate"
	"github.com/curiofeed/curio/internal/scoring/judge"
	"github.com/curiofeed/curio/internal/scoring/novelty"
	"github.com/curiofeed/curio/internal/selector"
	"github.com/curiofeed/curio/internal/store"
	"github.com/curiofeed/curio/internal/supervisor"
	"github.com/curiofeed/curio/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("profiles_path", cfg.Profiles.Path).
		Str("schedule", cfg.Schedule.Cron).
		Bool("judge_enabled", cfg.Judge.Enabled).
		Msg("Starting Curio")

	db, err := store.Open(store.Options{
		Path:      cfg.Database.Path,
		Threads:   cfg.Database.Threads,
		MaxMemory: cfg.Database.MaxMemory,
	}, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	profiles, err := store.OpenProfiles(cfg.Profiles.Path, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open profile store")
	}
	defer func() {
		if err := profiles.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing profile store")
		}
	}()

	updater := learning.New(db, db, profiles, logger)

	// Feedback bus: recorders publish on it, the router recomputes the
	// affected profile. gochannel keeps this in-process.
	bus := feedback.NewBus(logger)
	router, err := feedback.NewRouter(bus, updater, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build feedback router")
	}

	adjuster := novelty.New(novelty.Config{
		RedundancyThreshold: cfg.Novelty.RedundancyThreshold,
		RedundancyPenalty:   cfg.Novelty.RedundancyPenalty,
		CollapseFloor:       cfg.Novelty.CollapseFloor,
		RecentWindow:        cfg.Novelty.RecentWindow,
	})

	model := embedding.NewModel(embedding.ModelConfig{
		ColdStartThreshold:  cfg.Scoring.ColdStartThreshold,
		MinSkipsForContrast: cfg.Scoring.MinSkipsForContrast,
		ContrastWeight:      cfg.Scoring.ContrastWeight,
		SeparationFloor:     cfg.Scoring.SeparationFloor,
	}, cfg.Scoring.Seed)

	engine, err := buildEngine(cfg, model, adjuster, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build scoring engine")
	}

	sel := selector.New(selector.Config{
		Budget:   cfg.Selector.Budget,
		MinWords: cfg.Selector.MinWords,
		MaxWords: cfg.Selector.MaxWords,
		Buckets:  cfg.Selector.Buckets,
	}, cfg.Scoring.Seed, logger)

	runner := pipeline.New(db, profiles, updater, engine, model, adjuster, sel, pipeline.Config{
		ColdStartThreshold: cfg.Scoring.ColdStartThreshold,
		RecentWindow:       cfg.Novelty.RecentWindow,
		BatchLimit:         cfg.Scoring.BatchLimit,
	}, logger)

	opsServer := ops.NewServer(cfg.Server.Host, cfg.Server.Port, db, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddDataService(services.NewMaintenanceService(profiles, 10*time.Minute, logger))
	tree.AddScoringService(services.NewScoringService(
		runner, cfg.Schedule.Cron, cfg.Schedule.RunOnStartup, logger))
	tree.AddScoringService(services.NewFeedbackService(router))
	tree.AddOpsService(services.NewHTTPServerService(opsServer, 10*time.Second))
	logging.Info().Str("addr", opsServer.Addr).Msg("Supervisor tree assembled")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Curio stopped gracefully")
}

// buildEngine assembles the scoring cascade from configuration. The model
// and adjuster are shared with the pipeline, which reuses them for per-run
// degradation checks.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildEngine(cfg *config.Config, model *embedding.Model, adjuster *novelty.Adjuster, logger zerolog.Logger) (*scoring.Engine, error) {
	gateCfg := gate.DefaultConfig()
	gateCfg.MinWords = cfg.Gate.MinWords
	g := gate.New(gateCfg)

	var chunkJudge scoring.ChunkJudge
	if cfg.Judge.Enabled {
		provider := judge.NewOpenAIProvider(cfg.Judge.APIKey, cfg.Judge.BaseURL, cfg.Judge.Model)
		chunkJudge = judge.New(provider, judge.Config{
			Model:             cfg.Judge.Model,
			Cutoff:            cfg.Judge.Cutoff,
			RequestTimeout:    cfg.Judge.RequestTimeout,
			RequestsPerSecond: cfg.Judge.RequestsPerSecond,
			Burst:             cfg.Judge.Burst,
		}, logger)
	}

	orch, err := scoring.NewOrchestrator(g, model, adjuster, chunkJudge, scoring.Config{
		Weights: scoring.Weights{
			Heuristic: cfg.Scoring.HeuristicWeight,
			Embedding: cfg.Scoring.EmbeddingWeight,
			Judge:     cfg.Scoring.JudgeWeight,
		},
		BorderlineLow:           cfg.Scoring.BorderlineLow,
		BorderlineHigh:          cfg.Scoring.BorderlineHigh,
		ExplorationJitter:       cfg.Scoring.ExplorationJitter,
		DegradedEmbeddingFactor: cfg.Scoring.DegradedEmbeddingFactor,
		Concurrency:             cfg.Scoring.Concurrency,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build orchestrator: %w", err)
	}

	return scoring.NewEngine(orch, logger), nil
}
