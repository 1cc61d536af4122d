// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package selector

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/metrics"
	"github.com/curiofeed/curio/internal/scoring"
)

// Config holds the selection tunables.
type Config struct {
	// Budget caps how many signals one run may create per user.
	// Default: 30.
	Budget int

	// MinWords and MaxWords bound chunk eligibility. Defaults: 30, 300.
	MinWords int
	MaxWords int

	// Buckets is the number of score strata used in exploration mode.
	// Default: 4.
	Buckets int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Budget:   30,
		MinWords: 30,
		MaxWords: 300,
		Buckets:  4,
	}
}

// Candidate pairs a scored chunk with the chunk metadata the eligibility
// filter needs.
type Candidate struct {
	Scored    scoring.ScoredChunk
	WordCount int
}

// Selector chooses which scored chunks become user-visible signals. It
// operates on an immutable, fully scored snapshot: scoring's join barrier
// guarantees no chunk is still in flight when Select runs.
type Selector struct {
	cfg    Config
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a selector. The seed fixes the exploration-mode sampling
// order; zero selects a stable default.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, seed int64, logger zerolog.Logger) *Selector {
	if cfg.Budget <= 0 {
		cfg.Budget = 30
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = 30
	}
	if cfg.MaxWords <= 0 || cfg.MaxWords < cfg.MinWords {
		cfg.MaxWords = 300
	}
	if cfg.Buckets <= 0 {
		cfg.Buckets = 4
	}
	if seed == 0 {
		seed = 42
	}
	return &Selector{
		cfg:    cfg,
		logger: logger.With().Str("component", "selector").Logger(),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Select returns at most Budget candidates for the user. alreadySignaled
// holds chunk IDs the user has ever been shown; they are excluded so the
// one-signal-per-(user, chunk) invariant holds across runs. In trained
// mode selection is pure top-K by score; in exploration mode candidates
// are sampled across score strata so future training sees diverse
// feedback.
func (s *Selector) Select(candidates []Candidate, alreadySignaled map[string]bool, trained bool) []Candidate {
	eligible := s.filter(candidates, alreadySignaled)
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Scored.Score > eligible[j].Scored.Score
	})

	var picked []Candidate
	if trained {
		picked = topK(eligible, s.cfg.Budget)
		metrics.SignalsSelected.WithLabelValues("topk").Add(float64(len(picked)))
	} else {
		picked = s.stratified(eligible)
		metrics.SignalsSelected.WithLabelValues("stratified").Add(float64(len(picked)))
	}

	s.logger.Debug().
		Int("candidates", len(candidates)).
		Int("eligible", len(eligible)).
		Int("picked", len(picked)).
		Bool("trained", trained).
		Msg("selection complete")
	return picked
}

func (s *Selector) filter(candidates []Candidate, alreadySignaled map[string]bool) []Candidate {
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.WordCount < s.cfg.MinWords || c.WordCount > s.cfg.MaxWords {
			continue
		}
		if alreadySignaled[c.Scored.ChunkID] {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}

func topK(sorted []Candidate, k int) []Candidate {
	if len(sorted) <= k {
		return sorted
	}
	return sorted[:k]
}

// stratified splits the sorted candidates into score strata and draws from
// each in round-robin order, randomizing within a stratum. Top-K on an
// untrained profile would concentrate feedback on whatever the gate
// happens to reward; spreading picks across the score range gives the
// centroids contrastive material.
func (s *Selector) stratified(sorted []Candidate) []Candidate {
	if len(sorted) <= s.cfg.Budget {
		return sorted
	}

	buckets := s.cfg.Buckets
	if buckets > len(sorted) {
		buckets = len(sorted)
	}

	strata := make([][]Candidate, buckets)
	size := (len(sorted) + buckets - 1) / buckets
	for i, c := range sorted {
		b := i / size
		if b >= buckets {
			b = buckets - 1
		}
		strata[b] = append(strata[b], c)
	}

	s.mu.Lock()
	for _, stratum := range strata {
		s.rng.Shuffle(len(stratum), func(i, j int) {
			stratum[i], stratum[j] = stratum[j], stratum[i]
		})
	}
	s.mu.Unlock()

	picked := make([]Candidate, 0, s.cfg.Budget)
	for round := 0; len(picked) < s.cfg.Budget; round++ {
		progressed := false
		for _, stratum := range strata {
			if round >= len(stratum) {
				continue
			}
			progressed = true
			picked = append(picked, stratum[round])
			if len(picked) == s.cfg.Budget {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return picked
}
