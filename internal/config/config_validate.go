// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package config

import "fmt"

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateNovelty(); err != nil {
		return err
	}
	if err := c.validateJudge(); err != nil {
		return err
	}
	if err := c.validateSelector(); err != nil {
		return err
	}
	return c.validateServer()
}

func (c *Config) validateScoring() error {
	s := c.Scoring
	if s.ColdStartThreshold < 1 {
		return fmt.Errorf("scoring.cold_start_threshold must be at least 1, got %d", s.ColdStartThreshold)
	}
	if s.HeuristicWeight < 0 || s.EmbeddingWeight < 0 || s.JudgeWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if s.HeuristicWeight+s.EmbeddingWeight+s.JudgeWeight == 0 {
		return fmt.Errorf("at least one scoring weight must be positive")
	}
	if s.BorderlineLow < 0 || s.BorderlineHigh > 100 || s.BorderlineLow >= s.BorderlineHigh {
		return fmt.Errorf("scoring borderline band [%v, %v] must satisfy 0 <= low < high <= 100",
			s.BorderlineLow, s.BorderlineHigh)
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("scoring.concurrency must be at least 1, got %d", s.Concurrency)
	}
	return nil
}

func (c *Config) validateNovelty() error {
	n := c.Novelty
	if n.RedundancyThreshold < -1 || n.RedundancyThreshold > 1 {
		return fmt.Errorf("novelty.redundancy_threshold must be a cosine value in [-1, 1], got %v", n.RedundancyThreshold)
	}
	if n.RedundancyPenalty < 0 || n.RedundancyPenalty > 1 {
		return fmt.Errorf("novelty.redundancy_penalty must be in [0, 1], got %v", n.RedundancyPenalty)
	}
	if n.RecentWindow < 1 {
		return fmt.Errorf("novelty.recent_window must be at least 1, got %d", n.RecentWindow)
	}
	return nil
}

func (c *Config) validateJudge() error {
	j := c.Judge
	if !j.Enabled {
		return nil
	}
	if j.APIKey == "" {
		return fmt.Errorf("CURIO_JUDGE_API_KEY is required when judge.enabled=true")
	}
	if j.Model == "" {
		return fmt.Errorf("judge.model is required when judge.enabled=true")
	}
	if j.Cutoff < 0 || j.Cutoff > 100 {
		return fmt.Errorf("judge.cutoff must be in [0, 100], got %v", j.Cutoff)
	}
	if j.RequestsPerSecond <= 0 {
		return fmt.Errorf("judge.requests_per_second must be positive, got %v", j.RequestsPerSecond)
	}
	return nil
}

func (c *Config) validateSelector() error {
	s := c.Selector
	if s.Budget < 1 {
		return fmt.Errorf("selector.budget must be at least 1, got %d", s.Budget)
	}
	if s.MinWords < 1 || s.MaxWords < s.MinWords {
		return fmt.Errorf("selector word bounds [%d, %d] must satisfy 1 <= min <= max", s.MinWords, s.MaxWords)
	}
	if s.Buckets < 1 {
		return fmt.Errorf("selector.buckets must be at least 1, got %d", s.Buckets)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	return nil
}
