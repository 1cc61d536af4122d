// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package config

import "time"

// Config is the complete runtime configuration for the Curio binary.
// Precedence: environment variables > config file > built-in defaults.
type Config struct {
	Logging  LoggingConfig  `koanf:"logging"`
	Database DatabaseConfig `koanf:"database"`
	Profiles ProfilesConfig `koanf:"profiles"`
	Scoring  ScoringConfig  `koanf:"scoring"`
	Gate     GateConfig     `koanf:"gate"`
	Novelty  NoveltyConfig  `koanf:"novelty"`
	Judge    JudgeConfig    `koanf:"judge"`
	Selector SelectorConfig `koanf:"selector"`
	Schedule ScheduleConfig `koanf:"schedule"`
	Server   ServerConfig   `koanf:"server"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line in log output.
	Caller bool `koanf:"caller"`
}

// DatabaseConfig configures the DuckDB analytical store.
type DatabaseConfig struct {
	// Path is the database file; ":memory:" for ephemeral.
	Path string `koanf:"path"`

	// MaxMemory is DuckDB's memory ceiling, e.g. "512MB".
	MaxMemory string `koanf:"max_memory"`

	// Threads bounds DuckDB parallelism; 0 uses NumCPU.
	Threads int `koanf:"threads"`
}

// ProfilesConfig configures the Badger profile store.
type ProfilesConfig struct {
	// Path is the Badger directory; empty runs in memory.
	Path string `koanf:"path"`
}

// ScoringConfig holds the orchestrator and preference-model tunables.
type ScoringConfig struct {
	// ColdStartThreshold is the saved-event count below which a user
	// scores in exploration mode.
	ColdStartThreshold int `koanf:"cold_start_threshold"`

	// MinSkipsForContrast gates the negative-centroid contrast term.
	MinSkipsForContrast int `koanf:"min_skips_for_contrast"`

	// ContrastWeight scales the negative-centroid push-away term.
	ContrastWeight float64 `koanf:"contrast_weight"`

	// SeparationFloor is the minimum separation quality at which the
	// embedding model is considered informative.
	SeparationFloor float64 `koanf:"separation_floor"`

	// HeuristicWeight, EmbeddingWeight, and JudgeWeight blend the
	// stages for borderline chunks.
	HeuristicWeight float64 `koanf:"heuristic_weight"`
	EmbeddingWeight float64 `koanf:"embedding_weight"`
	JudgeWeight     float64 `koanf:"judge_weight"`

	// BorderlineLow and BorderlineHigh bound the judge band (0-100).
	BorderlineLow  float64 `koanf:"borderline_low"`
	BorderlineHigh float64 `koanf:"borderline_high"`

	// ExplorationJitter scales cold-start randomization.
	ExplorationJitter float64 `koanf:"exploration_jitter"`

	// DegradedEmbeddingFactor downweights the embedding stage when
	// preference-signal collapse is detected.
	DegradedEmbeddingFactor float64 `koanf:"degraded_embedding_factor"`

	// Concurrency bounds in-flight chunk scoring within a batch.
	Concurrency int `koanf:"concurrency"`

	// Seed fixes the exploration RNG; 0 selects the stable default.
	Seed int64 `koanf:"seed"`

	// BatchLimit caps chunks fetched per scoring run; 0 means all.
	BatchLimit int `koanf:"batch_limit"`
}

// GateConfig holds heuristic-gate tunables.
type GateConfig struct {
	// MinWords is the length floor below which chunks always fail.
	MinWords int `koanf:"min_words"`
}

// NoveltyConfig holds redundancy and collapse tunables.
type NoveltyConfig struct {
	// RedundancyThreshold is the cosine similarity above which a chunk
	// counts as redundant with recently saved content.
	RedundancyThreshold float64 `koanf:"redundancy_threshold"`

	// RedundancyPenalty is subtracted from the embedding score of
	// redundant chunks.
	RedundancyPenalty float64 `koanf:"redundancy_penalty"`

	// CollapseFloor is the centroid-separation floor below which the
	// run degrades.
	CollapseFloor float64 `koanf:"collapse_floor"`

	// RecentWindow is how many recently saved chunks the redundancy
	// check considers.
	RecentWindow int `koanf:"recent_window"`
}

// JudgeConfig configures the LLM judge provider.
type JudgeConfig struct {
	// Enabled turns the judge stage on. Without it borderline chunks
	// finalize on the cheap signal.
	Enabled bool `koanf:"enabled"`

	// APIKey authenticates against the provider.
	APIKey string `koanf:"api_key"`

	// BaseURL overrides the provider endpoint (for proxies or
	// compatible providers); empty uses the default.
	BaseURL string `koanf:"base_url"`

	// Model is the provider model name.
	Model string `koanf:"model"`

	// Cutoff is the verdict score at or above which a chunk passes.
	Cutoff float64 `koanf:"cutoff"`

	// RequestTimeout bounds a single provider call.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RequestsPerSecond and Burst configure the provider rate limit.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// SelectorConfig holds candidate-selection tunables.
type SelectorConfig struct {
	// Budget caps signals created per user per run.
	Budget int `koanf:"budget"`

	// MinWords and MaxWords bound chunk eligibility.
	MinWords int `koanf:"min_words"`
	MaxWords int `koanf:"max_words"`

	// Buckets is the stratum count for exploration-mode sampling.
	Buckets int `koanf:"buckets"`
}

// ScheduleConfig configures the scoring run schedule.
type ScheduleConfig struct {
	// Cron is the run schedule in cron syntax.
	Cron string `koanf:"cron"`

	// RunOnStartup triggers a scoring run as soon as the service is up.
	RunOnStartup bool `koanf:"run_on_startup"`
}

// ServerConfig configures the operational HTTP endpoint.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// defaultConfig returns every knob at its production default.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Path:      "/data/curio.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Profiles: ProfilesConfig{
			Path: "/data/profiles",
		},
		Scoring: ScoringConfig{
			ColdStartThreshold:      10,
			MinSkipsForContrast:     10,
			ContrastWeight:          0.5,
			SeparationFloor:         0.05,
			HeuristicWeight:         0.4,
			EmbeddingWeight:         0.3,
			JudgeWeight:             0.3,
			BorderlineLow:           40,
			BorderlineHigh:          70,
			ExplorationJitter:       0.2,
			DegradedEmbeddingFactor: 0.25,
			Concurrency:             10,
			Seed:                    0,
			BatchLimit:              0,
		},
		Gate: GateConfig{
			MinWords: 30,
		},
		Novelty: NoveltyConfig{
			RedundancyThreshold: 0.75,
			RedundancyPenalty:   0.20,
			CollapseFloor:       0.15,
			RecentWindow:        20,
		},
		Judge: JudgeConfig{
			Enabled:           false,
			Model:             "gpt-4o-mini",
			Cutoff:            60,
			RequestTimeout:    20 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Selector: SelectorConfig{
			Budget:   30,
			MinWords: 30,
			MaxWords: 300,
			Buckets:  4,
		},
		Schedule: ScheduleConfig{
			Cron:         "0 6 * * *",
			RunOnStartup: false,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
	}
}
