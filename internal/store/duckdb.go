// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/metrics"
)

// Options tunes the analytical store.
type Options struct {
	// Path is the database file; ":memory:" opens an ephemeral store.
	Path string

	// Threads bounds DuckDB's internal parallelism; <= 0 uses NumCPU.
	Threads int

	// MaxMemory is DuckDB's memory ceiling, e.g. "512MB".
	MaxMemory string
}

// DB is the DuckDB-backed store for chunks, feedback events, and signals.
// Events are append-only; signals enforce the one-per-(user, chunk)
// uniqueness invariant at the schema level.
type DB struct {
	conn   *sql.DB
	logger zerolog.Logger
}

// schema is idempotent so reopening an existing database is a no-op.
const schema = `
CREATE TABLE IF NOT EXISTS content_chunks (
	id          VARCHAR PRIMARY KEY,
	source_id   VARCHAR NOT NULL DEFAULT '',
	body        VARCHAR NOT NULL,
	word_count  INTEGER NOT NULL,
	embedding   VARCHAR,
	created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback_events (
	id         VARCHAR PRIMARY KEY,
	user_id    VARCHAR NOT NULL,
	chunk_id   VARCHAR NOT NULL,
	action     VARCHAR NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback_events (user_id, created_at);

CREATE TABLE IF NOT EXISTS signals (
	id              VARCHAR PRIMARY KEY,
	user_id         VARCHAR NOT NULL,
	chunk_id        VARCHAR NOT NULL,
	relevance_score DOUBLE NOT NULL,
	provenance      VARCHAR NOT NULL DEFAULT '[]',
	state           VARCHAR NOT NULL,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL,
	UNIQUE (user_id, chunk_id)
);
CREATE INDEX IF NOT EXISTS idx_signals_user ON signals (user_id, state);
`

// Open creates the connection and initializes the schema.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(opts Options, logger zerolog.Logger) (*DB, error) {
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := opts.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}

	connStr := opts.Path
	if opts.Path != ":memory:" && opts.Path != "" {
		// Parent directory must exist before DuckDB opens the file.
		dbDir := filepath.Dir(opts.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
			}
		}
		connStr = fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
			opts.Path, threads, maxMemory)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{
		conn:   conn,
		logger: logger.With().Str("component", "store").Logger(),
	}
	db.configurePool()

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	db.logger.Info().Str("path", opts.Path).Msg("store opened")
	return db, nil
}

func (db *DB) configurePool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close releases the connection.
func (db *DB) Close() error {
	db.logger.Debug().Msg("closing store")
	return db.conn.Close()
}

// observe records a query duration for the operation label.
func observe(operation string, start time.Time) {
	metrics.StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
