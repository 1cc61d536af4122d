// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/curiofeed/curio/internal/metrics"
	"github.com/curiofeed/curio/internal/models"
)

// CreateSignal persists one signal in the pending state. A duplicate
// (user, chunk) pair returns ErrDuplicateSignal without inserting; callers
// treat that as an idempotent no-op so re-running a partially completed
// scoring run is safe. Each write is atomic, so an early stop at budget
// leaves no half-written signals behind.
func (db *DB) CreateSignal(ctx context.Context, signal *models.Signal) error {
	defer observe("create_signal", time.Now())

	if signal == nil || signal.UserID == "" || signal.ChunkID == "" {
		return fmt.Errorf("signal must have user and chunk ids")
	}

	id := signal.ID
	if id == "" {
		id = uuid.NewString()
	}
	provenance, err := json.Marshal(signal.Provenance)
	if err != nil {
		return fmt.Errorf("encode provenance: %w", err)
	}
	now := time.Now().UTC()
	createdAt := signal.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO signals (id, user_id, chunk_id, relevance_score, provenance, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, chunk_id) DO NOTHING`,
		id, signal.UserID, signal.ChunkID, signal.RelevanceScore,
		string(provenance), string(models.SignalPending), createdAt, now)
	if err != nil {
		return fmt.Errorf("create signal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create signal rows affected: %w", err)
	}
	if affected == 0 {
		metrics.SignalsPersisted.WithLabelValues("duplicate").Inc()
		return ErrDuplicateSignal
	}

	signal.ID = id
	signal.State = models.SignalPending
	signal.CreatedAt = createdAt
	metrics.SignalsPersisted.WithLabelValues("created").Inc()
	return nil
}

// SignaledChunkIDs returns every chunk ever signaled to the user, as the
// selector's exclusion set.
func (db *DB) SignaledChunkIDs(ctx context.Context, userID string) (map[string]bool, error) {
	defer observe("signaled_chunks", time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT chunk_id FROM signals WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list signaled chunks: %w", err)
	}
	defer closeWithLog(rows, db.logger, "signal rows")

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chunk id: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// ResolveSignal transitions a pending signal to its terminal state. The
// transition happens exactly once; a second resolution returns
// ErrInvalidState, and an unknown signal returns ErrNotFound.
func (db *DB) ResolveSignal(ctx context.Context, userID, chunkID string, action models.FeedbackAction) error {
	defer observe("resolve_signal", time.Now())

	if !action.Valid() {
		return fmt.Errorf("invalid feedback action %q", action)
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE signals SET state = ?, updated_at = ?
		WHERE user_id = ? AND chunk_id = ? AND state = ?`,
		string(action), time.Now().UTC(), userID, chunkID, string(models.SignalPending))
	if err != nil {
		return fmt.Errorf("resolve signal: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve signal rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish missing from already-terminal.
		var state string
		err := db.conn.QueryRowContext(ctx,
			`SELECT state FROM signals WHERE user_id = ? AND chunk_id = ?`,
			userID, chunkID).Scan(&state)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check signal state: %w", err)
		}
		return ErrInvalidState
	}
	return nil
}

// RecentSavedEmbeddings returns embeddings of the user's most recently
// saved chunks, newest first, for the novelty adjuster's redundancy
// window.
func (db *DB) RecentSavedEmbeddings(ctx context.Context, userID string, limit int) ([][]float64, error) {
	defer observe("recent_saved", time.Now())

	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.embedding
		FROM signals s
		JOIN content_chunks c ON c.id = s.chunk_id
		WHERE s.user_id = ? AND s.state = ? AND c.embedding IS NOT NULL
		ORDER BY s.updated_at DESC
		LIMIT ?`,
		userID, string(models.SignalSaved), limit)
	if err != nil {
		return nil, fmt.Errorf("list recent saved embeddings: %w", err)
	}
	defer closeWithLog(rows, db.logger, "embedding rows")

	var out [][]float64
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		var vec []float64
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
		out = append(out, vec)
	}
	return out, rows.Err()
}
