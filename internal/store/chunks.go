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

	"github.com/curiofeed/curio/internal/models"
)

// UpsertChunk stores a chunk, replacing any prior row with the same ID.
// Chunks are immutable apart from the one-time embedding attachment, so a
// replace is only ever the same content plus its embedding.
func (db *DB) UpsertChunk(ctx context.Context, chunk *models.ContentChunk) error {
	defer observe("upsert_chunk", time.Now())

	if chunk == nil || chunk.ID == "" {
		return fmt.Errorf("chunk must have an id")
	}

	embedding, err := marshalEmbedding(chunk.Embedding)
	if err != nil {
		return err
	}

	createdAt := chunk.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO content_chunks (id, source_id, body, word_count, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET embedding = excluded.embedding`,
		chunk.ID, chunk.SourceID, chunk.Text, chunk.WordCount, embedding, createdAt)
	if err != nil {
		return fmt.Errorf("upsert chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// GetChunk loads one chunk by ID.
func (db *DB) GetChunk(ctx context.Context, id string) (*models.ContentChunk, error) {
	defer observe("get_chunk", time.Now())

	row := db.conn.QueryRowContext(ctx, `
		SELECT id, source_id, body, word_count, embedding, created_at
		FROM content_chunks WHERE id = ?`, id)

	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chunk %s: %w", id, err)
	}
	return chunk, nil
}

// ListChunks returns up to limit chunks, newest first. A scoring run feeds
// these through the cascade; limit 0 means no cap.
func (db *DB) ListChunks(ctx context.Context, limit int) ([]*models.ContentChunk, error) {
	defer observe("list_chunks", time.Now())

	query := `
		SELECT id, source_id, body, word_count, embedding, created_at
		FROM content_chunks ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer closeWithLog(rows, db.logger, "chunk rows")

	var chunks []*models.ContentChunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// EmbeddingsByChunk returns the embeddings for the given chunk IDs, keyed
// by ID. Chunks without embeddings are omitted.
func (db *DB) EmbeddingsByChunk(ctx context.Context, ids []string) (map[string][]float64, error) {
	defer observe("embeddings_by_chunk", time.Now())

	out := make(map[string][]float64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	// DuckDB has no array bind; issue one query per ID through the pool.
	// Scoring batches are small enough that this stays cheap.
	stmt, err := db.conn.PrepareContext(ctx, `
		SELECT embedding FROM content_chunks WHERE id = ? AND embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("prepare embedding lookup: %w", err)
	}
	defer closeWithLog(stmt, db.logger, "embedding statement")

	for _, id := range ids {
		var raw string
		err := stmt.QueryRowContext(ctx, id).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup embedding %s: %w", id, err)
		}
		var vec []float64
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			return nil, fmt.Errorf("decode embedding %s: %w", id, err)
		}
		out[id] = vec
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*models.ContentChunk, error) {
	var (
		chunk     models.ContentChunk
		embedding sql.NullString
	)
	if err := row.Scan(&chunk.ID, &chunk.SourceID, &chunk.Text, &chunk.WordCount, &embedding, &chunk.CreatedAt); err != nil {
		return nil, err
	}
	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &chunk.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
	}
	return &chunk, nil
}

// marshalEmbedding encodes a vector as JSON text, or NULL when absent.
func marshalEmbedding(vec []float64) (any, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("encode embedding: %w", err)
	}
	return string(data), nil
}
