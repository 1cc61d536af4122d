// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/curiofeed/curio/internal/models"
)

// AppendFeedbackEvent appends one event to the log. The log is the source
// of truth for all preference state and is never mutated or deleted.
func (db *DB) AppendFeedbackEvent(ctx context.Context, event *models.UserFeedbackEvent) error {
	defer observe("append_feedback", time.Now())

	if event == nil || event.UserID == "" || event.ChunkID == "" {
		return fmt.Errorf("event must have user and chunk ids")
	}
	if !event.Action.Valid() {
		return fmt.Errorf("invalid feedback action %q", event.Action)
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO feedback_events (id, user_id, chunk_id, action, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), event.UserID, event.ChunkID, string(event.Action), ts)
	if err != nil {
		return fmt.Errorf("append feedback event: %w", err)
	}
	return nil
}

// ListFeedbackEvents returns the user's full event log in append order.
// Profile recomputation replays this from the beginning every time.
func (db *DB) ListFeedbackEvents(ctx context.Context, userID string) ([]models.UserFeedbackEvent, error) {
	defer observe("list_feedback", time.Now())

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, chunk_id, action, created_at
		FROM feedback_events WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list feedback events: %w", err)
	}
	defer closeWithLog(rows, db.logger, "feedback rows")

	var events []models.UserFeedbackEvent
	for rows.Next() {
		var (
			ev     models.UserFeedbackEvent
			action string
		)
		if err := rows.Scan(&ev.UserID, &ev.ChunkID, &action, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan feedback event: %w", err)
		}
		ev.Action = models.FeedbackAction(action)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ActiveUserIDs returns every user that appears in the feedback log or has
// a signal; the scheduled scoring run iterates this set.
func (db *DB) ActiveUserIDs(ctx context.Context) ([]string, error) {
	defer observe("active_users", time.Now())

	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id FROM feedback_events
		UNION
		SELECT user_id FROM signals
		ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer closeWithLog(rows, db.logger, "user rows")

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
