// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/metrics"
	"github.com/curiofeed/curio/internal/models"
	"github.com/curiofeed/curio/internal/store"
)

// Log is the durable side of feedback recording: the signal transition
// plus the append-only event log.
type Log interface {
	ResolveSignal(ctx context.Context, userID, chunkID string, action models.FeedbackAction) error
	AppendFeedbackEvent(ctx context.Context, event *models.UserFeedbackEvent) error
}

// Recorder accepts user feedback, commits it durably, then announces it on
// the bus. The append is confirmed before the publish: losing a message
// delays the profile recompute until the next scheduled pass, but the
// event log never misses an action.
type Recorder struct {
	log       Log
	publisher message.Publisher
	logger    zerolog.Logger
}

// NewRecorder creates a recorder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecorder(log Log, publisher message.Publisher, logger zerolog.Logger) *Recorder {
	return &Recorder{
		log:       log,
		publisher: publisher,
		logger:    logger.With().Str("component", "feedback-recorder").Logger(),
	}
}

// Record processes one save/skip action: the pending signal transitions to
// its terminal state, the event is appended to the log, and the bus is
// notified for an immediate profile recompute. A signal that was already
// resolved is an idempotent no-op.
func (r *Recorder) Record(ctx context.Context, event *models.UserFeedbackEvent) error {
	if event == nil || event.UserID == "" || event.ChunkID == "" {
		return fmt.Errorf("event must have user and chunk ids")
	}
	if !event.Action.Valid() {
		return fmt.Errorf("invalid feedback action %q", event.Action)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	err := r.log.ResolveSignal(ctx, event.UserID, event.ChunkID, event.Action)
	switch {
	case errors.Is(err, store.ErrInvalidState):
		// Duplicate delivery of the same action; the first one won.
		r.logger.Debug().
			Str("user_id", event.UserID).
			Str("chunk_id", event.ChunkID).
			Msg("signal already resolved, feedback ignored")
		return nil
	case err != nil:
		return fmt.Errorf("resolve signal: %w", err)
	}

	if err := r.log.AppendFeedbackEvent(ctx, event); err != nil {
		return fmt.Errorf("append feedback event: %w", err)
	}
	metrics.FeedbackEvents.WithLabelValues(string(event.Action)).Inc()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode feedback event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := r.publisher.Publish(TopicRecorded, msg); err != nil {
		// The durable write succeeded; the scheduled recompute pass
		// covers for the lost notification.
		r.logger.Warn().Err(err).
			Str("user_id", event.UserID).
			Msg("feedback publish failed, recompute deferred to next run")
	}
	return nil
}
