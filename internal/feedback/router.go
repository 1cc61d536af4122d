// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/models"
)

// Recomputer triggers a profile rebuild for one user.
type Recomputer interface {
	RecomputeProfile(ctx context.Context, userID string) (*models.UserPreferenceProfile, error)
}

// NewRouter builds the Watermill router that drives profile recomputes
// from recorded feedback. Handler failures are retried with backoff and
// never crash the service; a message that keeps failing is dropped after
// the retries, and the scheduled recompute pass repairs the profile.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(subscriber message.Subscriber, recomputer Recomputer, logger zerolog.Logger) (*message.Router, error) {
	wmLogger := newWatermillLogger(logger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 30 * time.Second,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create feedback router: %w", err)
	}

	retry := middleware.Retry{
		MaxRetries:      5,
		InitialInterval: time.Second,
		MaxInterval:     time.Minute,
		Multiplier:      2.0,
		Logger:          wmLogger,
	}
	router.AddMiddleware(
		middleware.Recoverer,
		retry.Middleware,
	)

	handlerLogger := logger.With().Str("component", "feedback-handler").Logger()
	router.AddNoPublisherHandler(
		"recompute-profile-on-feedback",
		TopicRecorded,
		subscriber,
		func(msg *message.Message) error {
			var event models.UserFeedbackEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				// Malformed payloads can never succeed; drop instead
				// of poisoning the retry loop.
				handlerLogger.Error().Err(err).Str("message_id", msg.UUID).Msg("dropping malformed feedback message")
				return nil
			}
			if event.UserID == "" {
				handlerLogger.Error().Str("message_id", msg.UUID).Msg("dropping feedback message without user id")
				return nil
			}

			_, err := recomputer.RecomputeProfile(msg.Context(), event.UserID)
			return err
		},
	)

	return router, nil
}
