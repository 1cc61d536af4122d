// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package learning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/metrics"
	"github.com/curiofeed/curio/internal/models"
	"github.com/curiofeed/curio/internal/scoring/embedding"
)

// EventLog reads a user's append-only feedback history.
type EventLog interface {
	ListFeedbackEvents(ctx context.Context, userID string) ([]models.UserFeedbackEvent, error)
}

// EmbeddingSource resolves chunk IDs to their stored embeddings.
type EmbeddingSource interface {
	EmbeddingsByChunk(ctx context.Context, ids []string) (map[string][]float64, error)
}

// ProfileStore reads and writes derived preference profiles.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*models.UserPreferenceProfile, error)
	Put(ctx context.Context, profile *models.UserPreferenceProfile) error
}

// Updater keeps UserPreferenceProfiles consistent with the feedback event
// log. Every recompute replays the full log, so the profile is always a
// deterministic function of the events up to now: replaying N events in
// one batch and replaying them one at a time land on the same centroids.
type Updater struct {
	events   EventLog
	chunks   EmbeddingSource
	profiles ProfileStore
	logger   zerolog.Logger

	// userLocks serializes recomputes per user; concurrent recomputes
	// for different users proceed independently.
	userLocks sync.Map
}

// New creates an updater.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(events EventLog, chunks EmbeddingSource, profiles ProfileStore, logger zerolog.Logger) *Updater {
	return &Updater{
		events:   events,
		chunks:   chunks,
		profiles: profiles,
		logger:   logger.With().Str("component", "learning").Logger(),
	}
}

// RecomputeProfile rebuilds the user's profile from the full event log and
// stores it. Idempotent: repeated calls without new events produce
// identical centroids. On any failure the stale profile is left in place
// and remains usable by the next scoring run.
func (u *Updater) RecomputeProfile(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	lock, _ := u.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	profile, err := u.recompute(ctx, userID)
	if err != nil {
		metrics.ProfileRecomputes.WithLabelValues("error").Inc()
		u.logger.Error().Err(err).Str("user_id", userID).Msg("profile recompute failed, stale profile retained")
		return nil, err
	}

	if err := u.profiles.Put(ctx, profile); err != nil {
		metrics.ProfileRecomputes.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store profile for %s: %w", userID, err)
	}

	metrics.ProfileRecomputes.WithLabelValues("ok").Inc()
	u.logger.Debug().
		Str("user_id", userID).
		Int("saved", profile.TotalSaved).
		Int("skipped", profile.TotalSkipped).
		Msg("profile recomputed")
	return profile, nil
}

func (u *Updater) recompute(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	events, err := u.events.ListFeedbackEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", userID, err)
	}

	var savedIDs, skippedIDs []string
	for _, ev := range events {
		switch ev.Action {
		case models.ActionSaved:
			savedIDs = append(savedIDs, ev.ChunkID)
		case models.ActionSkipped:
			skippedIDs = append(skippedIDs, ev.ChunkID)
		}
	}

	profile := &models.UserPreferenceProfile{
		UserID:       userID,
		TotalSaved:   len(savedIDs),
		TotalSkipped: len(skippedIDs),
		LastUpdated:  time.Now().UTC(),
	}

	positive, err := u.centroidFor(ctx, savedIDs)
	if err != nil {
		return nil, fmt.Errorf("positive centroid for %s: %w", userID, err)
	}
	profile.PositiveCentroid = positive

	negative, err := u.centroidFor(ctx, skippedIDs)
	if err != nil {
		return nil, fmt.Errorf("negative centroid for %s: %w", userID, err)
	}
	profile.NegativeCentroid = negative

	return profile, nil
}

// centroidFor computes a centroid over the embeddings of the given chunks.
// Chunks whose embeddings are not yet attached are skipped; a set with no
// embeddings at all yields a nil centroid, which keeps the profile in cold
// start rather than failing the recompute.
func (u *Updater) centroidFor(ctx context.Context, chunkIDs []string) ([]float64, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	byChunk, err := u.chunks.EmbeddingsByChunk(ctx, chunkIDs)
	if err != nil {
		return nil, err
	}

	// Preserve event order so duplicate saves weight the centroid the
	// same way on every replay.
	vectors := make([][]float64, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if vec, ok := byChunk[id]; ok {
			vectors = append(vectors, vec)
		}
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	centroid, err := embedding.Centroid(vectors)
	if errors.Is(err, embedding.ErrEmptyInput) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return centroid, nil
}
