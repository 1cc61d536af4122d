// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/models"
)

const profileKeyPrefix = "profile:"

// ProfileStore keeps derived UserPreferenceProfiles in BadgerDB. Profiles
// are disposable: the feedback event log is the source of truth, and a
// lost profile is recomputed on the next learning pass.
type ProfileStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// OpenProfiles opens a Badger database at path. An empty path opens an
// in-memory store, which tests use.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenProfiles(path string, logger zerolog.Logger) (*ProfileStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	return &ProfileStore{
		db:     db,
		logger: logger.With().Str("component", "profile-store").Logger(),
	}, nil
}

// Get loads one profile. A user with no stored profile returns
// ErrNotFound; callers treat that as cold start, not failure.
func (p *ProfileStore) Get(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	var profile models.UserPreferenceProfile

	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &profile)
		})
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Put stores a profile, replacing any prior version.
func (p *ProfileStore) Put(ctx context.Context, profile *models.UserPreferenceProfile) error {
	if profile == nil || profile.UserID == "" {
		return fmt.Errorf("profile must have a user id")
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+profile.UserID), data)
	})
}

// RunGC reclaims space in Badger's value log. Badger never runs this on
// its own; callers schedule it. Returns badger.ErrNoRewrite when there
// was nothing to collect, which callers treat as success.
func (p *ProfileStore) RunGC() error {
	if p.db.Opts().InMemory {
		return nil
	}
	for {
		if err := p.db.RunValueLogGC(0.5); err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				return nil
			}
			return fmt.Errorf("profile store gc: %w", err)
		}
	}
}

// Close releases the Badger database.
func (p *ProfileStore) Close() error {
	p.logger.Debug().Msg("closing profile store")
	return p.db.Close()
}
