// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/models"
)

func openTestProfiles(t *testing.T) *ProfileStore {
	t.Helper()
	ps, err := OpenProfiles("", zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenProfiles() error = %v", err)
	}
	t.Cleanup(func() {
		if err := ps.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return ps
}

func TestProfileStore_RoundTrip(t *testing.T) {
	ps := openTestProfiles(t)
	ctx := context.Background()

	want := &models.UserPreferenceProfile{
		UserID:           "u1",
		PositiveCentroid: []float64{0.1, 0.9},
		NegativeCentroid: []float64{0.9, 0.1},
		TotalSaved:       12,
		TotalSkipped:     4,
		LastUpdated:      time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC),
	}
	if err := ps.Put(ctx, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := ps.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TotalSaved != 12 || got.TotalSkipped != 4 {
		t.Errorf("counts = %d/%d, want 12/4", got.TotalSaved, got.TotalSkipped)
	}
	if len(got.PositiveCentroid) != 2 || got.PositiveCentroid[1] != 0.9 {
		t.Errorf("PositiveCentroid = %v, want %v", got.PositiveCentroid, want.PositiveCentroid)
	}
}

func TestProfileStore_GetMissingIsColdStart(t *testing.T) {
	ps := openTestProfiles(t)

	_, err := ps.Get(context.Background(), "new-user")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestProfileStore_PutReplacesPrior(t *testing.T) {
	ps := openTestProfiles(t)
	ctx := context.Background()

	for saved := 1; saved <= 3; saved++ {
		p := &models.UserPreferenceProfile{UserID: "u1", TotalSaved: saved}
		if err := ps.Put(ctx, p); err != nil {
			t.Fatalf("Put(%d) error = %v", saved, err)
		}
	}

	got, err := ps.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TotalSaved != 3 {
		t.Errorf("TotalSaved = %d, want 3 after replacement", got.TotalSaved)
	}
}

func TestProfileStore_PutRejectsInvalid(t *testing.T) {
	ps := openTestProfiles(t)

	if err := ps.Put(context.Background(), nil); err == nil {
		t.Error("Put(nil) should fail")
	}
	if err := ps.Put(context.Background(), &models.UserPreferenceProfile{}); err == nil {
		t.Error("Put() without user id should fail")
	}
}
