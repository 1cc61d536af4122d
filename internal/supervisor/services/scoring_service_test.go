// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeRunner struct {
	runs  atomic.Int64
	err   error
	block chan struct{}
}

func (f *fakeRunner) RunOnce(_ context.Context) error {
	f.runs.Add(1)
	if f.block != nil {
		<-f.block
	}
	return f.err
}

func TestScoringService_RunOnStartup(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewScoringService(runner, "0 6 * * *", true, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for runner.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("startup run never executed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if got := runner.runs.Load(); got != 1 {
		t.Fatalf("runs = %d, want 1", got)
	}
}

func TestScoringService_NoStartupRun(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewScoringService(runner, "0 6 * * *", false, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if got := runner.runs.Load(); got != 0 {
		t.Fatalf("runs = %d, want 0", got)
	}
}

func TestScoringService_InvalidSchedule(t *testing.T) {
	svc := NewScoringService(&fakeRunner{}, "not a schedule", false, zerolog.Nop())
	if err := svc.Serve(context.Background()); err == nil {
		t.Fatal("Serve accepted an invalid cron expression")
	}
}

func TestScoringService_OverlappingTickSkipped(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	svc := NewScoringService(runner, "0 6 * * *", false, zerolog.Nop())

	ctx := context.Background()
	go svc.run(ctx)

	deadline := time.After(2 * time.Second)
	for runner.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("first run never started")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Slot is held by the blocked run; the next tick must not add a run.
	svc.run(ctx)
	if got := runner.runs.Load(); got != 1 {
		t.Fatalf("runs = %d, want 1 (overlapping tick must be skipped)", got)
	}

	close(runner.block)
}

func TestScoringService_String(t *testing.T) {
	svc := NewScoringService(&fakeRunner{}, "0 6 * * *", false, zerolog.Nop())
	if got := svc.String(); got != "scoring-scheduler" {
		t.Fatalf("String() = %q, want %q", got, "scoring-scheduler")
	}
}
