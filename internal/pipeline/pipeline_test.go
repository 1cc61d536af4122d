// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/models"
	"github.com/curiofeed/curio/internal/scoring"
	"github.com/curiofeed/curio/internal/scoring/embedding"
	"github.com/curiofeed/curio/internal/scoring/gate"
	"github.com/curiofeed/curio/internal/scoring/judge"
	"github.com/curiofeed/curio/internal/scoring/novelty"
	"github.com/curiofeed/curio/internal/selector"
	"github.com/curiofeed/curio/internal/store"
)

type fakeStore struct {
	mu       sync.Mutex
	users    []string
	chunks   []*models.ContentChunk
	recent   map[string][][]float64
	signaled map[string]map[string]bool
	signals  []*models.Signal
}

func (f *fakeStore) ActiveUserIDs(ctx context.Context) ([]string, error) {
	return f.users, nil
}

func (f *fakeStore) ListChunks(ctx context.Context, limit int) ([]*models.ContentChunk, error) {
	return f.chunks, nil
}

func (f *fakeStore) RecentSavedEmbeddings(ctx context.Context, userID string, limit int) ([][]float64, error) {
	return f.recent[userID], nil
}

func (f *fakeStore) SignaledChunkIDs(ctx context.Context, userID string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]bool{}
	for id := range f.signaled[userID] {
		out[id] = true
	}
	return out, nil
}

func (f *fakeStore) CreateSignal(ctx context.Context, signal *models.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signaled == nil {
		f.signaled = map[string]map[string]bool{}
	}
	if f.signaled[signal.UserID] == nil {
		f.signaled[signal.UserID] = map[string]bool{}
	}
	if f.signaled[signal.UserID][signal.ChunkID] {
		return store.ErrDuplicateSignal
	}
	f.signaled[signal.UserID][signal.ChunkID] = true
	f.signals = append(f.signals, signal)
	return nil
}

type fakeProfiles struct {
	profiles map[string]*models.UserPreferenceProfile
	failFor  map[string]bool
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) RecomputeProfile(ctx context.Context, userID string) (*models.UserPreferenceProfile, error) {
	if f.failFor[userID] {
		return nil, errors.New("recompute unavailable")
	}
	return f.Get(ctx, userID)
}

func insightText(topic string) string {
	return fmt.Sprintf("The %s principle separates signal versus noise. Because 80%% of outcomes "+
		"trace to a few causes, for example Pareto observed this in land ownership, focusing "+
		"effort there compounds. ", topic) +
		strings.Repeat("This pattern repeats across engineering and research practice daily. ", 2)
}

func testPipeline(t *testing.T, st *fakeStore, profiles *fakeProfiles, cfg Config) *Pipeline {
	t.Helper()
	return testPipelineWithJudge(t, st, profiles, cfg, nil, scoring.DefaultConfig())
}

func testPipelineWithJudge(t *testing.T, st *fakeStore, profiles *fakeProfiles, cfg Config, j scoring.ChunkJudge, orchCfg scoring.Config) *Pipeline {
	t.Helper()
	model := embedding.NewModel(embedding.DefaultModelConfig(), 3)
	orch, err := scoring.NewOrchestrator(
		gate.New(gate.DefaultConfig()),
		model,
		novelty.New(novelty.DefaultConfig()),
		j,
		orchCfg,
		zerolog.Nop(),
	)
	if err != nil {
		t.Fatalf("NewOrchestrator() error = %v", err)
	}
	engine := scoring.NewEngine(orch, zerolog.Nop())
	sel := selector.New(selector.DefaultConfig(), 3, zerolog.Nop())
	adj := novelty.New(novelty.DefaultConfig())
	return New(st, profiles, profiles, engine, model, adj, sel, cfg, zerolog.Nop())
}

func poolChunks(n int) []*models.ContentChunk {
	chunks := make([]*models.ContentChunk, n)
	for i := range chunks {
		text := insightText(fmt.Sprintf("topic-%d", i))
		chunks[i] = &models.ContentChunk{
			ID:        fmt.Sprintf("chunk-%03d", i),
			Text:      text,
			WordCount: models.CountWords(text),
			Embedding: []float64{float64(i%7) / 7, 1 - float64(i%7)/7},
		}
	}
	return chunks
}

func TestPipeline_ColdStartUserGetsSignals(t *testing.T) {
	st := &fakeStore{users: []string{"newbie"}, chunks: poolChunks(50)}
	profiles := &fakeProfiles{
		profiles: map[string]*models.UserPreferenceProfile{
			"newbie": {UserID: "newbie"},
		},
	}

	p := testPipeline(t, st, profiles, Config{ColdStartThreshold: 10})
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if len(st.signals) == 0 {
		t.Fatal("cold-start user received no signals")
	}
	if len(st.signals) > 30 {
		t.Errorf("signals = %d, exceeds default budget 30", len(st.signals))
	}
	for _, sig := range st.signals {
		if sig.RelevanceScore < 0 || sig.RelevanceScore > 1 {
			t.Errorf("RelevanceScore = %f outside [0,1]", sig.RelevanceScore)
		}
		if len(sig.Provenance) == 0 {
			t.Error("signal missing provenance")
		}
	}
}

func TestPipeline_RerunIsIdempotent(t *testing.T) {
	st := &fakeStore{users: []string{"u1"}, chunks: poolChunks(40)}
	profiles := &fakeProfiles{
		profiles: map[string]*models.UserPreferenceProfile{
			"u1": {UserID: "u1"},
		},
	}

	p := testPipeline(t, st, profiles, Config{ColdStartThreshold: 10})
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("first RunOnce() error = %v", err)
	}
	firstCount := len(st.signals)

	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce() error = %v", err)
	}

	// Chunks from the pool not picked the first time may be signaled on
	// the second pass, but no (user, chunk) pair repeats.
	seen := map[string]int{}
	for _, sig := range st.signals {
		seen[sig.UserID+"/"+sig.ChunkID]++
	}
	for pair, n := range seen {
		if n > 1 {
			t.Errorf("pair %s signaled %d times", pair, n)
		}
	}
	if firstCount == 0 {
		t.Error("first run created no signals")
	}
}

func TestPipeline_TrainedUserScoresAgainstCentroid(t *testing.T) {
	st := &fakeStore{users: []string{"fan"}, chunks: poolChunks(40)}
	profiles := &fakeProfiles{
		profiles: map[string]*models.UserPreferenceProfile{
			"fan": {
				UserID:           "fan",
				PositiveCentroid: []float64{1, 0},
				TotalSaved:       25,
			},
		},
	}

	p := testPipeline(t, st, profiles, Config{ColdStartThreshold: 10})
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(st.signals) == 0 {
		t.Fatal("trained user received no signals")
	}
}

func TestPipeline_RecomputeFailureFallsBackToStoredProfile(t *testing.T) {
	st := &fakeStore{users: []string{"u1"}, chunks: poolChunks(20)}
	profiles := &fakeProfiles{
		profiles: map[string]*models.UserPreferenceProfile{
			"u1": {UserID: "u1", PositiveCentroid: []float64{0, 1}, TotalSaved: 15},
		},
		failFor: map[string]bool{"u1": true},
	}

	p := testPipeline(t, st, profiles, Config{ColdStartThreshold: 10})
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(st.signals) == 0 {
		t.Error("stale profile should still produce signals")
	}
}

type flakyJudge struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (j *flakyJudge) Score(ctx context.Context, text string) (judge.Verdict, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls++
	if j.fail {
		return judge.Verdict{}, judge.ErrUnavailable
	}
	return judge.Verdict{Score: 80, Reasoning: "substantive standalone insight", Pass: true}, nil
}

func (j *flakyJudge) callCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calls
}

func (j *flakyJudge) setFail(fail bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fail = fail
}

func TestPipeline_JudgeFailureHeldForLaterRun(t *testing.T) {
	st := &fakeStore{users: []string{"fan"}, chunks: poolChunks(12)}
	profiles := &fakeProfiles{
		profiles: map[string]*models.UserPreferenceProfile{
			"fan": {UserID: "fan", PositiveCentroid: []float64{1, 0}, TotalSaved: 25},
		},
	}

	fj := &flakyJudge{fail: true}
	orchCfg := scoring.DefaultConfig()
	// A wide band routes every gate-passing chunk through the judge.
	orchCfg.BorderlineLow = 1
	orchCfg.BorderlineHigh = 99

	p := testPipelineWithJudge(t, st, profiles, Config{ColdStartThreshold: 10}, fj, orchCfg)

	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("first RunOnce() error = %v", err)
	}
	if fj.callCount() == 0 {
		t.Fatal("judge was never consulted")
	}
	if len(st.signals) != 0 {
		t.Fatalf("judge-failed chunks produced %d signals, want 0 so they stay eligible", len(st.signals))
	}

	fj.setFail(false)
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce() error = %v", err)
	}
	if len(st.signals) == 0 {
		t.Fatal("recovered judge produced no signals")
	}
	for _, sig := range st.signals {
		var judged bool
		for _, b := range sig.Provenance {
			if b.Stage == models.StageJudge && !b.Degraded {
				judged = true
			}
		}
		if !judged {
			t.Errorf("signal for chunk %s missing a healthy judge breadcrumb", sig.ChunkID)
		}
	}
}

func TestPipeline_UninformativeModelDegradesRun(t *testing.T) {
	st := &fakeStore{
		users:  []string{"u1"},
		chunks: poolChunks(40),
		recent: map[string][][]float64{
			// Saved history points away from the centroid, so held-out
			// separation cannot clear the floor.
			"u1": {{0, 1}, {0, 1}, {0, 1}},
		},
	}
	profiles := &fakeProfiles{
		profiles: map[string]*models.UserPreferenceProfile{
			"u1": {UserID: "u1", PositiveCentroid: []float64{1, 0}, TotalSaved: 25},
		},
	}

	p := testPipeline(t, st, profiles, Config{ColdStartThreshold: 10})
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if len(st.signals) == 0 {
		t.Fatal("degraded run should still produce signals")
	}
	for _, sig := range st.signals {
		for _, b := range sig.Provenance {
			if b.Stage == models.StageEmbedding && !b.Degraded {
				t.Error("embedding breadcrumbs should carry the degraded flag when the model is uninformative")
			}
		}
	}
}

func TestPipeline_CollapseDegradesRun(t *testing.T) {
	st := &fakeStore{users: []string{"u1"}, chunks: poolChunks(10)}
	// Positive and negative centroids nearly identical: separation
	// collapses below the floor.
	profiles := &fakeProfiles{
		profiles: map[string]*models.UserPreferenceProfile{
			"u1": {
				UserID:           "u1",
				PositiveCentroid: []float64{1, 0.01},
				NegativeCentroid: []float64{1, 0},
				TotalSaved:       30,
				TotalSkipped:     30,
			},
		},
	}

	p := testPipeline(t, st, profiles, Config{ColdStartThreshold: 10})
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	for _, sig := range st.signals {
		for _, b := range sig.Provenance {
			if b.Stage == models.StageEmbedding && !b.Degraded {
				t.Error("embedding breadcrumbs should carry the degraded flag during collapse")
			}
		}
	}
}
