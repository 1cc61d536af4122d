// Curio - Personalized Content Relevance Scoring
// Copyright 2026 Curio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/curiofeed/curio

package scoring

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/curiofeed/curio/internal/models"
	"github.com/curiofeed/curio/internal/scoring/judge"
)

// blockingJudge counts concurrent callers and blocks until released.
type blockingJudge struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	release  chan struct{}
}

func newBlockingJudge() *blockingJudge {
	return &blockingJudge{release: make(chan struct{})}
}

func (b *blockingJudge) Score(ctx context.Context, text string) (judge.Verdict, error) {
	b.mu.Lock()
	b.inFlight++
	if b.inFlight > b.peak {
		b.peak = b.inFlight
	}
	b.mu.Unlock()

	<-b.release

	b.mu.Lock()
	b.inFlight--
	b.mu.Unlock()
	return judge.Verdict{Score: 55}, nil
}

// panicJudge panics on a specific chunk to exercise recovery.
type panicJudge struct {
	panicOn string
	calls   atomic.Int64
}

func (p *panicJudge) Score(ctx context.Context, text string) (judge.Verdict, error) {
	p.calls.Add(1)
	if text == p.panicOn {
		panic("judge defect")
	}
	return judge.Verdict{Score: 55}, nil
}

func batchChunks(n int) []*models.ContentChunk {
	chunks := make([]*models.ContentChunk, n)
	for i := range chunks {
		chunks[i] = &models.ContentChunk{
			ID:        fmt.Sprintf("chunk-%03d", i),
			Text:      substantiveText(),
			Embedding: []float64{-1, 0, 0},
		}
	}
	return chunks
}

func TestEngine_EmptyBatch(t *testing.T) {
	e := NewEngine(newTestOrchestrator(t, nil, DefaultConfig()), zerolog.Nop())
	res := e.ScoreBatch(context.Background(), nil, trainedRun())
	if len(res.Scored) != 0 || len(res.Deferred) != 0 || len(res.Skipped) != 0 {
		t.Errorf("empty batch produced %+v", res)
	}
}

func TestEngine_ScoresAllInOrder(t *testing.T) {
	e := NewEngine(newTestOrchestrator(t, nil, DefaultConfig()), zerolog.Nop())

	res := e.ScoreBatch(context.Background(), batchChunks(25), trainedRun())
	if len(res.Scored) != 25 {
		t.Fatalf("Scored = %d, want 25", len(res.Scored))
	}
	for i, sc := range res.Scored {
		want := fmt.Sprintf("chunk-%03d", i)
		if sc.ChunkID != want {
			t.Errorf("Scored[%d].ChunkID = %s, want %s", i, sc.ChunkID, want)
		}
		if sc.Score < 0 || sc.Score > 1 {
			t.Errorf("Scored[%d].Score = %f outside [0,1]", i, sc.Score)
		}
	}
}

func TestEngine_BoundedConcurrency(t *testing.T) {
	j := newBlockingJudge()
	cfg := DefaultConfig()
	cfg.Concurrency = 3
	e := NewEngine(newTestOrchestrator(t, j, cfg), zerolog.Nop())

	done := make(chan BatchResult, 1)
	go func() {
		done <- e.ScoreBatch(context.Background(), batchChunks(12), trainedRun())
	}()

	// All workers end up parked in the judge; release them and join.
	close(j.release)
	res := <-done

	if len(res.Scored) != 12 {
		t.Fatalf("Scored = %d, want 12", len(res.Scored))
	}
	j.mu.Lock()
	peak := j.peak
	j.mu.Unlock()
	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestEngine_MixedOutcomes(t *testing.T) {
	e := NewEngine(newTestOrchestrator(t, nil, DefaultConfig()), zerolog.Nop())

	chunks := []*models.ContentChunk{
		{ID: "good", Text: substantiveText(), Embedding: []float64{1, 0, 0}},
		{ID: "no-embedding", Text: substantiveText()},
		{ID: "blank", Text: "   "},
		{ID: "good-2", Text: substantiveText(), Embedding: []float64{0, 1, 0}},
	}

	res := e.ScoreBatch(context.Background(), chunks, trainedRun())

	if len(res.Scored) != 2 {
		t.Errorf("Scored = %d, want 2", len(res.Scored))
	}
	if len(res.Deferred) != 1 || res.Deferred[0] != "no-embedding" {
		t.Errorf("Deferred = %v, want [no-embedding]", res.Deferred)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "blank" {
		t.Errorf("Skipped = %v, want [blank]", res.Skipped)
	}
}

func TestEngine_PanicIsolated(t *testing.T) {
	chunks := batchChunks(5)
	chunks[2].Text = chunks[2].Text + " poison"

	j := &panicJudge{panicOn: chunks[2].Text}
	e := NewEngine(newTestOrchestrator(t, j, DefaultConfig()), zerolog.Nop())

	res := e.ScoreBatch(context.Background(), chunks, trainedRun())

	if len(res.Scored) != 4 {
		t.Errorf("Scored = %d, want 4 survivors", len(res.Scored))
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != chunks[2].ID {
		t.Errorf("Skipped = %v, want [%s]", res.Skipped, chunks[2].ID)
	}
}

func TestEngine_CancellationStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine(newTestOrchestrator(t, nil, DefaultConfig()), zerolog.Nop())
	res := e.ScoreBatch(ctx, batchChunks(20), trainedRun())

	if len(res.Scored) != 0 {
		t.Errorf("Scored = %d after pre-cancelled context, want 0", len(res.Scored))
	}
}
