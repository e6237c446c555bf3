// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package recommend

import (
	"math"
	"testing"

	"github.com/tomtom215/kinograph/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFuseTwoCandidateExample(t *testing.T) {
	// Pool {A sim=0.9, cow=0; C sim=0, cow=8}: min-max makes A's sim 1.0
	// and C's cowatch 1.0, so fused(A)=0.6 and fused(C)=0.4.
	pool := map[int64]*signalAccum{
		1: {Similarity: 0.9},
		3: {CoWatch: 8},
	}
	w := Weights{Similarity: 0.6, CoWatch: 0.4}

	results := fuse(pool, w, 10, nil)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].FilmID != 1 || !almostEqual(results[0].Fused, 0.6) {
		t.Errorf("rank 1 = film %d fused %v, want film 1 fused 0.6", results[0].FilmID, results[0].Fused)
	}
	if results[1].FilmID != 3 || !almostEqual(results[1].Fused, 0.4) {
		t.Errorf("rank 2 = film %d fused %v, want film 3 fused 0.4", results[1].FilmID, results[1].Fused)
	}
	if results[0].Signals[models.SignalSimilarity] != 1.0 {
		t.Errorf("film 1 normalized similarity = %v, want 1.0", results[0].Signals[models.SignalSimilarity])
	}
	if results[1].Signals[models.SignalCoWatch] != 1.0 {
		t.Errorf("film 3 normalized cowatch = %v, want 1.0", results[1].Signals[models.SignalCoWatch])
	}
}

func TestFuseZeroVarianceChannelCannotRank(t *testing.T) {
	// Cowatch is constant (and nonzero) across the pool; it must
	// normalize to 0 everywhere and leave ranking to similarity.
	pool := map[int64]*signalAccum{
		1: {Similarity: 0.2, CoWatch: 7},
		2: {Similarity: 0.9, CoWatch: 7},
		3: {Similarity: 0.5, CoWatch: 7},
	}
	w := Weights{Similarity: 1.0, CoWatch: 100.0}

	results := fuse(pool, w, 10, nil)
	wantOrder := []int64{2, 3, 1}
	for i, want := range wantOrder {
		if results[i].FilmID != want {
			t.Fatalf("rank %d = film %d, want %d", i+1, results[i].FilmID, want)
		}
	}
	for _, r := range results {
		if r.Signals[models.SignalCoWatch] != 0 {
			t.Errorf("film %d flat cowatch normalized to %v, want 0", r.FilmID, r.Signals[models.SignalCoWatch])
		}
	}
}

func TestFuseTiesBreakByAscendingID(t *testing.T) {
	pool := map[int64]*signalAccum{
		30: {Similarity: 0.5},
		10: {Similarity: 0.5},
		20: {Similarity: 0.5},
		40: {Similarity: 0.9},
	}
	results := fuse(pool, Weights{Similarity: 1}, 10, nil)

	wantOrder := []int64{40, 10, 20, 30}
	for i, want := range wantOrder {
		if results[i].FilmID != want {
			t.Fatalf("order = %v, want %v", resultIDs(results), wantOrder)
		}
	}
}

func TestFuseExcludesBeforeTruncation(t *testing.T) {
	pool := map[int64]*signalAccum{
		1: {Similarity: 0.9},
		2: {Similarity: 0.8},
		3: {Similarity: 0.7},
	}
	exclude := map[int64]struct{}{1: {}}

	results := fuse(pool, Weights{Similarity: 1}, 2, exclude)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// Exclusion happens before truncation, so film 3 is promoted into
	// the top 2 rather than cut off.
	if results[0].FilmID != 2 || results[1].FilmID != 3 {
		t.Errorf("order = %v, want [2 3]", resultIDs(results))
	}
}

func TestFuseTruncatesToTopK(t *testing.T) {
	pool := map[int64]*signalAccum{}
	for i := int64(1); i <= 20; i++ {
		pool[i] = &signalAccum{Similarity: float64(i)}
	}
	results := fuse(pool, Weights{Similarity: 1}, 5, nil)
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	if results[0].FilmID != 20 {
		t.Errorf("rank 1 = film %d, want 20", results[0].FilmID)
	}
}

func TestFuseEmptyAndDegenerate(t *testing.T) {
	if r := fuse(nil, Weights{Similarity: 1}, 10, nil); r != nil {
		t.Errorf("empty pool fused to %v", r)
	}
	pool := map[int64]*signalAccum{1: {Similarity: 0.9}}
	if r := fuse(pool, Weights{Similarity: 1}, 0, nil); r != nil {
		t.Errorf("topK 0 fused to %v", r)
	}
	// Everything excluded.
	if r := fuse(pool, Weights{Similarity: 1}, 10, map[int64]struct{}{1: {}}); r != nil {
		t.Errorf("fully excluded pool fused to %v", r)
	}
}

func TestFuseSingleCandidateHasZeroScore(t *testing.T) {
	// One candidate means every channel is zero-variance.
	pool := map[int64]*signalAccum{7: {Similarity: 0.9, CoWatch: 5}}
	results := fuse(pool, Weights{Similarity: 1, CoWatch: 1}, 10, nil)
	if len(results) != 1 || results[0].Fused != 0 {
		t.Errorf("results = %+v, want single zero-fused candidate", results)
	}
}

func resultIDs(results []models.ScoredCandidate) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.FilmID
	}
	return ids
}
