// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package recommend

import (
	"context"
	"testing"

	"github.com/tomtom215/kinograph/internal/models"
)

// fakeEdges serves canned outgoing edges and records which sources were
// expanded.
type fakeEdges struct {
	edges    []models.Hyperedge
	expanded map[string][]int64
}

func (f *fakeEdges) GetOutgoingEdges(_ context.Context, sourceKind string, sourceIDs []int64) (map[int64][]models.Hyperedge, error) {
	if f.expanded == nil {
		f.expanded = make(map[string][]int64)
	}
	f.expanded[sourceKind] = append(f.expanded[sourceKind], sourceIDs...)

	want := make(map[int64]struct{}, len(sourceIDs))
	for _, id := range sourceIDs {
		want[id] = struct{}{}
	}
	out := make(map[int64][]models.Hyperedge)
	for _, e := range f.edges {
		if e.SourceKind != sourceKind {
			continue
		}
		if _, ok := want[e.SourceID]; ok {
			out[e.SourceID] = append(out[e.SourceID], e)
		}
	}
	return out, nil
}

func edge(srcKind string, src int64, dstKind string, dst int64, w float64) models.Hyperedge {
	return models.Hyperedge{SourceKind: srcKind, SourceID: src, TargetKind: dstKind, TargetID: dst, Weight: w}
}

func TestExpandSumsContributionsAcrossSeeds(t *testing.T) {
	// Two seeds both point at film 3; its co-watch channel is the sum.
	src := &fakeEdges{edges: []models.Hyperedge{
		edge(models.KindFilm, 1, models.KindFilm, 3, 5),
		edge(models.KindFilm, 2, models.KindFilm, 3, 3),
	}}
	seeds := []models.SeedCandidate{{FilmID: 1, Similarity: 0.9}, {FilmID: 2, Similarity: 0.7}}

	pool, abandoned, err := NewExpander(src).Expand(context.Background(), seeds, 1, 100)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if abandoned {
		t.Error("unexpected abandonment")
	}
	if len(pool) != 3 {
		t.Fatalf("pool size = %d, want 3", len(pool))
	}

	c := pool[3]
	if c == nil {
		t.Fatal("film 3 missing from pool")
	}
	if c.CoWatch != 8 {
		t.Errorf("film 3 cowatch = %v, want 8 (5+3 summed)", c.CoWatch)
	}
	if c.Similarity != 0 {
		t.Errorf("expansion-only film carries similarity %v, want 0", c.Similarity)
	}
	if pool[1].Similarity != 0.9 || pool[2].Similarity != 0.7 {
		t.Error("seed similarities not retained in pool")
	}
}

func TestExpandZeroHops(t *testing.T) {
	src := &fakeEdges{edges: []models.Hyperedge{
		edge(models.KindFilm, 1, models.KindFilm, 2, 5),
	}}
	seeds := []models.SeedCandidate{{FilmID: 1, Similarity: 0.9}}

	pool, _, err := NewExpander(src).Expand(context.Background(), seeds, 0, 100)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("pool = %v, want only the seed", pool)
	}
	if len(src.expanded) != 0 {
		t.Error("zero hops must not touch the edge store")
	}
}

func TestExpandGenreConduit(t *testing.T) {
	genreID := models.GenreIDBase
	src := &fakeEdges{edges: []models.Hyperedge{
		edge(models.KindFilm, 1, models.KindGenre, genreID, 1),
		edge(models.KindGenre, genreID, models.KindFilm, 2, 1),
		edge(models.KindGenre, genreID, models.KindFilm, 1, 1),
	}}
	seeds := []models.SeedCandidate{{FilmID: 1, Similarity: 0.8}}

	pool, _, err := NewExpander(src).Expand(context.Background(), seeds, 2, 100)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if _, ok := pool[genreID]; ok {
		t.Error("genre node entered the candidate pool")
	}
	c := pool[2]
	if c == nil {
		t.Fatal("film 2 not reached through the genre conduit")
	}
	if c.Genre != 1 {
		t.Errorf("film 2 genre channel = %v, want 1", c.Genre)
	}
	if c.CoWatch != 0 {
		t.Errorf("film 2 cowatch = %v, want 0", c.CoWatch)
	}
	// The seed itself receives a genre contribution back through the
	// conduit but is never re-expanded.
	if pool[1].Genre != 1 {
		t.Errorf("seed genre channel = %v, want 1", pool[1].Genre)
	}
}

func TestExpandVisitedStillAccumulates(t *testing.T) {
	src := &fakeEdges{edges: []models.Hyperedge{
		edge(models.KindFilm, 1, models.KindFilm, 2, 2),
		edge(models.KindFilm, 2, models.KindFilm, 1, 9),
	}}
	seeds := []models.SeedCandidate{{FilmID: 1, Similarity: 0.9}}

	pool, _, err := NewExpander(src).Expand(context.Background(), seeds, 3, 100)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	// Hop 1: film 2 reached with factor 2. Hop 2: 2->1 contributes
	// 2*9=18 to the visited seed; the seed does not re-enter the
	// frontier, so hop 3 has nothing to expand.
	if pool[2].CoWatch != 2 {
		t.Errorf("film 2 cowatch = %v, want 2", pool[2].CoWatch)
	}
	if pool[1].CoWatch != 18 {
		t.Errorf("film 1 cowatch = %v, want 18", pool[1].CoWatch)
	}
	if got := len(src.expanded[models.KindFilm]); got != 2 {
		t.Errorf("expanded %d film sources, want 2 (no re-expansion)", got)
	}
}

func TestExpandPathFactorMultiplies(t *testing.T) {
	src := &fakeEdges{edges: []models.Hyperedge{
		edge(models.KindFilm, 1, models.KindFilm, 2, 2),
		edge(models.KindFilm, 2, models.KindFilm, 3, 3),
	}}
	seeds := []models.SeedCandidate{{FilmID: 1, Similarity: 1.0}}

	pool, _, err := NewExpander(src).Expand(context.Background(), seeds, 2, 100)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// Film 2 was reached with total weight 2, so its onward edges carry
	// factor 2: film 3 accumulates 2*3.
	if pool[3].CoWatch != 6 {
		t.Errorf("film 3 cowatch = %v, want 6", pool[3].CoWatch)
	}
}

func TestExpandFrontierCap(t *testing.T) {
	src := &fakeEdges{edges: []models.Hyperedge{
		edge(models.KindFilm, 1, models.KindFilm, 10, 5),
		edge(models.KindFilm, 1, models.KindFilm, 11, 5),
		edge(models.KindFilm, 1, models.KindFilm, 12, 3),
		edge(models.KindFilm, 10, models.KindFilm, 20, 1),
		edge(models.KindFilm, 11, models.KindFilm, 21, 1),
		edge(models.KindFilm, 12, models.KindFilm, 22, 1),
	}}
	seeds := []models.SeedCandidate{{FilmID: 1, Similarity: 1.0}}

	pool, _, err := NewExpander(src).Expand(context.Background(), seeds, 2, 2)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	// Cap of 2 keeps films 10 and 11 (weight 5); film 12 is dropped from
	// the frontier but stays in the pool with its hop-1 contribution.
	if pool[12] == nil || pool[12].CoWatch != 3 {
		t.Error("capped-out film lost its pool contribution")
	}
	if pool[22] != nil {
		t.Error("film behind a capped-out frontier node was expanded")
	}
	if pool[20] == nil || pool[21] == nil {
		t.Error("films behind kept frontier nodes were not expanded")
	}
}

func TestExpandFrontierCapTieDropsHigherID(t *testing.T) {
	src := &fakeEdges{edges: []models.Hyperedge{
		edge(models.KindFilm, 1, models.KindFilm, 10, 5),
		edge(models.KindFilm, 1, models.KindFilm, 11, 5),
		edge(models.KindFilm, 10, models.KindFilm, 20, 1),
		edge(models.KindFilm, 11, models.KindFilm, 21, 1),
	}}
	seeds := []models.SeedCandidate{{FilmID: 1, Similarity: 1.0}}

	pool, _, err := NewExpander(src).Expand(context.Background(), seeds, 2, 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if pool[20] == nil {
		t.Error("tie should keep the lower id in the frontier")
	}
	if pool[21] != nil {
		t.Error("tie should drop the higher id from the frontier")
	}
}

func TestExpandCancelledContext(t *testing.T) {
	src := &fakeEdges{edges: []models.Hyperedge{
		edge(models.KindFilm, 1, models.KindFilm, 2, 5),
	}}
	seeds := []models.SeedCandidate{{FilmID: 1, Similarity: 0.9}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool, abandoned, err := NewExpander(src).Expand(ctx, seeds, 2, 100)
	if err != nil {
		t.Fatalf("cancellation must degrade, not fail: %v", err)
	}
	if !abandoned {
		t.Error("abandoned flag not set")
	}
	if len(pool) != 1 {
		t.Errorf("pool = %v, want seeds only", pool)
	}
}

func TestExpandDuplicateSeedsKeepHigherSimilarity(t *testing.T) {
	src := &fakeEdges{}
	seeds := []models.SeedCandidate{
		{FilmID: 1, Similarity: 0.5},
		{FilmID: 1, Similarity: 0.9},
	}
	pool, _, err := NewExpander(src).Expand(context.Background(), seeds, 0, 100)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if pool[1].Similarity != 0.9 {
		t.Errorf("similarity = %v, want 0.9", pool[1].Similarity)
	}
}

func TestExpandEmptySeeds(t *testing.T) {
	pool, abandoned, err := NewExpander(&fakeEdges{}).Expand(context.Background(), nil, 2, 100)
	if err != nil || abandoned {
		t.Fatalf("Expand = %v, %v", abandoned, err)
	}
	if len(pool) != 0 {
		t.Errorf("pool = %v, want empty", pool)
	}
}
