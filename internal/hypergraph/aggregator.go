// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package hypergraph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/database"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/models"
)

// PartitionReader reads one partition artifact back. Implemented by the
// database layer.
type PartitionReader interface {
	ReadEdgePartition(ctx context.Context, path string) ([]database.PartEdge, error)
}

// FilmSource streams the film catalog in ascending id order. The aggregator
// derives attribute edges from it directly, not from partitions.
type FilmSource interface {
	ScanFilms(ctx context.Context, fn func(f models.Film) error) error
}

// Aggregator merges partition artifacts into the finalized edge set. It is
// the pipeline's single-writer reduce step: order-independent over its
// inputs, deterministic in its output.
type Aggregator struct {
	reader PartitionReader
	films  FilmSource
	cfg    *config.PipelineConfig
}

// NewAggregator creates an aggregator over the given artifact reader and
// film catalog.
func NewAggregator(reader PartitionReader, films FilmSource, cfg *config.PipelineConfig) *Aggregator {
	return &Aggregator{reader: reader, films: films, cfg: cfg}
}

// AggregateResult is the finalized edge set plus per-kind counts for the
// build record.
type AggregateResult struct {
	Edges        []models.Hyperedge
	CoWatchEdges int64
	GenreEdges   int64
}

// Aggregate merges all part artifacts under the parts directory, prunes
// co-watch edges to top-K per source, derives shared-genre edges from the
// catalog under their own top-K, and returns the finalized set in
// deterministic order. createdAt stamps every edge so one build shares one
// timestamp.
func (a *Aggregator) Aggregate(ctx context.Context, createdAt time.Time) (*AggregateResult, error) {
	paths, err := a.partPaths()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no partition artifacts found in %s", a.cfg.PartsDir)
	}

	// Sum identical pairs across partitions. Merge order does not matter
	// for the result: summation is commutative and the per-pair values are
	// integral counts, so float accumulation order cannot diverge.
	merged := make(map[[2]int64]float64)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := a.reader.ReadEdgePartition(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
		for _, e := range part {
			merged[[2]int64{e.SourceID, e.TargetID}] += e.Weight
		}
	}

	cowatch := cowatchEdges(merged, a.cfg.TopKPerSource, createdAt)

	genre, err := a.genreEdges(ctx, createdAt)
	if err != nil {
		return nil, err
	}

	edges := append(cowatch, genre...)
	sortEdges(edges)

	logging.Info().
		Int("partitions", len(paths)).
		Int("cowatch_edges", len(cowatch)).
		Int("genre_edges", len(genre)).
		Msg("Aggregation complete")

	return &AggregateResult{
		Edges:        edges,
		CoWatchEdges: int64(len(cowatch)),
		GenreEdges:   int64(len(genre)),
	}, nil
}

// partPaths lists partition artifacts in lexicographic order. The fixed
// numeric padding in the filenames makes that partition order.
func (a *Aggregator) partPaths() ([]string, error) {
	pattern := filepath.Join(a.cfg.PartsDir, "edges_part_*.parquet")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("list partition artifacts: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// cowatchEdges materializes both directions of each canonical pair and
// prunes to top-K per source film. A zero or negative summed weight is
// absence, not an edge.
func cowatchEdges(merged map[[2]int64]float64, topK int, createdAt time.Time) []models.Hyperedge {
	bySource := make(map[int64][]models.Hyperedge)
	add := func(src, dst int64, weight float64) {
		bySource[src] = append(bySource[src], models.Hyperedge{
			SourceKind: models.KindFilm,
			SourceID:   src,
			TargetKind: models.KindFilm,
			TargetID:   dst,
			Weight:     weight,
			Payload:    models.EdgePayload{"pair_count": weight},
			CreatedAt:  createdAt,
		})
	}

	for pair, weight := range merged {
		if weight <= 0 {
			continue
		}
		add(pair[0], pair[1], weight)
		add(pair[1], pair[0], weight)
	}

	var edges []models.Hyperedge
	for _, out := range bySource {
		edges = append(edges, pruneTopK(out, topK)...)
	}
	return edges
}

// genreEdges derives shared-attribute edges from the catalog: weight 1.0
// per (film, genre token), materialized in both directions so traversal is
// uniformly outgoing. Genre ids are allocated from models.GenreIDBase in
// first-seen order over the id-ordered catalog scan, which keeps them
// stable across runs on unchanged input. Each direction is pruned under the
// attribute top-K independently.
func (a *Aggregator) genreEdges(ctx context.Context, createdAt time.Time) ([]models.Hyperedge, error) {
	genreIDs := make(map[string]int64)
	nextID := models.GenreIDBase

	filmOut := make(map[int64][]models.Hyperedge)
	genreOut := make(map[int64][]models.Hyperedge)

	err := a.films.ScanFilms(ctx, func(f models.Film) error {
		for _, token := range f.GenreTokens() {
			gid, ok := genreIDs[token]
			if !ok {
				gid = nextID
				genreIDs[token] = gid
				nextID++
			}
			payload := models.EdgePayload{"genre": token}
			filmOut[f.ID] = append(filmOut[f.ID], models.Hyperedge{
				SourceKind: models.KindFilm,
				SourceID:   f.ID,
				TargetKind: models.KindGenre,
				TargetID:   gid,
				Weight:     1.0,
				Payload:    payload,
				CreatedAt:  createdAt,
			})
			genreOut[gid] = append(genreOut[gid], models.Hyperedge{
				SourceKind: models.KindGenre,
				SourceID:   gid,
				TargetKind: models.KindFilm,
				TargetID:   f.ID,
				Weight:     1.0,
				Payload:    payload,
				CreatedAt:  createdAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("derive genre edges: %w", err)
	}

	var edges []models.Hyperedge
	for _, out := range filmOut {
		edges = append(edges, pruneTopK(out, a.cfg.AttributeTopK)...)
	}
	for _, out := range genreOut {
		edges = append(edges, pruneTopK(out, a.cfg.AttributeTopK)...)
	}
	return edges, nil
}

// pruneTopK keeps the K heaviest edges of one source's outgoing set within
// one kind pair. Ties break toward the lower target id so pruning is
// deterministic regardless of input order.
func pruneTopK(out []models.Hyperedge, k int) []models.Hyperedge {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].TargetID < out[j].TargetID
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// sortEdges puts the finalized set into its canonical artifact order.
func sortEdges(edges []models.Hyperedge) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := &edges[i], &edges[j]
		if a.SourceKind != b.SourceKind {
			return a.SourceKind < b.SourceKind
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		if a.TargetKind != b.TargetKind {
			return a.TargetKind < b.TargetKind
		}
		return a.TargetID < b.TargetID
	})
}

// CleanupParts removes partition artifacts after successful finalization.
// Artifacts are intermediate and non-authoritative; a fresh build recreates
// them.
func CleanupParts(partsDir string) error {
	pattern := filepath.Join(partsDir, "edges_part_*.parquet")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("list partition artifacts: %w", err)
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}
