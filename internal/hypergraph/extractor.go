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

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/database"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/metrics"
	"github.com/tomtom215/kinograph/internal/models"
)

// InteractionSource supplies one extraction shard of the interaction log,
// ordered by user then time. Implemented by the database layer.
type InteractionSource interface {
	GetPartitionInteractions(ctx context.Context, p, partitions int, minStrength float64) ([]models.InteractionRecord, error)
}

// PartitionWriter persists one partition artifact. Implemented by the
// database layer (parquet COPY with atomic rename).
type PartitionWriter interface {
	WriteEdgePartition(ctx context.Context, path string, edges []database.PartEdge) error
}

// Extractor derives provisional co-occurrence edges from the interaction
// log, one shared-nothing partition at a time. Memory is proportional to a
// single shard, never to the full log.
type Extractor struct {
	source InteractionSource
	writer PartitionWriter
	cfg    *config.PipelineConfig
}

// NewExtractor creates an extractor over the given source and artifact
// writer.
func NewExtractor(source InteractionSource, writer PartitionWriter, cfg *config.PipelineConfig) *Extractor {
	return &Extractor{source: source, writer: writer, cfg: cfg}
}

// PartitionPath returns the artifact path for partition p.
func PartitionPath(partsDir string, p int) string {
	return filepath.Join(partsDir, fmt.Sprintf("edges_part_%05d.parquet", p))
}

// ExtractPartition processes one shard end to end: scan, pair counting,
// threshold filtering, artifact write. Skips work when the artifact already
// exists and resume is set.
func (e *Extractor) ExtractPartition(ctx context.Context, p int, resume bool) error {
	path := PartitionPath(e.cfg.PartsDir, p)
	if resume {
		if _, err := os.Stat(path); err == nil {
			logging.Debug().Int("partition", p).Str("path", path).Msg("Partition artifact exists, skipping")
			return nil
		}
	}

	start := time.Now()
	records, err := e.source.GetPartitionInteractions(ctx, p, e.cfg.Partitions, e.cfg.MinStrength)
	if err != nil {
		return fmt.Errorf("partition %d: load interactions: %w", p, err)
	}

	edges := BuildPairCounts(records, e.cfg.MaxFilmsPerUser, e.cfg.MinPairCount)

	if err := e.writer.WriteEdgePartition(ctx, path, edges); err != nil {
		return fmt.Errorf("partition %d: write artifact: %w", p, err)
	}

	metrics.PipelinePartitionsDone.Inc()
	logging.Info().
		Int("partition", p).
		Int("interactions", len(records)).
		Int("pairs", len(edges)).
		Dur("elapsed", time.Since(start)).
		Msg("Partition extracted")
	return nil
}

// ExtractAll runs every partition in [first, last] with bounded worker
// parallelism and per-partition retries. Partition failure is isolated: a
// shard exhausting its retries fails the stage, but completed artifacts
// stay on disk and a resumed run skips them.
func (e *Extractor) ExtractAll(ctx context.Context, first, last int, resume bool, onDone func(p int)) error {
	if err := os.MkdirAll(e.cfg.PartsDir, 0o750); err != nil {
		return fmt.Errorf("create parts dir: %w", err)
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for p := first; p <= last; p++ {
		g.Go(func() error {
			var lastErr error
			for attempt := 0; attempt <= e.cfg.RetryAttempts; attempt++ {
				if attempt > 0 {
					select {
					case <-gctx.Done():
						return gctx.Err()
					case <-time.After(e.cfg.RetryDelay):
					}
					logging.Warn().Int("partition", p).Int("attempt", attempt).Err(lastErr).
						Msg("Retrying partition extraction")
				}
				if lastErr = e.ExtractPartition(gctx, p, resume); lastErr == nil {
					if onDone != nil {
						onDone(p)
					}
					return nil
				}
			}
			return fmt.Errorf("partition %d failed after %d attempts: %w",
				p, e.cfg.RetryAttempts+1, lastErr)
		})
	}

	return g.Wait()
}

// BuildPairCounts turns one shard's interactions into provisional
// co-occurrence edges. Records must arrive grouped by user (the source
// query orders by user, time). Per user: the most recent maxFilmsPerUser
// distinct films count; every unordered pair among them is one
// co-occurrence. Pairs below minPairCount are dropped; the provisional
// weight is the raw pair count. Output is in canonical (low, high) pair
// order, sorted, so the artifact is deterministic.
func BuildPairCounts(records []models.InteractionRecord, maxFilmsPerUser, minPairCount int) []database.PartEdge {
	counts := make(map[[2]int64]int)

	flush := func(films []models.InteractionRecord) {
		kept := recentDistinctFilms(films, maxFilmsPerUser)
		for i := 0; i < len(kept); i++ {
			for j := i + 1; j < len(kept); j++ {
				a, b := kept[i], kept[j]
				if a == b {
					continue
				}
				if a > b {
					a, b = b, a
				}
				counts[[2]int64{a, b}]++
			}
		}
	}

	start := 0
	for i := 1; i <= len(records); i++ {
		if i == len(records) || records[i].UserID != records[start].UserID {
			flush(records[start:i])
			start = i
		}
	}

	edges := make([]database.PartEdge, 0, len(counts))
	for pair, count := range counts {
		if count < minPairCount {
			continue
		}
		edges = append(edges, database.PartEdge{
			SourceID: pair[0],
			TargetID: pair[1],
			Weight:   float64(count),
		})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SourceID != edges[j].SourceID {
			return edges[i].SourceID < edges[j].SourceID
		}
		return edges[i].TargetID < edges[j].TargetID
	})
	return edges
}

// recentDistinctFilms returns the user's distinct film ids, most recent
// first, truncated to limit. Records arrive time-ascending within a user.
func recentDistinctFilms(records []models.InteractionRecord, limit int) []int64 {
	seen := make(map[int64]struct{}, len(records))
	films := make([]int64, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		id := records[i].FilmID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		films = append(films, id)
		if len(films) == limit {
			break
		}
	}
	return films
}
