// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package hypergraph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/metrics"
	"github.com/tomtom215/kinograph/internal/models"
)

// ErrCoverageGap signals that the finalized edge set references films
// missing from the catalog or the embedding table. It blocks the pipeline:
// downstreaming a gapped edge set means query-time misses.
var ErrCoverageGap = errors.New("hypergraph: coverage gap")

// maxGapSamples bounds the example ids carried in a report.
const maxGapSamples = 10

// CoverageSource is the store surface the validator reads. Implemented by
// the database layer.
type CoverageSource interface {
	ScanHyperedges(ctx context.Context, fn func(e models.Hyperedge) error) error
	FilmIDSet(ctx context.Context) (map[int64]struct{}, error)
	EmbeddedFilmIDSet(ctx context.Context) (map[int64]struct{}, error)
}

// CoverageReport is the structured result of a validation run.
type CoverageReport struct {
	EdgeCount int64 `json:"edge_count"`

	MissingFilmCount      int64   `json:"missing_film_count"`
	MissingFilmSamples    []int64 `json:"missing_film_samples,omitempty"`
	MissingEmbeddingCount int64   `json:"missing_embedding_count"`
	MissingEmbedSamples   []int64 `json:"missing_embedding_samples,omitempty"`
}

// Passed reports whether both gap sets are empty.
func (r *CoverageReport) Passed() bool {
	return r.MissingFilmCount == 0 && r.MissingEmbeddingCount == 0
}

// CoverageValidator checks that every film endpoint of the finalized edge
// set exists in the catalog and has an embedding. Genre nodes are synthetic
// conduits and are exempt.
type CoverageValidator struct {
	source CoverageSource
}

// NewCoverageValidator creates a validator over the given store.
func NewCoverageValidator(source CoverageSource) *CoverageValidator {
	return &CoverageValidator{source: source}
}

// Validate computes the coverage report over the authoritative edge set.
// The returned error is ErrCoverageGap (wrapped) when either gap set is
// non-empty; the report is returned in both cases so callers can surface
// counts.
func (v *CoverageValidator) Validate(ctx context.Context) (*CoverageReport, error) {
	return v.check(ctx, func(fn func(models.Hyperedge) error) error {
		return v.source.ScanHyperedges(ctx, fn)
	})
}

// ValidateEdges computes the coverage report over a not-yet-promoted edge
// set. The pipeline runs this as the finalization gate: a gapped artifact
// is rejected before the staging swap, so the authoritative set never
// downstreams query-time misses.
func (v *CoverageValidator) ValidateEdges(ctx context.Context, edges []models.Hyperedge) (*CoverageReport, error) {
	return v.check(ctx, func(fn func(models.Hyperedge) error) error {
		for _, e := range edges {
			if err := fn(e); err != nil {
				return err
			}
		}
		return nil
	})
}

func (v *CoverageValidator) check(ctx context.Context, scan func(func(models.Hyperedge) error) error) (*CoverageReport, error) {
	films, err := v.source.FilmIDSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load film ids: %w", err)
	}
	embedded, err := v.source.EmbeddedFilmIDSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load embedded film ids: %w", err)
	}

	report := &CoverageReport{}
	missingFilms := make(map[int64]struct{})
	missingEmbeds := make(map[int64]struct{})

	checkEndpoint := func(kind string, id int64) {
		if kind != models.KindFilm {
			return
		}
		if _, ok := films[id]; !ok {
			missingFilms[id] = struct{}{}
			return
		}
		if _, ok := embedded[id]; !ok {
			missingEmbeds[id] = struct{}{}
		}
	}

	err = scan(func(e models.Hyperedge) error {
		report.EdgeCount++
		checkEndpoint(e.SourceKind, e.SourceID)
		checkEndpoint(e.TargetKind, e.TargetID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan edges: %w", err)
	}

	report.MissingFilmCount = int64(len(missingFilms))
	report.MissingFilmSamples = sampleIDs(missingFilms)
	report.MissingEmbeddingCount = int64(len(missingEmbeds))
	report.MissingEmbedSamples = sampleIDs(missingEmbeds)

	metrics.PipelineCoverageGaps.Set(float64(report.MissingFilmCount + report.MissingEmbeddingCount))

	if !report.Passed() {
		logging.Error().
			Int64("missing_films", report.MissingFilmCount).
			Int64("missing_embeddings", report.MissingEmbeddingCount).
			Interface("missing_film_samples", report.MissingFilmSamples).
			Interface("missing_embedding_samples", report.MissingEmbedSamples).
			Msg("Coverage validation failed")
		return report, fmt.Errorf("%w: %d films missing, %d embeddings missing",
			ErrCoverageGap, report.MissingFilmCount, report.MissingEmbeddingCount)
	}

	logging.Info().Int64("edges", report.EdgeCount).Msg("Coverage validation passed")
	return report, nil
}

// ValidateArtifact cross-checks the stored edge set against the aggregation
// result that produced it: identical row count, per-edge weight agreement
// within tolerance. Catches partial loads the adapter's exit code missed.
func (v *CoverageValidator) ValidateArtifact(ctx context.Context, expected []models.Hyperedge) error {
	const tolerance = 1e-6

	want := make(map[models.EdgeKey]float64, len(expected))
	for _, e := range expected {
		want[e.Key()] = e.Weight
	}

	var stored int64
	err := v.source.ScanHyperedges(ctx, func(e models.Hyperedge) error {
		stored++
		expectedWeight, ok := want[e.Key()]
		if !ok {
			return fmt.Errorf("stored edge %s %d->%d not in finalized artifact",
				e.KindPair(), e.SourceID, e.TargetID)
		}
		if math.Abs(e.Weight-expectedWeight) > tolerance {
			return fmt.Errorf("edge %s %d->%d weight %v diverges from artifact %v",
				e.KindPair(), e.SourceID, e.TargetID, e.Weight, expectedWeight)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if stored != int64(len(want)) {
		return fmt.Errorf("store holds %d edges, artifact has %d", stored, len(want))
	}
	return nil
}

// sampleIDs returns up to maxGapSamples ids in ascending order.
func sampleIDs(set map[int64]struct{}) []int64 {
	if len(set) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > maxGapSamples {
		ids = ids[:maxGapSamples]
	}
	return ids
}
