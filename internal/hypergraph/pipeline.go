// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package hypergraph

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/database"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/metrics"
	"github.com/tomtom215/kinograph/internal/models"
)

// VectorSink mirrors embeddings into the external similarity index.
// Implemented by the vectorstore client; nil disables the sync stage.
type VectorSink interface {
	EnsureCollection(ctx context.Context) error
	UpsertVectors(ctx context.Context, ids []int64, vectors [][]float32) error
}

// Pipeline orchestrates a full hyperedge build: extract -> aggregate ->
// load into staging -> coverage gate -> finalize -> post-swap cross-check ->
// sync-vectors, with the registry recording every stage transition.
type Pipeline struct {
	db       *database.DB
	registry *Registry
	cfg      *config.PipelineConfig
	vectors  VectorSink
	syncCfg  *config.VectorStoreConfig

	// onFinalize runs after a successful swap (the server clears its
	// response cache here).
	onFinalize func()
}

// NewPipeline wires the pipeline over the store and registry. vectors may
// be nil when no similarity index is configured.
func NewPipeline(db *database.DB, registry *Registry, cfg *config.PipelineConfig, vectors VectorSink, syncCfg *config.VectorStoreConfig) *Pipeline {
	return &Pipeline{db: db, registry: registry, cfg: cfg, vectors: vectors, syncCfg: syncCfg}
}

// OnFinalize registers a hook invoked after each successful finalization.
func (p *Pipeline) OnFinalize(fn func()) {
	p.onFinalize = fn
}

// Run executes the full pipeline as one build. With resume, extraction
// skips partitions whose artifacts already exist.
func (p *Pipeline) Run(ctx context.Context, resume bool) (*models.Build, error) {
	build, err := p.registry.NewBuild(p.cfg.Partitions)
	if err != nil {
		return nil, err
	}
	return build, p.Execute(ctx, build, resume)
}

// Execute runs all stages for an already-registered build and records the
// outcome. Callers that need the build record before completion register
// the build themselves and run Execute in the background.
func (p *Pipeline) Execute(ctx context.Context, build *models.Build, resume bool) error {
	start := time.Now()
	err := p.runStages(ctx, build, resume)

	now := time.Now().UTC()
	build.FinishedAt = &now
	if err != nil {
		build.Status = models.BuildFailed
		build.Error = err.Error()
	} else {
		build.Status = models.BuildFinalized
	}
	if putErr := p.registry.Put(build); putErr != nil {
		logging.Error().Err(putErr).Str("build_id", build.ID).Msg("Failed to persist final build state")
	}

	metrics.PipelineBuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return err
	}

	logging.Info().
		Str("build_id", build.ID).
		Int64("edges", build.EdgesFinalized).
		Dur("elapsed", time.Since(start)).
		Msg("Build finalized")
	return nil
}

func (p *Pipeline) runStages(ctx context.Context, build *models.Build, resume bool) error {
	if err := p.Extract(ctx, build, 0, p.cfg.Partitions-1, resume); err != nil {
		return err
	}

	result, err := p.AggregateAndLoad(ctx, build)
	if err != nil {
		return err
	}

	if err := p.Validate(ctx, build, result.Edges); err != nil {
		return err
	}

	if p.vectors != nil {
		if err := p.SyncVectors(ctx, build); err != nil {
			return err
		}
	}

	if err := CleanupParts(p.cfg.PartsDir); err != nil {
		// Stale artifacts are ignored by the next non-resume run; log and go on.
		logging.Warn().Err(err).Msg("Failed to clean up partition artifacts")
	}
	return nil
}

// Extract runs the extraction stage for partitions [first, last].
func (p *Pipeline) Extract(ctx context.Context, build *models.Build, first, last int, resume bool) error {
	p.setStage(build, models.StageExtract)

	extractor := NewExtractor(p.db, p.db, p.cfg)
	err := extractor.ExtractAll(ctx, first, last, resume, func(part int) {
		build.MarkPartitionDone(part)
		if putErr := p.registry.Put(build); putErr != nil {
			logging.Warn().Err(putErr).Int("partition", part).Msg("Failed to record partition completion")
		}
	})
	if err != nil {
		return fmt.Errorf("extract stage: %w", err)
	}
	return nil
}

// AggregateAndLoad merges all partition artifacts, stages the merged set,
// gates it on coverage validation, and only then atomically promotes it.
// A gapped artifact never reaches the authoritative table and the
// finalization hook does not fire for it.
func (p *Pipeline) AggregateAndLoad(ctx context.Context, build *models.Build) (*AggregateResult, error) {
	p.setStage(build, models.StageAggregate)

	aggregator := NewAggregator(p.db, p.db, p.cfg)
	result, err := aggregator.Aggregate(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("aggregate stage: %w", err)
	}

	build.CoWatchEdges = result.CoWatchEdges
	build.GenreEdges = result.GenreEdges
	p.setStage(build, models.StageLoad)

	adapter := NewStoreAdapter(p.db, p.cfg)
	if err := adapter.Load(ctx, result.Edges); err != nil {
		return nil, fmt.Errorf("load stage: %w", err)
	}

	validator := NewCoverageValidator(p.db)
	if _, err := validator.ValidateEdges(ctx, result.Edges); err != nil {
		return nil, fmt.Errorf("validate stage: %w", err)
	}

	if err := adapter.Finalize(ctx); err != nil {
		return nil, fmt.Errorf("load stage: %w", err)
	}

	build.EdgesFinalized = int64(len(result.Edges))
	metrics.PipelineEdgesFinalized.Set(float64(len(result.Edges)))

	if p.onFinalize != nil {
		p.onFinalize()
	}
	return result, nil
}

// Validate runs coverage validation over the already-promoted edge set
// and, when the aggregation result is available, the store-versus-artifact
// cross-check. Inside a build this is the post-swap double check; the
// blocking gate runs earlier, before promotion, in AggregateAndLoad.
func (p *Pipeline) Validate(ctx context.Context, build *models.Build, expected []models.Hyperedge) error {
	p.setStage(build, models.StageValidate)

	validator := NewCoverageValidator(p.db)
	if _, err := validator.Validate(ctx); err != nil {
		return fmt.Errorf("validate stage: %w", err)
	}
	if expected != nil {
		if err := validator.ValidateArtifact(ctx, expected); err != nil {
			return fmt.Errorf("validate stage: %w", err)
		}
	}
	return nil
}

// SyncVectors mirrors the embedding table into the similarity index in
// bounded batches.
func (p *Pipeline) SyncVectors(ctx context.Context, build *models.Build) error {
	if p.vectors == nil {
		return fmt.Errorf("sync-vectors stage: no vector store configured")
	}
	p.setStage(build, models.StageSyncVectors)

	if err := p.vectors.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("sync-vectors stage: %w", err)
	}

	batchSize := 256
	if p.syncCfg != nil && p.syncCfg.SyncBatchSize > 0 {
		batchSize = p.syncCfg.SyncBatchSize
	}

	var (
		ids   []int64
		vecs  [][]float32
		total int64
	)
	flush := func() error {
		if len(ids) == 0 {
			return nil
		}
		if err := p.vectors.UpsertVectors(ctx, ids, vecs); err != nil {
			return err
		}
		total += int64(len(ids))
		ids, vecs = ids[:0], vecs[:0]
		return nil
	}

	err := p.db.ScanEmbeddings(ctx, func(filmID int64, vec []float32) error {
		ids = append(ids, filmID)
		vecs = append(vecs, vec)
		if len(ids) >= batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sync-vectors stage: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("sync-vectors stage: %w", err)
	}

	logging.Info().Int64("vectors", total).Msg("Vector sync complete")
	return nil
}

func (p *Pipeline) setStage(build *models.Build, stage string) {
	build.Stage = stage
	if err := p.registry.Put(build); err != nil {
		logging.Warn().Err(err).Str("stage", stage).Msg("Failed to record stage transition")
	}
	logging.Info().Str("build_id", build.ID).Str("stage", stage).Msg("Stage started")
}
