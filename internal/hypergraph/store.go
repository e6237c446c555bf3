// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package hypergraph

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/metrics"
	"github.com/tomtom215/kinograph/internal/models"
)

// EdgeSink is the relational-store surface the adapter writes through.
// Implemented by the database layer.
type EdgeSink interface {
	ResetHyperedgeStaging(ctx context.Context) error
	InsertHyperedgeBatch(ctx context.Context, edges []models.Hyperedge) error
	SwapHyperedges(ctx context.Context) error
}

// StoreAdapter bulk-persists a finalized edge set in fixed-size batches.
// Each batch is independently retryable; batch upserts are idempotent, so a
// retry after partial failure rewrites the same rows. Adapter success does
// NOT imply referential completeness - the coverage validator gates that.
type StoreAdapter struct {
	sink    EdgeSink
	cfg     *config.PipelineConfig
	limiter *rate.Limiter
}

// NewStoreAdapter creates an adapter over the given sink. A positive
// BatchesPerSecond paces batch writes so a bulk load does not starve
// concurrent query traffic.
func NewStoreAdapter(sink EdgeSink, cfg *config.PipelineConfig) *StoreAdapter {
	var limiter *rate.Limiter
	if cfg.BatchesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.BatchesPerSecond), 1)
	}
	return &StoreAdapter{sink: sink, cfg: cfg, limiter: limiter}
}

// Load writes edges into the staging table in batches. It does not swap;
// finalization is a separate, explicit step so the caller controls the
// all-or-nothing promotion.
func (s *StoreAdapter) Load(ctx context.Context, edges []models.Hyperedge) error {
	if err := s.sink.ResetHyperedgeStaging(ctx); err != nil {
		return fmt.Errorf("reset staging: %w", err)
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 5000
	}

	for start := 0; start < len(edges); start += batchSize {
		end := start + batchSize
		if end > len(edges) {
			end = len(edges)
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("batch pacing: %w", err)
			}
		}

		if err := s.writeBatch(ctx, edges[start:end], start/batchSize); err != nil {
			return err
		}
		metrics.PipelineEdgesLoaded.Add(float64(end - start))
	}

	logging.Info().Int("edges", len(edges)).Int("batch_size", batchSize).Msg("Edge set staged")
	return nil
}

// writeBatch upserts one batch with bounded retries.
func (s *StoreAdapter) writeBatch(ctx context.Context, batch []models.Hyperedge, n int) error {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.cfg.RetryDelay):
			}
			logging.Warn().Int("batch", n).Int("attempt", attempt).Err(lastErr).
				Msg("Retrying edge batch")
		}
		if lastErr = s.sink.InsertHyperedgeBatch(ctx, batch); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("edge batch %d failed after %d attempts: %w",
		n, s.cfg.RetryAttempts+1, lastErr)
}

// Finalize atomically promotes the staged edge set to the authoritative
// table. Consumers observe the previous set or the new one, never a mix.
func (s *StoreAdapter) Finalize(ctx context.Context) error {
	if err := s.sink.SwapHyperedges(ctx); err != nil {
		return fmt.Errorf("finalize edge set: %w", err)
	}
	return nil
}
