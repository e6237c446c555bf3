// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/hypergraph"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/models"
)

// ErrBuildInProgress is returned by TriggerRebuild while a build runs.
var ErrBuildInProgress = errors.New("a build is already in progress")

// BuildRunner matches the pipeline operations the scheduler drives.
// Satisfied by *hypergraph.Pipeline.
type BuildRunner interface {
	Execute(ctx context.Context, build *models.Build, resume bool) error
}

// BuildRegistrar matches the registry operations the scheduler needs.
// Satisfied by *hypergraph.Registry.
type BuildRegistrar interface {
	NewBuild(partitions int) (*models.Build, error)
	Running() (*models.Build, error)
}

// Scheduler triggers pipeline builds, both on a fixed interval as a
// supervised service and on demand through TriggerRebuild. One build at
// a time; overlapping triggers are refused, scheduled ticks are skipped.
type Scheduler struct {
	pipeline BuildRunner
	registry BuildRegistrar
	cfg      *config.PipelineConfig
	busy     atomic.Bool
}

// NewScheduler creates a scheduler over the pipeline and registry.
func NewScheduler(pipeline BuildRunner, registry BuildRegistrar, cfg *config.PipelineConfig) *Scheduler {
	return &Scheduler{pipeline: pipeline, registry: registry, cfg: cfg}
}

// Serve implements suture.Service: interval rebuilds until cancellation.
func (s *Scheduler) Serve(ctx context.Context) error {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	logging.Info().Dur("interval", interval).Msg("Pipeline scheduler started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		logging.Info().Msg("Skipping scheduled build, one is already running")
		return
	}
	defer s.busy.Store(false)

	if running, err := s.registry.Running(); err == nil && running != nil {
		logging.Info().Str("build_id", running.ID).Msg("Skipping scheduled build, registry reports one running")
		return
	}

	build, err := s.registry.NewBuild(s.cfg.Partitions)
	if err != nil {
		logging.Error().Err(err).Msg("Scheduled build registration failed")
		return
	}
	if err := s.pipeline.Execute(ctx, build, false); err != nil {
		logging.Error().Err(err).Str("build_id", build.ID).Msg("Scheduled build failed")
	}
}

// TriggerRebuild registers a build and runs it in the background,
// returning the build record immediately. The caller polls the registry
// for progress.
func (s *Scheduler) TriggerRebuild(_ context.Context) (*models.Build, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrBuildInProgress
	}

	build, err := s.registry.NewBuild(s.cfg.Partitions)
	if err != nil {
		s.busy.Store(false)
		return nil, fmt.Errorf("register build: %w", err)
	}

	// Detached from the request context: the build outlives the HTTP
	// request that triggered it.
	go func() {
		defer s.busy.Store(false)
		if err := s.pipeline.Execute(context.Background(), build, false); err != nil {
			logging.Error().Err(err).Str("build_id", build.ID).Msg("Triggered build failed")
		}
	}()

	return build, nil
}

var _ BuildRunner = (*hypergraph.Pipeline)(nil)
var _ BuildRegistrar = (*hypergraph.Registry)(nil)
