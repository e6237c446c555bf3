// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package main is the edgebuild operator CLI for the offline pipeline.
//
// Usage:
//
//	edgebuild all [-resume]
//	edgebuild extract [-first N] [-last N] [-build ID] [-resume]
//	edgebuild aggregate [-build ID]
//	edgebuild load [-build ID]
//	edgebuild validate [-build ID]
//	edgebuild sync-vectors [-build ID]
//	edgebuild status
//	edgebuild import-films -path films.csv
//	edgebuild import-interactions -path ratings.csv
//
// Stages share a build record in the registry: extract creates one (or
// continues the build named by -build), later stages attach to the named
// or currently running build. Aggregation streams directly into the
// store adapter, so aggregate and load run as one step; the load command
// is an alias. Aggregation gates promotion on coverage, so the standalone
// validate stage re-checks an edge set that is already serving; it exits
// non-zero on any coverage gap and marks the build finalized when it
// passes. Partition ranges let several shard workers split extraction
// across machines sharing the parts directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/database"
	"github.com/tomtom215/kinograph/internal/hypergraph"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/models"
	"github.com/tomtom215/kinograph/internal/vectorstore"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}
	command, args := args[0], args[1:]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		return 1
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Startup failed")
		return 1
	}
	defer app.close()

	if err := app.dispatch(ctx, command, args); err != nil {
		logging.Error().Err(err).Str("command", command).Msg("Command failed")
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: edgebuild <command> [flags]

commands:
  all                  run extract, aggregate, load, validate, sync-vectors
  extract              run extraction for a partition range
  aggregate            merge partition artifacts and load the edge set
  load                 alias for aggregate (aggregation streams into the load)
  validate             coverage-validate the finalized edge set
  sync-vectors         mirror stored embeddings into the similarity index
  status               list pipeline builds
  import-films         bulk-load films from CSV
  import-interactions  bulk-load interactions from CSV`)
}

// app holds the resources shared by every command.
type app struct {
	cfg      *config.Config
	db       *database.DB
	registry *hypergraph.Registry
}

func newApp(cfg *config.Config) (*app, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	registry, err := hypergraph.OpenRegistry(cfg.Pipeline.RegistryPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open build registry: %w", err)
	}
	return &app{cfg: cfg, db: db, registry: registry}, nil
}

func (a *app) close() {
	if err := a.registry.Close(); err != nil {
		logging.Error().Err(err).Msg("Registry close failed")
	}
	if err := a.db.Close(); err != nil {
		logging.Error().Err(err).Msg("Database close failed")
	}
}

// pipeline builds the orchestrator, wiring the vector store only when it
// is enabled in config.
func (a *app) pipeline() (*hypergraph.Pipeline, error) {
	var sink hypergraph.VectorSink
	if a.cfg.VectorStore.Enabled {
		client, err := vectorstore.NewClient(&a.cfg.VectorStore)
		if err != nil {
			return nil, fmt.Errorf("vector store client: %w", err)
		}
		sink = client
	}
	return hypergraph.NewPipeline(a.db, a.registry, &a.cfg.Pipeline, sink, &a.cfg.VectorStore), nil
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "all":
		return a.runAll(ctx, args)
	case "extract":
		return a.runExtract(ctx, args)
	case "aggregate", "load":
		return a.runAggregate(ctx, args)
	case "validate":
		return a.runValidate(ctx, args)
	case "sync-vectors":
		return a.runSyncVectors(ctx, args)
	case "status":
		return a.runStatus(args)
	case "import-films":
		return a.runImport(ctx, "import-films", args, a.db.ImportFilmsCSV)
	case "import-interactions":
		return a.runImport(ctx, "import-interactions", args, a.db.ImportInteractionsCSV)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// attachBuild resolves the build a stage operates on: the named build,
// else the currently running one, else a fresh record.
func (a *app) attachBuild(buildID string) (*models.Build, error) {
	if buildID != "" {
		build, err := a.registry.Get(buildID)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", buildID, err)
		}
		return build, nil
	}
	if running, err := a.registry.Running(); err == nil && running != nil {
		return running, nil
	}
	return a.registry.NewBuild(a.cfg.Pipeline.Partitions)
}

// failBuild records a stage failure on the build before returning.
func (a *app) failBuild(build *models.Build, err error) error {
	now := time.Now().UTC()
	build.Status = models.BuildFailed
	build.Error = err.Error()
	build.FinishedAt = &now
	if putErr := a.registry.Put(build); putErr != nil {
		logging.Error().Err(putErr).Str("build_id", build.ID).Msg("Failed to persist build failure")
	}
	return err
}

func (a *app) runAll(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("all", flag.ExitOnError)
	resume := fs.Bool("resume", false, "skip partitions whose artifacts already exist")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := a.pipeline()
	if err != nil {
		return err
	}
	build, err := p.Run(ctx, *resume)
	if err != nil {
		return err
	}
	fmt.Printf("build %s finalized: %d edges (%d co-watch, %d genre)\n",
		build.ID, build.EdgesFinalized, build.CoWatchEdges, build.GenreEdges)
	return nil
}

func (a *app) runExtract(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	first := fs.Int("first", 0, "first partition index")
	last := fs.Int("last", a.cfg.Pipeline.Partitions-1, "last partition index")
	buildID := fs.String("build", "", "existing build id to continue")
	resume := fs.Bool("resume", false, "skip partitions whose artifacts already exist")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *first < 0 || *last >= a.cfg.Pipeline.Partitions || *first > *last {
		return fmt.Errorf("partition range [%d, %d] outside [0, %d]",
			*first, *last, a.cfg.Pipeline.Partitions-1)
	}

	build, err := a.attachBuild(*buildID)
	if err != nil {
		return err
	}
	p, err := a.pipeline()
	if err != nil {
		return err
	}
	if err := p.Extract(ctx, build, *first, *last, *resume); err != nil {
		return a.failBuild(build, err)
	}
	if err := a.registry.Put(build); err != nil {
		return fmt.Errorf("persist build %s: %w", build.ID, err)
	}
	fmt.Printf("build %s: partitions %d-%d extracted\n", build.ID, *first, *last)
	return nil
}

func (a *app) runAggregate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)
	buildID := fs.String("build", "", "build id to attach to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	build, err := a.attachBuild(*buildID)
	if err != nil {
		return err
	}
	p, err := a.pipeline()
	if err != nil {
		return err
	}
	result, err := p.AggregateAndLoad(ctx, build)
	if err != nil {
		return a.failBuild(build, err)
	}
	if err := a.registry.Put(build); err != nil {
		return fmt.Errorf("persist build %s: %w", build.ID, err)
	}
	fmt.Printf("build %s: %d edges loaded and swapped in\n", build.ID, len(result.Edges))
	return nil
}

// runValidate checks the already-promoted edge set. Inside a full build
// the coverage gate runs before the staging swap; this standalone stage
// runs after it, so a gap it finds is already being served and the fix is
// a rebuild, not a rollback.
func (a *app) runValidate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	buildID := fs.String("build", "", "build id to finalize on success")
	if err := fs.Parse(args); err != nil {
		return err
	}

	validator := hypergraph.NewCoverageValidator(a.db)
	report, err := validator.Validate(ctx)
	if report != nil {
		fmt.Printf("edges: %d\nmissing films: %d %v\nmissing embeddings: %d %v\n",
			report.EdgeCount,
			report.MissingFilmCount, report.MissingFilmSamples,
			report.MissingEmbeddingCount, report.MissingEmbedSamples)
	}
	if err != nil {
		return err
	}

	// A passing validation closes out the attached build.
	build, attachErr := a.attachBuild(*buildID)
	if attachErr == nil && build.Status == models.BuildRunning {
		now := time.Now().UTC()
		build.Status = models.BuildFinalized
		build.FinishedAt = &now
		if err := a.registry.Put(build); err != nil {
			return fmt.Errorf("persist build %s: %w", build.ID, err)
		}
		fmt.Printf("build %s finalized\n", build.ID)
	}
	return nil
}

func (a *app) runSyncVectors(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sync-vectors", flag.ExitOnError)
	buildID := fs.String("build", "", "build id to attach to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !a.cfg.VectorStore.Enabled {
		return errors.New("vector store is disabled in config")
	}

	build, err := a.attachBuild(*buildID)
	if err != nil {
		return err
	}
	p, err := a.pipeline()
	if err != nil {
		return err
	}
	if err := p.SyncVectors(ctx, build); err != nil {
		return a.failBuild(build, err)
	}
	return a.registry.Put(build)
}

func (a *app) runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	builds, err := a.registry.List()
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		fmt.Println("no builds")
		return nil
	}
	for _, b := range builds {
		finished := "-"
		if b.FinishedAt != nil {
			finished = b.FinishedAt.Format(time.RFC3339)
		}
		fmt.Printf("%s  %-9s  stage=%-12s  edges=%-8d  started=%s  finished=%s\n",
			b.ID, b.Status, b.Stage, b.EdgesFinalized,
			b.StartedAt.Format(time.RFC3339), finished)
		if b.Error != "" {
			fmt.Printf("  error: %s\n", b.Error)
		}
	}
	return nil
}

func (a *app) runImport(ctx context.Context, name string, args []string, importer func(context.Context, string) (int64, error)) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	path := fs.String("path", "", "CSV file to import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-path is required")
	}

	n, err := importer(ctx, *path)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d rows from %s\n", n, *path)
	return nil
}
