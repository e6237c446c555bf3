// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package main is the entry point for the Kinograph server.
//
// Kinograph serves graph-fused film recommendations: vector similarity
// seeds from an external embedding index are expanded over a co-watch and
// shared-genre hyperedge graph, and the signals are fused into one
// ranking. The hyperedge set is produced offline by the pipeline (see
// cmd/edgebuild) and swapped in atomically.
//
// # Startup order
//
//  1. Configuration (koanf v2: defaults, optional YAML file, environment)
//  2. Logging (zerolog, LOG_LEVEL / LOG_FORMAT / LOG_CALLER)
//  3. DuckDB store of record
//  4. Badger build registry
//  5. Optional upstream clients: Qdrant similarity index, embedding service
//  6. Ranking engine with response cache
//  7. Optional NATS ingest (embedded server, JetStream stream, consumer)
//  8. HTTP router and supervision tree
//
// Optional upstreams may be disabled; the engine then serves degraded
// relational-only rankings rather than failing.
//
// # Signal handling
//
// SIGINT/SIGTERM cancels the supervision tree: the HTTP server drains
// in-flight requests, the ingest consumer flushes its final batch, and
// the database is closed last.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/kinograph/internal/api"
	"github.com/tomtom215/kinograph/internal/auth"
	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/database"
	"github.com/tomtom215/kinograph/internal/embedding"
	"github.com/tomtom215/kinograph/internal/eventprocessor"
	"github.com/tomtom215/kinograph/internal/hypergraph"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/recommend"
	"github.com/tomtom215/kinograph/internal/supervisor"
	"github.com/tomtom215/kinograph/internal/vectorstore"

	_ "github.com/tomtom215/kinograph/docs" // generated swagger docs
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Kinograph starting")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Database close failed")
		}
	}()

	registry, err := hypergraph.OpenRegistry(cfg.Pipeline.RegistryPath)
	if err != nil {
		return fmt.Errorf("open build registry: %w", err)
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logging.Error().Err(err).Msg("Registry close failed")
		}
	}()

	// Optional upstreams. A disabled upstream stays a nil interface so the
	// engine degrades instead of calling a dead client.
	var (
		vsClient *vectorstore.Client
		searcher recommend.Searcher
		sink     hypergraph.VectorSink
		embedder recommend.Embedder
	)
	if cfg.VectorStore.Enabled {
		vsClient, err = vectorstore.NewClient(&cfg.VectorStore)
		if err != nil {
			return fmt.Errorf("vector store client: %w", err)
		}
		searcher = vsClient
		sink = vsClient
	}
	if cfg.Embedding.Enabled {
		embClient, err := embedding.NewClient(&cfg.Embedding)
		if err != nil {
			return fmt.Errorf("embedding client: %w", err)
		}
		embedder = embClient
	}

	engine := recommend.NewEngine(db, searcher, embedder, &cfg.Query, &cfg.Pipeline)
	defer engine.Close()

	pipeline := hypergraph.NewPipeline(db, registry, &cfg.Pipeline, sink, &cfg.VectorStore)
	pipeline.OnFinalize(engine.ClearCache)
	scheduler := supervisor.NewScheduler(pipeline, registry, &cfg.Pipeline)

	authn, err := auth.NewAuthenticator(&cfg.Security)
	if err != nil {
		return fmt.Errorf("configure auth: %w", err)
	}

	router := api.NewRouter(cfg, engine, db, registry, authn).
		WithRebuilder(scheduler)
	if vsClient != nil {
		router.WithVectorProber(vsClient)
	}

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())

	// Interaction ingest over NATS JetStream, optionally on an embedded
	// server for single-binary deployments.
	var (
		natsServer *eventprocessor.EmbeddedServer
		publisher  *eventprocessor.Publisher
	)
	if cfg.NATS.Enabled {
		if cfg.NATS.EmbeddedServer {
			natsServer, err = eventprocessor.NewEmbeddedServer(&cfg.NATS)
			if err != nil {
				return fmt.Errorf("embedded nats server: %w", err)
			}
			cfg.NATS.URL = natsServer.ClientURL()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := natsServer.Shutdown(shutdownCtx); err != nil {
					logging.Error().Err(err).Msg("Embedded NATS shutdown failed")
				}
			}()
		}

		streamCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = eventprocessor.EnsureStream(streamCtx, &cfg.NATS)
		cancel()
		if err != nil {
			return fmt.Errorf("ensure ingest stream: %w", err)
		}

		publisher, err = eventprocessor.NewPublisher(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("ingest publisher: %w", err)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logging.Error().Err(err).Msg("Publisher close failed")
			}
		}()
		router.WithPublisher(publisher)

		subscriber, err := eventprocessor.NewSubscriber(&cfg.NATS)
		if err != nil {
			return fmt.Errorf("ingest subscriber: %w", err)
		}
		consumer := eventprocessor.NewConsumer(subscriber, db, cfg.NATS.BatchSize, cfg.NATS.FlushInterval)
		tree.Add(supervisor.NewIngestService(consumer))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Handler(),
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	tree.Add(supervisor.NewHTTPService(srv, 10*time.Second))

	if cfg.Pipeline.Enabled {
		tree.Add(scheduler)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", srv.Addr).Msg("Serving")
	if err := tree.Serve(ctx); err != nil {
		return fmt.Errorf("supervision tree: %w", err)
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}
