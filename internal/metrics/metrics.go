// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Offline pipeline metrics.
	PipelinePartitionsDone = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_partitions_done_total",
			Help: "Total number of extraction partitions completed",
		},
	)

	PipelineEdgesLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_edges_loaded_total",
			Help: "Total number of hyperedges written through the store adapter",
		},
	)

	PipelineEdgesFinalized = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_edges_finalized",
			Help: "Size of the most recently finalized hyperedge set",
		},
	)

	PipelineBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_build_duration_seconds",
			Help:    "Duration of full pipeline builds in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s .. ~68m
		},
	)

	PipelineCoverageGaps = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_coverage_gaps",
			Help: "Referential gaps (missing films + missing embeddings) found by the last validation",
		},
	)

	// Query engine metrics.
	EngineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_requests_total",
			Help: "Total ranking requests by mode and outcome",
		},
		[]string{"mode", "outcome"}, // outcome: "ok", "error", "degraded"
	)

	EngineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_stage_duration_seconds",
			Help:    "Per-stage latency of the ranking engine",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"}, // "seed", "expand", "fuse", "total"
	)

	EngineCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_candidate_pool_size",
			Help:    "Candidate pool size after graph expansion",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_cache_hits_total",
			Help: "Ranking response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_cache_misses_total",
			Help: "Ranking response cache misses",
		},
	)

	// Interaction ingest metrics.
	IngestEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_events_total",
			Help: "Interaction events consumed by outcome",
		},
		[]string{"outcome"}, // "ok", "invalid", "error"
	)

	IngestBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_batch_size",
			Help:    "Interaction rows per flushed ingest batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// HTTP metrics.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "In-flight HTTP requests",
		},
	)

	// External dependency metrics.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Calls to external services by target and outcome",
		},
		[]string{"target", "outcome"}, // target: "vectorstore", "embedding"
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	APIRequestsTotal.WithLabelValues(method, route, code).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordEngineStage records one engine stage latency.
func RecordEngineStage(stage string, duration time.Duration) {
	EngineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordUpstream records one external call outcome.
func RecordUpstream(target string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(target, outcome).Inc()
}
