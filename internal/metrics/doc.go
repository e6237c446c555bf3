// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package metrics defines the Prometheus collectors for the pipeline, the
// ranking engine, interaction ingest, and the HTTP surface. Collectors are
// registered with the default registry via promauto and exposed at /metrics.
package metrics
