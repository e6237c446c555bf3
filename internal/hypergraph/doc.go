// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package hypergraph implements the offline hyperedge construction pipeline:
// partitioned co-occurrence extraction over the interaction log, single-writer
// aggregation with per-source top-K pruning, attribute (shared-genre) edge
// derivation, batched loading into the relational store behind an atomic
// staging swap, and referential coverage validation.
//
// Extraction is shared-nothing: each partition scans only the users hashed
// into it and writes an independent parquet artifact, so memory is bounded by
// shard size and a failed shard retries without touching the others. The
// aggregator is order-independent over those artifacts and deterministic,
// so re-running the pipeline on unchanged inputs reproduces the same edge
// set byte for byte (timestamps aside).
//
// A Badger-backed build registry records stage progress per run and powers
// resume decisions and the status surfaces.
package hypergraph
