// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package vectorstore provides a client for a Qdrant-compatible HTTP
// similarity index. The pipeline pushes film embeddings into it during
// the sync-vectors stage; the recommendation engine queries it for seed
// candidates at request time.
//
// Point IDs are deterministic (UUIDv5 over the film ID), so repeated
// syncs overwrite in place instead of accumulating duplicates. All calls
// pass through a shared circuit breaker; searches additionally get a
// small bounded retry because they are idempotent.
package vectorstore
