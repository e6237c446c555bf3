// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package database provides the DuckDB storage layer: films, interactions,
// embeddings, and the finalized hyperedge table, plus parquet IO for the
// pipeline's partition artifacts and CSV bulk import.
//
// The hyperedge table is written through a staging table and swapped into
// place in a single transaction, so readers never observe a partially
// finalized edge set. All other tables use plain upsert semantics.
package database
