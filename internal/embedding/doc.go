// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package embedding provides a client for the external text embedding
// service. The query engine uses it to turn free-text queries (and user
// profile fallbacks) into 384-dim vectors for seed retrieval.
//
// The service is optional: when disabled, free-text recommendation
// degrades to an empty seed set. A failing call on an enabled service is
// a request error and propagates. Calls go through a circuit breaker so
// a dead service stops costing a timeout per request.
package embedding
