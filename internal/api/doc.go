// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package api exposes the HTTP surface of the recommendation engine.
//
// Routes are served by a chi router with per-group rate limiting and an
// auth middleware whose mode is configured at startup. Ranking endpoints
// delegate to the engine; admin endpoints read the build registry and can
// trigger an asynchronous rebuild; the interactions endpoint publishes to
// the ingest stream when NATS is enabled.
//
// Error responses share one shape: {"error": ..., "detail": ...,
// "request_id": ...}. Success payloads are endpoint-specific DTOs.
package api
