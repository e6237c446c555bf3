// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package middleware provides the HTTP middleware shared by all route
// groups: request ID correlation and Prometheus instrumentation. Rate
// limiting and CORS come from httprate and go-chi/cors directly and are
// wired in the router.
package middleware
