// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package supervisor runs the server's long-lived services under a
// suture supervision tree: the HTTP server, the interaction ingest
// consumer, and the pipeline scheduler. A crashing service is restarted
// with backoff; SIGINT/SIGTERM cancels the tree context and each service
// drains gracefully.
package supervisor
