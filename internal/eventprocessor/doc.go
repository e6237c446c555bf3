// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package eventprocessor handles interaction-event ingest over NATS
// JetStream via Watermill. Sibling services (or the API's ingest
// endpoint) publish interaction.recorded events; the batching consumer
// drains them into the DuckDB interactions table, which the offline
// pipeline reads on its next build.
//
// Delivery is at-least-once: messages are held un-acked until their
// batch commits, and the interactions table's append-only insert makes
// redelivery harmless for edge weights (duplicate rows only reinforce
// an already-observed co-occurrence). An embedded NATS server option
// supports single-binary deployments. The whole subsystem is disabled
// via nats.enabled=false.
package eventprocessor
