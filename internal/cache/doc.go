// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package cache provides the in-memory TTL response cache used by the
// recommendation engine. Identical concurrent requests are deduplicated
// through singleflight so a cache miss costs one upstream computation,
// not one per waiter. The whole cache is cleared when a new hyperedge
// set is finalized.
package cache
