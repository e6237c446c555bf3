// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package recommend implements the online ranking engine: vector seed
// retrieval, bounded multi-hop expansion over the finalized hyperedge
// set, and weighted score fusion.
//
// A request flows through three stages. The seed retriever turns the
// request (free text, a film, or a user profile) into a query vector and
// asks the similarity index for the nearest films. The graph expander
// walks up to H hops of stored hyperedges from those seeds, summing edge
// weight per signal channel into a candidate pool; genre nodes conduct
// weight between films but are never candidates themselves. The score
// fuser min-max normalizes each channel over the pool and ranks by the
// weighted sum.
//
// The engine is stateless per request. Degraded inputs (no seeds, no
// edges, a flat signal) are valid states that produce smaller or
// lower-confidence results, not errors.
package recommend
