// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package models

import (
	"fmt"
	"math"
	"time"
)

// Node kinds appearing in hyperedges. Films are recommendable entities;
// genres are attribute nodes that exist only as traversal conduits.
const (
	KindFilm  = "film"
	KindGenre = "genre"
)

// Signal channels produced by the ranking engine. Every ranked result
// carries a normalized value per channel for provenance.
const (
	SignalSimilarity = "similarity"
	SignalCoWatch    = "cowatch"
	SignalGenre      = "genre"
)

// Hyperedge is a directed, typed, weighted relation between two nodes.
// Within one (source_kind, target_kind) pair the edge is logically unique
// per (source_id, target_id); the aggregator merges weights rather than
// inserting duplicates. Edges are immutable once finalized and superseded
// only by a full pipeline re-run.
type Hyperedge struct {
	SourceKind string      `json:"source_kind"`
	SourceID   int64       `json:"source_id"`
	TargetKind string      `json:"target_kind"`
	TargetID   int64       `json:"target_id"`
	Weight     float64     `json:"weight"`
	Payload    EdgePayload `json:"payload,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// EdgePayload holds opaque per-edge metadata (pair counts, relation labels).
type EdgePayload map[string]any

// EdgeKey identifies an edge within its kind pair, the unit of merging.
type EdgeKey struct {
	SourceKind string
	SourceID   int64
	TargetKind string
	TargetID   int64
}

// Key returns the edge's merge key.
func (e Hyperedge) Key() EdgeKey {
	return EdgeKey{
		SourceKind: e.SourceKind,
		SourceID:   e.SourceID,
		TargetKind: e.TargetKind,
		TargetID:   e.TargetID,
	}
}

// KindPair returns the edge's kind pair in "source->target" form, the
// grouping unit for top-K pruning.
func (e Hyperedge) KindPair() string {
	return e.SourceKind + "->" + e.TargetKind
}

// Validate checks the structural invariants every stored edge must satisfy.
// A zero weight is treated as edge absence and is rejected here: callers
// prune before persisting.
func (e Hyperedge) Validate() error {
	if e.SourceKind != KindFilm && e.SourceKind != KindGenre {
		return fmt.Errorf("hyperedge: unknown source_kind %q", e.SourceKind)
	}
	if e.TargetKind != KindFilm && e.TargetKind != KindGenre {
		return fmt.Errorf("hyperedge: unknown target_kind %q", e.TargetKind)
	}
	if e.SourceID <= 0 || e.TargetID <= 0 {
		return fmt.Errorf("hyperedge: non-positive node id (%d -> %d)", e.SourceID, e.TargetID)
	}
	if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
		return fmt.Errorf("hyperedge: weight is not finite")
	}
	if e.Weight <= 0 {
		return fmt.Errorf("hyperedge: weight %v must be positive", e.Weight)
	}
	return nil
}

// SignalForKindPair maps an edge's kind pair onto the signal channel it
// feeds during expansion. Unknown pairs map to "" and are ignored by the
// expander.
func SignalForKindPair(sourceKind, targetKind string) string {
	switch {
	case sourceKind == KindFilm && targetKind == KindFilm:
		return SignalCoWatch
	case sourceKind == KindFilm && targetKind == KindGenre,
		sourceKind == KindGenre && targetKind == KindFilm:
		return SignalGenre
	default:
		return ""
	}
}
