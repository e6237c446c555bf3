// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package models

// SeedCandidate is one similarity-search hit: a film directly returned by
// the vector index for a query embedding, before graph expansion. Ephemeral,
// produced per query.
type SeedCandidate struct {
	FilmID     int64   `json:"film_id"`
	Similarity float64 `json:"similarity"`
}

// ScoredCandidate is one ranked result: fused score plus the normalized
// per-signal values that produced it, for provenance. Ephemeral, never
// persisted.
type ScoredCandidate struct {
	FilmID  int64              `json:"film_id"`
	Title   string             `json:"title,omitempty"`
	Genres  string             `json:"genres,omitempty"`
	Fused   float64            `json:"fused_score"`
	Signals map[string]float64 `json:"signals"`
}
