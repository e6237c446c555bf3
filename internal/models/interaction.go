// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package models

import "time"

// InteractionRecord is one piece of affinity evidence: a user rated (or
// otherwise engaged with) a film at some strength. Records are append-only
// source data; the pipeline reads them, never mutates them.
//
// Strength uses the reference dataset's 0.5–5.0 rating scale. Other sources
// may map onto it as long as higher means stronger affinity.
type InteractionRecord struct {
	UserID    int64     `json:"user_id"`
	FilmID    int64     `json:"film_id"`
	Strength  float64   `json:"strength"`
	Timestamp time.Time `json:"event_ts"`
}

// Positive reports whether the record counts as a positive signal at the
// given strength threshold. The extractor and the user-profile builder share
// this definition.
func (r InteractionRecord) Positive(threshold float64) bool {
	return r.Strength >= threshold
}
