// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package models

import (
	"strings"
	"time"
)

// EmbeddingDim is the fixed dimensionality of film embedding vectors.
// Vectors are unit-normalized by the embedding subsystem; Kinograph treats
// them as read-only values.
const EmbeddingDim = 384

// GenreIDBase is the first synthetic id assigned to genre attribute nodes.
// Genre ids are allocated upward from here in first-seen order of the genre
// token, keeping them out of the film id space.
const GenreIDBase int64 = 1_000_000

// Film is the canonical entity. The id is immutable; descriptive attributes
// may change between catalog imports.
type Film struct {
	ID        int64     `json:"film_id"`
	Title     string    `json:"title"`
	Genres    string    `json:"genres,omitempty"` // raw tag list, pipe- or comma-separated
	Overview  string    `json:"overview,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenreTokens returns the film's genre tags, split, trimmed, and with
// placeholder tokens removed.
func (f *Film) GenreTokens() []string {
	return ParseGenreTokens(f.Genres)
}

// ParseGenreTokens splits a raw genre tag list into clean tokens.
// Pipe-separated lists take precedence over comma-separated ones, matching
// the reference catalog format.
func ParseGenreTokens(raw string) []string {
	if raw == "" {
		return nil
	}

	sep := ","
	if strings.Contains(raw, "|") {
		sep = "|"
	}

	parts := strings.Split(raw, sep)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || strings.EqualFold(p, "(no genres listed)") {
			continue
		}
		tokens = append(tokens, p)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
