// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package recommend

import (
	"errors"
	"fmt"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/models"
)

// Request modes.
const (
	ModeQuery   = "query"   // free text -> embedding service -> seeds
	ModeSimilar = "similar" // seed from a film's stored vector
	ModeUser    = "user"    // seed from the user's profile vector
)

// ErrValidation marks a request the engine refuses to run.
var ErrValidation = errors.New("invalid request")

// Weights are the fusion weights per signal channel. Negative values are
// clamped to zero before use.
type Weights struct {
	Similarity float64 `json:"similarity"`
	CoWatch    float64 `json:"cowatch"`
	Genre      float64 `json:"genre"`
}

// Clamped returns a copy with negative weights zeroed.
func (w Weights) Clamped() Weights {
	if w.Similarity < 0 {
		w.Similarity = 0
	}
	if w.CoWatch < 0 {
		w.CoWatch = 0
	}
	if w.Genre < 0 {
		w.Genre = 0
	}
	return w
}

// Request describes one ranking request. Zero-valued knobs fall back to
// the engine's configured defaults.
type Request struct {
	Mode string `json:"mode"`

	Query  string `json:"query,omitempty"`   // query mode, or similar-mode free text
	FilmID int64  `json:"film_id,omitempty"` // similar mode
	UserID int64  `json:"user_id,omitempty"` // user mode

	ExcludeIDs []int64 `json:"exclude_ids,omitempty"`

	TopK          int      `json:"top_k,omitempty"`
	SeedTopK      int      `json:"seed_top_k,omitempty"`
	Hops          *int     `json:"hops,omitempty"` // pointer: 0 is a meaningful value
	FrontierLimit int      `json:"frontier_limit,omitempty"`
	Weights       *Weights `json:"weights,omitempty"`
}

// Response is one ranked result set plus enough context to explain it.
type Response struct {
	Results   []models.ScoredCandidate `json:"results"`
	SeedCount int                      `json:"seed_count"`
	PoolSize  int                      `json:"pool_size"`
	Hops      int                      `json:"hops"`
	Degraded  []string                 `json:"degraded,omitempty"` // which stages fell back
	Cached    bool                     `json:"cached"`
}

// Degradation markers recorded in Response.Degraded.
const (
	DegradedEmbedding   = "embedding"    // embedding service disabled
	DegradedVectorStore = "vectorstore"  // similarity index disabled
	DegradedNoHistory   = "no_history"   // user mode fell back to the id-text embedding
	DegradedExpansion   = "expansion"    // traversal abandoned early on cancellation
)

// normalize applies configured defaults and bounds, returning the
// resolved per-request parameters.
func (r *Request) normalize(cfg *config.QueryConfig) (topK, seedTopK, hops, frontierLimit int, w Weights, err error) {
	switch r.Mode {
	case ModeQuery:
		if r.Query == "" {
			return 0, 0, 0, 0, w, fmt.Errorf("%w: query text is required", ErrValidation)
		}
	case ModeSimilar:
		if r.FilmID <= 0 && r.Query == "" {
			return 0, 0, 0, 0, w, fmt.Errorf("%w: film_id or query text is required", ErrValidation)
		}
	case ModeUser:
		if r.UserID <= 0 {
			return 0, 0, 0, 0, w, fmt.Errorf("%w: user_id is required", ErrValidation)
		}
	default:
		return 0, 0, 0, 0, w, fmt.Errorf("%w: unknown mode %q", ErrValidation, r.Mode)
	}

	topK = r.TopK
	if topK <= 0 {
		topK = cfg.DefaultTopK
	}
	if topK > cfg.MaxTopK {
		topK = cfg.MaxTopK
	}

	seedTopK = r.SeedTopK
	if seedTopK <= 0 {
		seedTopK = cfg.SeedTopK
	}

	hops = cfg.Hops
	if r.Hops != nil {
		hops = *r.Hops
	}
	if hops < 0 {
		return 0, 0, 0, 0, w, fmt.Errorf("%w: hops must be >= 0", ErrValidation)
	}

	frontierLimit = r.FrontierLimit
	if frontierLimit <= 0 {
		frontierLimit = cfg.FrontierLimit
	}

	w = Weights{Similarity: cfg.EmbedWeight, CoWatch: cfg.CoWatchWeight, Genre: cfg.GenreWeight}
	if r.Weights != nil {
		w = *r.Weights
	}
	return topK, seedTopK, hops, frontierLimit, w.Clamped(), nil
}
