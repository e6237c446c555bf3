// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package api

import (
	"time"

	"github.com/tomtom215/kinograph/internal/recommend"
)

// rankingKnobs are the per-request engine overrides shared by all three
// ranking endpoints. Zero values fall back to configured defaults.
type rankingKnobs struct {
	TopK          int                `json:"top_k" validate:"omitempty,min=1"`
	SeedTopK      int                `json:"seed_top_k" validate:"omitempty,min=1,max=1000"`
	Hops          *int               `json:"hops" validate:"omitempty,min=0,max=6"`
	FrontierLimit int                `json:"frontier_limit" validate:"omitempty,min=1,max=100000"`
	Weights       *recommend.Weights `json:"weights"`
}

type graphRecommendRequest struct {
	Query string `json:"query" validate:"required,max=2048"`
	rankingKnobs
}

type searchSimilarRequest struct {
	// FilmID seeds from the film's stored vector; Query is the free-text
	// fallback. One of the two is required (checked in the handler, the
	// validator cannot express either-or across fields cleanly).
	FilmID     int64   `json:"film_id" validate:"omitempty,min=1"`
	Query      string  `json:"query" validate:"omitempty,max=2048"`
	ExcludeIDs []int64 `json:"exclude_ids" validate:"omitempty,max=1000,dive,min=1"`
	rankingKnobs
}

type searchRecommendRequest struct {
	UserID     int64   `json:"user_id" validate:"required,min=1"`
	ExcludeIDs []int64 `json:"exclude_ids" validate:"omitempty,max=1000,dive,min=1"`
	rankingKnobs
}

type interactionRequest struct {
	UserID   int64     `json:"user_id" validate:"required,min=1"`
	FilmID   int64     `json:"film_id" validate:"required,min=1"`
	Strength float64   `json:"strength" validate:"required,gt=0"`
	EventTS  time.Time `json:"event_ts"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=256"`
	Password string `json:"password" validate:"required,max=256"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type filmResponse struct {
	FilmID       int64     `json:"film_id"`
	Title        string    `json:"title"`
	Genres       []string  `json:"genres"`
	Overview     string    `json:"overview,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
	HasEmbedding bool      `json:"has_embedding"`
}

type rebuildResponse struct {
	BuildID string `json:"build_id"`
	Status  string `json:"status"`
}

// healthCheck is one subsystem's state inside the health report.
type healthCheck struct {
	Status string `json:"status"` // ok, degraded, or failing
	Detail string `json:"detail,omitempty"`
}

type healthResponse struct {
	Status string                 `json:"status"` // ok, degraded, or unavailable
	Checks map[string]healthCheck `json:"checks"`
}

func (k rankingKnobs) apply(req *recommend.Request) {
	req.TopK = k.TopK
	req.SeedTopK = k.SeedTopK
	req.Hops = k.Hops
	req.FrontierLimit = k.FrontierLimit
	req.Weights = k.Weights
}
