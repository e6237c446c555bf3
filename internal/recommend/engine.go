// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/kinograph/internal/cache"
	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/database"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/metrics"
	"github.com/tomtom215/kinograph/internal/models"
)

// ErrNotFound is returned when the request's subject (film or its
// embedding) does not exist.
var ErrNotFound = errors.New("subject not found")

// Embedder turns text into a query vector. *embedding.Client satisfies
// it; nil means the embedding service is disabled.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the similarity index. *vectorstore.Client satisfies it;
// nil means the index is disabled and seed retrieval degrades to empty.
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]models.SeedCandidate, error)
}

// DataProvider is the read-only relational surface the engine queries.
// *database.DB satisfies it.
type DataProvider interface {
	EdgeSource
	ProfileSource
	GetFilms(ctx context.Context, ids []int64) (map[int64]models.Film, error)
	GetEmbedding(ctx context.Context, filmID int64) ([]float32, error)
}

// Engine runs ranking requests over shared read-only dependencies. It is
// stateless per request; the only mutable state is the response cache.
type Engine struct {
	data     DataProvider
	searcher Searcher
	embedder Embedder
	expander *Expander
	cache    *cache.Cache
	cfg      *config.QueryConfig

	profileMinStrength float64
	profileMaxFilms    int
}

// NewEngine wires the engine. searcher and embedder may be nil when the
// corresponding upstream is disabled; the affected modes degrade instead
// of failing. The pipeline config supplies the thresholds the user
// profile shares with the extractor.
func NewEngine(data DataProvider, searcher Searcher, embedder Embedder, cfg *config.QueryConfig, pipeline *config.PipelineConfig) *Engine {
	return &Engine{
		data:               data,
		searcher:           searcher,
		embedder:           embedder,
		expander:           NewExpander(data),
		cache:              cache.New(cfg.CacheTTL),
		cfg:                cfg,
		profileMinStrength: pipeline.MinStrength,
		profileMaxFilms:    pipeline.MaxFilmsPerUser,
	}
}

// ClearCache drops all cached responses. Called when a new hyperedge set
// is finalized.
func (e *Engine) ClearCache() {
	e.cache.Clear()
	logging.Info().Str("component", "recommend").Msg("Response cache cleared")
}

// CacheStats exposes cache counters for the health endpoint.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.GetStats()
}

// Close releases engine resources.
func (e *Engine) Close() {
	e.cache.Close()
}

// cacheParams is the full request shape after defaulting; two requests
// with equal cacheParams are interchangeable.
type cacheParams struct {
	Mode          string  `json:"mode"`
	Query         string  `json:"query"`
	FilmID        int64   `json:"film_id"`
	UserID        int64   `json:"user_id"`
	ExcludeIDs    []int64 `json:"exclude_ids"`
	TopK          int     `json:"top_k"`
	SeedTopK      int     `json:"seed_top_k"`
	Hops          int     `json:"hops"`
	FrontierLimit int     `json:"frontier_limit"`
	Weights       Weights `json:"weights"`
}

// Recommend runs one ranking request end to end: seed, expand, fuse,
// enrich. Responses are cached for the configured TTL keyed by the full
// request shape; identical concurrent requests share one computation.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	topK, seedTopK, hops, frontierLimit, weights, err := req.normalize(e.cfg)
	if err != nil {
		metrics.EngineRequests.WithLabelValues(req.Mode, "invalid").Inc()
		return nil, err
	}

	params := cacheParams{
		Mode:          req.Mode,
		Query:         req.Query,
		FilmID:        req.FilmID,
		UserID:        req.UserID,
		ExcludeIDs:    req.ExcludeIDs,
		TopK:          topK,
		SeedTopK:      seedTopK,
		Hops:          hops,
		FrontierLimit: frontierLimit,
		Weights:       weights,
	}
	key := cache.GenerateKey("recommend", params)

	computed := false
	value, err := e.cache.Fetch(key, func() (interface{}, error) {
		computed = true
		return e.compute(ctx, params)
	})
	if err != nil {
		metrics.EngineRequests.WithLabelValues(req.Mode, "error").Inc()
		return nil, err
	}

	resp := value.(*Response)
	if !computed {
		metrics.CacheHits.Inc()
		shared := *resp
		shared.Cached = true
		resp = &shared
	} else {
		metrics.CacheMisses.Inc()
	}
	metrics.EngineRequests.WithLabelValues(req.Mode, "ok").Inc()
	return resp, nil
}

func (e *Engine) compute(ctx context.Context, p cacheParams) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp := &Response{Hops: p.Hops}

	seedStart := time.Now()
	seeds, err := e.retrieveSeeds(ctx, p, resp)
	metrics.RecordEngineStage("seed", time.Since(seedStart))
	if err != nil {
		return nil, err
	}
	resp.SeedCount = len(seeds)

	expandStart := time.Now()
	pool, abandoned, err := e.expander.Expand(ctx, seeds, p.Hops, p.FrontierLimit)
	metrics.RecordEngineStage("expand", time.Since(expandStart))
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	if abandoned {
		resp.Degraded = append(resp.Degraded, DegradedExpansion)
	}
	resp.PoolSize = len(pool)
	metrics.EngineCandidates.Observe(float64(len(pool)))

	exclude := make(map[int64]struct{}, len(p.ExcludeIDs)+1)
	for _, id := range p.ExcludeIDs {
		exclude[id] = struct{}{}
	}
	if p.Mode == ModeSimilar && p.FilmID > 0 {
		// The query film is trivially most similar to itself.
		exclude[p.FilmID] = struct{}{}
	}

	fuseStart := time.Now()
	resp.Results = fuse(pool, p.Weights, p.TopK, exclude)
	metrics.RecordEngineStage("fuse", time.Since(fuseStart))

	if err := e.enrich(ctx, resp.Results); err != nil {
		return nil, fmt.Errorf("enrich results: %w", err)
	}

	metrics.RecordEngineStage("total", time.Since(start))
	logging.Debug().
		Str("component", "recommend").
		Str("mode", p.Mode).
		Int("seeds", resp.SeedCount).
		Int("pool", resp.PoolSize).
		Int("results", len(resp.Results)).
		Dur("took", time.Since(start)).
		Msg("Ranking request served")
	return resp, nil
}

// retrieveSeeds builds the query vector for the request mode and asks
// the similarity index for the nearest films. A nil vector or a disabled
// index yields an empty seed set with a degradation marker.
func (e *Engine) retrieveSeeds(ctx context.Context, p cacheParams, resp *Response) ([]models.SeedCandidate, error) {
	vector, err := e.queryVector(ctx, p, resp)
	if err != nil {
		return nil, err
	}
	if vector == nil {
		return nil, nil
	}
	if e.searcher == nil {
		resp.Degraded = append(resp.Degraded, DegradedVectorStore)
		return nil, nil
	}

	seeds, err := e.searcher.Search(ctx, vector, p.SeedTopK)
	if err != nil {
		return nil, fmt.Errorf("seed search: %w", err)
	}
	return seeds, nil
}

func (e *Engine) queryVector(ctx context.Context, p cacheParams, resp *Response) ([]float32, error) {
	switch p.Mode {
	case ModeQuery:
		return e.embedText(ctx, p.Query, resp)

	case ModeSimilar:
		if p.FilmID <= 0 {
			return e.embedText(ctx, p.Query, resp)
		}
		vec, err := e.data.GetEmbedding(ctx, p.FilmID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, fmt.Errorf("%w: film %d has no embedding", ErrNotFound, p.FilmID)
			}
			return nil, fmt.Errorf("embedding for film %d: %w", p.FilmID, err)
		}
		return vec, nil

	case ModeUser:
		profile, err := userProfileVector(ctx, e.data, p.UserID, e.profileMinStrength, e.profileMaxFilms)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			return profile, nil
		}
		resp.Degraded = append(resp.Degraded, DegradedNoHistory)
		return e.embedText(ctx, fallbackProfileText(p.UserID), resp)

	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrValidation, p.Mode)
	}
}

// embedText calls the embedding service. Only a disabled service (nil
// embedder) degrades to an empty seed set; a failing call is a request
// failure and propagates.
func (e *Engine) embedText(ctx context.Context, text string, resp *Response) ([]float32, error) {
	if e.embedder == nil {
		resp.Degraded = append(resp.Degraded, DegradedEmbedding)
		return nil, nil
	}
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vec, nil
}

// enrich attaches film metadata to the ranked results.
func (e *Engine) enrich(ctx context.Context, results []models.ScoredCandidate) error {
	if len(results) == 0 {
		return nil
	}
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.FilmID
	}
	films, err := e.data.GetFilms(ctx, ids)
	if err != nil {
		return err
	}
	for i := range results {
		if f, ok := films[results[i].FilmID]; ok {
			results[i].Title = f.Title
			results[i].Genres = f.Genres
		}
	}
	return nil
}
