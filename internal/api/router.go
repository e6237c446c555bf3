// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/kinograph/internal/auth"
	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/eventprocessor"
	"github.com/tomtom215/kinograph/internal/middleware"
	"github.com/tomtom215/kinograph/internal/models"
	"github.com/tomtom215/kinograph/internal/recommend"
)

// Recommender runs ranking requests. Satisfied by *recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// FilmStore is the slice of the database the API reads directly.
// Satisfied by *database.DB.
type FilmStore interface {
	GetFilm(ctx context.Context, id int64) (*models.Film, error)
	GetEmbedding(ctx context.Context, filmID int64) ([]float32, error)
	CountHyperedges(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// BuildRegistry exposes build records for the admin endpoints.
// Satisfied by *hypergraph.Registry.
type BuildRegistry interface {
	List() ([]models.Build, error)
	Get(id string) (*models.Build, error)
	Running() (*models.Build, error)
}

// Rebuilder starts a pipeline build without blocking the caller.
type Rebuilder interface {
	TriggerRebuild(ctx context.Context) (*models.Build, error)
}

// InteractionPublisher forwards interaction events to the ingest stream.
// Satisfied by *eventprocessor.Publisher.
type InteractionPublisher interface {
	PublishInteraction(ctx context.Context, event *eventprocessor.InteractionEvent) error
}

// HealthProber reports whether an upstream dependency is reachable.
// Satisfied by *vectorstore.Client.
type HealthProber interface {
	Healthy(ctx context.Context) error
}

// Router wires handlers to their collaborators. Optional collaborators
// (publisher, rebuilder, vectors) may be nil; the corresponding endpoints
// then report unavailable instead of failing at startup.
type Router struct {
	cfg       *config.Config
	engine    Recommender
	store     FilmStore
	registry  BuildRegistry
	rebuilder Rebuilder
	publisher InteractionPublisher
	vectors   HealthProber
	authn     *auth.Authenticator
}

// NewRouter creates a Router over the given collaborators.
func NewRouter(cfg *config.Config, engine Recommender, store FilmStore, registry BuildRegistry, authn *auth.Authenticator) *Router {
	return &Router{
		cfg:      cfg,
		engine:   engine,
		store:    store,
		registry: registry,
		authn:    authn,
	}
}

// WithRebuilder attaches the asynchronous build trigger.
func (rt *Router) WithRebuilder(r Rebuilder) *Router {
	rt.rebuilder = r
	return rt
}

// WithPublisher attaches the interaction ingest publisher.
func (rt *Router) WithPublisher(p InteractionPublisher) *Router {
	rt.publisher = p
	return rt
}

// WithVectorProber attaches the similarity-index health probe.
func (rt *Router) WithVectorProber(p HealthProber) *Router {
	rt.vectors = p
	return rt
}

// Handler builds the chi route tree.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.Security.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         86400,
	}))

	// Health endpoints stay open and lightly limited so orchestrators can
	// poll them without credentials.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(rt.rateLimit(1000, time.Minute))
		r.Get("/", rt.Health)
		r.Get("/live", rt.HealthLive)
		r.Get("/ready", rt.HealthReady)
	})

	// Login gets the strictest limit to slow down credential guessing.
	r.With(rt.rateLimit(5, 5*time.Minute)).
		Post("/api/v1/auth/login", rt.Login)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.rateLimit(rt.cfg.Security.RateLimitReqs, rt.cfg.Security.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)
		r.Use(rt.authn.Middleware)

		r.Post("/graph/recommend", rt.GraphRecommend)
		r.Post("/search/similar", rt.SearchSimilar)
		r.Post("/search/recommend", rt.SearchRecommend)
		r.Get("/films/{id}", rt.GetFilm)
		r.Post("/interactions", rt.PostInteraction)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/builds", rt.ListBuilds)
			r.Get("/builds/{id}", rt.GetBuild)
			r.Post("/rebuild", rt.TriggerRebuild)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler())

	return r
}

// rateLimit returns an IP-keyed limiter, or a pass-through when rate
// limiting is disabled in config.
func (rt *Router) rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if rt.cfg.Security.RateLimitDisabled || requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded", "")
		}),
	)
}
