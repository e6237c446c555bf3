// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kinograph/internal/auth"
	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/database"
	"github.com/tomtom215/kinograph/internal/eventprocessor"
	"github.com/tomtom215/kinograph/internal/hypergraph"
	"github.com/tomtom215/kinograph/internal/models"
	"github.com/tomtom215/kinograph/internal/recommend"
)

type fakeEngine struct {
	lastReq recommend.Request
	resp    *recommend.Response
	err     error
}

func (f *fakeEngine) Recommend(_ context.Context, req recommend.Request) (*recommend.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeStore struct {
	films      map[int64]models.Film
	embeddings map[int64][]float32
	edgeCount  int64
	pingErr    error
}

func (f *fakeStore) GetFilm(_ context.Context, id int64) (*models.Film, error) {
	film, ok := f.films[id]
	if !ok {
		return nil, fmt.Errorf("film %d: %w", id, database.ErrNotFound)
	}
	return &film, nil
}

func (f *fakeStore) GetEmbedding(_ context.Context, filmID int64) ([]float32, error) {
	vec, ok := f.embeddings[filmID]
	if !ok {
		return nil, fmt.Errorf("embedding for film %d: %w", filmID, database.ErrNotFound)
	}
	return vec, nil
}

func (f *fakeStore) CountHyperedges(_ context.Context) (int64, error) {
	return f.edgeCount, nil
}

func (f *fakeStore) Ping(_ context.Context) error { return f.pingErr }

type fakeRegistry struct {
	builds  []models.Build
	running *models.Build
	listErr error
}

func (f *fakeRegistry) List() ([]models.Build, error) { return f.builds, f.listErr }

func (f *fakeRegistry) Get(id string) (*models.Build, error) {
	for i := range f.builds {
		if f.builds[i].ID == id {
			return &f.builds[i], nil
		}
	}
	return nil, hypergraph.ErrBuildNotFound
}

func (f *fakeRegistry) Running() (*models.Build, error) { return f.running, nil }

type fakeRebuilder struct {
	build *models.Build
	err   error
	calls int
}

func (f *fakeRebuilder) TriggerRebuild(context.Context) (*models.Build, error) {
	f.calls++
	return f.build, f.err
}

type fakePublisher struct {
	events []*eventprocessor.InteractionEvent
	err    error
}

func (f *fakePublisher) PublishInteraction(_ context.Context, ev *eventprocessor.InteractionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type fakeProber struct{ err error }

func (f *fakeProber) Healthy(context.Context) error { return f.err }

func testRouter(t *testing.T) (*Router, *fakeEngine, *fakeStore, *fakeRegistry) {
	t.Helper()
	cfg := config.DefaultConfig()
	authn, err := auth.NewAuthenticator(&cfg.Security)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	engine := &fakeEngine{resp: &recommend.Response{
		Results: []models.ScoredCandidate{{FilmID: 1, Title: "Heat", Fused: 1.0}},
	}}
	store := &fakeStore{
		films: map[int64]models.Film{
			1: {ID: 1, Title: "Heat", Genres: "Crime|Thriller"},
		},
		embeddings: map[int64][]float32{1: {0.1, 0.2}},
		edgeCount:  42,
	}
	registry := &fakeRegistry{}
	return NewRouter(cfg, engine, store, registry, authn), engine, store, registry
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGraphRecommend(t *testing.T) {
	rt, engine, _, _ := testRouter(t)
	h := rt.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/v1/graph/recommend",
		`{"query":"slow burn heist","top_k":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if engine.lastReq.Mode != recommend.ModeQuery {
		t.Errorf("mode = %q, want query", engine.lastReq.Mode)
	}
	if engine.lastReq.Query != "slow burn heist" || engine.lastReq.TopK != 5 {
		t.Errorf("request not mapped: %+v", engine.lastReq)
	}

	var resp recommend.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "Heat" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestGraphRecommendValidation(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	h := rt.Handler()

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"top_k":5}`},
		{"negative hops", `{"query":"x","hops":-1}`},
		{"zero top_k rejected by min rule", `{"query":"x","top_k":-2}`},
		{"malformed json", `{"query":`},
		{"unknown field", `{"query":"x","topk":5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/v1/graph/recommend", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
			}
			var e errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if e.Error == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestGraphRecommendEngineValidationError(t *testing.T) {
	rt, engine, _, _ := testRouter(t)
	engine.err = fmt.Errorf("%w: bad knob", recommend.ErrValidation)
	rec := doRequest(t, rt.Handler(), http.MethodPost, "/api/v1/graph/recommend", `{"query":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchSimilar(t *testing.T) {
	rt, engine, _, _ := testRouter(t)
	h := rt.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/v1/search/similar",
		`{"film_id":1,"exclude_ids":[7],"hops":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if engine.lastReq.Mode != recommend.ModeSimilar || engine.lastReq.FilmID != 1 {
		t.Errorf("request not mapped: %+v", engine.lastReq)
	}
	if engine.lastReq.Hops == nil || *engine.lastReq.Hops != 0 {
		t.Error("hops=0 override lost in mapping")
	}
	if len(engine.lastReq.ExcludeIDs) != 1 || engine.lastReq.ExcludeIDs[0] != 7 {
		t.Errorf("exclude_ids not mapped: %v", engine.lastReq.ExcludeIDs)
	}
}

func TestSearchSimilarRequiresFilmOrQuery(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	rec := doRequest(t, rt.Handler(), http.MethodPost, "/api/v1/search/similar", `{"top_k":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchSimilarUnknownFilm(t *testing.T) {
	rt, engine, _, _ := testRouter(t)
	engine.err = recommend.ErrNotFound
	rec := doRequest(t, rt.Handler(), http.MethodPost, "/api/v1/search/similar", `{"film_id":99}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSearchRecommend(t *testing.T) {
	rt, engine, _, _ := testRouter(t)
	rec := doRequest(t, rt.Handler(), http.MethodPost, "/api/v1/search/recommend",
		`{"user_id":42,"weights":{"similarity":0.6,"cowatch":0.4,"genre":0}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if engine.lastReq.Mode != recommend.ModeUser || engine.lastReq.UserID != 42 {
		t.Errorf("request not mapped: %+v", engine.lastReq)
	}
	if engine.lastReq.Weights == nil || engine.lastReq.Weights.Similarity != 0.6 {
		t.Errorf("weights not mapped: %+v", engine.lastReq.Weights)
	}
}

func TestGetFilm(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	h := rt.Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/v1/films/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp filmResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "Heat" || !resp.HasEmbedding {
		t.Errorf("unexpected film response: %+v", resp)
	}
	if len(resp.Genres) != 2 || resp.Genres[0] != "Crime" {
		t.Errorf("genres = %v", resp.Genres)
	}
}

func TestGetFilmErrors(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	h := rt.Handler()

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown film", "/api/v1/films/99", http.StatusNotFound},
		{"non-numeric id", "/api/v1/films/abc", http.StatusBadRequest},
		{"zero id", "/api/v1/films/0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, tt.path, "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestFilmWithoutEmbedding(t *testing.T) {
	rt, _, store, _ := testRouter(t)
	store.films[2] = models.Film{ID: 2, Title: "Collateral"}
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/films/2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp filmResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.HasEmbedding {
		t.Error("has_embedding = true for film without stored vector")
	}
}

func TestHealthReady(t *testing.T) {
	rt, _, store, _ := testRouter(t)
	h := rt.Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/v1/health/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Vector store is not wired, so the service is degraded but ready.
	if resp.Status != statusDegraded {
		t.Errorf("status = %q, want degraded", resp.Status)
	}

	store.edgeCount = 0
	rec = doRequest(t, h, http.MethodGet, "/api/v1/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status without edges = %d, want 503", rec.Code)
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	rt, _, store, _ := testRouter(t)
	store.pingErr = fmt.Errorf("connection refused")
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHealthWithVectorProber(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	rt.WithVectorProber(&fakeProber{})
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != statusOK {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Checks["vectorstore"].Status != statusOK {
		t.Errorf("vectorstore check = %+v", resp.Checks["vectorstore"])
	}
}

func TestHealthLive(t *testing.T) {
	rt, _, store, _ := testRouter(t)
	store.pingErr = fmt.Errorf("down")
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/health/live", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness must not depend on the database, got %d", rec.Code)
	}
}

func TestListBuilds(t *testing.T) {
	rt, _, _, registry := testRouter(t)
	now := time.Now().UTC()
	registry.builds = []models.Build{
		{ID: "b2", Status: models.BuildFinalized, StartedAt: now},
		{ID: "b1", Status: models.BuildFailed, StartedAt: now.Add(-time.Hour)},
	}
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/admin/builds", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var builds []models.Build
	if err := json.Unmarshal(rec.Body.Bytes(), &builds); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(builds) != 2 || builds[0].ID != "b2" {
		t.Errorf("builds = %+v", builds)
	}
}

func TestListBuildsEmpty(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/admin/builds", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty listing = %s, want []", got)
	}
}

func TestGetBuild(t *testing.T) {
	rt, _, _, registry := testRouter(t)
	registry.builds = []models.Build{{ID: "b1", Status: models.BuildFinalized}}

	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/admin/builds/b1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/admin/builds/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for missing build = %d, want 404", rec.Code)
	}
}

func TestTriggerRebuild(t *testing.T) {
	rt, _, _, registry := testRouter(t)
	rebuilder := &fakeRebuilder{build: &models.Build{ID: "b9", Status: models.BuildRunning}}
	rt.WithRebuilder(rebuilder)
	h := rt.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/v1/admin/rebuild", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rebuilder.calls != 1 {
		t.Errorf("trigger calls = %d, want 1", rebuilder.calls)
	}
	var resp rebuildResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.BuildID != "b9" {
		t.Errorf("build_id = %q", resp.BuildID)
	}

	// A running build blocks a second trigger.
	registry.running = &models.Build{ID: "b9", Status: models.BuildRunning}
	rec = doRequest(t, h, http.MethodPost, "/api/v1/admin/rebuild", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status with running build = %d, want 409", rec.Code)
	}
	if rebuilder.calls != 1 {
		t.Errorf("trigger called despite running build")
	}
}

func TestTriggerRebuildUnavailable(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	rec := doRequest(t, rt.Handler(), http.MethodPost, "/api/v1/admin/rebuild", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestPostInteraction(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	pub := &fakePublisher{}
	rt.WithPublisher(pub)
	h := rt.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/v1/interactions",
		`{"user_id":7,"film_id":3,"strength":4.5}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(pub.events) != 1 || pub.events[0].FilmID != 3 {
		t.Errorf("published events = %+v", pub.events)
	}
}

func TestPostInteractionValidation(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	rt.WithPublisher(&fakePublisher{})
	h := rt.Handler()

	tests := []struct {
		name string
		body string
	}{
		{"missing user", `{"film_id":3,"strength":4.5}`},
		{"zero strength", `{"user_id":7,"film_id":3,"strength":0}`},
		{"negative strength", `{"user_id":7,"film_id":3,"strength":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/api/v1/interactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestPostInteractionIngestDisabled(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	rec := doRequest(t, rt.Handler(), http.MethodPost, "/api/v1/interactions",
		`{"user_id":7,"film_id":3,"strength":4.5}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestLoginRequiresJWTMode(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	rec := doRequest(t, rt.Handler(), http.MethodPost, "/api/v1/auth/login",
		`{"username":"admin","password":"secret"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status in none mode = %d, want 400", rec.Code)
	}
}

func TestTokenModeGuardsDataEndpoints(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Security.AuthMode = "token"
	cfg.Security.APITokens = []string{"sekrit-token"}
	authn, err := auth.NewAuthenticator(&cfg.Security)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	engine := &fakeEngine{resp: &recommend.Response{}}
	store := &fakeStore{edgeCount: 1}
	rt := NewRouter(cfg, engine, store, &fakeRegistry{}, authn)
	h := rt.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/v1/graph/recommend", `{"query":"x"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/graph/recommend",
		strings.NewReader(`{"query":"x"}`))
	req.Header.Set("Authorization", "Bearer sekrit-token")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status with token = %d, body %s", w.Code, w.Body.String())
	}

	// Health stays open.
	rec = doRequest(t, h, http.MethodGet, "/api/v1/health/live", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}
}

func TestErrorBodyCarriesRequestID(t *testing.T) {
	rt, _, _, _ := testRouter(t)
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/films/abc", "")
	var e errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if e.RequestID == "" {
		t.Error("request_id missing from error body")
	}
	if got := rec.Header().Get("X-Request-ID"); got != e.RequestID {
		t.Errorf("header request id %q != body request id %q", got, e.RequestID)
	}
}
