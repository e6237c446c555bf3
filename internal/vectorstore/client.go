// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package vectorstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/metrics"
	"github.com/tomtom215/kinograph/internal/models"
)

// ErrUnavailable is returned when the index cannot be reached or the
// circuit breaker is open. Callers treat it as "no seeds", not a hard
// failure, per the degradation rules in the query path.
var ErrUnavailable = errors.New("vector store unavailable")

const maxErrorBody = 1024

// Client talks to a Qdrant-compatible similarity index over REST.
type Client struct {
	cfg     *config.VectorStoreConfig
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*envelope]
}

// envelope is the standard Qdrant response wrapper.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

// NewClient builds a client from config. It does not dial; the first
// call to EnsureCollection verifies reachability and dimension.
func NewClient(cfg *config.VectorStoreConfig) (*Client, error) {
	base := strings.TrimRight(cfg.URL, "/")
	if _, err := url.Parse(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid vector store url %q: %w", cfg.URL, err)
	}
	if cfg.Collection == "" {
		return nil, errors.New("vector store collection name is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	log := logging.WithComponent("vectorstore")
	breaker := gobreaker.NewCircuitBreaker[*envelope](gobreaker.Settings{
		Name:        "vectorstore",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &Client{
		cfg:     cfg,
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
	}, nil
}

// EnsureCollection creates the target collection if it does not exist
// and verifies the vector dimension if it does. Safe to call repeatedly.
func (c *Client) EnsureCollection(ctx context.Context) error {
	env, err := c.call(ctx, http.MethodGet, "/collections/"+url.PathEscape(c.cfg.Collection), nil)
	if err == nil {
		return c.verifyDimension(env)
	}
	if !errors.Is(err, errNotFound) {
		return err
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     models.EmbeddingDim,
			"distance": "Cosine",
		},
	}
	if _, err := c.call(ctx, http.MethodPut, "/collections/"+url.PathEscape(c.cfg.Collection), body); err != nil {
		return fmt.Errorf("create collection %q: %w", c.cfg.Collection, err)
	}
	logging.Info().
		Str("component", "vectorstore").
		Str("collection", c.cfg.Collection).
		Int("dim", models.EmbeddingDim).
		Msg("Created vector collection")
	return nil
}

func (c *Client) verifyDimension(env *envelope) error {
	var info struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	}
	if err := json.Unmarshal(env.Result, &info); err != nil {
		return fmt.Errorf("decode collection info: %w", err)
	}
	if got := info.Config.Params.Vectors.Size; got != 0 && got != models.EmbeddingDim {
		return fmt.Errorf("collection %q has dimension %d, want %d", c.cfg.Collection, got, models.EmbeddingDim)
	}
	return nil
}

// UpsertVectors writes one point per film. ids and vectors are parallel
// slices; point IDs are deterministic so re-syncs overwrite in place.
// The ?wait=true flag makes the write durable before returning, which
// the pipeline relies on for its per-batch progress accounting.
func (c *Client) UpsertVectors(ctx context.Context, ids []int64, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids/vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		return nil
	}

	points := make([]map[string]interface{}, 0, len(ids))
	for i, id := range ids {
		if len(vectors[i]) != models.EmbeddingDim {
			return fmt.Errorf("film %d: vector has %d dims, want %d", id, len(vectors[i]), models.EmbeddingDim)
		}
		points = append(points, map[string]interface{}{
			"id":      PointID(id),
			"vector":  vectors[i],
			"payload": map[string]interface{}{"film_id": id},
		})
	}

	path := "/collections/" + url.PathEscape(c.cfg.Collection) + "/points?wait=true"
	if _, err := c.call(ctx, http.MethodPut, path, map[string]interface{}{"points": points}); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search returns up to limit films nearest to the query vector, ordered
// by similarity descending with ties broken by ascending film ID. Reads
// are idempotent, so transient failures are retried a bounded number of
// times before giving up.
func (c *Client) Search(ctx context.Context, vector []float32, limit int) ([]models.SeedCandidate, error) {
	if len(vector) != models.EmbeddingDim {
		return nil, fmt.Errorf("query vector has %d dims, want %d", len(vector), models.EmbeddingDim)
	}
	if limit <= 0 {
		return nil, nil
	}

	body := map[string]interface{}{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	path := "/collections/" + url.PathEscape(c.cfg.Collection) + "/points/search"

	var env *envelope
	var err error
	attempts := c.cfg.RetryAttempts + 1
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
		env, err = c.call(ctx, http.MethodPost, path, body)
		if err == nil {
			break
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var hits []struct {
		Score   float64 `json:"score"`
		Payload struct {
			FilmID int64 `json:"film_id"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(env.Result, &hits); err != nil {
		return nil, fmt.Errorf("decode search result: %w", err)
	}

	seeds := make([]models.SeedCandidate, 0, len(hits))
	for _, h := range hits {
		if h.Payload.FilmID == 0 {
			continue
		}
		seeds = append(seeds, models.SeedCandidate{FilmID: h.Payload.FilmID, Similarity: h.Score})
	}
	sort.Slice(seeds, func(i, j int) bool {
		if seeds[i].Similarity != seeds[j].Similarity {
			return seeds[i].Similarity > seeds[j].Similarity
		}
		return seeds[i].FilmID < seeds[j].FilmID
	})
	return seeds, nil
}

// Healthy reports whether the collection endpoint answers. Used by the
// readiness probe.
func (c *Client) Healthy(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodGet, "/collections/"+url.PathEscape(c.cfg.Collection), nil)
	return err
}

// pointNamespace seeds point ID derivation. Fixed so the same film maps
// to the same point across syncs and processes.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("kinograph.film"))

// PointID derives the stable UUIDv5 point ID for a film.
func PointID(filmID int64) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("film|%d", filmID))).String()
}

// errNotFound distinguishes a missing collection from other HTTP errors.
var errNotFound = errors.New("not found")

// call performs one JSON request through the circuit breaker and decodes
// the Qdrant envelope.
func (c *Client) call(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	env, err := c.breaker.Execute(func() (*envelope, error) {
		return c.doJSON(ctx, method, path, body)
	})
	if err != nil {
		metrics.RecordUpstream("vectorstore", err)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	metrics.RecordUpstream("vectorstore", nil)
	return env, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("api-key", c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", method, path, errNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, truncateBody(raw))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if status := parseEnvelopeStatus(env.Status); status != "" && status != "ok" {
		return nil, fmt.Errorf("%s %s: server status %q", method, path, status)
	}
	return &env, nil
}

// parseEnvelopeStatus handles both status forms Qdrant emits: a plain
// "ok" string, or an object {"error": "..."} on failure.
func parseEnvelopeStatus(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Error != "" {
		return obj.Error
	}
	return string(raw)
}

func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
