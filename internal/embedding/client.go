// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/metrics"
	"github.com/tomtom215/kinograph/internal/models"
)

// ErrUnavailable is returned when the embedding service cannot be
// reached or the circuit breaker is open.
var ErrUnavailable = errors.New("embedding service unavailable")

const maxErrorBody = 1024

// Client talks to the external text embedding service.
type Client struct {
	cfg     *config.EmbeddingConfig
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[][]float32]
}

// NewClient builds a client from config. It does not dial.
func NewClient(cfg *config.EmbeddingConfig) (*Client, error) {
	base := strings.TrimRight(cfg.URL, "/")
	if base == "" {
		return nil, errors.New("embedding service url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	log := logging.WithComponent("embedding")
	breaker := gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        "embedding",
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

// Embed turns one text into a unit-normalized 384-dim vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding service returned %d vectors for 1 text", len(vectors))
	}
	return vectors[0], nil
}

// EmbedBatch embeds multiple texts in a single round trip. The result
// is parallel to texts. Every vector is re-normalized locally so
// downstream cosine math never sees drift from the service.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := c.breaker.Execute(func() ([][]float32, error) {
		return c.post(ctx, texts)
	})
	if err != nil {
		metrics.RecordUpstream("embedding", err)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	metrics.RecordUpstream("embedding", nil)

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != models.EmbeddingDim {
			return nil, fmt.Errorf("text %d: vector has %d dims, want %d", i, len(v), models.EmbeddingDim)
		}
		Normalize(v)
	}
	return vectors, nil
}

func (c *Client) post(ctx context.Context, texts []string) ([][]float32, error) {
	raw, err := json.Marshal(map[string]interface{}{"texts": texts})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embed: status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var out struct {
		Vectors [][]float32 `json:"vectors"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Vectors, nil
}

// Normalize scales v to unit length in place. A zero vector is left
// untouched.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
