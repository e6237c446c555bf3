// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package embedding

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/models"
)

func testConfig(url string) *config.EmbeddingConfig {
	return &config.EmbeddingConfig{
		Enabled: true,
		URL:     url,
		Timeout: 2 * time.Second,
	}
}

func rawVector(fill float32) []float32 {
	v := make([]float32, models.EmbeddingDim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestEmbedNormalizesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/embed" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Texts) != 1 || req.Texts[0] != "noir heist thriller" {
			t.Errorf("texts = %v", req.Texts)
		}
		// Deliberately non-unit so the client must normalize.
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"vectors": [][]float32{rawVector(2.0)},
		})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	vec, err := c.Embed(context.Background(), "noir heist thriller")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != models.EmbeddingDim {
		t.Fatalf("dim = %d, want %d", len(vec), models.EmbeddingDim)
	}
	if norm := vectorNorm(vec); math.Abs(norm-1.0) > 1e-4 {
		t.Errorf("norm = %f, want 1.0", norm)
	}
}

func TestEmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"vectors": [][]float32{rawVector(0.5), rawVector(1.5)},
		})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	vectors, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}

	// Empty input never touches the network.
	vectors, err = c.EmbedBatch(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Errorf("empty batch = %v, %v", vectors, err)
	}
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"vectors": [][]float32{rawVector(0.5)},
		})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected count mismatch error")
	}
}

func TestEmbedWrongDimension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"vectors": [][]float32{{0.1, 0.2, 0.3}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected server error")
	}
}

func TestEmbedSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"vectors": [][]float32{rawVector(1.0)},
		})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIKey = "secret"
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []float32
	}{
		{"unit stays", []float32{1, 0, 0}, []float32{1, 0, 0}},
		{"scaled", []float32{3, 4, 0}, []float32{0.6, 0.8, 0}},
		{"zero untouched", []float32{0, 0, 0}, []float32{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := append([]float32(nil), tt.in...)
			Normalize(v)
			for i := range tt.want {
				if math.Abs(float64(v[i]-tt.want[i])) > 1e-6 {
					t.Errorf("v[%d] = %f, want %f", i, v[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(&config.EmbeddingConfig{}); err == nil {
		t.Fatal("expected url validation error")
	}
}
