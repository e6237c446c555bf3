// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.Server.Environment = "staging" },
			wantErr: "ENVIRONMENT",
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "DUCKDB_PATH",
		},
		{
			name: "vector store enabled without url",
			mutate: func(c *Config) {
				c.VectorStore.Enabled = true
				c.VectorStore.URL = ""
			},
			wantErr: "VECTORSTORE_URL",
		},
		{
			name: "embedding enabled with bad url",
			mutate: func(c *Config) {
				c.Embedding.Enabled = true
				c.Embedding.URL = "not a url"
			},
			wantErr: "EMBEDDING_URL",
		},
		{
			name:    "max films per user too small to pair",
			mutate:  func(c *Config) { c.Pipeline.MaxFilmsPerUser = 1 },
			wantErr: "PIPELINE_MAX_FILMS_PER_USER",
		},
		{
			name: "scheduled rebuild interval too short",
			mutate: func(c *Config) {
				c.Pipeline.Enabled = true
				c.Pipeline.Interval = time.Second
			},
			wantErr: "PIPELINE_INTERVAL",
		},
		{
			name:    "hops out of range",
			mutate:  func(c *Config) { c.Query.Hops = 6 },
			wantErr: "QUERY_HOPS",
		},
		{
			name: "default top k above max",
			mutate: func(c *Config) {
				c.Query.DefaultTopK = 200
				c.Query.MaxTopK = 100
			},
			wantErr: "QUERY_DEFAULT_TOP_K",
		},
		{
			name: "all fusion weights zero",
			mutate: func(c *Config) {
				c.Query.EmbedWeight = 0
				c.Query.CoWatchWeight = 0
				c.Query.GenreWeight = 0
			},
			wantErr: "fusion weight",
		},
		{
			name: "no auth in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.AuthMode = "none"
			},
			wantErr: "AUTH_MODE=none",
		},
		{
			name: "token mode without tokens",
			mutate: func(c *Config) {
				c.Security.AuthMode = "token"
			},
			wantErr: "API_TOKENS",
		},
		{
			name: "short api token",
			mutate: func(c *Config) {
				c.Security.AuthMode = "token"
				c.Security.APITokens = []string{"short"}
			},
			wantErr: "at least 16 characters",
		},
		{
			name: "jwt mode with short secret",
			mutate: func(c *Config) {
				c.Security.AuthMode = "jwt"
				c.Security.JWTSecret = "too-short"
				c.Security.AdminUsername = "admin"
				c.Security.AdminPassword = "password123"
			},
			wantErr: "JWT_SECRET",
		},
		{
			name: "jwt mode without admin credentials",
			mutate: func(c *Config) {
				c.Security.AuthMode = "jwt"
				c.Security.JWTSecret = strings.Repeat("s", 32)
			},
			wantErr: "ADMIN_USERNAME",
		},
		{
			name: "nats enabled with tiny flush interval",
			mutate: func(c *Config) {
				c.NATS.Enabled = true
				c.NATS.FlushInterval = time.Millisecond
			},
			wantErr: "NATS_FLUSH_INTERVAL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate returned nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"DUCKDB_PATH", "database.path"},
		{"QUERY_HOPS", "query.hops"},
		{"VECTORSTORE_URL", "vectorstore.url"},
		{"NATS_FLUSH_INTERVAL", "nats.flush_interval"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"LOG_LEVEL", "logging.level"},
		// Unmapped environment noise is dropped.
		{"PATH", ""},
		{"GODEBUG", ""},
		{"HOSTNAME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("QUERY_HOPS", "3")
	t.Setenv("DUCKDB_PATH", filepath.Join(t.TempDir(), "test.duckdb"))
	t.Setenv("API_TOKENS", "first-token-long-enough, second-token-long-enough")
	t.Setenv("AUTH_MODE", "token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Query.Hops != 3 {
		t.Errorf("hops = %d, want 3", cfg.Query.Hops)
	}
	if len(cfg.Security.APITokens) != 2 || cfg.Security.APITokens[1] != "second-token-long-enough" {
		t.Errorf("api tokens = %v, comma-separated parsing failed", cfg.Security.APITokens)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 8500
query:
  default_top_k: 25
  max_top_k: 200
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8500 {
		t.Errorf("port = %d, want 8500 from file", cfg.Server.Port)
	}
	if cfg.Query.DefaultTopK != 25 || cfg.Query.MaxTopK != 200 {
		t.Errorf("query knobs = %d/%d, want 25/200", cfg.Query.DefaultTopK, cfg.Query.MaxTopK)
	}
	// Untouched values keep their defaults.
	if cfg.Database.Path != "/data/kinograph.duckdb" {
		t.Errorf("database path = %q, want default", cfg.Database.Path)
	}
}

func TestEnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8500\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, environment must override the file", cfg.Server.Port)
	}
}
