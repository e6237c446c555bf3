// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package config

import (
	"time"
)

// Config is the root configuration for both the server and the edgebuild CLI.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"` // Optional: external similarity index (seed retrieval degrades to empty without it)
	Embedding   EmbeddingConfig   `koanf:"embedding"`   // Optional: external embedding service (required for free-text queries)
	Pipeline    PipelineConfig    `koanf:"pipeline"`
	Query       QueryConfig       `koanf:"query"`
	NATS        NATSConfig        `koanf:"nats"` // Optional: interaction event ingest over JetStream
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`     // read/write timeout
	Environment string        `koanf:"environment"` // development or production
}

// DatabaseConfig holds DuckDB settings. Kinograph embeds DuckDB as the
// store of record for films, interactions, embeddings, and hyperedges.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// VectorStoreConfig holds settings for the external similarity index
// (Qdrant-compatible HTTP API).
type VectorStoreConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	APIKey        string        `koanf:"api_key"`
	Collection    string        `koanf:"collection"`
	Timeout       time.Duration `koanf:"timeout"`
	RetryAttempts int           `koanf:"retry_attempts"`  // bounded retries for idempotent reads only
	SyncBatchSize int           `koanf:"sync_batch_size"` // points per upsert during sync-vectors
}

// EmbeddingConfig holds settings for the external embedding service
// (text -> 384-dim unit vector).
type EmbeddingConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// PipelineConfig holds the offline hyperedge pipeline settings. The same
// values drive cmd/edgebuild and the server's scheduled rebuild service.
type PipelineConfig struct {
	Enabled  bool          `koanf:"enabled"`  // scheduled rebuilds in the server process
	Interval time.Duration `koanf:"interval"` // rebuild cadence when enabled

	PartsDir     string `koanf:"parts_dir"`     // partition artifact directory
	RegistryPath string `koanf:"registry_path"` // badger build registry directory

	Partitions      int     `koanf:"partitions"`         // extraction shard count
	Workers         int     `koanf:"workers"`            // parallel partition workers, 0 = runtime.NumCPU()
	MinStrength     float64 `koanf:"min_strength"`       // interactions below this are ignored
	MaxFilmsPerUser int     `koanf:"max_films_per_user"` // most recent liked films considered per user
	MinPairCount    int     `koanf:"min_pair_count"`     // co-occurrence count threshold
	TopKPerSource   int     `koanf:"top_k_per_source"`   // co-watch edges kept per source film
	AttributeTopK   int     `koanf:"attribute_top_k"`    // genre edges kept per source node

	BatchSize        int           `koanf:"batch_size"`         // edge store adapter batch size
	BatchesPerSecond float64       `koanf:"batches_per_second"` // upsert pacing, 0 = unpaced
	RetryAttempts    int           `koanf:"retry_attempts"`     // per partition / per batch
	RetryDelay       time.Duration `koanf:"retry_delay"`
}

// QueryConfig holds the ranking engine settings. Per-request overrides are
// bounded by these values.
type QueryConfig struct {
	SeedTopK      int           `koanf:"seed_top_k"`
	Hops          int           `koanf:"hops"`
	FrontierLimit int           `koanf:"frontier_limit"` // per-hop cap on newly expanded entities
	DefaultTopK   int           `koanf:"default_top_k"`
	MaxTopK       int           `koanf:"max_top_k"`
	Timeout       time.Duration `koanf:"timeout"` // per-request traversal + fusion budget
	CacheTTL      time.Duration `koanf:"cache_ttl"`

	// Default fusion weights. Callers may override per request; values are
	// clamped non-negative.
	EmbedWeight   float64 `koanf:"embed_weight"`
	CoWatchWeight float64 `koanf:"cowatch_weight"`
	GenreWeight   float64 `koanf:"genre_weight"`
}

// NATSConfig holds interaction-ingest settings (Watermill over JetStream).
type NATSConfig struct {
	Enabled        bool   `koanf:"enabled"`
	URL            string `koanf:"url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
	MaxMemory      int64  `koanf:"max_memory"`
	MaxStore       int64  `koanf:"max_store"`

	Stream      string `koanf:"stream"`
	DurableName string `koanf:"durable_name"`
	QueueGroup  string `koanf:"queue_group"`

	BatchSize     int           `koanf:"batch_size"`
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// SecurityConfig holds auth and rate limiting settings.
type SecurityConfig struct {
	// AuthMode selects request authentication: "none", "token" (static
	// bearer tokens), or "jwt" (issued via the login endpoint).
	AuthMode string `koanf:"auth_mode"`

	JWTSecret     string        `koanf:"jwt_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	AdminUsername string        `koanf:"admin_username"`
	AdminPassword string        `koanf:"admin_password"` // bcrypt hash or plaintext (hashed at startup)

	// APITokens are accepted bearer tokens in token mode.
	APITokens []string `koanf:"api_tokens"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DefaultConfig returns a Config with all default values. Defaults are
// loaded first, then overridden by config file and environment variables.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8343,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/kinograph.duckdb",
			MaxMemory: "2GB",
			Threads:   0,
		},
		VectorStore: VectorStoreConfig{
			Enabled:       false,
			URL:           "http://127.0.0.1:6333",
			Collection:    "films",
			Timeout:       5 * time.Second,
			RetryAttempts: 2,
			SyncBatchSize: 256,
		},
		Embedding: EmbeddingConfig{
			Enabled: false,
			URL:     "",
			Timeout: 10 * time.Second,
		},
		Pipeline: PipelineConfig{
			Enabled:          false, // opt-in: rebuilds are operator- or schedule-triggered
			Interval:         24 * time.Hour,
			PartsDir:         "/data/edge_parts",
			RegistryPath:     "/data/builds",
			Partitions:       8,
			Workers:          0,
			MinStrength:      4.0,
			MaxFilmsPerUser:  20,
			MinPairCount:     3,
			TopKPerSource:    50,
			AttributeTopK:    50,
			BatchSize:        5000,
			BatchesPerSecond: 0,
			RetryAttempts:    3,
			RetryDelay:       2 * time.Second,
		},
		Query: QueryConfig{
			SeedTopK:      20,
			Hops:          2,
			FrontierLimit: 500,
			DefaultTopK:   10,
			MaxTopK:       100,
			Timeout:       5 * time.Second,
			CacheTTL:      5 * time.Minute,
			EmbedWeight:   1.0,
			CoWatchWeight: 0.5,
			GenreWeight:   0.25,
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			StoreDir:       "/data/nats/jetstream",
			MaxMemory:      1 << 30,  // 1GB
			MaxStore:       10 << 30, // 10GB
			Stream:         "INTERACTIONS",
			DurableName:    "edge-ingest",
			QueueGroup:     "ingesters",
			BatchSize:      1000,
			FlushInterval:  5 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:        "none",
			TokenTTL:        24 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads and validates the configuration from all layered sources.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
