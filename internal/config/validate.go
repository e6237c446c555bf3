// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateVectorStore,
		c.validateEmbedding,
		c.validatePipeline,
		c.validateQuery,
		c.validateNATS,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if env := c.Server.Environment; env != "development" && env != "production" {
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", env)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateVectorStore() error {
	if !c.VectorStore.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.VectorStore.URL, "VECTORSTORE_URL"); err != nil {
		return err
	}
	if c.VectorStore.Collection == "" {
		return fmt.Errorf("VECTORSTORE_COLLECTION is required when VECTORSTORE_ENABLED=true")
	}
	if c.VectorStore.Timeout <= 0 {
		return fmt.Errorf("VECTORSTORE_TIMEOUT must be positive")
	}
	if c.VectorStore.RetryAttempts < 0 || c.VectorStore.RetryAttempts > 10 {
		return fmt.Errorf("VECTORSTORE_RETRY_ATTEMPTS must be between 0 and 10")
	}
	if c.VectorStore.SyncBatchSize < 1 {
		return fmt.Errorf("VECTORSTORE_SYNC_BATCH_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if !c.Embedding.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.Embedding.URL, "EMBEDDING_URL"); err != nil {
		return err
	}
	if c.Embedding.Timeout <= 0 {
		return fmt.Errorf("EMBEDDING_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	p := &c.Pipeline
	if p.PartsDir == "" {
		return fmt.Errorf("PIPELINE_PARTS_DIR is required")
	}
	if p.RegistryPath == "" {
		return fmt.Errorf("PIPELINE_REGISTRY_PATH is required")
	}
	if p.Partitions < 1 {
		return fmt.Errorf("PIPELINE_PARTITIONS must be at least 1")
	}
	if p.Workers < 0 {
		return fmt.Errorf("PIPELINE_WORKERS must not be negative")
	}
	if p.MaxFilmsPerUser < 2 {
		return fmt.Errorf("PIPELINE_MAX_FILMS_PER_USER must be at least 2 to form pairs")
	}
	if p.MinPairCount < 1 {
		return fmt.Errorf("PIPELINE_MIN_PAIR_COUNT must be at least 1")
	}
	if p.TopKPerSource < 1 {
		return fmt.Errorf("PIPELINE_TOP_K_PER_SOURCE must be at least 1")
	}
	if p.AttributeTopK < 1 {
		return fmt.Errorf("PIPELINE_ATTRIBUTE_TOP_K must be at least 1")
	}
	if p.BatchSize < 1 {
		return fmt.Errorf("PIPELINE_BATCH_SIZE must be at least 1")
	}
	if p.BatchesPerSecond < 0 {
		return fmt.Errorf("PIPELINE_BATCHES_PER_SECOND must not be negative")
	}
	if p.RetryAttempts < 0 {
		return fmt.Errorf("PIPELINE_RETRY_ATTEMPTS must not be negative")
	}
	if p.Enabled && p.Interval < time.Minute {
		return fmt.Errorf("PIPELINE_INTERVAL must be at least 1m when scheduled rebuilds are enabled")
	}
	return nil
}

func (c *Config) validateQuery() error {
	q := &c.Query
	if q.SeedTopK < 1 {
		return fmt.Errorf("QUERY_SEED_TOP_K must be at least 1")
	}
	if q.Hops < 0 || q.Hops > 5 {
		return fmt.Errorf("QUERY_HOPS must be between 0 and 5")
	}
	if q.FrontierLimit < 1 {
		return fmt.Errorf("QUERY_FRONTIER_LIMIT must be at least 1")
	}
	if q.DefaultTopK < 1 || q.MaxTopK < q.DefaultTopK {
		return fmt.Errorf("QUERY_DEFAULT_TOP_K and QUERY_MAX_TOP_K must satisfy 1 <= default <= max")
	}
	if q.Timeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive")
	}
	if q.CacheTTL < 0 {
		return fmt.Errorf("QUERY_CACHE_TTL must not be negative")
	}
	if q.EmbedWeight < 0 || q.CoWatchWeight < 0 || q.GenreWeight < 0 {
		return fmt.Errorf("fusion weights must not be negative")
	}
	if q.EmbedWeight+q.CoWatchWeight+q.GenreWeight == 0 {
		return fmt.Errorf("at least one fusion weight must be positive")
	}
	return nil
}

// NATS limit constants.
const (
	natsMinMemory    = 64 * 1024 * 1024  // 64MB
	natsMinStore     = 100 * 1024 * 1024 // 100MB
	natsMaxBatchSize = 10000
	natsMinFlush     = time.Second
	natsMaxFlush     = time.Hour
)

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.NATS.EmbeddedServer {
		if c.NATS.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
		}
		if c.NATS.MaxMemory < natsMinMemory {
			return fmt.Errorf("NATS_MAX_MEMORY must be at least %d bytes", int64(natsMinMemory))
		}
		if c.NATS.MaxStore < natsMinStore {
			return fmt.Errorf("NATS_MAX_STORE must be at least %d bytes", int64(natsMinStore))
		}
	}
	if c.NATS.Stream == "" {
		return fmt.Errorf("NATS_STREAM is required when NATS_ENABLED=true")
	}
	if c.NATS.BatchSize < 1 || c.NATS.BatchSize > natsMaxBatchSize {
		return fmt.Errorf("NATS_BATCH_SIZE must be between 1 and %d", natsMaxBatchSize)
	}
	if c.NATS.FlushInterval < natsMinFlush || c.NATS.FlushInterval > natsMaxFlush {
		return fmt.Errorf("NATS_FLUSH_INTERVAL must be between %s and %s", natsMinFlush, natsMaxFlush)
	}
	return nil
}

const minJWTSecretLength = 32

func (c *Config) validateSecurity() error {
	s := &c.Security
	switch s.AuthMode {
	case "none":
		if c.Server.Environment == "production" {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	case "token":
		if len(s.APITokens) == 0 {
			return fmt.Errorf("API_TOKENS is required when AUTH_MODE=token")
		}
		for _, tok := range s.APITokens {
			if len(tok) < 16 {
				return fmt.Errorf("API_TOKENS entries must be at least 16 characters")
			}
		}
	case "jwt":
		if len(s.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
		}
		if s.AdminUsername == "" || s.AdminPassword == "" {
			return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required when AUTH_MODE=jwt")
		}
		if s.TokenTTL < time.Minute {
			return fmt.Errorf("TOKEN_TTL must be at least 1m")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be none, token, or jwt, got %q", s.AuthMode)
	}

	if !s.RateLimitDisabled {
		if s.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if s.RateLimitWindow < time.Second {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL validates that a URL is a well-formed http(s) base URL.
func validateHTTPURL(rawURL, fieldName string) error {
	if rawURL == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse: %w", fieldName, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsed.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", fieldName)
	}
	return nil
}

// validateNATSURL validates nats://, tls://, and ws:// URLs.
func validateNATSURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}
	switch parsed.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
