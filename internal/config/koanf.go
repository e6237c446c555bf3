// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/kinograph/config.yaml",
	"/etc/kinograph/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//
//  1. Defaults from DefaultConfig
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
//
// The result is validated before being returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variables map through envTransformFunc:
	// DUCKDB_PATH -> database.path, QUERY_HOPS -> query.hops, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are config paths parsed as comma-separated slices when
// they arrive as strings from environment variables.
var sliceConfigPaths = []string{
	"security.api_tokens",
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so arbitrary environment
// noise never pollutes the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Database
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// Vector store
		"vectorstore_enabled":         "vectorstore.enabled",
		"vectorstore_url":             "vectorstore.url",
		"vectorstore_api_key":         "vectorstore.api_key",
		"vectorstore_collection":      "vectorstore.collection",
		"vectorstore_timeout":         "vectorstore.timeout",
		"vectorstore_retry_attempts":  "vectorstore.retry_attempts",
		"vectorstore_sync_batch_size": "vectorstore.sync_batch_size",

		// Embedding service
		"embedding_enabled": "embedding.enabled",
		"embedding_url":     "embedding.url",
		"embedding_api_key": "embedding.api_key",
		"embedding_timeout": "embedding.timeout",

		// Pipeline
		"pipeline_enabled":            "pipeline.enabled",
		"pipeline_interval":           "pipeline.interval",
		"pipeline_parts_dir":          "pipeline.parts_dir",
		"pipeline_registry_path":      "pipeline.registry_path",
		"pipeline_partitions":         "pipeline.partitions",
		"pipeline_workers":            "pipeline.workers",
		"pipeline_min_strength":       "pipeline.min_strength",
		"pipeline_max_films_per_user": "pipeline.max_films_per_user",
		"pipeline_min_pair_count":     "pipeline.min_pair_count",
		"pipeline_top_k_per_source":   "pipeline.top_k_per_source",
		"pipeline_attribute_top_k":    "pipeline.attribute_top_k",
		"pipeline_batch_size":         "pipeline.batch_size",
		"pipeline_batches_per_second": "pipeline.batches_per_second",
		"pipeline_retry_attempts":     "pipeline.retry_attempts",
		"pipeline_retry_delay":        "pipeline.retry_delay",

		// Query engine
		"query_seed_top_k":     "query.seed_top_k",
		"query_hops":           "query.hops",
		"query_frontier_limit": "query.frontier_limit",
		"query_default_top_k":  "query.default_top_k",
		"query_max_top_k":      "query.max_top_k",
		"query_timeout":        "query.timeout",
		"query_cache_ttl":      "query.cache_ttl",
		"query_embed_weight":   "query.embed_weight",
		"query_cowatch_weight": "query.cowatch_weight",
		"query_genre_weight":   "query.genre_weight",

		// NATS ingest
		"nats_enabled":        "nats.enabled",
		"nats_url":            "nats.url",
		"nats_embedded":       "nats.embedded_server",
		"nats_store_dir":      "nats.store_dir",
		"nats_max_memory":     "nats.max_memory",
		"nats_max_store":      "nats.max_store",
		"nats_stream":         "nats.stream",
		"nats_durable_name":   "nats.durable_name",
		"nats_queue_group":    "nats.queue_group",
		"nats_batch_size":     "nats.batch_size",
		"nats_flush_interval": "nats.flush_interval",

		// Security
		"auth_mode":           "security.auth_mode",
		"jwt_secret":          "security.jwt_secret",
		"token_ttl":           "security.token_ttl",
		"admin_username":      "security.admin_username",
		"admin_password":      "security.admin_password",
		"api_tokens":          "security.api_tokens",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
