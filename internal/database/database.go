// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/kinograph/internal/config"
	"github.com/tomtom215/kinograph/internal/logging"
)

// Sentinel errors returned by the storage layer. Callers discriminate with
// errors.Is; everything else is wrapped infrastructure failure.
var (
	ErrNotFound = errors.New("database: not found")
	ErrClosed   = errors.New("database: closed")
)

// queryTimeout bounds individual queries so a wedged DuckDB scan cannot
// hold a request or pipeline stage forever.
const queryTimeout = 30 * time.Second

// DB wraps the DuckDB connection and provides data access methods.
// It is safe for concurrent use; DuckDB serializes writers internally.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens (or creates) the DuckDB database at cfg.Path and initializes
// the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// The data directory may not exist on first boot.
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	// Disable auto-install/auto-load of extensions to prevent hangs in
	// restricted network environments; nothing here needs them.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// DuckDB is embedded: one writer process, modest pool for readers.
	conn.SetMaxOpenConns(numThreads + 2)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn, cfg: cfg}

	if err := db.createTables(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Str("max_memory", cfg.MaxMemory).
		Msg("DuckDB opened")

	return db, nil
}

// Ping verifies the connection is alive. Used by readiness checks.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return ErrClosed
	}
	return db.conn.PingContext(ctx)
}

// Close checkpoints and closes the database.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	// Flush the WAL so the next open does not replay it.
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint before close failed")
	}

	err := db.conn.Close()
	db.conn = nil
	return err
}

// withTimeout derives the standard per-query context.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}
