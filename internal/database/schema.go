// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/kinograph/internal/models"
)

// schemaContext returns a context with a generous timeout for DDL.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables and indexes. All columns are defined
// up front; a pipeline re-run supersedes data rather than migrating it.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS films (
			film_id    BIGINT PRIMARY KEY,
			title      VARCHAR NOT NULL,
			genres     VARCHAR,
			overview   VARCHAR,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			user_id  BIGINT NOT NULL,
			film_id  BIGINT NOT NULL,
			strength DOUBLE NOT NULL,
			event_ts TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_film ON interactions (film_id)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS embeddings (
			film_id    BIGINT PRIMARY KEY,
			vec        FLOAT[%d] NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, models.EmbeddingDim),
		hyperedgeTableDDL("hyperedges"),
		`CREATE INDEX IF NOT EXISTS idx_hyperedges_source ON hyperedges (source_kind, source_id)`,
	}

	for _, q := range queries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// hyperedgeTableDDL returns the CREATE TABLE statement for a hyperedge
// table under the given name. The staging table uses the identical shape so
// the finalization swap is a pure rename.
func hyperedgeTableDDL(name string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		source_kind VARCHAR NOT NULL,
		source_id   BIGINT NOT NULL,
		target_kind VARCHAR NOT NULL,
		target_id   BIGINT NOT NULL,
		weight      DOUBLE NOT NULL,
		payload     VARCHAR,
		created_at  TIMESTAMP NOT NULL,
		PRIMARY KEY (source_kind, source_id, target_kind, target_id)
	)`, name)
}
