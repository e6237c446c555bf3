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
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/kinograph/internal/models"
)

// FilmEmbedding pairs a film id with its vector for bulk operations.
type FilmEmbedding struct {
	FilmID int64
	Vector []float32
}

// UpsertEmbeddings inserts or replaces embedding rows. Vectors must be
// exactly models.EmbeddingDim long; the embedding subsystem owns
// normalization, this layer only enforces shape.
func (db *DB) UpsertEmbeddings(ctx context.Context, embs []FilmEmbedding) error {
	if len(embs) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin embeddings upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, e := range embs {
		if len(e.Vector) != models.EmbeddingDim {
			return fmt.Errorf("embedding for film %d has %d dims, want %d",
				e.FilmID, len(e.Vector), models.EmbeddingDim)
		}
		// The duckdb driver has no bind support for fixed-size arrays;
		// the vector is rendered as an array literal instead.
		query := fmt.Sprintf(
			`INSERT OR REPLACE INTO embeddings (film_id, vec, updated_at) VALUES (?, %s, ?)`,
			floatArrayLiteral(e.Vector))
		if _, err := tx.ExecContext(ctx, query, e.FilmID, now); err != nil {
			return fmt.Errorf("upsert embedding for film %d: %w", e.FilmID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit embeddings upsert: %w", err)
	}
	return nil
}

// GetEmbedding returns one film's vector, or ErrNotFound.
func (db *DB) GetEmbedding(ctx context.Context, filmID int64) ([]float32, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var encoded string
	err := db.conn.QueryRowContext(ctx,
		`SELECT to_json(vec)::VARCHAR FROM embeddings WHERE film_id = ?`, filmID).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("embedding for film %d: %w", filmID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query embedding for film %d: %w", filmID, err)
	}
	return decodeVector(encoded)
}

// GetEmbeddings returns vectors for the given films, keyed by id. Missing
// films are absent from the result.
func (db *DB) GetEmbeddings(ctx context.Context, ids []int64) (map[int64][]float32, error) {
	result := make(map[int64][]float32, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(
		`SELECT film_id, to_json(vec)::VARCHAR FROM embeddings WHERE film_id IN (%s)`,
		placeholders(len(ids)))

	rows, err := db.conn.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id      int64
			encoded string
		)
		if err := rows.Scan(&id, &encoded); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		vec, err := decodeVector(encoded)
		if err != nil {
			return nil, fmt.Errorf("film %d: %w", id, err)
		}
		result[id] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}
	return result, nil
}

// ScanEmbeddings streams every embedding through fn in ascending film id
// order. The sync-vectors stage uses it to mirror vectors into the
// similarity index without loading the full table.
func (db *DB) ScanEmbeddings(ctx context.Context, fn func(filmID int64, vec []float32) error) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT film_id, to_json(vec)::VARCHAR FROM embeddings ORDER BY film_id`)
	if err != nil {
		return fmt.Errorf("scan embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id      int64
			encoded string
		)
		if err := rows.Scan(&id, &encoded); err != nil {
			return fmt.Errorf("scan embedding row: %w", err)
		}
		vec, err := decodeVector(encoded)
		if err != nil {
			return fmt.Errorf("film %d: %w", id, err)
		}
		if err := fn(id, vec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate embeddings: %w", err)
	}
	return nil
}

// EmbeddedFilmIDSet returns the set of film ids that have embeddings. The
// coverage validator compares it against edge endpoints.
func (db *DB) EmbeddedFilmIDSet(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT film_id FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("query embedded film ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan embedded film id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embedded film ids: %w", err)
	}
	return ids, nil
}

// floatArrayLiteral renders vec as a DuckDB FLOAT[] literal.
func floatArrayLiteral(vec []float32) string {
	var b strings.Builder
	b.Grow(len(vec) * 12)
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// decodeVector parses the JSON array form DuckDB returns for FLOAT[N].
func decodeVector(encoded string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(encoded), &vec); err != nil {
		return nil, fmt.Errorf("decode embedding vector: %w", err)
	}
	if len(vec) != models.EmbeddingDim {
		return nil, fmt.Errorf("stored embedding has %d dims, want %d", len(vec), models.EmbeddingDim)
	}
	return vec, nil
}
