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
	"strings"
	"time"

	"github.com/tomtom215/kinograph/internal/models"
)

// UpsertFilms inserts or replaces film rows.
func (db *DB) UpsertFilms(ctx context.Context, films []models.Film) error {
	if len(films) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin films upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO films (film_id, title, genres, overview, updated_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare films upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for i := range films {
		f := &films[i]
		updated := f.UpdatedAt
		if updated.IsZero() {
			updated = now
		}
		if _, err := stmt.ExecContext(ctx, f.ID, f.Title, f.Genres, f.Overview, updated); err != nil {
			return fmt.Errorf("upsert film %d: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit films upsert: %w", err)
	}
	return nil
}

// GetFilm returns one film by id, or ErrNotFound.
func (db *DB) GetFilm(ctx context.Context, id int64) (*models.Film, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var f models.Film
	err := db.conn.QueryRowContext(ctx,
		`SELECT film_id, title, COALESCE(genres, ''), COALESCE(overview, ''), updated_at
		 FROM films WHERE film_id = ?`, id).
		Scan(&f.ID, &f.Title, &f.Genres, &f.Overview, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("film %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query film %d: %w", id, err)
	}
	return &f, nil
}

// GetFilms returns the films with the given ids, keyed by id. Missing ids
// are simply absent from the result, not errors.
func (db *DB) GetFilms(ctx context.Context, ids []int64) (map[int64]models.Film, error) {
	result := make(map[int64]models.Film, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(
		`SELECT film_id, title, COALESCE(genres, ''), COALESCE(overview, ''), updated_at
		 FROM films WHERE film_id IN (%s)`, placeholders(len(ids)))

	rows, err := db.conn.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query films: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var f models.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Genres, &f.Overview, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		result[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate films: %w", err)
	}
	return result, nil
}

// ScanFilms streams every film through fn in ascending id order. Used by the
// aggregator to derive attribute edges without materializing the catalog.
func (db *DB) ScanFilms(ctx context.Context, fn func(f models.Film) error) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT film_id, title, COALESCE(genres, ''), COALESCE(overview, ''), updated_at
		 FROM films ORDER BY film_id`)
	if err != nil {
		return fmt.Errorf("scan films: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var f models.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Genres, &f.Overview, &f.UpdatedAt); err != nil {
			return fmt.Errorf("scan film row: %w", err)
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate films: %w", err)
	}
	return nil
}

// FilmIDSet returns the set of all film ids. The coverage validator uses it
// to check edge endpoints against the canonical catalog.
func (db *DB) FilmIDSet(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT film_id FROM films`)
	if err != nil {
		return nil, fmt.Errorf("query film ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan film id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate film ids: %w", err)
	}
	return ids, nil
}

// CountFilms returns the catalog size.
func (db *DB) CountFilms(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM films`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count films: %w", err)
	}
	return n, nil
}

// placeholders returns "?, ?, ..." with n slots.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// int64Args boxes ids for variadic query args.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
