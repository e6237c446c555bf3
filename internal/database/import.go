// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package database

import (
	"context"
	"fmt"
	"time"
)

// ImportFilmsCSV bulk-loads a film catalog CSV (film_id, title, genres,
// optional overview) straight through DuckDB's CSV reader. Existing rows
// with the same id are replaced.
func (db *DB) ImportFilmsCSV(ctx context.Context, path string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	query := fmt.Sprintf(
		`INSERT OR REPLACE INTO films (film_id, title, genres, overview, updated_at)
		 SELECT
			CAST(film_id AS BIGINT),
			CAST(title AS VARCHAR),
			CAST(COALESCE(genres, '') AS VARCHAR),
			CAST(COALESCE(overview, '') AS VARCHAR),
			now()
		 FROM read_csv_auto(%s, header = true)`, sqlString(path))

	res, err := db.conn.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("import films from %s: %w", path, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ImportInteractionsCSV bulk-loads an interaction log CSV (user_id, film_id,
// strength or rating, unix timestamp). Rows are appended; the table is an
// append-only log.
func (db *DB) ImportInteractionsCSV(ctx context.Context, path string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	query := fmt.Sprintf(
		`INSERT INTO interactions (user_id, film_id, strength, event_ts)
		 SELECT
			CAST(user_id AS BIGINT),
			CAST(film_id AS BIGINT),
			CAST(strength AS DOUBLE),
			to_timestamp(CAST(event_ts AS BIGINT))
		 FROM read_csv_auto(%s, header = true)`, sqlString(path))

	res, err := db.conn.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("import interactions from %s: %w", path, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
