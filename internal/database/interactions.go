// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/kinograph/internal/models"
)

// InsertInteractions appends interaction records. The table is append-only
// source data; duplicates are tolerated (the extractor counts pairs, it does
// not require uniqueness).
func (db *DB) InsertInteractions(ctx context.Context, records []models.InteractionRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin interactions insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO interactions (user_id, film_id, strength, event_ts) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare interactions insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.UserID, r.FilmID, r.Strength, r.Timestamp); err != nil {
			return fmt.Errorf("insert interaction user=%d film=%d: %w", r.UserID, r.FilmID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit interactions insert: %w", err)
	}
	return nil
}

// GetPartitionInteractions returns the interactions belonging to extraction
// shard p of P, filtered to strength >= minStrength. Shard membership hashes
// the user id so a user's whole history lands in exactly one shard
// (shared-nothing extraction). Rows come back ordered by user then time so
// the extractor can group per user in a single pass.
func (db *DB) GetPartitionInteractions(ctx context.Context, p, partitions int, minStrength float64) ([]models.InteractionRecord, error) {
	if partitions <= 0 {
		return nil, fmt.Errorf("partitions must be positive, got %d", partitions)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, film_id, strength, event_ts
		 FROM interactions
		 WHERE hash(user_id) % ? = ? AND strength >= ?
		 ORDER BY user_id, event_ts`,
		int64(partitions), int64(p), minStrength)
	if err != nil {
		return nil, fmt.Errorf("query partition %d/%d interactions: %w", p, partitions, err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.InteractionRecord
	for rows.Next() {
		var r models.InteractionRecord
		if err := rows.Scan(&r.UserID, &r.FilmID, &r.Strength, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return records, nil
}

// GetUserLikedFilms returns the user's most recent positively rated films,
// newest first, at most limit. The user-profile embedding builds on this.
func (db *DB) GetUserLikedFilms(ctx context.Context, userID int64, minStrength float64, limit int) ([]int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT film_id FROM (
			SELECT film_id, MAX(event_ts) AS last_ts
			FROM interactions
			WHERE user_id = ? AND strength >= ?
			GROUP BY film_id
		 ) ORDER BY last_ts DESC, film_id LIMIT ?`,
		userID, minStrength, limit)
	if err != nil {
		return nil, fmt.Errorf("query liked films for user %d: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan liked film: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked films: %w", err)
	}
	return ids, nil
}

// CountInteractions returns the interaction log size.
func (db *DB) CountInteractions(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM interactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return n, nil
}
