// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package database

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/kinograph/internal/models"
)

const stagingTable = "hyperedges_staging"

// ResetHyperedgeStaging drops and recreates the staging table. The edge
// store adapter loads into staging; SwapHyperedges promotes it.
func (db *DB) ResetHyperedgeStaging(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `DROP TABLE IF EXISTS `+stagingTable); err != nil {
		return fmt.Errorf("drop staging table: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, hyperedgeTableDDL(stagingTable)); err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}
	return nil
}

// InsertHyperedgeBatch upserts one batch of edges into the staging table.
// INSERT OR REPLACE keys on (source_kind, source_id, target_kind, target_id),
// so a retried batch lands on the same rows instead of duplicating them.
func (db *DB) InsertHyperedgeBatch(ctx context.Context, edges []models.Hyperedge) error {
	if len(edges) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin hyperedge batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO `+stagingTable+
			` (source_kind, source_id, target_kind, target_id, weight, payload, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare hyperedge batch: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range edges {
		e := &edges[i]
		payload, err := encodePayload(e.Payload)
		if err != nil {
			return fmt.Errorf("edge %s %d->%d: %w", e.KindPair(), e.SourceID, e.TargetID, err)
		}
		created := e.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			e.SourceKind, e.SourceID, e.TargetKind, e.TargetID, e.Weight, payload, created); err != nil {
			return fmt.Errorf("insert edge %s %d->%d: %w", e.KindPair(), e.SourceID, e.TargetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit hyperedge batch: %w", err)
	}
	return nil
}

// SwapHyperedges atomically replaces the authoritative hyperedge table with
// the staging table. Consumers see either the previous edge set or the new
// one, never a mixture.
func (db *DB) SwapHyperedges(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin hyperedge swap: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`DROP TABLE IF EXISTS hyperedges`,
		`ALTER TABLE ` + stagingTable + ` RENAME TO hyperedges`,
		`CREATE INDEX IF NOT EXISTS idx_hyperedges_source ON hyperedges (source_kind, source_id)`,
	}
	for _, q := range statements {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("hyperedge swap: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit hyperedge swap: %w", err)
	}
	return nil
}

// CountHyperedges returns the finalized edge count. A zero count with a
// populated catalog is how readiness distinguishes "never built" from
// "built empty".
func (db *DB) CountHyperedges(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM hyperedges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count hyperedges: %w", err)
	}
	return n, nil
}

// GetOutgoingEdges returns every stored outgoing edge for the given source
// nodes, keyed by source id, ordered weight-descending then target-ascending.
// The stored set is already top-K pruned per (source, kind pair), so the
// result size is bounded by len(sources) * kinds * K.
func (db *DB) GetOutgoingEdges(ctx context.Context, sourceKind string, sourceIDs []int64) (map[int64][]models.Hyperedge, error) {
	result := make(map[int64][]models.Hyperedge, len(sourceIDs))
	if len(sourceIDs) == 0 {
		return result, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(
		`SELECT source_kind, source_id, target_kind, target_id, weight, COALESCE(payload, ''), created_at
		 FROM hyperedges
		 WHERE source_kind = ? AND source_id IN (%s)
		 ORDER BY source_id, weight DESC, target_id`, placeholders(len(sourceIDs)))

	args := append([]any{sourceKind}, int64Args(sourceIDs)...)
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outgoing edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		e, err := scanHyperedge(rows)
		if err != nil {
			return nil, err
		}
		result[e.SourceID] = append(result[e.SourceID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outgoing edges: %w", err)
	}
	return result, nil
}

// ScanHyperedges streams the finalized edge set through fn in deterministic
// key order. The validator uses it for endpoint and artifact checks.
func (db *DB) ScanHyperedges(ctx context.Context, fn func(e models.Hyperedge) error) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT source_kind, source_id, target_kind, target_id, weight, COALESCE(payload, ''), created_at
		 FROM hyperedges
		 ORDER BY source_kind, source_id, target_kind, target_id`)
	if err != nil {
		return fmt.Errorf("scan hyperedges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		e, err := scanHyperedge(rows)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate hyperedges: %w", err)
	}
	return nil
}

// rowScanner abstracts *sql.Rows for edge scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanHyperedge(rows rowScanner) (models.Hyperedge, error) {
	var (
		e       models.Hyperedge
		payload string
	)
	if err := rows.Scan(&e.SourceKind, &e.SourceID, &e.TargetKind, &e.TargetID,
		&e.Weight, &payload, &e.CreatedAt); err != nil {
		return models.Hyperedge{}, fmt.Errorf("scan hyperedge: %w", err)
	}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			return models.Hyperedge{}, fmt.Errorf("decode edge payload: %w", err)
		}
	}
	return e, nil
}

func encodePayload(p models.EdgePayload) (string, error) {
	if len(p) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode edge payload: %w", err)
	}
	return string(raw), nil
}
