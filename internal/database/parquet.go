// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package database

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// PartEdge is one provisional co-occurrence edge inside a partition
// artifact: an unordered film pair in canonical (low id, high id) order with
// its summable provisional weight. Part artifacts are intermediate and
// non-authoritative; the aggregator is their only consumer.
type PartEdge struct {
	SourceID int64
	TargetID int64
	Weight   float64
}

// WriteEdgePartition writes edges to a parquet part artifact at path.
// The file is written to a temp sibling and renamed, so a crashed extractor
// never leaves a readable half-artifact behind and resume can trust file
// existence.
func (db *DB) WriteEdgePartition(ctx context.Context, path string, edges []PartEdge) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin partition write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`CREATE OR REPLACE TEMP TABLE edge_part_out (source_id BIGINT, target_id BIGINT, weight DOUBLE)`); err != nil {
		return fmt.Errorf("create partition staging: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edge_part_out (source_id, target_id, weight) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare partition insert: %w", err)
	}
	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, e.SourceID, e.TargetID, e.Weight); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("stage partition edge %d-%d: %w", e.SourceID, e.TargetID, err)
		}
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close partition insert: %w", err)
	}

	copyStmt := fmt.Sprintf(
		`COPY (SELECT * FROM edge_part_out ORDER BY source_id, target_id) TO %s (FORMAT PARQUET)`,
		sqlString(tmpPath))
	if _, err := tx.ExecContext(ctx, copyStmt); err != nil {
		return fmt.Errorf("copy partition to parquet: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE edge_part_out`); err != nil {
		return fmt.Errorf("drop partition staging: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit partition write: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("finalize partition artifact %s: %w", path, err)
	}
	return nil
}

// ReadEdgePartition reads a parquet part artifact back, in the deterministic
// (source_id, target_id) order it was written in.
func (db *DB) ReadEdgePartition(ctx context.Context, path string) ([]PartEdge, error) {
	query := fmt.Sprintf(
		`SELECT source_id, target_id, weight FROM read_parquet(%s) ORDER BY source_id, target_id`,
		sqlString(path))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read partition %s: %w", path, err)
	}
	defer func() { _ = rows.Close() }()

	var edges []PartEdge
	for rows.Next() {
		var e PartEdge
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Weight); err != nil {
			return nil, fmt.Errorf("scan partition edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partition %s: %w", path, err)
	}
	return edges, nil
}

// sqlString quotes s as a SQL string literal. Paths come from configuration,
// not user input, but quoting keeps odd directory names from breaking COPY.
func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
