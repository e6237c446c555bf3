// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package models

import (
	"sort"
	"time"
)

// BuildStatus is the lifecycle state of a pipeline build.
type BuildStatus string

const (
	BuildRunning   BuildStatus = "running"
	BuildFailed    BuildStatus = "failed"
	BuildFinalized BuildStatus = "finalized"
)

// Pipeline stage names as recorded on builds and exposed by the CLI/API.
const (
	StageExtract     = "extract"
	StageAggregate   = "aggregate"
	StageLoad        = "load"
	StageValidate    = "validate"
	StageSyncVectors = "sync-vectors"
)

// Build is the registry record for one pipeline run. It is persisted to the
// build registry after every stage transition so that crashed runs remain
// inspectable and resumable.
type Build struct {
	ID         string      `json:"id"`
	Status     BuildStatus `json:"status"`
	Stage      string      `json:"stage"`
	Partitions int         `json:"partitions"`

	// PartitionsDone lists completed partition indexes, kept sorted.
	PartitionsDone []int `json:"partitions_done,omitempty"`

	CoWatchEdges   int64 `json:"cowatch_edges"`
	GenreEdges     int64 `json:"genre_edges"`
	EdgesFinalized int64 `json:"edges_finalized"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// MarkPartitionDone records partition p as completed, keeping the list
// sorted and duplicate-free.
func (b *Build) MarkPartitionDone(p int) {
	for _, done := range b.PartitionsDone {
		if done == p {
			return
		}
	}
	b.PartitionsDone = append(b.PartitionsDone, p)
	sort.Ints(b.PartitionsDone)
}

// PartitionDone reports whether partition p has completed.
func (b *Build) PartitionDone(p int) bool {
	i := sort.SearchInts(b.PartitionsDone, p)
	return i < len(b.PartitionsDone) && b.PartitionsDone[i] == p
}

// Finished reports whether the build reached a terminal state.
func (b *Build) Finished() bool {
	return b.Status == BuildFailed || b.Status == BuildFinalized
}
