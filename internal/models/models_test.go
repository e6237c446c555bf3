// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package models

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func TestParseGenreTokens(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"pipe separated", "Action|Adventure|Sci-Fi", []string{"Action", "Adventure", "Sci-Fi"}},
		{"comma separated", "Drama, Romance", []string{"Drama", "Romance"}},
		{"pipe wins over comma", "Action|Sci-Fi, Thriller", []string{"Action", "Sci-Fi, Thriller"}},
		{"single token", "Documentary", []string{"Documentary"}},
		{"empty", "", nil},
		{"whitespace tokens dropped", "Drama| |Comedy", []string{"Drama", "Comedy"}},
		{"placeholder dropped", "(no genres listed)", nil},
		{"placeholder among tokens", "Drama|(no genres listed)", []string{"Drama"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseGenreTokens(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseGenreTokens(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestInteractionPositive(t *testing.T) {
	rec := InteractionRecord{UserID: 1, FilmID: 2, Strength: 4.0, Timestamp: time.Now()}

	if !rec.Positive(4.0) {
		t.Error("strength equal to threshold should be positive")
	}
	if rec.Positive(4.5) {
		t.Error("strength below threshold should not be positive")
	}
}

func TestHyperedgeValidate(t *testing.T) {
	now := time.Now()
	valid := Hyperedge{
		SourceKind: KindFilm, SourceID: 10,
		TargetKind: KindFilm, TargetID: 20,
		Weight: 5, CreatedAt: now,
	}

	tests := []struct {
		name    string
		mutate  func(e *Hyperedge)
		wantErr bool
	}{
		{"valid cowatch edge", func(_ *Hyperedge) {}, false},
		{"valid genre edge", func(e *Hyperedge) { e.TargetKind = KindGenre; e.TargetID = GenreIDBase }, false},
		{"unknown source kind", func(e *Hyperedge) { e.SourceKind = "actor" }, true},
		{"unknown target kind", func(e *Hyperedge) { e.TargetKind = "studio" }, true},
		{"zero weight", func(e *Hyperedge) { e.Weight = 0 }, true},
		{"negative weight", func(e *Hyperedge) { e.Weight = -1 }, true},
		{"nan weight", func(e *Hyperedge) { e.Weight = math.NaN() }, true},
		{"inf weight", func(e *Hyperedge) { e.Weight = math.Inf(1) }, true},
		{"zero source id", func(e *Hyperedge) { e.SourceID = 0 }, true},
		{"negative target id", func(e *Hyperedge) { e.TargetID = -5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHyperedgeKeyAndKindPair(t *testing.T) {
	e := Hyperedge{SourceKind: KindFilm, SourceID: 1, TargetKind: KindGenre, TargetID: GenreIDBase, Weight: 1}

	key := e.Key()
	if key != (EdgeKey{KindFilm, 1, KindGenre, GenreIDBase}) {
		t.Errorf("unexpected key: %+v", key)
	}
	if got := e.KindPair(); got != "film->genre" {
		t.Errorf("KindPair() = %q, want film->genre", got)
	}
}

func TestSignalForKindPair(t *testing.T) {
	tests := []struct {
		source, target, want string
	}{
		{KindFilm, KindFilm, SignalCoWatch},
		{KindFilm, KindGenre, SignalGenre},
		{KindGenre, KindFilm, SignalGenre},
		{KindGenre, KindGenre, ""},
		{"actor", KindFilm, ""},
	}

	for _, tt := range tests {
		if got := SignalForKindPair(tt.source, tt.target); got != tt.want {
			t.Errorf("SignalForKindPair(%q, %q) = %q, want %q", tt.source, tt.target, got, tt.want)
		}
	}
}

func TestBuildPartitionTracking(t *testing.T) {
	b := Build{ID: "b1", Status: BuildRunning, Partitions: 4}

	b.MarkPartitionDone(3)
	b.MarkPartitionDone(1)
	b.MarkPartitionDone(3) // duplicate

	if !reflect.DeepEqual(b.PartitionsDone, []int{1, 3}) {
		t.Errorf("PartitionsDone = %v, want [1 3]", b.PartitionsDone)
	}
	if !b.PartitionDone(1) || !b.PartitionDone(3) {
		t.Error("expected partitions 1 and 3 done")
	}
	if b.PartitionDone(0) || b.PartitionDone(2) {
		t.Error("expected partitions 0 and 2 not done")
	}
}

func TestBuildFinished(t *testing.T) {
	tests := []struct {
		status BuildStatus
		want   bool
	}{
		{BuildRunning, false},
		{BuildFailed, true},
		{BuildFinalized, true},
	}

	for _, tt := range tests {
		b := Build{Status: tt.status}
		if got := b.Finished(); got != tt.want {
			t.Errorf("Finished() with status %q = %v, want %v", tt.status, got, tt.want)
		}
	}
}
