// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package hypergraph

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/models"
)

// ErrBuildNotFound is returned when the registry has no record for an id.
var ErrBuildNotFound = errors.New("hypergraph: build not found")

const buildKeyPrefix = "build:"

// Registry is the Badger-backed build ledger. Every stage transition is
// persisted, so crashed runs stay inspectable and a resumed run knows which
// partitions already completed.
type Registry struct {
	db *badger.DB
}

// OpenRegistry opens (or creates) the registry at dir.
func OpenRegistry(dir string) (*Registry, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // badger's own logger is noisy; zerolog covers it
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open build registry at %s: %w", dir, err)
	}
	return &Registry{db: db}, nil
}

// Close closes the underlying store.
func (r *Registry) Close() error {
	return r.db.Close()
}

// NewBuild creates and persists a fresh running build record.
func (r *Registry) NewBuild(partitions int) (*models.Build, error) {
	b := &models.Build{
		ID:         uuid.NewString(),
		Status:     models.BuildRunning,
		Stage:      models.StageExtract,
		Partitions: partitions,
		StartedAt:  time.Now().UTC(),
	}
	if err := r.Put(b); err != nil {
		return nil, err
	}
	logging.Info().Str("build_id", b.ID).Int("partitions", partitions).Msg("Build started")
	return b, nil
}

// Put persists a build record.
func (r *Registry) Put(b *models.Build) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal build %s: %w", b.ID, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(buildKeyPrefix+b.ID), data)
	})
	if err != nil {
		return fmt.Errorf("store build %s: %w", b.ID, err)
	}
	return nil
}

// Get retrieves a build record by id.
func (r *Registry) Get(id string) (*models.Build, error) {
	var b models.Build
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(buildKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrBuildNotFound
		}
		if err != nil {
			return fmt.Errorf("get build: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &b)
		})
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns all build records, newest first.
func (r *Registry) List() ([]models.Build, error) {
	var builds []models.Build
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(buildKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var b models.Build
				if err := json.Unmarshal(val, &b); err != nil {
					return fmt.Errorf("decode build record: %w", err)
				}
				builds = append(builds, b)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}

	sort.Slice(builds, func(i, j int) bool {
		return builds[i].StartedAt.After(builds[j].StartedAt)
	})
	return builds, nil
}

// Latest returns the most recently started build, or ErrBuildNotFound when
// the registry is empty.
func (r *Registry) Latest() (*models.Build, error) {
	builds, err := r.List()
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, ErrBuildNotFound
	}
	return &builds[0], nil
}

// Running returns the latest build still in progress, or ErrBuildNotFound.
// The scheduler uses it to skip a rebuild while one is underway.
func (r *Registry) Running() (*models.Build, error) {
	builds, err := r.List()
	if err != nil {
		return nil, err
	}
	for i := range builds {
		if !builds[i].Finished() {
			return &builds[i], nil
		}
	}
	return nil, ErrBuildNotFound
}
