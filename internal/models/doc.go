// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package models defines the domain types shared across Kinograph: films,
// interaction records, hyperedges, and pipeline build records. Types here are
// storage- and transport-neutral; the database and API layers map them to
// their own representations.
package models
