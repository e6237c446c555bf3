// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package config loads Kinograph configuration with Koanf v2 from three
// layered sources, highest priority last:
//
//  1. Built-in defaults (DefaultConfig)
//  2. Optional YAML config file (CONFIG_PATH or the default search paths)
//  3. Environment variables (explicit mapping, see koanf.go)
//
// The loaded Config is validated before use; an invalid configuration fails
// startup rather than degrading silently.
package config
