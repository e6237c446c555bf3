// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package auth implements bearer-token request authentication with
// three modes selected by AUTH_MODE: "none" (open), "token" (static API
// tokens compared in constant time), and "jwt" (HS256 tokens issued to
// the admin user via the login endpoint, bcrypt-verified).
package auth
