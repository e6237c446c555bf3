// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package main provides the Kinograph HTTP server
//
// @title Kinograph API
// @version 1.0
// @description Graph-fused film recommendation service.
// @description
// @description Vector-similarity seeds are expanded over a co-watch and
// @description shared-genre hyperedge graph; the similarity, co-watch, and
// @description genre signals are min-max normalized per request and fused
// @description into one ranking with caller-adjustable weights.
// @description
// @description ## Authentication
// @description
// @description AUTH_MODE selects none, token (static bearer tokens), or jwt.
// @description In jwt mode obtain a token via /api/v1/auth/login and send it
// @description as an Authorization: Bearer header.
// @description
// @description ## Error responses
// @description
// @description ```json
// @description {"error": "message", "detail": "optional detail", "request_id": "uuid"}
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/kinograph/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8343
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token. In jwt mode obtain one via /api/v1/auth/login.
//
// @tag.name Recommendations
// @tag.description Graph-fused ranking endpoints (query, similar, user modes)
//
// @tag.name Films
// @tag.description Film metadata lookups
//
// @tag.name Interactions
// @tag.description Interaction event ingest
//
// @tag.name Admin
// @tag.description Build registry visibility and pipeline triggers
//
// @tag.name Health
// @tag.description Liveness and readiness probes
//
// @tag.name Auth
// @tag.description Token issuance
package main
