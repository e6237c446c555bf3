// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

// Package testinfra manages Docker containers for integration tests.
//
// It uses testcontainers-go to start real NATS and Qdrant instances so
// integration tests run against the same servers production talks to
// instead of mocks.
//
// # NATS Container
//
// NewNATSContainer starts a JetStream-enabled NATS server. Its Config
// method returns a ready-to-use NATS configuration bound to the
// container's client URL:
//
//	func TestIngest(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    nats, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, nats)
//
//	    cfg := nats.Config()
//	    // publish and consume against cfg.URL
//	}
//
// # Qdrant Container
//
// NewQdrantContainer starts a Qdrant vector database exposing its HTTP
// API on the container's mapped port.
//
// # CI Considerations
//
// These tests require Docker and network access and are guarded by the
// integration build tag. SkipIfNoDocker skips gracefully when no
// daemon is reachable, so plain `go test ./...` stays green without
// Docker.
package testinfra
