// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultQdrantImage is the official Qdrant image.
	DefaultQdrantImage = "qdrant/qdrant:v1.12.4"

	// DefaultQdrantPort is Qdrant's HTTP API port.
	DefaultQdrantPort = "6333"
)

// QdrantContainer is a running Qdrant instance for testing. URL points
// at the HTTP API.
type QdrantContainer struct {
	testcontainers.Container
	URL string
}

// QdrantOption configures the Qdrant container.
type QdrantOption func(*qdrantConfig)

type qdrantConfig struct {
	image        string
	startTimeout time.Duration
}

// WithQdrantImage sets a custom Qdrant Docker image.
func WithQdrantImage(image string) QdrantOption {
	return func(c *qdrantConfig) {
		c.image = image
	}
}

// WithQdrantStartTimeout sets the startup wait timeout.
func WithQdrantStartTimeout(timeout time.Duration) QdrantOption {
	return func(c *qdrantConfig) {
		c.startTimeout = timeout
	}
}

// NewQdrantContainer creates and starts a Qdrant vector database.
func NewQdrantContainer(ctx context.Context, opts ...QdrantOption) (*QdrantContainer, error) {
	cfg := &qdrantConfig{
		image:        DefaultQdrantImage,
		startTimeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultQdrantPort + "/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultQdrantPort+"/tcp"),
			wait.ForHTTP("/readyz").WithPort(DefaultQdrantPort+"/tcp"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start Qdrant container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("Qdrant container host: %w", err)
	}
	port, err := container.MappedPort(ctx, DefaultQdrantPort+"/tcp")
	if err != nil {
		return nil, fmt.Errorf("Qdrant container port: %w", err)
	}

	return &QdrantContainer{
		Container: container,
		URL:       fmt.Sprintf("http://%s:%s", host, port.Port()),
	}, nil
}
