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

	"github.com/tomtom215/kinograph/internal/config"
)

const (
	// DefaultNATSImage is the official NATS server image.
	DefaultNATSImage = "nats:2.10-alpine"

	// DefaultNATSPort is the NATS client port.
	DefaultNATSPort = "4222"
)

// NATSContainer is a running JetStream-enabled NATS server for testing.
type NATSContainer struct {
	testcontainers.Container
	URL string
}

// NATSOption configures the NATS container.
type NATSOption func(*natsConfig)

type natsConfig struct {
	image        string
	startTimeout time.Duration
}

// WithNATSImage sets a custom NATS Docker image.
func WithNATSImage(image string) NATSOption {
	return func(c *natsConfig) {
		c.image = image
	}
}

// WithNATSStartTimeout sets the startup wait timeout.
func WithNATSStartTimeout(timeout time.Duration) NATSOption {
	return func(c *natsConfig) {
		c.startTimeout = timeout
	}
}

// NewNATSContainer creates and starts a NATS server with JetStream
// enabled. The returned URL is usable with nats.Connect.
func NewNATSContainer(ctx context.Context, opts ...NATSOption) (*NATSContainer, error) {
	cfg := &natsConfig{
		image:        DefaultNATSImage,
		startTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultNATSPort + "/tcp"},
		Cmd:          []string{"-js"},
		WaitingFor: wait.ForListeningPort(DefaultNATSPort + "/tcp").
			WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start NATS container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("NATS container host: %w", err)
	}
	port, err := container.MappedPort(ctx, DefaultNATSPort+"/tcp")
	if err != nil {
		return nil, fmt.Errorf("NATS container port: %w", err)
	}

	return &NATSContainer{
		Container: container,
		URL:       fmt.Sprintf("nats://%s:%s", host, port.Port()),
	}, nil
}

// Config returns a NATS configuration pointed at the container, with
// small batch and flush settings suited to fast tests.
func (n *NATSContainer) Config() *config.NATSConfig {
	return &config.NATSConfig{
		Enabled:       true,
		URL:           n.URL,
		MaxStore:      64 << 20,
		Stream:        "INTERACTIONS",
		DurableName:   "edge-ingest",
		QueueGroup:    "ingesters",
		BatchSize:     10,
		FlushInterval: 200 * time.Millisecond,
	}
}
