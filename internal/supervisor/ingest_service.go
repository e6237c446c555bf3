// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package supervisor

import (
	"context"
	"fmt"
)

// ConsumerRunner matches the ingest consumer's blocking run loop.
// Satisfied by *eventprocessor.Consumer.
type ConsumerRunner interface {
	Run(ctx context.Context) error
}

// IngestService runs the interaction ingest consumer under supervision.
// The consumer flushes its final batch on cancellation before returning,
// so a supervised restart never loses acked messages.
type IngestService struct {
	consumer ConsumerRunner
}

// NewIngestService wraps the ingest consumer as a supervised service.
func NewIngestService(consumer ConsumerRunner) *IngestService {
	return &IngestService{consumer: consumer}
}

// Serve implements suture.Service.
func (s *IngestService) Serve(ctx context.Context) error {
	if err := s.consumer.Run(ctx); err != nil {
		return fmt.Errorf("ingest consumer: %w", err)
	}
	return ctx.Err()
}

func (s *IngestService) String() string { return "ingest-consumer" }
