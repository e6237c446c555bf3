// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/metrics"
	"github.com/tomtom215/kinograph/internal/models"
)

// InteractionWriter persists interaction batches. *database.DB
// satisfies it.
type InteractionWriter interface {
	InsertInteractions(ctx context.Context, records []models.InteractionRecord) error
}

// MessageSource is the subscriber surface the consumer drains.
type MessageSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// pending pairs a decoded record with the message it must ack once the
// batch commits.
type pending struct {
	msg    *message.Message
	record models.InteractionRecord
}

// Consumer drains interaction.recorded into DuckDB in batches. Messages
// stay un-acked until their batch commits, so a crash redelivers them.
type Consumer struct {
	source        MessageSource
	writer        InteractionWriter
	breaker       *gobreaker.CircuitBreaker[interface{}]
	batchSize     int
	flushInterval time.Duration
}

// NewConsumer wires a batching consumer. batchSize and flushInterval
// fall back to sane defaults when unset.
func NewConsumer(source MessageSource, writer InteractionWriter, batchSize int, flushInterval time.Duration) *Consumer {
	if batchSize <= 0 {
		batchSize = 1000
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}

	log := logging.WithComponent("eventprocessor")
	breaker := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "ingest-writer",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &Consumer{
		source:        source,
		writer:        writer,
		breaker:       breaker,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Run consumes until ctx is cancelled, flushing the final partial batch
// before returning.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.source.Subscribe(ctx, TopicInteractionRecorded)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicInteractionRecorded, err)
	}

	logging.Info().
		Str("component", "eventprocessor").
		Str("topic", TopicInteractionRecorded).
		Int("batch_size", c.batchSize).
		Dur("flush_interval", c.flushInterval).
		Msg("Interaction consumer started")

	batch := make([]pending, 0, c.batchSize)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.flush(context.Background(), batch)
			return nil

		case <-ticker.C:
			if len(batch) > 0 {
				c.flush(ctx, batch)
				batch = batch[:0]
			}

		case msg, ok := <-messages:
			if !ok {
				c.flush(context.Background(), batch)
				return nil
			}

			event, err := UnmarshalInteraction(msg)
			if err != nil {
				// Malformed payloads never become valid; ack to drop.
				logging.Warn().
					Str("component", "eventprocessor").
					Str("message_id", msg.UUID).
					Err(err).
					Msg("Dropping undecodable interaction event")
				metrics.IngestEvents.WithLabelValues("invalid").Inc()
				msg.Ack()
				continue
			}

			batch = append(batch, pending{msg: msg, record: event.Record()})
			if len(batch) >= c.batchSize {
				c.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

// flush writes one batch through the circuit breaker, acking on success
// and nacking for redelivery on failure.
func (c *Consumer) flush(ctx context.Context, batch []pending) {
	if len(batch) == 0 {
		return
	}

	records := make([]models.InteractionRecord, len(batch))
	for i, p := range batch {
		records[i] = p.record
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.writer.InsertInteractions(ctx, records)
	})
	if err != nil {
		logging.Error().
			Str("component", "eventprocessor").
			Int("batch", len(batch)).
			Err(err).
			Msg("Interaction batch write failed, nacking for redelivery")
		for _, p := range batch {
			p.msg.Nack()
		}
		metrics.IngestEvents.WithLabelValues("write_error").Add(float64(len(batch)))
		return
	}

	for _, p := range batch {
		p.msg.Ack()
	}
	metrics.IngestEvents.WithLabelValues("consumed").Add(float64(len(batch)))
	metrics.IngestBatchSize.Observe(float64(len(batch)))
}
