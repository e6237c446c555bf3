// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/metrics"
)

// Publisher publishes interaction events to JetStream behind a circuit
// breaker. The message UUID doubles as the Nats-Msg-Id so the stream's
// deduplication window absorbs publish retries.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[interface{}]

	mu     sync.RWMutex
	closed bool
}

// NewPublisher connects a Watermill NATS publisher to url. The stream
// is pre-created by the consumer side, so auto-provisioning stays off.
func NewPublisher(url string) (*Publisher, error) {
	logger := NewWatermillLogger()

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	log := logging.WithComponent("eventprocessor")
	breaker := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "event-publish",
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

	return &Publisher{publisher: pub, breaker: breaker}, nil
}

// PublishInteraction validates, encodes, and publishes one event.
func (p *Publisher) PublishInteraction(_ context.Context, event *InteractionEvent) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	msg, err := event.Marshal()
	if err != nil {
		metrics.IngestEvents.WithLabelValues("invalid").Inc()
		return err
	}
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(TopicInteractionRecorded, msg)
	})
	if err != nil {
		metrics.IngestEvents.WithLabelValues("publish_error").Inc()
		return fmt.Errorf("publish interaction: %w", err)
	}
	metrics.IngestEvents.WithLabelValues("published").Inc()
	return nil
}

// Close shuts the publisher down. Idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
