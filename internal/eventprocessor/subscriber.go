// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/kinograph/internal/config"
)

// EnsureStream creates or updates the interactions stream. Idempotent;
// runs before publishers and subscribers start.
func EnsureStream(ctx context.Context, cfg *config.NATSConfig) error {
	nc, err := natsgo.Connect(cfg.URL)
	if err != nil {
		return fmt.Errorf("connect for stream init: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Subjects:    []string{TopicInteractionRecorded},
		Retention:   jetstream.LimitsPolicy,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		MaxBytes:    cfg.MaxStore,
		Duplicates:  2 * time.Minute,
		AllowDirect: true,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", cfg.Stream, err)
	}
	return nil
}

// NewSubscriber builds a durable JetStream subscriber bound to the
// pre-created interactions stream, queue-grouped for horizontal scale.
func NewSubscriber(cfg *config.NATSConfig) (message.Subscriber, error) {
	logger := NewWatermillLogger()

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
	}
	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(5),
		natsgo.MaxAckPending(4096),
		natsgo.AckWait(30 * time.Second),
		natsgo.DeliverNew(),
		natsgo.BindStream(cfg.Stream),
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision:    false,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    cfg.DurableName,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	return sub, nil
}
