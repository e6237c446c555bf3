// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

//go:build integration

package eventprocessor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/kinograph/internal/eventprocessor"
	"github.com/tomtom215/kinograph/internal/models"
	"github.com/tomtom215/kinograph/internal/testinfra"
)

// memWriter collects inserted batches in memory.
type memWriter struct {
	mu      sync.Mutex
	records []models.InteractionRecord
}

func (w *memWriter) InsertInteractions(_ context.Context, records []models.InteractionRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, records...)
	return nil
}

func (w *memWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.records)
}

// TestIngestRoundTrip publishes interactions through a real JetStream
// server and verifies the consumer drains them into the writer.
func TestIngestRoundTrip(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	nats, err := testinfra.NewNATSContainer(ctx)
	if err != nil {
		t.Fatalf("start NATS: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, nats)

	cfg := nats.Config()
	if err := eventprocessor.EnsureStream(ctx, cfg); err != nil {
		t.Fatalf("EnsureStream: %v", err)
	}

	sub, err := eventprocessor.NewSubscriber(cfg)
	if err != nil {
		t.Fatalf("NewSubscriber: %v", err)
	}

	writer := &memWriter{}
	consumer := eventprocessor.NewConsumer(sub, writer, cfg.BatchSize, cfg.FlushInterval)

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- consumer.Run(runCtx) }()

	pub, err := eventprocessor.NewPublisher(cfg.URL)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	defer pub.Close()

	const events = 25
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < events; i++ {
		ev := &eventprocessor.InteractionEvent{
			UserID:   int64(i%5 + 1),
			FilmID:   int64(i + 100),
			Strength: 1.0,
			EventTS:  base,
		}
		if err := pub.PublishInteraction(ctx, ev); err != nil {
			t.Fatalf("publish event %d: %v", i, err)
		}
	}

	err = testinfra.WaitForReady(ctx, func() bool {
		return writer.count() >= events
	}, 60*time.Second)
	if err != nil {
		t.Fatalf("waiting for %d records, got %d: %v", events, writer.count(), err)
	}

	stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("consumer returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}

	seen := make(map[int64]bool)
	writer.mu.Lock()
	for _, r := range writer.records {
		if r.Strength != 1.0 {
			t.Errorf("film %d: strength = %v, want 1.0", r.FilmID, r.Strength)
		}
		if !r.Timestamp.Equal(base) {
			t.Errorf("film %d: timestamp = %v, want %v", r.FilmID, r.Timestamp, base)
		}
		seen[r.FilmID] = true
	}
	writer.mu.Unlock()

	for i := 0; i < events; i++ {
		if !seen[int64(i+100)] {
			t.Errorf("film %d never arrived", i+100)
		}
	}
}
