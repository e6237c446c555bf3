// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/kinograph/internal/models"
)

type fakeWriter struct {
	mu      sync.Mutex
	batches [][]models.InteractionRecord
	fail    int // fail this many calls before succeeding
}

func (w *fakeWriter) InsertInteractions(_ context.Context, records []models.InteractionRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail > 0 {
		w.fail--
		return errors.New("duckdb write failed")
	}
	batch := make([]models.InteractionRecord, len(records))
	copy(batch, records)
	w.batches = append(w.batches, batch)
	return nil
}

func (w *fakeWriter) total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}

func TestConsumerBatchesAndFlushes(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	writer := &fakeWriter{}
	consumer := NewConsumer(pubsub, writer, 2, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	time.Sleep(20 * time.Millisecond) // let the subscription attach
	for i := int64(1); i <= 3; i++ {
		event := &InteractionEvent{UserID: i, FilmID: 100 + i, Strength: 4.0, EventTS: time.Now().UTC()}
		msg, err := event.Marshal()
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if err := pubsub.Publish(TopicInteractionRecorded, msg); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	deadline := time.After(2 * time.Second)
	for writer.total() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d records written before timeout", writer.total())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Batch size 2 means the first two records went together; the third
	// arrived via the interval flush.
	writer.mu.Lock()
	defer writer.mu.Unlock()
	if len(writer.batches) < 2 {
		t.Errorf("got %d batches, want >= 2", len(writer.batches))
	}
	if len(writer.batches[0]) != 2 {
		t.Errorf("first batch size = %d, want 2", len(writer.batches[0]))
	}
}

func TestConsumerDropsMalformedMessages(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	writer := &fakeWriter{}
	consumer := NewConsumer(pubsub, writer, 1, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	if err := pubsub.Publish(TopicInteractionRecorded, message.NewMessage("bad", []byte("not json"))); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	good := &InteractionEvent{UserID: 1, FilmID: 2, Strength: 5.0, EventTS: time.Now().UTC()}
	msg, _ := good.Marshal()
	if err := pubsub.Publish(TopicInteractionRecorded, msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for writer.total() < 1 {
		select {
		case <-deadline:
			t.Fatal("valid record never written")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
	if writer.total() != 1 {
		t.Errorf("wrote %d records, want 1 (malformed dropped)", writer.total())
	}
}

func TestFlushNacksOnWriteFailure(t *testing.T) {
	writer := &fakeWriter{fail: 1}
	consumer := NewConsumer(nil, writer, 10, time.Second)

	event := &InteractionEvent{UserID: 1, FilmID: 2, Strength: 4.0, EventTS: time.Now().UTC()}
	msg, err := event.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	batch := []pending{{msg: msg, record: event.Record()}}

	consumer.flush(context.Background(), batch)
	select {
	case <-msg.Nacked():
	default:
		t.Error("failed batch was not nacked")
	}
	if writer.total() != 0 {
		t.Errorf("wrote %d records on failure", writer.total())
	}

	// A fresh message flushes cleanly once the writer recovers.
	msg2, _ := event.Marshal()
	consumer.flush(context.Background(), []pending{{msg: msg2, record: event.Record()}})
	select {
	case <-msg2.Acked():
	default:
		t.Error("successful batch was not acked")
	}
	if writer.total() != 1 {
		t.Errorf("wrote %d records, want 1", writer.total())
	}
}

func TestFlushEmptyBatchIsNoop(t *testing.T) {
	consumer := NewConsumer(nil, &fakeWriter{}, 10, time.Second)
	consumer.flush(context.Background(), nil)
}
