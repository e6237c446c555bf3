// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"

	"github.com/tomtom215/kinograph/internal/models"
)

// TopicInteractionRecorded carries one user-film interaction.
const TopicInteractionRecorded = "interaction.recorded"

// InteractionEvent is the wire form of an interaction.
type InteractionEvent struct {
	UserID   int64     `json:"user_id"`
	FilmID   int64     `json:"film_id"`
	Strength float64   `json:"strength"`
	EventTS  time.Time `json:"event_ts"`
}

// Validate checks the structural requirements before publish or insert.
func (e *InteractionEvent) Validate() error {
	if e.UserID <= 0 {
		return fmt.Errorf("interaction event: non-positive user_id %d", e.UserID)
	}
	if e.FilmID <= 0 {
		return fmt.Errorf("interaction event: non-positive film_id %d", e.FilmID)
	}
	if e.Strength <= 0 {
		return fmt.Errorf("interaction event: non-positive strength %v", e.Strength)
	}
	return nil
}

// Record converts the event to the storage model. A zero timestamp is
// stamped with the current time.
func (e *InteractionEvent) Record() models.InteractionRecord {
	ts := e.EventTS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return models.InteractionRecord{
		UserID:    e.UserID,
		FilmID:    e.FilmID,
		Strength:  e.Strength,
		Timestamp: ts,
	}
}

// Marshal encodes the event into a Watermill message with a fresh UUID.
func (e *InteractionEvent) Marshal() (*message.Message, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode interaction event: %w", err)
	}
	return message.NewMessage(watermill.NewUUID(), payload), nil
}

// UnmarshalInteraction decodes and validates one message payload.
func UnmarshalInteraction(msg *message.Message) (*InteractionEvent, error) {
	var event InteractionEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("decode interaction event %s: %w", msg.UUID, err)
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}
