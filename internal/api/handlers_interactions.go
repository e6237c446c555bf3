// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package api

import (
	"net/http"

	"github.com/tomtom215/kinograph/internal/eventprocessor"
	"github.com/tomtom215/kinograph/internal/logging"
)

// PostInteraction handles POST /api/v1/interactions. The event is
// published to the ingest stream and lands in the database once the
// batching consumer flushes it.
//
// @Summary Record a user-film interaction
// @Tags Interactions
// @Accept json
// @Produce json
// @Param request body interactionRequest true "Interaction event"
// @Success 202 {object} map[string]string "Event accepted"
// @Failure 400 {object} errorBody "Invalid event"
// @Failure 503 {object} errorBody "Ingest not available"
// @Router /api/v1/interactions [post]
func (rt *Router) PostInteraction(w http.ResponseWriter, r *http.Request) {
	if rt.publisher == nil {
		writeError(w, r, http.StatusServiceUnavailable, "ingest not available",
			"interaction ingest is disabled")
		return
	}

	var body interactionRequest
	if err := decodeAndValidate(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	event := &eventprocessor.InteractionEvent{
		UserID:   body.UserID,
		FilmID:   body.FilmID,
		Strength: body.Strength,
		EventTS:  body.EventTS,
	}
	if err := rt.publisher.PublishInteraction(r.Context(), event); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Int64("user_id", body.UserID).
			Int64("film_id", body.FilmID).
			Msg("Interaction publish failed")
		writeError(w, r, http.StatusServiceUnavailable, "ingest unavailable", "")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
