// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/kinograph/internal/database"
	"github.com/tomtom215/kinograph/internal/logging"
)

// GetFilm handles GET /api/v1/films/{id}.
//
// @Summary Get film metadata
// @Description Returns the film record plus whether an embedding is stored for it.
// @Tags Films
// @Produce json
// @Param id path int true "Film id"
// @Success 200 {object} filmResponse "Film metadata"
// @Failure 400 {object} errorBody "Invalid film id"
// @Failure 404 {object} errorBody "Film not found"
// @Router /api/v1/films/{id} [get]
func (rt *Router) GetFilm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid film id", "id must be a positive integer")
		return
	}

	film, err := rt.store.GetFilm(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "film not found", "")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int64("film_id", id).Msg("Film lookup failed")
		writeError(w, r, http.StatusInternalServerError, "film lookup failed", "")
		return
	}

	hasEmbedding := false
	if _, err := rt.store.GetEmbedding(r.Context(), id); err == nil {
		hasEmbedding = true
	} else if !errors.Is(err, database.ErrNotFound) {
		logging.Ctx(r.Context()).Warn().Err(err).Int64("film_id", id).Msg("Embedding lookup failed")
	}

	writeJSON(w, http.StatusOK, filmResponse{
		FilmID:       film.ID,
		Title:        film.Title,
		Genres:       film.GenreTokens(),
		Overview:     film.Overview,
		UpdatedAt:    film.UpdatedAt,
		HasEmbedding: hasEmbedding,
	})
}
