// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/recommend"
)

// GraphRecommend handles POST /api/v1/graph/recommend.
//
// @Summary Rank films for a free-text query
// @Description Embeds the query text, retrieves vector seeds, expands them over the hyperedge graph, and returns the fused ranking.
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body graphRecommendRequest true "Query and ranking overrides"
// @Success 200 {object} recommend.Response "Ranked results"
// @Failure 400 {object} errorBody "Invalid request"
// @Router /api/v1/graph/recommend [post]
func (rt *Router) GraphRecommend(w http.ResponseWriter, r *http.Request) {
	var body graphRecommendRequest
	if err := decodeAndValidate(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	req := recommend.Request{Mode: recommend.ModeQuery, Query: body.Query}
	body.rankingKnobs.apply(&req)
	rt.serveRanking(w, r, req)
}

// SearchSimilar handles POST /api/v1/search/similar.
//
// @Summary Rank films similar to a film
// @Description Seeds from the film's stored vector, or embeds the free-text query when no film id is given. The query film is excluded from results.
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body searchSimilarRequest true "Film id or query text plus ranking overrides"
// @Success 200 {object} recommend.Response "Ranked results"
// @Failure 400 {object} errorBody "Invalid request"
// @Failure 404 {object} errorBody "Film not found"
// @Router /api/v1/search/similar [post]
func (rt *Router) SearchSimilar(w http.ResponseWriter, r *http.Request) {
	var body searchSimilarRequest
	if err := decodeAndValidate(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if body.FilmID <= 0 && body.Query == "" {
		writeError(w, r, http.StatusBadRequest, "invalid request", "film_id or query is required")
		return
	}

	req := recommend.Request{
		Mode:       recommend.ModeSimilar,
		FilmID:     body.FilmID,
		Query:      body.Query,
		ExcludeIDs: body.ExcludeIDs,
	}
	body.rankingKnobs.apply(&req)
	rt.serveRanking(w, r, req)
}

// SearchRecommend handles POST /api/v1/search/recommend.
//
// @Summary Rank films for a user
// @Description Builds the user's profile vector from liked films, retrieves seeds, and returns the fused ranking.
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body searchRecommendRequest true "User id, exclusions, and ranking overrides"
// @Success 200 {object} recommend.Response "Ranked results"
// @Failure 400 {object} errorBody "Invalid request"
// @Router /api/v1/search/recommend [post]
func (rt *Router) SearchRecommend(w http.ResponseWriter, r *http.Request) {
	var body searchRecommendRequest
	if err := decodeAndValidate(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	req := recommend.Request{
		Mode:       recommend.ModeUser,
		UserID:     body.UserID,
		ExcludeIDs: body.ExcludeIDs,
	}
	body.rankingKnobs.apply(&req)
	rt.serveRanking(w, r, req)
}

// serveRanking runs one engine request and maps engine errors onto HTTP
// statuses.
func (rt *Router) serveRanking(w http.ResponseWriter, r *http.Request, req recommend.Request) {
	resp, err := rt.engine.Recommend(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, recommend.ErrValidation):
		writeError(w, r, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, recommend.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "film not found", "")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("mode", req.Mode).Msg("Ranking request failed")
		writeError(w, r, http.StatusInternalServerError, "ranking failed", "")
	}
}
