// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/kinograph/internal/auth"
	"github.com/tomtom215/kinograph/internal/hypergraph"
	"github.com/tomtom215/kinograph/internal/logging"
	"github.com/tomtom215/kinograph/internal/models"
	"github.com/tomtom215/kinograph/internal/supervisor"
)

// Login handles POST /api/v1/auth/login. Only meaningful in jwt mode.
//
// @Summary Issue a JWT for admin credentials
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Admin credentials"
// @Success 200 {object} loginResponse "Signed token"
// @Failure 401 {object} errorBody "Invalid credentials"
// @Router /api/v1/auth/login [post]
func (rt *Router) Login(w http.ResponseWriter, r *http.Request) {
	if rt.authn.Mode() != auth.ModeJWT {
		writeError(w, r, http.StatusBadRequest, "login unavailable",
			"token issuance requires jwt auth mode")
		return
	}

	var body loginRequest
	if err := decodeAndValidate(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	token, err := rt.authn.Login(body.Username, body.Password)
	if err != nil {
		// One message for both unknown user and wrong password.
		writeError(w, r, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(rt.cfg.Security.TokenTTL).UTC(),
	})
}

// ListBuilds handles GET /api/v1/admin/builds.
//
// @Summary List pipeline builds
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Build "Builds, newest first"
// @Router /api/v1/admin/builds [get]
func (rt *Router) ListBuilds(w http.ResponseWriter, r *http.Request) {
	builds, err := rt.registry.List()
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Build listing failed")
		writeError(w, r, http.StatusInternalServerError, "build listing failed", "")
		return
	}
	if builds == nil {
		builds = []models.Build{}
	}
	writeJSON(w, http.StatusOK, builds)
}

// GetBuild handles GET /api/v1/admin/builds/{id}.
//
// @Summary Get one pipeline build
// @Tags Admin
// @Produce json
// @Param id path string true "Build id"
// @Success 200 {object} models.Build "Build record"
// @Failure 404 {object} errorBody "Build not found"
// @Router /api/v1/admin/builds/{id} [get]
func (rt *Router) GetBuild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	build, err := rt.registry.Get(id)
	if errors.Is(err, hypergraph.ErrBuildNotFound) {
		writeError(w, r, http.StatusNotFound, "build not found", "")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("build_id", id).Msg("Build lookup failed")
		writeError(w, r, http.StatusInternalServerError, "build lookup failed", "")
		return
	}
	writeJSON(w, http.StatusOK, build)
}

// TriggerRebuild handles POST /api/v1/admin/rebuild. The build runs in
// the background; poll the builds endpoints for progress.
//
// @Summary Start an asynchronous pipeline rebuild
// @Tags Admin
// @Produce json
// @Success 202 {object} rebuildResponse "Build accepted"
// @Failure 409 {object} errorBody "A build is already running"
// @Failure 503 {object} errorBody "Rebuilds not available"
// @Router /api/v1/admin/rebuild [post]
func (rt *Router) TriggerRebuild(w http.ResponseWriter, r *http.Request) {
	if rt.rebuilder == nil {
		writeError(w, r, http.StatusServiceUnavailable, "rebuilds not available", "")
		return
	}

	if running, err := rt.registry.Running(); err == nil && running != nil {
		writeError(w, r, http.StatusConflict, "a build is already running", running.ID)
		return
	}

	build, err := rt.rebuilder.TriggerRebuild(r.Context())
	if errors.Is(err, supervisor.ErrBuildInProgress) {
		writeError(w, r, http.StatusConflict, "a build is already running", "")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Rebuild trigger failed")
		writeError(w, r, http.StatusInternalServerError, "rebuild trigger failed", "")
		return
	}

	logging.Ctx(r.Context()).Info().Str("build_id", build.ID).Msg("Rebuild triggered")
	writeJSON(w, http.StatusAccepted, rebuildResponse{
		BuildID: build.ID,
		Status:  string(build.Status),
	})
}
