// Kinograph - Film Recommendation and Hypergraph Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinograph

package api

import (
	"net/http"
)

// Health status values. A degraded service still serves rankings, with
// fewer signals; an unavailable one cannot serve them at all.
const (
	statusOK          = "ok"
	statusDegraded    = "degraded"
	statusFailing     = "failing"
	statusUnavailable = "unavailable"
)

// Health handles GET /api/v1/health.
//
// @Summary Full health report
// @Description Reports per-subsystem state. Missing optional upstreams degrade the service; a failing database or empty edge set makes it unavailable.
// @Tags Health
// @Produce json
// @Success 200 {object} healthResponse "Service is ok or degraded"
// @Failure 503 {object} healthResponse "Service is unavailable"
// @Router /api/v1/health [get]
func (rt *Router) Health(w http.ResponseWriter, r *http.Request) {
	report := rt.healthReport(r)
	status := http.StatusOK
	if report.Status == statusUnavailable {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// HealthLive handles GET /api/v1/health/live. Liveness only proves the
// process is serving; readiness is the real gate.
func (rt *Router) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": statusOK})
}

// HealthReady handles GET /api/v1/health/ready.
//
// @Summary Readiness check
// @Description Ready when the database answers and a finalized edge set exists. Unreachable optional upstreams do not block readiness.
// @Tags Health
// @Produce json
// @Success 200 {object} healthResponse "Ready"
// @Failure 503 {object} healthResponse "Not ready"
// @Router /api/v1/health/ready [get]
func (rt *Router) HealthReady(w http.ResponseWriter, r *http.Request) {
	report := rt.healthReport(r)
	status := http.StatusOK
	if report.Status == statusUnavailable {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (rt *Router) healthReport(r *http.Request) healthResponse {
	ctx := r.Context()
	checks := make(map[string]healthCheck)
	overall := statusOK

	if err := rt.store.Ping(ctx); err != nil {
		checks["database"] = healthCheck{Status: statusFailing, Detail: err.Error()}
		overall = statusUnavailable
	} else {
		checks["database"] = healthCheck{Status: statusOK}

		// Without a finalized edge set the engine has no graph to expand,
		// so the service is not ready even though the process is healthy.
		n, err := rt.store.CountHyperedges(ctx)
		switch {
		case err != nil:
			checks["edges"] = healthCheck{Status: statusFailing, Detail: err.Error()}
			overall = statusUnavailable
		case n == 0:
			checks["edges"] = healthCheck{Status: statusFailing, Detail: "no finalized edge set"}
			overall = statusUnavailable
		default:
			checks["edges"] = healthCheck{Status: statusOK}
		}
	}

	switch {
	case rt.vectors == nil:
		checks["vectorstore"] = healthCheck{Status: statusDegraded, Detail: "disabled"}
		if overall == statusOK {
			overall = statusDegraded
		}
	default:
		if err := rt.vectors.Healthy(ctx); err != nil {
			checks["vectorstore"] = healthCheck{Status: statusDegraded, Detail: err.Error()}
			if overall == statusOK {
				overall = statusDegraded
			}
		} else {
			checks["vectorstore"] = healthCheck{Status: statusOK}
		}
	}

	return healthResponse{Status: overall, Checks: checks}
}
