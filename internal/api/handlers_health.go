// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package api

import (
	"net/http"
	"time"

	"github.com/safestride/safestride/internal/models"
)

// Version is the reported application version. Overridden at build time
// with -ldflags.
var Version = "1.0.0"

// Health returns overall system health: active strategy, session and
// profile counts, and uptime. The engine is in-process, so the check is
// always "healthy" once the process serves traffic.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := models.HealthStatus{
		Status:          "healthy",
		Version:         Version,
		Strategy:        string(h.engine.Strategy()),
		ActiveSessions:  h.sessions.CountActive(),
		TrackedProfiles: h.engine.Profiles().Count(),
		UnresolvedFlags: h.flags.CountUnresolved(),
		Uptime:          time.Since(h.startTime).Seconds(),
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Ready once the engine and token manager are wired.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.engine != nil && h.jwtManager != nil

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"engine_ready":   h.engine != nil,
			"auth_ready":     h.jwtManager != nil,
			"ready_to_serve": ready,
			"uptime":         time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
