// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/safestride/safestride/internal/behavior"
	"github.com/safestride/safestride/internal/models"
	"github.com/safestride/safestride/internal/session"
)

// Users lists all known users sorted by username.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.users.List(),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// UserStats aggregates a user's behavioral state: per-signal rolling
// statistics, session counts, and flag counts.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")

	user, ok := h.users.Get(userID)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
		return
	}

	stats := models.UserStats{
		UserID:      user.ID,
		Username:    user.Username,
		LastLoginAt: user.LastLoginAt,
	}

	if profile, ok := h.engine.Profiles().Get(userID); ok {
		stats.DataPoints = profile.DataPoints
		if profile.History != nil {
			stats.Typing = signalStats(profile.History.Typing)
			stats.Mouse = signalStats(profile.History.Mouse)
			stats.Scroll = signalStats(profile.History.Scroll)
		}
	}

	userSessions := h.sessions.ListByUser(userID)
	stats.SessionCount = len(userSessions)
	for _, s := range userSessions {
		if s.Status == session.StatusActive {
			stats.ActiveSessions++
		}
	}

	userFlags := h.flags.ByUser(userID)
	stats.FlagCount = len(userFlags)
	for _, f := range userFlags {
		if !f.Resolved {
			stats.UnresolvedFlags++
		}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// signalStats summarizes one rolling window.
func signalStats(window *behavior.SampleWindow) models.SignalStats {
	if window == nil {
		return models.SignalStats{}
	}
	return models.SignalStats{
		Mean:    window.Mean(),
		StdDev:  window.StdDev(),
		Samples: window.Len(),
	}
}
