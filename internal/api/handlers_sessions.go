// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/safestride/safestride/internal/models"
)

// Sessions lists sessions in the ledger, newest first. The optional
// active query parameter filters by lifecycle state.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var sessions interface{}
	if active, present := getBoolParam(r, "active"); present {
		if active {
			sessions = h.sessions.ListActive()
		} else {
			ended := h.sessions.List()
			filtered := ended[:0]
			for _, s := range ended {
				if s.EndedAt != nil {
					filtered = append(filtered, s)
				}
			}
			sessions = filtered
		}
	} else {
		sessions = h.sessions.List()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   sessions,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// Session returns one session by ID.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Session not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   sess,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
