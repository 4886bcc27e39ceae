// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/safestride/safestride/internal/metrics"
	"github.com/safestride/safestride/internal/models"
)

// Flags lists raised anomaly flags, newest first. Optional filters:
// session_id and user_id narrow the listing.
func (h *Handler) Flags(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var list interface{}
	switch {
	case r.URL.Query().Get("session_id") != "":
		list = h.flags.BySession(r.URL.Query().Get("session_id"))
	case r.URL.Query().Get("user_id") != "":
		list = h.flags.ByUser(r.URL.Query().Get("user_id"))
	default:
		list = h.flags.All()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   list,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// FlagResolve marks a flag as resolved. Resolution is one-way and
// idempotent; resolving an already-resolved flag succeeds quietly.
func (h *Handler) FlagResolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	flag, ok := h.flags.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Flag not found", nil)
		return
	}
	alreadyResolved := flag.Resolved

	if !h.flags.Resolve(id) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Flag not found", nil)
		return
	}
	if !alreadyResolved {
		metrics.RecordFlagResolved()
	}

	resolved, _ := h.flags.Get(id)
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   resolved,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
