// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/safestride/safestride/internal/auth"
	"github.com/safestride/safestride/internal/behavior"
	"github.com/safestride/safestride/internal/models"
)

// Analyze scores one behavior sample against the caller's baseline and
// adapts the baseline from the sample. The anomaly score, recommendation,
// and any factors are returned to the client; flags are raised and
// broadcast as a side effect when the score crosses the profile threshold.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Missing session claims", nil)
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	sample := &behavior.Sample{
		TypingIntervalMS:  req.TypingIntervalMS,
		MouseEvents:       req.MouseEvents,
		ScrollEvents:      req.ScrollEvents,
		SessionDurationMS: req.SessionDurationMS,
		CollectedAt:       time.Now(),
	}

	analysis, err := h.engine.Process(r.Context(), claims.UserID, claims.SessionID, sample)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "ANALYSIS_FAILED", "Failed to analyze sample", err)
		return
	}

	if h.wsHub != nil {
		h.wsHub.BroadcastAnalysis(analysis)
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   analysis,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
