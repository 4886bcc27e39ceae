// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/safestride/safestride/internal/behavior"
	"github.com/safestride/safestride/internal/logging"
	"github.com/safestride/safestride/internal/metrics"
	"github.com/safestride/safestride/internal/models"
)

// Profiles lists all tracked behavioral profiles.
func (h *Handler) Profiles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.engine.Profiles().List(),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// Profile returns one user's behavioral profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	profile, ok := h.engine.Profiles().Get(userID)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   profile,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// ProfileUpdate applies manual baseline or threshold overrides to a
// user's profile. Only the fields present in the request are changed;
// the profile keeps adapting from samples afterwards.
func (h *Handler) ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if _, ok := h.engine.Profiles().Get(userID); !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", nil)
		return
	}

	h.engine.Profiles().Mutate(userID, func(p *behavior.Profile) {
		if req.TypingBaselineMS != nil {
			p.TypingBaselineMS = *req.TypingBaselineMS
		}
		if req.MouseBaseline != nil {
			p.MouseBaseline = *req.MouseBaseline
		}
		if req.ScrollBaseline != nil {
			p.ScrollBaseline = *req.ScrollBaseline
		}
		if req.AnomalyThreshold != nil {
			p.AnomalyThreshold = *req.AnomalyThreshold
		}
		p.UpdatedAt = time.Now()
	})

	logging.Ctx(r.Context()).Info().
		Str("user_id", logging.SanitizeUserID(userID)).
		Msg("profile updated by operator")

	updated, _ := h.engine.Profiles().Get(userID)
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   updated,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// ProfileDelete removes a user's profile and history. The next sample
// from the user re-creates the profile from seed defaults.
func (h *Handler) ProfileDelete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if !h.engine.Profiles().Delete(userID) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", nil)
		return
	}
	metrics.SetProfilesTracked(h.engine.Profiles().Count())

	logging.Ctx(r.Context()).Info().
		Str("user_id", logging.SanitizeUserID(userID)).
		Msg("profile deleted")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"user_id": userID,
			"deleted": true,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
