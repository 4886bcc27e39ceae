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
	"github.com/safestride/safestride/internal/metrics"
	"github.com/safestride/safestride/internal/models"
	"github.com/safestride/safestride/internal/session"
)

// Login authenticates a user and opens a new behavioral session.
//
// Credential checking is demo-mode: any non-empty username/password pair
// is accepted. The session token it returns is only the entry ticket;
// the session is continuously re-verified from behavior samples, and the
// engine can lock it at any point after login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		h.securityLog.LogLoginFailure(req.Username, r.RemoteAddr, "validation failed")
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if h.jwtManager == nil {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "Token manager not initialized", nil)
		return
	}

	user := h.users.Login(req.Username)
	sess := h.sessions.Create(user.ID)
	metrics.RecordSessionCreated()

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, sess.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate session token", err)
		return
	}

	expiresAt := time.Now().Add(h.config.Security.SessionTimeout)
	h.setAuthCookie(w, r, token, expiresAt)
	h.securityLog.LogLoginSuccess(user.ID, user.Username, sess.ID, r.RemoteAddr)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			UserID:    user.ID,
			Username:  user.Username,
			SessionID: sess.ID,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// setAuthCookie sets the authentication cookie
func (h *Handler) setAuthCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// Logout ends the session bound to the caller's token. Ending is one-way
// and idempotent; logging out twice is not an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Missing session claims", nil)
		return
	}

	sess, found := h.sessions.Get(claims.SessionID)
	wasActive := found && sess.Status == session.StatusActive

	if h.sessions.End(claims.SessionID) && wasActive {
		metrics.RecordSessionEnded()
		if h.wsHub != nil {
			h.wsHub.BroadcastSessionEnded(claims.SessionID, claims.UserID, sess.LastScore)
		}
	}

	h.securityLog.LogLogout(claims.UserID, claims.SessionID, r.RemoteAddr)

	// Expire the cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"session_id": claims.SessionID,
			"ended":      true,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
