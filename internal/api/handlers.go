// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

// Package api provides the HTTP surface of the behavioral authentication
// engine: login/logout, sample analysis, session and flag management,
// profile administration, and live flag streaming over WebSocket.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/safestride/safestride/internal/auth"
	"github.com/safestride/safestride/internal/behavior"
	"github.com/safestride/safestride/internal/config"
	"github.com/safestride/safestride/internal/flags"
	"github.com/safestride/safestride/internal/logging"
	"github.com/safestride/safestride/internal/session"
	"github.com/safestride/safestride/internal/users"
	ws "github.com/safestride/safestride/internal/websocket"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	config      *config.Config
	engine      *behavior.Engine
	sessions    *session.Ledger
	flags       *flags.Log
	users       *users.Store
	jwtManager  *auth.JWTManager
	wsHub       *ws.Hub
	securityLog *logging.SecurityLogger
	startTime   time.Time
}

// NewHandler creates a handler with all dependencies wired.
func NewHandler(cfg *config.Config, engine *behavior.Engine, sessions *session.Ledger, flagLog *flags.Log, userStore *users.Store, jwtManager *auth.JWTManager, wsHub *ws.Hub) *Handler {
	return &Handler{
		config:      cfg,
		engine:      engine,
		sessions:    sessions,
		flags:       flagLog,
		users:       userStore,
		jwtManager:  jwtManager,
		wsHub:       wsHub,
		securityLog: logging.NewSecurityLogger(),
		startTime:   time.Now(),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout for protection against slow clients.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins against the
// configured CORS origins. Browser WebSockets always send Origin; an
// empty header means a non-browser client and is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// Fail open for tests and development when config is absent
	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// WebSocket upgrades the connection and registers the client with the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
