// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

// Package main is the SafeStride server entry point.
//
// Startup wires the in-memory stores (user directory, session ledger,
// flag log, profile store), the behavior analysis engine, the WebSocket
// hub, and the chi HTTP API, then hands all long-running components to a
// suture supervisor tree for lifecycle management. Shutdown is triggered
// by SIGINT or SIGTERM and drains the tree through its layer supervisors.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safestride/safestride/internal/api"
	"github.com/safestride/safestride/internal/auth"
	"github.com/safestride/safestride/internal/behavior"
	"github.com/safestride/safestride/internal/config"
	"github.com/safestride/safestride/internal/flags"
	"github.com/safestride/safestride/internal/logging"
	"github.com/safestride/safestride/internal/metrics"
	"github.com/safestride/safestride/internal/session"
	"github.com/safestride/safestride/internal/supervisor"
	"github.com/safestride/safestride/internal/supervisor/services"
	"github.com/safestride/safestride/internal/users"
	ws "github.com/safestride/safestride/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("strategy", cfg.Behavior.Strategy).
		Str("environment", cfg.Server.Environment).
		Msg("Starting SafeStride with supervisor tree")

	metrics.SetAppInfo(api.Version)

	// In-memory stores. Profiles are created lazily on first analysis
	// using the configured seed values.
	userStore := users.NewStore()
	ledger := session.NewLedger()
	flagLog := flags.NewLog()
	profiles := behavior.NewMemoryProfileStore(behavior.ProfileSeed{
		TypingBaselineMS: cfg.Behavior.TypingBaselineMS,
		MouseBaseline:    cfg.Behavior.MouseBaseline,
		ScrollBaseline:   cfg.Behavior.ScrollBaseline,
		AnomalyThreshold: cfg.Behavior.AnomalyThreshold,
	}, cfg.Behavior.HistoryCapacity)

	engine := behavior.NewEngine(behavior.EngineConfig{
		Strategy:        behavior.StrategyType(cfg.Behavior.Strategy),
		LearningRate:    cfg.Behavior.LearningRate,
		HistoryCapacity: cfg.Behavior.HistoryCapacity,
		Seed: behavior.ProfileSeed{
			TypingBaselineMS: cfg.Behavior.TypingBaselineMS,
			MouseBaseline:    cfg.Behavior.MouseBaseline,
			ScrollBaseline:   cfg.Behavior.ScrollBaseline,
			AnomalyThreshold: cfg.Behavior.AnomalyThreshold,
		},
	}, profiles, ledger, flagLog)

	// Create WebSocket hub for real-time updates and connect it to the
	// engine so raised flags are pushed to dashboard clients.
	wsHub := ws.NewHub()
	engine.SetBroadcaster(wsHub)

	// JWT manager for session tokens
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	authMiddleware := auth.NewMiddleware(
		jwtManager,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
		cfg.Security.TrustedProxies,
	)
	defer authMiddleware.Stop()

	handler := api.NewHandler(cfg, engine, ledger, flagLog, userStore, jwtManager, wsHub)
	router := api.NewRouter(cfg, handler, authMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Structured logger for supervisor using our slog adapter.
	// This bridges zerolog to slog for sutureslog compatibility.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Messaging layer services: WebSocket hub and the behavior engine's
	// maintenance loop.
	tree.AddMessagingService(services.NewRunnerService("websocket-hub", wsHub))
	tree.AddMessagingService(services.NewRunnerService("behavior-engine", engine))
	logging.Info().Msg("Messaging services added to supervisor tree")

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("SafeStride stopped gracefully")
}
