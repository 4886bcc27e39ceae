// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/safestride/safestride/internal/auth"
	"github.com/safestride/safestride/internal/config"
	"github.com/safestride/safestride/internal/middleware"
)

// Router wires handlers and middleware into the HTTP routing tree.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from the loaded configuration.
func NewRouter(cfg *config.Config, handler *Handler, authMiddleware *auth.Middleware) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Security.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Security.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled
	mwConfig.LoginRateLimitRequests = cfg.Security.LoginRateLimitReqs

	return &Router{
		handler:       handler,
		middleware:    authMiddleware,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so the auth middleware can be used
// with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes using Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware stack, applied to ALL routes in order
	r.Use(RequestIDWithLogging())      // Add X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	// Health endpoints: permissive rate limiting so monitoring tools can
	// poll freely
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Authentication endpoints. Login has the strictest rate limiting.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// Login carries both limiters: the token bucket keys on the
		// proxy-validated client IP, httprate on the connection address.
		r.With(
			chiMiddleware(router.middleware.RateLimit),
			router.chiMiddleware.RateLimitLogin(),
		).Post("/login", router.handler.Login)
		r.With(
			router.chiMiddleware.RateLimit(),
			chiMiddleware(router.middleware.Authenticate),
		).Post("/logout", router.handler.Logout)
	})

	// Sample analysis: the hot path. Clients stream samples continuously,
	// so the rate limit is generous but still bounded per IP.
	r.Route("/api/v1/behavior", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAnalyze())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.middleware.Authenticate))

		r.Post("/analyze", router.handler.Analyze)
	})

	// Core data endpoints, all authenticated
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.middleware.Authenticate))

		r.Get("/sessions", router.handler.Sessions)
		r.Get("/sessions/{id}", router.handler.Session)

		r.Get("/flags", router.handler.Flags)
		r.Post("/flags/{id}/resolve", router.handler.FlagResolve)

		r.Get("/profiles", router.handler.Profiles)
		r.Get("/profiles/{userID}", router.handler.Profile)
		r.Patch("/profiles/{userID}", router.handler.ProfileUpdate)
		r.Delete("/profiles/{userID}", router.handler.ProfileDelete)

		r.Get("/users", router.handler.Users)
		r.Get("/users/{userID}/stats", router.handler.UserStats)

		r.Get("/ws", router.handler.WebSocket)
	})

	// Observability
	r.Handle("/metrics", promhttp.Handler())

	return r
}
