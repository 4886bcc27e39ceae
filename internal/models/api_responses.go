// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

// Package models defines the wire types shared by the HTTP API.
package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. It provides consistent structure for both successful and
// error responses, with metadata for observability.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"score": 42.5, "recommendation": "reauthenticate"},
//	  "metadata": {
//	    "timestamp": "2026-08-30T12:00:00Z",
//	    "query_time_ms": 1
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "NOT_FOUND",
//	    "message": "Profile not found"
//	  },
//	  "metadata": {"timestamp": "2026-08-30T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339)
//   - QueryTimeMS: Handler execution time in milliseconds
//   - Cached: Whether response was served from cache (omitted if false)
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - INVALID_REQUEST: Malformed request body
//   - AUTHENTICATION_ERROR: Invalid/missing credentials
//   - NOT_FOUND: Resource doesn't exist
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// LoginRequest is a demo-mode login request. Any non-empty credentials
// are accepted; the interesting authentication happens continuously after
// login, not here.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResponse returns the signed session token plus the identifiers the
// client needs to submit behavior samples.
//
// Token usage:
//   - Sent as Authorization: Bearer <token> header
//   - Validated on every protected endpoint
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	SessionID string    `json:"session_id"`
}

// HealthStatus represents the system health check response
type HealthStatus struct {
	Status          string  `json:"status"`
	Version         string  `json:"version"`
	Strategy        string  `json:"strategy"`
	ActiveSessions  int     `json:"active_sessions"`
	TrackedProfiles int     `json:"tracked_profiles"`
	UnresolvedFlags int     `json:"unresolved_flags"`
	Uptime          float64 `json:"uptime_seconds"`
}

// SignalStats summarizes one behavioral signal's rolling history.
type SignalStats struct {
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Samples int     `json:"samples"`
}

// UserStats aggregates a user's behavioral state for the stats endpoint.
type UserStats struct {
	UserID          string      `json:"user_id"`
	Username        string      `json:"username"`
	DataPoints      int         `json:"data_points"`
	Typing          SignalStats `json:"typing"`
	Mouse           SignalStats `json:"mouse"`
	Scroll          SignalStats `json:"scroll"`
	SessionCount    int         `json:"session_count"`
	ActiveSessions  int         `json:"active_sessions"`
	FlagCount       int         `json:"flag_count"`
	UnresolvedFlags int         `json:"unresolved_flags"`
	LastLoginAt     time.Time   `json:"last_login_at"`
}
