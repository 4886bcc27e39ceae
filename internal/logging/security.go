// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityLogger provides audit logging for authentication and session
// events. It sanitizes identifiers before they reach the log stream.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a new security logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: With().Str("component", "auth").Logger(),
	}
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// LogLoginSuccess logs a successful login.
func (l *SecurityLogger) LogLoginSuccess(userID, username, sessionID, ip string) {
	l.logger.Info().
		Str("event", "login_success").
		Str("user_id", SanitizeUserID(userID)).
		Str("username", SanitizeUsername(username)).
		Str("session_id", SanitizeSessionID(sessionID)).
		Str("ip", ip).
		Msg("Login")
}

// LogLoginFailure logs a rejected login attempt.
func (l *SecurityLogger) LogLoginFailure(username, ip, reason string) {
	l.logger.Warn().
		Str("event", "login_failure").
		Str("username", SanitizeUsername(username)).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Login rejected")
}

// LogLogout logs a session ended by the user.
func (l *SecurityLogger) LogLogout(userID, sessionID, ip string) {
	l.logger.Info().
		Str("event", "logout").
		Str("user_id", SanitizeUserID(userID)).
		Str("session_id", SanitizeSessionID(sessionID)).
		Str("ip", ip).
		Msg("Logout")
}

// LogSessionLocked logs a session locked by the behavior engine.
func (l *SecurityLogger) LogSessionLocked(userID, sessionID string, score float64) {
	l.logger.Warn().
		Str("event", "session_locked").
		Str("user_id", SanitizeUserID(userID)).
		Str("session_id", SanitizeSessionID(sessionID)).
		Float64("score", score).
		Msg("Session locked by anomaly score")
}

// LogAuthFailure logs a rejected request on a protected endpoint.
func (l *SecurityLogger) LogAuthFailure(path, ip, reason string) {
	l.logger.Warn().
		Str("event", "auth_failure").
		Str("path", path).
		Str("ip", ip).
		Str("reason", reason).
		Msg("Request rejected")
}

// SanitizeSessionID truncates a session ID for logging. Full session IDs
// never appear in logs.
func SanitizeSessionID(sessionID string) string {
	return truncateString(sessionID, 8) + "..."
}

// SanitizeUserID strips newlines from a user ID to prevent log injection.
func SanitizeUserID(userID string) string {
	return sanitizeControlChars(truncateString(userID, 64))
}

// SanitizeUsername strips newlines from a username to prevent log injection.
func SanitizeUsername(username string) string {
	return sanitizeControlChars(truncateString(username, 64))
}

// sanitizeControlChars replaces characters that could forge log lines.
func sanitizeControlChars(s string) string {
	replacer := strings.NewReplacer(
		"\n", "\\n",
		"\r", "\\r",
		"\t", "\\t",
	)
	return replacer.Replace(s)
}

// truncateString shortens a string to at most maxLen characters.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
