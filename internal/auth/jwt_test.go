// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/safestride/safestride/internal/config"
)

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		JWTSecret:      "test-secret-key-at-least-32-chars!!",
		SessionTimeout: time.Hour,
	}
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager(&config.SecurityConfig{})
	if err == nil {
		t.Fatal("NewJWTManager(empty secret) = nil error, want error")
	}

	if _, err := NewJWTManager(testSecurityConfig()); err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatal(err)
	}

	token, err := m.GenerateToken("user-1", "alice", "sess-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" || claims.SessionID != "sess-1" {
		t.Errorf("claims = %s/%s/%s, want user-1/alice/sess-1",
			claims.UserID, claims.Username, claims.SessionID)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("ExpiresAt not set")
	}
	if until := time.Until(claims.ExpiresAt.Time); until < 59*time.Minute || until > time.Hour {
		t.Errorf("token expiry %v from now, want ~1h", until)
	}
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	m1, _ := NewJWTManager(testSecurityConfig())
	m2, _ := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "another-secret-key-also-32-chars!!!",
		SessionTimeout: time.Hour,
	})

	token, err := m1.GenerateToken("user-1", "alice", "sess-1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m2.ValidateToken(token); err == nil {
		t.Error("ValidateToken() with wrong secret = nil error, want error")
	}
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	m, _ := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "test-secret-key-at-least-32-chars!!",
		SessionTimeout: -time.Minute,
	})

	token, err := m.GenerateToken("user-1", "alice", "sess-1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Error("ValidateToken(expired) = nil error, want error")
	}
}

func TestJWTManager_RejectsUnsignedAlgorithm(t *testing.T) {
	m, _ := NewJWTManager(testSecurityConfig())

	// A token claiming alg=none must not validate even with a correct
	// payload shape.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:    "user-1",
		Username:  "alice",
		SessionID: "sess-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Error("ValidateToken(alg=none) = nil error, want error")
	}
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m, _ := NewJWTManager(testSecurityConfig())

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.ValidateToken(tok)
		if err == nil {
			t.Errorf("ValidateToken(%q) = nil error, want error", tok)
			continue
		}
		if !strings.Contains(err.Error(), "token") {
			t.Errorf("ValidateToken(%q) error = %q, want token parse error", tok, err)
		}
	}
}
