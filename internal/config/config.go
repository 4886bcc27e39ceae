// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

// Package config holds application configuration loaded with Koanf v2.
//
// Configuration Loading Order:
//  1. Defaults: built-in sensible defaults for every setting
//  2. Config File: optional YAML file (config.yaml)
//  3. Environment Variables: override any setting
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Behavior BehaviorConfig `koanf:"behavior"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// APIConfig holds API pagination and response settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens. Required; minimum 32 characters
	// in production.
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// LoginRateLimitReqs is the stricter per-window cap on the login
	// endpoint to slow credential stuffing.
	LoginRateLimitReqs int `koanf:"login_rate_limit_reqs"`

	CORSOrigins    []string `koanf:"cors_origins"`
	TrustedProxies []string `koanf:"trusted_proxies"`
}

// BehaviorConfig holds analysis pipeline settings: scoring strategy,
// baseline adaptation rate, and profile seed values.
type BehaviorConfig struct {
	// Strategy is the scoring strategy: "scalar_baseline" or
	// "zscore_history".
	Strategy string `koanf:"strategy"`

	// LearningRate is the EMA alpha for baseline adaptation (0, 1].
	LearningRate float64 `koanf:"learning_rate"`

	// HistoryCapacity bounds the rolling sample window per signal.
	HistoryCapacity int `koanf:"history_capacity"`

	// Profile seed values applied at lazy profile creation.
	AnomalyThreshold float64 `koanf:"anomaly_threshold"`
	TypingBaselineMS float64 `koanf:"typing_baseline_ms"`
	MouseBaseline    float64 `koanf:"mouse_baseline"`
	ScrollBaseline   float64 `koanf:"scroll_baseline"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Validate checks the configuration for inconsistent or dangerous values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment %q (expected development, staging, or production)", c.Server.Environment)
	}

	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Server.Environment == "production" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("session timeout must be positive, got %s", c.Security.SessionTimeout)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("rate limit requests must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("rate limit window must be positive, got %s", c.Security.RateLimitWindow)
		}
		if c.Security.LoginRateLimitReqs < 1 {
			return fmt.Errorf("login rate limit requests must be at least 1, got %d", c.Security.LoginRateLimitReqs)
		}
	}

	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("default page size must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("max page size (%d) cannot be smaller than default page size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}

	if err := c.Behavior.Validate(); err != nil {
		return err
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q (expected json or console)", c.Logging.Format)
	}

	return nil
}

// Validate checks the behavior pipeline settings.
func (b *BehaviorConfig) Validate() error {
	switch b.Strategy {
	case "scalar_baseline", "zscore_history":
	default:
		return fmt.Errorf("invalid behavior strategy %q (expected scalar_baseline or zscore_history)", b.Strategy)
	}
	if b.LearningRate <= 0 || b.LearningRate > 1 {
		return fmt.Errorf("learning rate must be within (0, 1], got %g", b.LearningRate)
	}
	if b.HistoryCapacity < 1 {
		return fmt.Errorf("history capacity must be at least 1, got %d", b.HistoryCapacity)
	}
	if b.AnomalyThreshold < 0 || b.AnomalyThreshold > 100 {
		return fmt.Errorf("anomaly threshold must be within [0, 100], got %g", b.AnomalyThreshold)
	}
	if b.TypingBaselineMS < 0 || b.MouseBaseline < 0 || b.ScrollBaseline < 0 {
		return fmt.Errorf("baseline seeds cannot be negative")
	}
	return nil
}
