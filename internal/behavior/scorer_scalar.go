// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package behavior

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// ScalarConfig tunes the scalar baseline scorer.
type ScalarConfig struct {
	// Signal weights for the overall score. They should sum to 1.0.
	TypingWeight  float64 `json:"typing_weight"`
	MouseWeight   float64 `json:"mouse_weight"`
	ScrollWeight  float64 `json:"scroll_weight"`
	SessionWeight float64 `json:"session_weight"`

	// ShortSessionMS is the session duration below which the session
	// timing signal contributes ShortSessionScore.
	ShortSessionMS    float64 `json:"short_session_ms"`
	ShortSessionScore float64 `json:"short_session_score"`

	// FactorThreshold is the per-signal score above which a factor
	// string is reported.
	FactorThreshold float64 `json:"factor_threshold"`
}

// DefaultScalarConfig returns the default scalar scorer configuration.
func DefaultScalarConfig() ScalarConfig {
	return ScalarConfig{
		TypingWeight:      0.4,
		MouseWeight:       0.3,
		ScrollWeight:      0.2,
		SessionWeight:     0.1,
		ShortSessionMS:    ShortSessionThresholdMS,
		ShortSessionScore: 30.0,
		FactorThreshold:   30.0,
	}
}

// ScalarScorer scores each signal by its relative deviation from the
// profile's adaptive scalar baseline: min(100, |current-baseline|/baseline
// * 100), with a flat penalty for suspiciously short sessions.
type ScalarScorer struct {
	config ScalarConfig
	mu     sync.RWMutex
}

// NewScalarScorer creates a scalar baseline scorer with default config.
func NewScalarScorer() *ScalarScorer {
	return &ScalarScorer{config: DefaultScalarConfig()}
}

// Strategy returns the strategy identifier.
func (s *ScalarScorer) Strategy() StrategyType {
	return StrategyScalarBaseline
}

// Analyze scores the sample against the profile's scalar baselines.
func (s *ScalarScorer) Analyze(sample *Sample, profile *Profile) *Analysis {
	s.mu.RLock()
	config := s.config
	s.mu.RUnlock()

	signals := SignalScores{
		Typing: relativeDeviation(sample.TypingIntervalMS, profile.TypingBaselineMS),
		Mouse:  relativeDeviation(sample.MouseEvents, profile.MouseBaseline),
		Scroll: relativeDeviation(sample.ScrollEvents, profile.ScrollBaseline),
	}
	if sample.SessionDurationMS < config.ShortSessionMS {
		signals.Session = config.ShortSessionScore
	}

	// Signals that produced no deviation are left out of the weighted
	// sum entirely.
	var score float64
	if signals.Typing > 0 {
		score += signals.Typing * config.TypingWeight
	}
	if signals.Mouse > 0 {
		score += signals.Mouse * config.MouseWeight
	}
	if signals.Scroll > 0 {
		score += signals.Scroll * config.ScrollWeight
	}
	if signals.Session > 0 {
		score += signals.Session * config.SessionWeight
	}
	score = clampScore(score)

	// Confidence starts high and is discounted for each missing input
	// channel. A sample with no typing and no pointer activity bottoms
	// out at 0.5.
	confidence := 0.8
	if sample.TypingIntervalMS == 0 {
		confidence *= 0.7
	}
	if sample.MouseEvents == 0 {
		confidence *= 0.8
	}
	if confidence < 0.5 {
		confidence = 0.5
	}

	factors := make([]string, 0, 4)
	if signals.Typing > config.FactorThreshold {
		factors = append(factors, fmt.Sprintf("Typing anomaly: %.1f%%", signals.Typing))
	}
	if signals.Mouse > config.FactorThreshold {
		factors = append(factors, fmt.Sprintf("Mouse activity anomaly: %.1f%%", signals.Mouse))
	}
	if signals.Scroll > config.FactorThreshold {
		factors = append(factors, fmt.Sprintf("Scroll pattern anomaly: %.1f%%", signals.Scroll))
	}
	if signals.Session > 0 {
		factors = append(factors, "Unusually short session")
	}

	return &Analysis{
		UserID:         profile.UserID,
		Strategy:       StrategyScalarBaseline,
		Score:          score,
		Confidence:     confidence,
		Recommendation: recommendationFor(score),
		Factors:        factors,
		Signals:        signals,
		SampleCount:    profile.DataPoints,
		AnalyzedAt:     time.Now(),
	}
}

// Configure updates the scorer configuration.
func (s *ScalarScorer) Configure(config json.RawMessage) error {
	var newConfig ScalarConfig
	if err := json.Unmarshal(config, &newConfig); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if newConfig.TypingWeight < 0 || newConfig.MouseWeight < 0 ||
		newConfig.ScrollWeight < 0 || newConfig.SessionWeight < 0 {
		return fmt.Errorf("signal weights cannot be negative")
	}
	if newConfig.ShortSessionMS < 0 {
		return fmt.Errorf("short_session_ms cannot be negative")
	}
	if newConfig.ShortSessionScore < 0 || newConfig.ShortSessionScore > 100 {
		return fmt.Errorf("short_session_score must be within [0, 100]")
	}

	s.mu.Lock()
	s.config = newConfig
	s.mu.Unlock()

	return nil
}

// Config returns the current configuration.
func (s *ScalarScorer) Config() ScalarConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// relativeDeviation returns the percentage deviation of current from
// baseline, capped at 100. A zero baseline yields 0 rather than a
// division by zero.
func relativeDeviation(current, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	return math.Min(100, math.Abs(current-baseline)/baseline*100)
}
