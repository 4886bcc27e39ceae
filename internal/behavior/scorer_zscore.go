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

// ZScoreConfig tunes the rolling-history z-score scorer.
type ZScoreConfig struct {
	// Signal weights for the overall score. They should sum to 1.0.
	TypingWeight float64 `json:"typing_weight"`
	MouseWeight  float64 `json:"mouse_weight"`
	ScrollWeight float64 `json:"scroll_weight"`

	// MinSamples is the minimum history length before a signal is
	// scored at all.
	MinSamples int `json:"min_samples"`

	// ZScale converts a z-score into score points (score = z * ZScale,
	// capped at 100).
	ZScale float64 `json:"z_scale"`

	// FactorThreshold is the per-signal score above which a factor
	// string is reported.
	FactorThreshold float64 `json:"factor_threshold"`
}

// DefaultZScoreConfig returns the default z-score scorer configuration.
func DefaultZScoreConfig() ZScoreConfig {
	return ZScoreConfig{
		TypingWeight:    0.4,
		MouseWeight:     0.3,
		ScrollWeight:    0.3,
		MinSamples:      MinHistorySamples,
		ZScale:          20.0,
		FactorThreshold: 30.0,
	}
}

// ZScoreScorer scores each signal by how many standard deviations the
// current value sits from the rolling-history mean. Signals without enough
// history, or with a degenerate (zero) standard deviation, score 0.
type ZScoreScorer struct {
	config ZScoreConfig
	mu     sync.RWMutex
}

// NewZScoreScorer creates a z-score scorer with default config.
func NewZScoreScorer() *ZScoreScorer {
	return &ZScoreScorer{config: DefaultZScoreConfig()}
}

// Strategy returns the strategy identifier.
func (s *ZScoreScorer) Strategy() StrategyType {
	return StrategyZScoreHistory
}

// Analyze scores the sample against the profile's rolling history.
func (s *ZScoreScorer) Analyze(sample *Sample, profile *Profile) *Analysis {
	s.mu.RLock()
	config := s.config
	s.mu.RUnlock()

	var signals SignalScores
	var sampleCount int
	if profile.History != nil {
		signals = SignalScores{
			Typing: s.signalScore(sample.TypingIntervalMS, profile.History.Typing, config),
			Mouse:  s.signalScore(sample.MouseEvents, profile.History.Mouse, config),
			Scroll: s.signalScore(sample.ScrollEvents, profile.History.Scroll, config),
		}
		sampleCount = profile.History.PairedCount()
	}

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
	score = clampScore(score)

	factors := make([]string, 0, 3)
	if signals.Typing > config.FactorThreshold {
		factors = append(factors, fmt.Sprintf("Typing anomaly: %.1f%%", signals.Typing))
	}
	if signals.Mouse > config.FactorThreshold {
		factors = append(factors, fmt.Sprintf("Mouse activity anomaly: %.1f%%", signals.Mouse))
	}
	if signals.Scroll > config.FactorThreshold {
		factors = append(factors, fmt.Sprintf("Scroll pattern anomaly: %.1f%%", signals.Scroll))
	}

	return &Analysis{
		UserID:         profile.UserID,
		Strategy:       StrategyZScoreHistory,
		Score:          score,
		Confidence:     confidenceForVolume(sampleCount),
		Recommendation: recommendationFor(score),
		Factors:        factors,
		Signals:        signals,
		SampleCount:    sampleCount,
		AnalyzedAt:     time.Now(),
	}
}

// signalScore computes the capped z-score contribution for one signal.
func (s *ZScoreScorer) signalScore(current float64, window *SampleWindow, config ZScoreConfig) float64 {
	if window == nil || window.Len() < config.MinSamples {
		return 0
	}
	std := window.StdDev()
	if std == 0 {
		return 0
	}
	z := math.Abs(current-window.Mean()) / std
	return math.Min(100, z*config.ZScale)
}

// Configure updates the scorer configuration.
func (s *ZScoreScorer) Configure(config json.RawMessage) error {
	var newConfig ZScoreConfig
	if err := json.Unmarshal(config, &newConfig); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if newConfig.TypingWeight < 0 || newConfig.MouseWeight < 0 || newConfig.ScrollWeight < 0 {
		return fmt.Errorf("signal weights cannot be negative")
	}
	if newConfig.MinSamples < 1 {
		return fmt.Errorf("min_samples must be at least 1")
	}
	if newConfig.ZScale <= 0 {
		return fmt.Errorf("z_scale must be positive")
	}

	s.mu.Lock()
	s.config = newConfig
	s.mu.Unlock()

	return nil
}

// Config returns the current configuration.
func (s *ZScoreScorer) Config() ZScoreConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// confidenceForVolume maps history volume onto scoring confidence.
// More complete sample rows mean the rolling statistics are more
// trustworthy.
func confidenceForVolume(sampleCount int) float64 {
	switch {
	case sampleCount < 5:
		return 0.3
	case sampleCount < 20:
		return 0.6
	case sampleCount < 50:
		return 0.8
	default:
		return 0.95
	}
}
