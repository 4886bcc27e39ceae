// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

// Package behavior implements the behavioral anomaly engine: per-user
// adaptive baseline profiles, anomaly scoring strategies, and the analysis
// pipeline that turns raw interaction samples into session recommendations.
package behavior

import (
	"time"
)

// StrategyType identifies an anomaly scoring strategy.
type StrategyType string

const (
	// StrategyScalarBaseline scores each signal by its relative deviation
	// from a single adaptive baseline value.
	StrategyScalarBaseline StrategyType = "scalar_baseline"

	// StrategyZScoreHistory scores each signal by its z-score against the
	// rolling history window (mean and standard deviation).
	StrategyZScoreHistory StrategyType = "zscore_history"
)

// SignalType identifies a behavioral signal channel.
type SignalType string

const (
	SignalTyping  SignalType = "typing"
	SignalMouse   SignalType = "mouse"
	SignalScroll  SignalType = "scroll"
	SignalSession SignalType = "session"
)

// Recommendation is the session disposition derived from an anomaly score.
type Recommendation string

const (
	RecommendationPass           Recommendation = "pass"
	RecommendationReauthenticate Recommendation = "reauthenticate"
	RecommendationLock           Recommendation = "lock"
)

// Default profile seed values. New profiles start from these neutral
// baselines so the first samples score against something sensible instead
// of zero.
const (
	DefaultTypingBaselineMS  = 250.0
	DefaultMouseBaseline     = 50.0
	DefaultScrollBaseline    = 10.0
	DefaultAnomalyThreshold  = 30.0
	DefaultHistoryCapacity   = 100
	DefaultLearningRate      = 0.1
	ShortSessionThresholdMS  = 5000.0
	MinHistorySamples        = 5
)

// Score boundaries for recommendations. Scores at or above LockThreshold
// lock the session, scores at or above ReauthThreshold request
// re-authentication, anything below passes.
const (
	ReauthThreshold = 30.0
	LockThreshold   = 70.0
)

// Sample is one observation window of user interaction behavior as reported
// by the client-side collector.
type Sample struct {
	// TypingIntervalMS is the mean interval between keystrokes in
	// milliseconds over the observation window. Zero means no typing
	// was observed.
	TypingIntervalMS float64 `json:"typing_interval_ms"`

	// MouseEvents is the number of pointer events in the window.
	MouseEvents float64 `json:"mouse_events"`

	// ScrollEvents is the number of scroll events in the window.
	ScrollEvents float64 `json:"scroll_events"`

	// SessionDurationMS is how long the session has been alive in
	// milliseconds at the time the sample was taken.
	SessionDurationMS float64 `json:"session_duration_ms"`

	// CollectedAt is when the sample was captured.
	CollectedAt time.Time `json:"collected_at,omitempty"`
}

// Profile holds everything the engine knows about one user's behavior:
// scalar baselines adapted by EMA, and rolling history windows for the
// z-score strategy. Profiles are created lazily on first observation.
type Profile struct {
	UserID string `json:"user_id"`

	// Scalar baselines, one per signal.
	TypingBaselineMS float64 `json:"typing_baseline_ms"`
	MouseBaseline    float64 `json:"mouse_baseline"`
	ScrollBaseline   float64 `json:"scroll_baseline"`

	// AnomalyThreshold is the score above which a flag is raised.
	AnomalyThreshold float64 `json:"anomaly_threshold"`

	// History holds the rolling sample windows, maintained in parallel
	// with the scalar baselines.
	History *SignalHistories `json:"-"`

	// DataPoints is the total number of samples absorbed into this
	// profile since creation.
	DataPoints int `json:"data_points"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the profile, safe to hand out across
// goroutine boundaries.
func (p *Profile) Clone() *Profile {
	clone := *p
	if p.History != nil {
		clone.History = p.History.Clone()
	}
	return &clone
}

// SignalScores holds the per-signal component scores of one analysis.
// A zero component means the signal was absent or within tolerance.
type SignalScores struct {
	Typing  float64 `json:"typing"`
	Mouse   float64 `json:"mouse"`
	Scroll  float64 `json:"scroll"`
	Session float64 `json:"session"`
}

// Analysis is the outcome of scoring one sample against a profile.
type Analysis struct {
	UserID    string       `json:"user_id"`
	SessionID string       `json:"session_id,omitempty"`
	Strategy  StrategyType `json:"strategy"`

	// Score is the overall weighted anomaly score on [0, 100].
	Score float64 `json:"score"`

	// Confidence on [0, 1] reflects how much signal backed the score.
	Confidence float64 `json:"confidence"`

	Recommendation Recommendation `json:"recommendation"`

	// Factors are human-readable explanations for each signal whose
	// component score crossed the reporting threshold, in fixed order:
	// typing, mouse, scroll, session.
	Factors []string `json:"factors"`

	Signals SignalScores `json:"signals"`

	// SampleCount is the history volume the analysis was based on.
	SampleCount int `json:"sample_count"`

	// DataPoints and BaselineUpdatedAt summarize the profile after this
	// sample was absorbed.
	DataPoints        int       `json:"data_points"`
	BaselineUpdatedAt time.Time `json:"baseline_updated_at"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// DominantSignal returns the signal with the highest component score.
// Ties resolve in fixed order: typing, mouse, scroll, session.
func (a *Analysis) DominantSignal() SignalType {
	best := SignalTyping
	bestScore := a.Signals.Typing
	if a.Signals.Mouse > bestScore {
		best, bestScore = SignalMouse, a.Signals.Mouse
	}
	if a.Signals.Scroll > bestScore {
		best, bestScore = SignalScroll, a.Signals.Scroll
	}
	if a.Signals.Session > bestScore {
		best = SignalSession
	}
	return best
}

// Scorer evaluates a sample against a profile. Implementations must be
// pure with respect to their inputs: scoring never mutates the profile.
type Scorer interface {
	// Strategy returns the strategy identifier.
	Strategy() StrategyType

	// Analyze scores the sample against the profile as it stood before
	// any baseline adaptation.
	Analyze(sample *Sample, profile *Profile) *Analysis
}

// recommendationFor maps an overall score onto a session disposition.
func recommendationFor(score float64) Recommendation {
	switch {
	case score >= LockThreshold:
		return RecommendationLock
	case score >= ReauthThreshold:
		return RecommendationReauthenticate
	default:
		return RecommendationPass
	}
}

// clampScore bounds an overall score to [0, 100].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
