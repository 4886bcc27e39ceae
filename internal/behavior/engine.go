// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package behavior

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/safestride/safestride/internal/flags"
	"github.com/safestride/safestride/internal/logging"
	"github.com/safestride/safestride/internal/metrics"
)

// Engine-level sentinel errors.
var (
	ErrNilSample       = fmt.Errorf("behavior: nil sample")
	ErrEmptyUserID     = fmt.Errorf("behavior: empty user id")
	ErrUnknownStrategy = fmt.Errorf("behavior: unknown strategy")
)

// SessionRecorder receives per-sample activity updates. Implemented by
// the session ledger.
type SessionRecorder interface {
	RecordActivity(sessionID string, score float64) bool
}

// FlagSink receives raised flags. Implemented by the flag log.
type FlagSink interface {
	Raise(userID, sessionID, category, description, recommendation string, score float64) *flags.Flag
}

// FlagBroadcaster pushes raised flags to live subscribers. Implemented by
// the websocket hub; a nil broadcaster disables broadcasting.
type FlagBroadcaster interface {
	BroadcastFlag(flag *flags.Flag)
}

// EngineConfig tunes the analysis pipeline.
type EngineConfig struct {
	// Strategy selects the scoring strategy for all analyses.
	Strategy StrategyType

	// LearningRate is the EMA alpha for baseline adaptation.
	LearningRate float64

	// HistoryCapacity bounds the rolling history per signal.
	HistoryCapacity int

	// Seed provides starting values for lazily created profiles.
	Seed ProfileSeed
}

// DefaultEngineConfig returns the default pipeline configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Strategy:        StrategyScalarBaseline,
		LearningRate:    DefaultLearningRate,
		HistoryCapacity: DefaultHistoryCapacity,
		Seed:            DefaultProfileSeed(),
	}
}

// EngineMetrics tracks pipeline activity counters.
type EngineMetrics struct {
	SamplesProcessed  int64            `json:"samples_processed"`
	FlagsRaised       int64            `json:"flags_raised"`
	ByRecommendation  map[string]int64 `json:"by_recommendation"`
	LastProcessedAt   time.Time        `json:"last_processed_at"`
	ProcessingTimeMS  int64            `json:"processing_time_ms"`
	AvgProcessingTime float64          `json:"avg_processing_time_ms"`
}

// Engine runs the analysis pipeline: score the sample against the
// profile, adapt the baselines, record session activity, and raise a
// flag when the score crosses the profile's anomaly threshold.
type Engine struct {
	profiles ProfileStore
	scorers  map[StrategyType]Scorer
	adapter  *Adapter
	sessions SessionRecorder
	flags    FlagSink

	mu          sync.RWMutex
	strategy    StrategyType
	broadcaster FlagBroadcaster
	metrics     EngineMetrics

	// processingTime accumulates at full resolution; the millisecond
	// fields in EngineMetrics are derived from it on read.
	processingTime time.Duration
}

// NewEngine wires the analysis pipeline. Both scoring strategies are
// registered; config.Strategy selects the active one.
func NewEngine(config EngineConfig, profiles ProfileStore, sessions SessionRecorder, sink FlagSink) *Engine {
	if profiles == nil {
		profiles = NewMemoryProfileStore(config.Seed, config.HistoryCapacity)
	}
	strategy := config.Strategy
	if strategy == "" {
		strategy = StrategyScalarBaseline
	}
	return &Engine{
		profiles: profiles,
		scorers: map[StrategyType]Scorer{
			StrategyScalarBaseline: NewScalarScorer(),
			StrategyZScoreHistory:  NewZScoreScorer(),
		},
		adapter:  NewAdapter(config.LearningRate),
		sessions: sessions,
		flags:    sink,
		strategy: strategy,
		metrics: EngineMetrics{
			ByRecommendation: make(map[string]int64),
		},
	}
}

// SetBroadcaster attaches a live flag broadcaster.
func (e *Engine) SetBroadcaster(b FlagBroadcaster) {
	e.mu.Lock()
	e.broadcaster = b
	e.mu.Unlock()
}

// Strategy returns the active scoring strategy.
func (e *Engine) Strategy() StrategyType {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.strategy
}

// SetStrategy switches the active scoring strategy.
func (e *Engine) SetStrategy(strategy StrategyType) error {
	if _, ok := e.scorers[strategy]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	e.mu.Lock()
	e.strategy = strategy
	e.mu.Unlock()
	return nil
}

// Scorer returns the registered scorer for a strategy.
func (e *Engine) Scorer(strategy StrategyType) (Scorer, bool) {
	s, ok := e.scorers[strategy]
	return s, ok
}

// Profiles returns the underlying profile store.
func (e *Engine) Profiles() ProfileStore {
	return e.profiles
}

// Process runs one sample through the pipeline and returns the analysis.
// Scoring sees the profile as it stood before this sample; adaptation
// happens afterwards under the same per-user lock.
func (e *Engine) Process(ctx context.Context, userID, sessionID string, sample *Sample) (*Analysis, error) {
	if sample == nil {
		return nil, ErrNilSample
	}
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	start := time.Now()

	e.mu.RLock()
	strategy := e.strategy
	broadcaster := e.broadcaster
	e.mu.RUnlock()

	scorer, ok := e.scorers[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}

	var (
		analysis  *Analysis
		threshold float64
	)
	e.profiles.Mutate(userID, func(p *Profile) {
		analysis = scorer.Analyze(sample, p)
		threshold = p.AnomalyThreshold
		e.adapter.Apply(p, sample)
		analysis.DataPoints = p.DataPoints
		analysis.BaselineUpdatedAt = p.UpdatedAt
	})
	analysis.SessionID = sessionID

	if sessionID != "" && e.sessions != nil {
		if !e.sessions.RecordActivity(sessionID, analysis.Score) {
			logging.Ctx(ctx).Warn().
				Str("session_id", sessionID).
				Msg("Activity recorded against unknown session")
		}
	}

	var flagged *flags.Flag
	if analysis.Score > threshold && e.flags != nil {
		flagged = e.flags.Raise(
			userID,
			sessionID,
			string(analysis.DominantSignal()),
			flagDescription(analysis),
			string(analysis.Recommendation),
			analysis.Score,
		)
		metrics.RecordFlagRaised(flagged.Category, string(flagged.Severity))
		logging.Ctx(ctx).Info().
			Str("user_id", userID).
			Str("flag_id", flagged.ID).
			Float64("score", analysis.Score).
			Str("severity", string(flagged.Severity)).
			Str("recommendation", string(analysis.Recommendation)).
			Msg("Anomaly flag raised")
	}

	elapsed := time.Since(start)
	e.recordMetrics(analysis, flagged != nil, elapsed)
	metrics.RecordAnalysis(string(strategy), string(analysis.Recommendation), analysis.Score, elapsed)

	if flagged != nil && broadcaster != nil {
		broadcaster.BroadcastFlag(flagged)
	}

	return analysis, nil
}

// flagDescription summarizes an analysis for the flag log.
func flagDescription(a *Analysis) string {
	if len(a.Factors) > 0 {
		return strings.Join(a.Factors, "; ")
	}
	return fmt.Sprintf("Behavioral anomaly (score %.1f)", a.Score)
}

func (e *Engine) recordMetrics(a *Analysis, flagged bool, elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := &e.metrics
	m.SamplesProcessed++
	if flagged {
		m.FlagsRaised++
	}
	m.ByRecommendation[string(a.Recommendation)]++
	m.LastProcessedAt = time.Now()
	e.processingTime += elapsed
}

// Metrics returns a copy of the engine counters.
func (e *Engine) Metrics() EngineMetrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := e.metrics
	out.ByRecommendation = make(map[string]int64, len(e.metrics.ByRecommendation))
	for k, v := range e.metrics.ByRecommendation {
		out.ByRecommendation[k] = v
	}
	out.ProcessingTimeMS = e.processingTime.Milliseconds()
	if out.SamplesProcessed > 0 {
		out.AvgProcessingTime = float64(e.processingTime.Microseconds()) / float64(out.SamplesProcessed) / 1000.0
	}
	return out
}

// RunWithContext blocks until the context is cancelled, so the engine can
// sit in a supervision tree alongside the servers it feeds. The pipeline
// itself is synchronous and needs no background work.
func (e *Engine) RunWithContext(ctx context.Context) error {
	logging.Info().Str("strategy", string(e.Strategy())).Msg("Behavior engine running")
	<-ctx.Done()
	logging.Info().Msg("Behavior engine stopping")
	return ctx.Err()
}
