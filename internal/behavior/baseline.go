// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package behavior

import "time"

// Adapter folds each new sample into a profile's baselines using an
// exponential moving average, and appends the sample to the rolling
// history windows. Adaptation always runs after scoring, never before,
// so a sample is never compared against a baseline it already influenced.
type Adapter struct {
	learningRate float64
}

// NewAdapter creates an adapter with the given learning rate (the EMA
// alpha). Rates outside (0, 1] fall back to the default.
func NewAdapter(learningRate float64) *Adapter {
	if learningRate <= 0 || learningRate > 1 {
		learningRate = DefaultLearningRate
	}
	return &Adapter{learningRate: learningRate}
}

// LearningRate returns the configured EMA alpha.
func (a *Adapter) LearningRate() float64 {
	return a.learningRate
}

// Apply absorbs the sample into the profile: EMA update of the scalar
// baselines, history append, and bookkeeping. The caller must hold the
// profile's per-user lock.
func (a *Adapter) Apply(profile *Profile, sample *Sample) {
	profile.TypingBaselineMS = a.ema(profile.TypingBaselineMS, sample.TypingIntervalMS)
	profile.MouseBaseline = a.ema(profile.MouseBaseline, sample.MouseEvents)
	profile.ScrollBaseline = a.ema(profile.ScrollBaseline, sample.ScrollEvents)

	if profile.History == nil {
		profile.History = NewSignalHistories(DefaultHistoryCapacity)
	}
	profile.History.Append(sample)

	profile.DataPoints++
	profile.UpdatedAt = time.Now()
}

// ema blends the old baseline with the new observation. Baselines never
// go negative: negative observations are treated as zero.
func (a *Adapter) ema(old, sample float64) float64 {
	if sample < 0 {
		sample = 0
	}
	updated := old*(1-a.learningRate) + sample*a.learningRate
	if updated < 0 {
		return 0
	}
	return updated
}
