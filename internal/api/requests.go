// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package api

// AnalyzeRequest carries one behavior sample for scoring. All signal
// values are non-negative; absent signals are submitted as zero.
type AnalyzeRequest struct {
	TypingIntervalMS  float64 `json:"typing_interval_ms" validate:"gte=0"`
	MouseEvents       float64 `json:"mouse_events" validate:"gte=0"`
	ScrollEvents      float64 `json:"scroll_events" validate:"gte=0"`
	SessionDurationMS float64 `json:"session_duration_ms" validate:"gte=0"`
}

// ProfileUpdateRequest adjusts a user's baselines or anomaly threshold.
// Nil fields are left unchanged.
type ProfileUpdateRequest struct {
	TypingBaselineMS *float64 `json:"typing_baseline_ms,omitempty" validate:"omitempty,gte=0"`
	MouseBaseline    *float64 `json:"mouse_baseline,omitempty" validate:"omitempty,gte=0"`
	ScrollBaseline   *float64 `json:"scroll_baseline,omitempty" validate:"omitempty,gte=0"`
	AnomalyThreshold *float64 `json:"anomaly_threshold,omitempty" validate:"omitempty,gte=0,lte=100"`
}
