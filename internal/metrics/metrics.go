// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

// Package metrics exposes Prometheus instrumentation for the behavior
// engine, the session ledger, the flag log, and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// startTime anchors the uptime gauge.
var startTime = time.Now()

// SetAppInfo publishes the running version as an info-style gauge.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version).Set(1)
}

var (
	// Behavior Engine Metrics
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "behavior_analyses_total",
			Help: "Total number of behavior samples analyzed",
		},
		[]string{"strategy", "recommendation"},
	)

	AnomalyScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "behavior_anomaly_score",
			Help:    "Distribution of anomaly scores",
			Buckets: []float64{5, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"strategy"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "behavior_analysis_duration_seconds",
			Help:    "Time spent scoring and adapting per sample",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		},
	)

	// Flag Log Metrics
	FlagsRaisedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flags_raised_total",
			Help: "Total number of anomaly flags raised",
		},
		[]string{"category", "severity"},
	)

	FlagsResolvedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flags_resolved_total",
			Help: "Total number of anomaly flags resolved",
		},
	)

	// Session Ledger Metrics
	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Total number of sessions created",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Current number of active sessions",
		},
	)

	ProfilesTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "behavior_profiles_tracked",
			Help: "Current number of tracked behavior profiles",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application information (value is always 1)",
		},
		[]string{"version"},
	)

	AppUptime = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Time since the process started in seconds",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of websocket subscribers",
		},
	)

	WSBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_broadcasts_total",
			Help: "Total number of broadcasts sent to subscribers",
		},
		[]string{"message_type"},
	)
)

// RecordAnalysis records a completed sample analysis.
func RecordAnalysis(strategy, recommendation string, score float64, duration time.Duration) {
	AnalysesTotal.WithLabelValues(strategy, recommendation).Inc()
	AnomalyScore.WithLabelValues(strategy).Observe(score)
	AnalysisDuration.Observe(duration.Seconds())
}

// RecordFlagRaised records a raised anomaly flag.
func RecordFlagRaised(category, severity string) {
	FlagsRaisedTotal.WithLabelValues(category, severity).Inc()
}

// RecordFlagResolved records a resolved anomaly flag.
func RecordFlagResolved() {
	FlagsResolvedTotal.Inc()
}

// RecordSessionCreated records a new session and bumps the active gauge.
func RecordSessionCreated() {
	SessionsCreatedTotal.Inc()
	ActiveSessions.Inc()
}

// RecordSessionEnded decrements the active session gauge.
func RecordSessionEnded() {
	ActiveSessions.Dec()
}

// SetProfilesTracked updates the tracked profile gauge.
func SetProfilesTracked(count int) {
	ProfilesTracked.Set(float64(count))
}

// RecordAPIRequest records API request metrics.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a rate limit rejection.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// TrackWSConnection increments or decrements the websocket subscriber gauge.
func TrackWSConnection(inc bool) {
	if inc {
		WSConnections.Inc()
	} else {
		WSConnections.Dec()
	}
}

// RecordWSBroadcast records one broadcast of the given message type.
func RecordWSBroadcast(messageType string) {
	WSBroadcastsTotal.WithLabelValues(messageType).Inc()
}
