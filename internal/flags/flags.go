// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

// Package flags maintains the append-only log of raised anomaly flags.
// Flags record that an analysis crossed a user's anomaly threshold; they
// are never deleted, only resolved.
package flags

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity grades a flag by how far the score overshot.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Actions describe what the caller is expected to do about a flag.
const (
	ActionLock    = "Session locked"
	ActionReauth  = "Request re-authentication"
	ActionMonitor = "Monitor"
)

// Flag is one raised anomaly. ID, CreatedAt, Severity and Action are
// derived by the log when the flag is raised.
type Flag struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	SessionID      string     `json:"session_id,omitempty"`
	Score          float64    `json:"score"`
	Severity       Severity   `json:"severity"`
	Category       string     `json:"category"`
	Description    string     `json:"description"`
	Recommendation string     `json:"recommendation"`
	Action         string     `json:"action"`
	Resolved       bool       `json:"resolved"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// SeverityForScore grades a score: above 70 is high, above 50 medium,
// anything else low.
func SeverityForScore(score float64) Severity {
	switch {
	case score > 70:
		return SeverityHigh
	case score > 50:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ActionForRecommendation maps a session recommendation onto the
// operator-facing action string.
func ActionForRecommendation(recommendation string) string {
	switch recommendation {
	case "lock":
		return ActionLock
	case "reauthenticate":
		return ActionReauth
	default:
		return ActionMonitor
	}
}

// Log is the in-memory append-only flag log.
type Log struct {
	mu    sync.RWMutex
	flags []*Flag
	byID  map[string]*Flag
}

// NewLog creates an empty flag log.
func NewLog() *Log {
	return &Log{byID: make(map[string]*Flag)}
}

// Raise appends a new flag, assigning its ID, timestamp, severity, and
// action. Returns a snapshot of the stored flag.
func (l *Log) Raise(userID, sessionID, category, description, recommendation string, score float64) *Flag {
	flag := &Flag{
		ID:             uuid.New().String(),
		UserID:         userID,
		SessionID:      sessionID,
		Score:          score,
		Severity:       SeverityForScore(score),
		Category:       category,
		Description:    description,
		Recommendation: recommendation,
		Action:         ActionForRecommendation(recommendation),
		CreatedAt:      time.Now(),
	}

	l.mu.Lock()
	l.flags = append(l.flags, flag)
	l.byID[flag.ID] = flag
	l.mu.Unlock()

	snapshot := *flag
	return &snapshot
}

// Get returns a snapshot of the flag, or false if unknown.
func (l *Log) Get(id string) (*Flag, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	flag, ok := l.byID[id]
	if !ok {
		return nil, false
	}
	snapshot := *flag
	return &snapshot, true
}

// All returns snapshots of every flag in raise order.
func (l *Log) All() []*Flag {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot(func(*Flag) bool { return true })
}

// BySession returns snapshots of the flags raised against one session.
func (l *Log) BySession(sessionID string) []*Flag {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot(func(f *Flag) bool { return f.SessionID == sessionID })
}

// ByUser returns snapshots of the flags raised against one user.
func (l *Log) ByUser(userID string) []*Flag {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot(func(f *Flag) bool { return f.UserID == userID })
}

// snapshot copies matching flags. Caller must hold at least a read lock.
func (l *Log) snapshot(match func(*Flag) bool) []*Flag {
	out := make([]*Flag, 0, len(l.flags))
	for _, flag := range l.flags {
		if match(flag) {
			snapshot := *flag
			out = append(out, &snapshot)
		}
	}
	return out
}

// Resolve marks a flag resolved. Resolution is one-way and idempotent:
// resolving an already resolved flag succeeds without changing its
// resolution time. Returns false only if the flag is unknown.
func (l *Log) Resolve(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	flag, ok := l.byID[id]
	if !ok {
		return false
	}
	if !flag.Resolved {
		now := time.Now()
		flag.Resolved = true
		flag.ResolvedAt = &now
	}
	return true
}

// Count returns the total number of flags raised.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.flags)
}

// CountUnresolved returns the number of flags still open.
func (l *Log) CountUnresolved() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, flag := range l.flags {
		if !flag.Resolved {
			n++
		}
	}
	return n
}
