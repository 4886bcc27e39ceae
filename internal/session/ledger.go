// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

// Package session tracks authentication sessions for the lifetime of the
// process. Sessions move one way from active to ended and are never
// deleted, so the ledger doubles as an audit trail.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Session is one authentication session.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Status Status `json:"status"`

	// LastScore is the most recent anomaly score recorded against the
	// session. Scores keep being recorded after the session ends; a
	// locked session's final analyses still matter for audit.
	LastScore   float64 `json:"last_score"`
	SampleCount int     `json:"sample_count"`

	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

// Ledger is the in-memory session store.
type Ledger struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{sessions: make(map[string]*Session)}
}

// Create starts a new active session for the user and returns a snapshot.
func (l *Ledger) Create(userID string) *Session {
	now := time.Now()
	s := &Session{
		ID:             uuid.New().String(),
		UserID:         userID,
		Status:         StatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}

	l.mu.Lock()
	l.sessions[s.ID] = s
	l.mu.Unlock()

	snapshot := *s
	return &snapshot
}

// Get returns a snapshot of the session, or false if unknown.
func (l *Ledger) Get(id string) (*Session, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.sessions[id]
	if !ok {
		return nil, false
	}
	snapshot := *s
	return &snapshot, true
}

// RecordActivity updates the session's last activity time and score.
// Returns false if the session is unknown. Ended sessions still accept
// activity records.
func (l *Ledger) RecordActivity(id string, score float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sessions[id]
	if !ok {
		return false
	}
	s.LastScore = score
	s.SampleCount++
	s.LastActivityAt = time.Now()
	return true
}

// End marks the session ended. Ending is one-way and idempotent: ending
// an already ended session succeeds without moving its end time. Returns
// false only if the session is unknown.
func (l *Ledger) End(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sessions[id]
	if !ok {
		return false
	}
	if s.Status != StatusEnded {
		now := time.Now()
		s.Status = StatusEnded
		s.EndedAt = &now
	}
	return true
}

// ListActive returns snapshots of all active sessions, newest first.
func (l *Ledger) ListActive() []*Session {
	return l.list(func(s *Session) bool { return s.Status == StatusActive })
}

// List returns snapshots of all sessions, newest first.
func (l *Ledger) List() []*Session {
	return l.list(func(*Session) bool { return true })
}

// ListByUser returns snapshots of one user's sessions, newest first.
func (l *Ledger) ListByUser(userID string) []*Session {
	return l.list(func(s *Session) bool { return s.UserID == userID })
}

func (l *Ledger) list(match func(*Session) bool) []*Session {
	l.mu.RLock()
	out := make([]*Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		if match(s) {
			snapshot := *s
			out = append(out, &snapshot)
		}
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// CountActive returns the number of active sessions.
func (l *Ledger) CountActive() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, s := range l.sessions {
		if s.Status == StatusActive {
			n++
		}
	}
	return n
}

// Count returns the total number of sessions ever created.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.sessions)
}
