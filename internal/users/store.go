// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

// Package users holds the in-memory user directory. Users are created on
// first login; there is no registration flow, credentials are accepted in
// demo mode.
package users

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// User is one known account.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
	LoginCount  int       `json:"login_count"`
}

// Store is the in-memory user directory.
type Store struct {
	mu         sync.RWMutex
	byID       map[string]*User
	byUsername map[string]*User
}

// NewStore creates an empty directory.
func NewStore() *Store {
	return &Store{
		byID:       make(map[string]*User),
		byUsername: make(map[string]*User),
	}
}

// Login finds or creates the user for a username and records the login.
// Returns a snapshot.
func (s *Store) Login(username string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	u, ok := s.byUsername[username]
	if !ok {
		u = &User{
			ID:        uuid.New().String(),
			Username:  username,
			CreatedAt: now,
		}
		s.byID[u.ID] = u
		s.byUsername[username] = u
	}
	u.LastLoginAt = now
	u.LoginCount++

	snapshot := *u
	return &snapshot
}

// Get returns a snapshot of the user, or false if unknown.
func (s *Store) Get(id string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	snapshot := *u
	return &snapshot, true
}

// GetByUsername returns a snapshot of the user, or false if unknown.
func (s *Store) GetByUsername(username string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byUsername[username]
	if !ok {
		return nil, false
	}
	snapshot := *u
	return &snapshot, true
}

// List returns snapshots of all users, ordered by username.
func (s *Store) List() []*User {
	s.mu.RLock()
	out := make([]*User, 0, len(s.byID))
	for _, u := range s.byID {
		snapshot := *u
		out = append(out, &snapshot)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Username < out[j].Username
	})
	return out
}

// Count returns the number of known users.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
