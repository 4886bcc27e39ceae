// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package behavior

import (
	"sync"
	"time"
)

// ProfileSeed holds the neutral starting values for lazily created
// profiles.
type ProfileSeed struct {
	TypingBaselineMS float64
	MouseBaseline    float64
	ScrollBaseline   float64
	AnomalyThreshold float64
}

// DefaultProfileSeed returns the standard seed values.
func DefaultProfileSeed() ProfileSeed {
	return ProfileSeed{
		TypingBaselineMS: DefaultTypingBaselineMS,
		MouseBaseline:    DefaultMouseBaseline,
		ScrollBaseline:   DefaultScrollBaseline,
		AnomalyThreshold: DefaultAnomalyThreshold,
	}
}

// ProfileStore is the engine's view of profile persistence.
type ProfileStore interface {
	// Get returns a snapshot of the profile, or false if none exists.
	Get(userID string) (*Profile, bool)

	// Mutate runs fn against the live profile under the user's lock,
	// creating the profile from seed values first if needed. All
	// read-modify-write cycles for a user must go through Mutate.
	Mutate(userID string, fn func(*Profile))

	// Delete removes the profile. Returns false if none existed.
	Delete(userID string) bool

	// List returns snapshots of all profiles.
	List() []*Profile

	// Count returns the number of tracked profiles.
	Count() int
}

// MemoryProfileStore is the in-memory ProfileStore. A read-write mutex
// guards the map itself; each profile additionally carries its own mutex
// so read-modify-write cycles for one user serialize without blocking
// other users.
type MemoryProfileStore struct {
	mu              sync.RWMutex
	profiles        map[string]*profileEntry
	seed            ProfileSeed
	historyCapacity int
}

type profileEntry struct {
	mu      sync.Mutex
	profile *Profile
}

// NewMemoryProfileStore creates an empty store. Profiles are created
// lazily from the seed on first Mutate.
func NewMemoryProfileStore(seed ProfileSeed, historyCapacity int) *MemoryProfileStore {
	if historyCapacity <= 0 {
		historyCapacity = DefaultHistoryCapacity
	}
	return &MemoryProfileStore{
		profiles:        make(map[string]*profileEntry),
		seed:            seed,
		historyCapacity: historyCapacity,
	}
}

// Get returns a snapshot of the profile, or false if none exists.
func (s *MemoryProfileStore) Get(userID string) (*Profile, bool) {
	s.mu.RLock()
	entry, ok := s.profiles[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.profile.Clone(), true
}

// Mutate runs fn against the live profile under the user's lock, creating
// the profile first if needed.
func (s *MemoryProfileStore) Mutate(userID string, fn func(*Profile)) {
	entry := s.entryFor(userID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(entry.profile)
}

// entryFor finds or creates the entry for a user.
func (s *MemoryProfileStore) entryFor(userID string) *profileEntry {
	s.mu.RLock()
	entry, ok := s.profiles[userID]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check: another goroutine may have created it between locks.
	if entry, ok = s.profiles[userID]; ok {
		return entry
	}

	now := time.Now()
	entry = &profileEntry{
		profile: &Profile{
			UserID:           userID,
			TypingBaselineMS: s.seed.TypingBaselineMS,
			MouseBaseline:    s.seed.MouseBaseline,
			ScrollBaseline:   s.seed.ScrollBaseline,
			AnomalyThreshold: s.seed.AnomalyThreshold,
			History:          NewSignalHistories(s.historyCapacity),
			CreatedAt:        now,
			UpdatedAt:        now,
		},
	}
	s.profiles[userID] = entry
	return entry
}

// Delete removes the profile. Returns false if none existed.
func (s *MemoryProfileStore) Delete(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[userID]; !ok {
		return false
	}
	delete(s.profiles, userID)
	return true
}

// List returns snapshots of all profiles.
func (s *MemoryProfileStore) List() []*Profile {
	s.mu.RLock()
	entries := make([]*profileEntry, 0, len(s.profiles))
	for _, entry := range s.profiles {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	out := make([]*Profile, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		out = append(out, entry.profile.Clone())
		entry.mu.Unlock()
	}
	return out
}

// Count returns the number of tracked profiles.
func (s *MemoryProfileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
