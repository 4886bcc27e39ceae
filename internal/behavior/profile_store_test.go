// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package behavior

import (
	"fmt"
	"sync"
	"testing"
)

func TestMemoryProfileStore_GetMissing(t *testing.T) {
	store := NewMemoryProfileStore(DefaultProfileSeed(), DefaultHistoryCapacity)

	if p, ok := store.Get("nobody"); ok || p != nil {
		t.Errorf("Get(missing) = %v, %v, want nil, false", p, ok)
	}
	if store.Count() != 0 {
		t.Errorf("Count() = %d, want 0 (Get must not create)", store.Count())
	}
}

func TestMemoryProfileStore_MutateCreatesFromSeed(t *testing.T) {
	seed := ProfileSeed{
		TypingBaselineMS: 300,
		MouseBaseline:    60,
		ScrollBaseline:   15,
		AnomalyThreshold: 40,
	}
	store := NewMemoryProfileStore(seed, 20)

	var created *Profile
	store.Mutate("user-1", func(p *Profile) {
		created = p.Clone()
	})

	if created.TypingBaselineMS != 300 || created.MouseBaseline != 60 ||
		created.ScrollBaseline != 15 || created.AnomalyThreshold != 40 {
		t.Errorf("seeded profile = %+v, want seed values applied", created)
	}
	if created.History == nil {
		t.Fatal("seeded profile has nil History")
	}
	if created.History.Typing.Capacity() != 20 {
		t.Errorf("history capacity = %d, want 20", created.History.Typing.Capacity())
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt not set on lazy creation")
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}
}

func TestMemoryProfileStore_GetReturnsSnapshot(t *testing.T) {
	store := NewMemoryProfileStore(DefaultProfileSeed(), DefaultHistoryCapacity)
	store.Mutate("user-1", func(p *Profile) {
		p.DataPoints = 5
	})

	snap, ok := store.Get("user-1")
	if !ok {
		t.Fatal("Get() = false, want profile")
	}

	// Mutating the snapshot must not touch the stored profile.
	snap.DataPoints = 99
	snap.History.Typing.Push(1234)

	fresh, _ := store.Get("user-1")
	if fresh.DataPoints != 5 {
		t.Errorf("stored DataPoints = %d after snapshot mutation, want 5", fresh.DataPoints)
	}
	if fresh.History.Typing.Len() != 0 {
		t.Errorf("stored history len = %d after snapshot mutation, want 0", fresh.History.Typing.Len())
	}
}

func TestMemoryProfileStore_Delete(t *testing.T) {
	store := NewMemoryProfileStore(DefaultProfileSeed(), DefaultHistoryCapacity)
	store.Mutate("user-1", func(*Profile) {})

	if !store.Delete("user-1") {
		t.Error("Delete(existing) = false, want true")
	}
	if store.Delete("user-1") {
		t.Error("Delete(deleted) = true, want false")
	}
	if store.Count() != 0 {
		t.Errorf("Count() = %d after delete, want 0", store.Count())
	}
}

func TestMemoryProfileStore_List(t *testing.T) {
	store := NewMemoryProfileStore(DefaultProfileSeed(), DefaultHistoryCapacity)
	for i := 0; i < 3; i++ {
		store.Mutate(fmt.Sprintf("user-%d", i), func(*Profile) {})
	}

	profiles := store.List()
	if len(profiles) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(profiles))
	}

	seen := make(map[string]bool)
	for _, p := range profiles {
		seen[p.UserID] = true
	}
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("user-%d", i)
		if !seen[id] {
			t.Errorf("List() missing %s", id)
		}
	}
}

func TestMemoryProfileStore_ConcurrentMutate(t *testing.T) {
	store := NewMemoryProfileStore(DefaultProfileSeed(), DefaultHistoryCapacity)

	const goroutines = 16
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				store.Mutate("shared-user", func(p *Profile) {
					p.DataPoints++
				})
			}
		}()
	}
	wg.Wait()

	p, ok := store.Get("shared-user")
	if !ok {
		t.Fatal("profile missing after concurrent mutation")
	}
	if want := goroutines * perGoroutine; p.DataPoints != want {
		t.Errorf("DataPoints = %d, want %d (lost updates)", p.DataPoints, want)
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1 (duplicate entries created)", store.Count())
	}
}

func TestMemoryProfileStore_HistoryCapacityFallback(t *testing.T) {
	store := NewMemoryProfileStore(DefaultProfileSeed(), 0)
	store.Mutate("user-1", func(p *Profile) {
		if p.History.Typing.Capacity() != DefaultHistoryCapacity {
			t.Errorf("capacity = %d, want default %d",
				p.History.Typing.Capacity(), DefaultHistoryCapacity)
		}
	})
}
