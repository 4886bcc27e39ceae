// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package session

import (
	"sync"
	"testing"
)

func TestLedger_CreateAndGet(t *testing.T) {
	l := NewLedger()

	s := l.Create("user-1")
	if s.ID == "" {
		t.Fatal("Create() returned session with empty ID")
	}
	if s.Status != StatusActive {
		t.Errorf("Status = %q, want active", s.Status)
	}
	if s.StartedAt.IsZero() || s.LastActivityAt.IsZero() {
		t.Error("timestamps not set on creation")
	}

	got, ok := l.Get(s.ID)
	if !ok {
		t.Fatal("Get() = false for created session")
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", got.UserID)
	}

	if _, ok := l.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}
}

func TestLedger_RecordActivity(t *testing.T) {
	l := NewLedger()
	s := l.Create("user-1")

	if !l.RecordActivity(s.ID, 42.5) {
		t.Fatal("RecordActivity(known) = false, want true")
	}
	if l.RecordActivity("missing", 10) {
		t.Error("RecordActivity(unknown) = true, want false")
	}

	got, _ := l.Get(s.ID)
	if got.LastScore != 42.5 {
		t.Errorf("LastScore = %v, want 42.5", got.LastScore)
	}
	if got.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", got.SampleCount)
	}
}

func TestLedger_RecordActivityAfterEnd(t *testing.T) {
	l := NewLedger()
	s := l.Create("user-1")
	l.End(s.ID)

	// A locked session's trailing analyses still land in the ledger.
	if !l.RecordActivity(s.ID, 88.0) {
		t.Error("RecordActivity on ended session = false, want true")
	}
	got, _ := l.Get(s.ID)
	if got.LastScore != 88.0 {
		t.Errorf("LastScore = %v, want 88.0", got.LastScore)
	}
	if got.Status != StatusEnded {
		t.Errorf("Status = %q, want ended", got.Status)
	}
}

func TestLedger_EndIsIdempotent(t *testing.T) {
	l := NewLedger()
	s := l.Create("user-1")

	if !l.End(s.ID) {
		t.Fatal("End(active) = false, want true")
	}
	first, _ := l.Get(s.ID)
	if first.EndedAt == nil {
		t.Fatal("EndedAt not set")
	}

	if !l.End(s.ID) {
		t.Error("End(ended) = false, want true (idempotent)")
	}
	second, _ := l.Get(s.ID)
	if !second.EndedAt.Equal(*first.EndedAt) {
		t.Error("EndedAt moved on repeated End")
	}

	if l.End("missing") {
		t.Error("End(unknown) = true, want false")
	}
}

func TestLedger_ListsAndCounts(t *testing.T) {
	l := NewLedger()
	a := l.Create("user-1")
	l.Create("user-1")
	l.Create("user-2")
	l.End(a.ID)

	if got := l.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
	if got := l.CountActive(); got != 2 {
		t.Errorf("CountActive() = %d, want 2", got)
	}
	if got := len(l.ListActive()); got != 2 {
		t.Errorf("len(ListActive()) = %d, want 2", got)
	}
	if got := len(l.List()); got != 3 {
		t.Errorf("len(List()) = %d, want 3", got)
	}
	if got := len(l.ListByUser("user-1")); got != 2 {
		t.Errorf("len(ListByUser(user-1)) = %d, want 2", got)
	}
	if got := len(l.ListByUser("nobody")); got != 0 {
		t.Errorf("len(ListByUser(nobody)) = %d, want 0", got)
	}
}

func TestLedger_SnapshotsAreIndependent(t *testing.T) {
	l := NewLedger()
	s := l.Create("user-1")

	s.Status = StatusEnded
	s.LastScore = 99

	got, _ := l.Get(s.ID)
	if got.Status != StatusActive {
		t.Error("mutating a snapshot changed the stored session")
	}
	if got.LastScore != 0 {
		t.Errorf("LastScore = %v after snapshot mutation, want 0", got.LastScore)
	}
}

func TestLedger_ConcurrentActivity(t *testing.T) {
	l := NewLedger()
	s := l.Create("user-1")

	const goroutines = 10
	const perGoroutine = 100

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				l.RecordActivity(s.ID, float64(i))
			}
		}()
	}
	wg.Wait()

	got, _ := l.Get(s.ID)
	if want := goroutines * perGoroutine; got.SampleCount != want {
		t.Errorf("SampleCount = %d, want %d", got.SampleCount, want)
	}
}
