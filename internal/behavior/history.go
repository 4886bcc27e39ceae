// SafeStride - Continuous Behavioral Session Authentication
// Copyright 2026 SafeStride Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/safestride/safestride

package behavior

import "math"

// SampleWindow is a bounded FIFO of recent observations for one signal.
// When the window is full, pushing a new value evicts the oldest one.
// SampleWindow is not safe for concurrent use; the profile store serializes
// access per user.
type SampleWindow struct {
	values   []float64
	capacity int
}

// NewSampleWindow creates a window holding at most capacity values.
// Non-positive capacities fall back to the default.
func NewSampleWindow(capacity int) *SampleWindow {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &SampleWindow{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a value, evicting the oldest if the window is full.
func (w *SampleWindow) Push(v float64) {
	if len(w.values) == w.capacity {
		copy(w.values, w.values[1:])
		w.values[len(w.values)-1] = v
		return
	}
	w.values = append(w.values, v)
}

// Len returns the number of values currently held.
func (w *SampleWindow) Len() int {
	return len(w.values)
}

// Capacity returns the maximum number of values the window holds.
func (w *SampleWindow) Capacity() int {
	return w.capacity
}

// Values returns a copy of the window contents, oldest first.
func (w *SampleWindow) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty window.
func (w *SampleWindow) Mean() float64 {
	if len(w.values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range w.values {
		sum += v
	}
	return sum / float64(len(w.values))
}

// StdDev returns the population standard deviation, or 0 for an empty
// window.
func (w *SampleWindow) StdDev() float64 {
	n := len(w.values)
	if n == 0 {
		return 0
	}
	mean := w.Mean()
	var sumSq float64
	for _, v := range w.values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n))
}

// Clone returns an independent copy of the window.
func (w *SampleWindow) Clone() *SampleWindow {
	clone := NewSampleWindow(w.capacity)
	clone.values = append(clone.values, w.values...)
	return clone
}

// SignalHistories bundles the rolling windows for the three observed
// signal channels. Windows are appended together, so the per-signal
// lengths only diverge if a window is manipulated directly.
type SignalHistories struct {
	Typing *SampleWindow
	Mouse  *SampleWindow
	Scroll *SampleWindow
}

// NewSignalHistories creates empty windows with the given shared capacity.
func NewSignalHistories(capacity int) *SignalHistories {
	return &SignalHistories{
		Typing: NewSampleWindow(capacity),
		Mouse:  NewSampleWindow(capacity),
		Scroll: NewSampleWindow(capacity),
	}
}

// Append pushes the sample's signal values onto all three windows.
func (h *SignalHistories) Append(s *Sample) {
	h.Typing.Push(s.TypingIntervalMS)
	h.Mouse.Push(s.MouseEvents)
	h.Scroll.Push(s.ScrollEvents)
}

// PairedCount returns the number of complete sample rows available, the
// minimum length across the three windows.
func (h *SignalHistories) PairedCount() int {
	n := h.Typing.Len()
	if m := h.Mouse.Len(); m < n {
		n = m
	}
	if s := h.Scroll.Len(); s < n {
		n = s
	}
	return n
}

// Clone returns an independent deep copy.
func (h *SignalHistories) Clone() *SignalHistories {
	return &SignalHistories{
		Typing: h.Typing.Clone(),
		Mouse:  h.Mouse.Clone(),
		Scroll: h.Scroll.Clone(),
	}
}
