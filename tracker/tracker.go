// Package tracker records storage key accesses made by a benchmarked
// workload and measures the time spent in redundant repeat executions.
//
// A benchmark wraps its real execution in EnterBlock/ExitBlock and every
// repeat of that execution in a nested EnterBlock/ExitBlock pair. Accesses
// recorded at depth 1 are important, accesses recorded deeper are
// redundant, and the time spent in the first nested level is accumulated
// so it can be subtracted from the wall-clock total.
package tracker

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the time source used for all measurements.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// Tracker is shared by every goroutine executing a benchmark case. Each
// field has its own lock; when more than one is held the order is
// depth, anchor, samples.
type Tracker struct {
	now func() time.Time

	startMu sync.RWMutex
	start   time.Time

	depthMu sync.RWMutex
	depth   uint32

	anchorMu sync.RWMutex
	anchor   time.Time

	samplesMu sync.RWMutex
	samples   []time.Duration

	flatMu sync.RWMutex
	flat   map[string]KeyRecord

	partitionedMu sync.RWMutex
	partitioned   map[string]map[string]KeyRecord
}

// New creates an idle Tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		now:         time.Now,
		flat:        make(map[string]KeyRecord),
		partitioned: make(map[string]map[string]KeyRecord),
	}

	for _, opt := range opts {
		opt(t)
	}

	t.start = t.now()
	t.anchor = t.start

	return t
}

// Instant resets the wall-clock anchor used by Elapsed.
func (t *Tracker) Instant() {
	ts := t.now()

	t.startMu.Lock()
	t.start = ts
	t.startMu.Unlock()
}

// Elapsed returns the time since the last Instant call.
func (t *Tracker) Elapsed() time.Duration {
	t.startMu.RLock()
	start := t.start
	t.startMu.RUnlock()

	return nonNegative(t.now().Sub(start))
}

// Depth returns the current nesting depth.
func (t *Tracker) Depth() uint32 {
	t.depthMu.RLock()
	defer t.depthMu.RUnlock()

	return t.depth
}

// IsRedundant reports whether the caller is inside a repeat pass.
func (t *Tracker) IsRedundant() bool {
	return t.Depth() > 1
}

// EnterBlock opens a benchmark window. The first window is the real
// execution; entering the second level anchors the redundant timer.
func (t *Tracker) EnterBlock() {
	ts := t.now()

	t.depthMu.Lock()
	defer t.depthMu.Unlock()

	if t.depth == 1 {
		t.anchorMu.Lock()
		t.anchor = ts
		t.anchorMu.Unlock()
	}

	t.depth++
}

// ExitBlock closes the innermost window. Leaving the first nested level
// records one redundant sample; deeper levels are contained in it and
// are not sampled.
func (t *Tracker) ExitBlock() {
	t.depthMu.Lock()
	defer t.depthMu.Unlock()

	if t.depth == 0 {
		panic("tracker: exit block without matching enter")
	}

	if t.depth == 2 {
		t.anchorMu.RLock()
		anchor := t.anchor
		t.anchorMu.RUnlock()

		elapsed := nonNegative(t.now().Sub(anchor))

		t.samplesMu.Lock()
		t.samples = append(t.samples, elapsed)
		t.samplesMu.Unlock()
	}

	t.depth--
}

// RedundantTime returns the total time spent in redundant windows.
// It panics if a window is still open: the measurement would be partial.
func (t *Tracker) RedundantTime() time.Duration {
	if depth := t.Depth(); depth != 0 {
		panic(fmt.Sprintf("tracker: benchmark in progress (depth %d)", depth))
	}

	t.samplesMu.RLock()
	defer t.samplesMu.RUnlock()

	var total time.Duration
	for _, s := range t.samples {
		total = saturatingAdd(total, s)
	}

	return total
}

// Samples returns a copy of the recorded redundant window durations.
func (t *Tracker) Samples() []time.Duration {
	t.samplesMu.RLock()
	defer t.samplesMu.RUnlock()

	out := make([]time.Duration, len(t.samples))
	copy(out, t.samples)

	return out
}

// ResetRedundant returns the tracker to depth 0 and drops all samples.
// Key records are left untouched.
func (t *Tracker) ResetRedundant() {
	t.depthMu.Lock()
	t.depth = 0
	t.depthMu.Unlock()

	t.samplesMu.Lock()
	t.samples = nil
	t.samplesMu.Unlock()
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}

	return d
}

func saturatingAdd(a, b time.Duration) time.Duration {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}

	return a + b
}
