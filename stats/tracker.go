// Package stats accumulates the counters of a simulation run and derives
// the ratios reported when the run completes.
package stats

import (
	"fmt"
	"sync/atomic"
)

// A Tracker holds the monotonic counters of one simulation run. The run
// goroutine records events while a monitor may take snapshots concurrently,
// so the counters are atomics.
type Tracker struct {
	attemptedAccesses atomic.Uint64
	correctAccesses   atomic.Uint64
	pageHits          atomic.Uint64
	tlbHits           atomic.Uint64
	tlbFlushes        atomic.Uint64
}

// NewTracker creates a Tracker with all counters at zero.
func NewTracker() *Tracker {
	return &Tracker{}
}

// RecordAttempt counts one address taken from the input stream.
func (t *Tracker) RecordAttempt() {
	t.attemptedAccesses.Add(1)
}

// RecordCorrect counts one access whose value matched the oracle.
func (t *Tracker) RecordCorrect() {
	t.correctAccesses.Add(1)
}

// RecordPageHit counts one translation served by a valid page table entry.
func (t *Tracker) RecordPageHit() {
	t.pageHits.Add(1)
}

// RecordTLBHit counts one translation served directly by the translation
// cache.
func (t *Tracker) RecordTLBHit() {
	t.tlbHits.Add(1)
}

// RecordTLBFlush counts one whole-cache flush caused by a hard fault.
func (t *Tracker) RecordTLBFlush() {
	t.tlbFlushes.Add(1)
}

// Snapshot copies the current counter values.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		AttemptedAccesses: t.attemptedAccesses.Load(),
		CorrectAccesses:   t.correctAccesses.Load(),
		PageHits:          t.pageHits.Load(),
		TLBHits:           t.tlbHits.Load(),
		TLBFlushes:        t.tlbFlushes.Load(),
	}
}

func (t *Tracker) String() string {
	return t.Snapshot().String()
}

// A Snapshot is a point-in-time copy of the run counters.
type Snapshot struct {
	AttemptedAccesses uint64
	CorrectAccesses   uint64
	PageHits          uint64
	TLBHits           uint64
	TLBFlushes        uint64
}

// TLBHitRatio returns the fraction of attempted accesses served by the
// translation cache. It is zero before any access is attempted.
func (s Snapshot) TLBHitRatio() float64 {
	if s.AttemptedAccesses == 0 {
		return 0
	}

	return float64(s.TLBHits) / float64(s.AttemptedAccesses)
}

// PageHitRatio returns the fraction of attempted accesses served by a valid
// page table entry. It is zero before any access is attempted.
func (s Snapshot) PageHitRatio() float64 {
	if s.AttemptedAccesses == 0 {
		return 0
	}

	return float64(s.PageHits) / float64(s.AttemptedAccesses)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(`
Stats Tracked
---------------------------------
attempted_accesses:      %08d
correct_accesses:        %08d
page_hits:               %08d
tlb_hits:                %08d
tlb_flushes:             %08d


tlb hit ratio:           %.6f
page hit ratio:          %.6f
`,
		s.AttemptedAccesses,
		s.CorrectAccesses,
		s.PageHits,
		s.TLBHits,
		s.TLBFlushes,
		s.TLBHitRatio(),
		s.PageHitRatio(),
	)
}
