package validation

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/seantronsen/virtual-memory-sim/stats"
	"github.com/seantronsen/virtual-memory-sim/vm"
	"github.com/seantronsen/virtual-memory-sim/vm/translator"
)

// An AccessRecord pairs one translated access with the oracle entry it was
// scored against.
type AccessRecord struct {
	Sequence uint64
	Access   vm.Access
	Expected OracleEntry
	Match    bool
}

// An Observer is notified after every attempted access. The harness calls
// observers on the run goroutine, so they must not block for long.
type Observer interface {
	ObserveAccess(record AccessRecord)
}

// A Harness replays the address stream through the translator one address
// at a time, scoring each resolved byte against the oracle. The run ends
// when either stream is exhausted; translation and read errors are fatal.
type Harness struct {
	translator *translator.Translator
	addresses  *AddressReader
	oracle     *OracleReader
	tracker    *stats.Tracker
	delay      time.Duration
	out        io.Writer
	observers  []Observer

	mu     sync.Mutex
	cond   *sync.Cond
	paused bool
}

// Run drives the whole stream and returns once it is exhausted. The
// per-access delay models memory latency only; it carries no correctness
// weight.
func (h *Harness) Run() error {
	var sequence uint64

	for {
		h.waitWhilePaused()

		addr, err := h.addresses.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		expected, err := h.oracle.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		h.tracker.RecordAttempt()
		sequence++

		access, err := h.translator.Translate(addr)
		if err != nil {
			return fmt.Errorf("access %d: %w", sequence, err)
		}

		match := access.Virtual.Raw == expected.Virtual &&
			access.Value == expected.Value
		if match {
			h.tracker.RecordCorrect()
		} else {
			fmt.Fprintf(h.out, "expected: %s\n", expected)
			fmt.Fprintf(h.out, "received: %s\n", access)
		}

		record := AccessRecord{
			Sequence: sequence,
			Access:   access,
			Expected: expected,
			Match:    match,
		}
		for _, observer := range h.observers {
			observer.ObserveAccess(record)
		}

		if h.delay > 0 {
			time.Sleep(h.delay)
		}
	}
}

// Pause stops the run before its next access. Safe to call from another
// goroutine.
func (h *Harness) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.paused = true
}

// Continue resumes a paused run.
func (h *Harness) Continue() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.paused = false
	h.cond.Broadcast()
}

func (h *Harness) waitWhilePaused() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for h.paused {
		h.cond.Wait()
	}
}
