// Package translator implements the address resolution protocol that ties
// the translation cache, page table, frame pool, and backing store
// together.
package translator

import (
	"errors"
	"fmt"

	"github.com/seantronsen/virtual-memory-sim/stats"
	"github.com/seantronsen/virtual-memory-sim/vm"
	"github.com/seantronsen/virtual-memory-sim/vm/framepool"
	"github.com/seantronsen/virtual-memory-sim/vm/pagetable"
	"github.com/seantronsen/virtual-memory-sim/vm/tlb"
)

// A PageLoader loads the content of one logical page from the backing
// store.
type PageLoader interface {
	ReadPage(pageNumber uint64) ([]byte, error)
}

// A Translator resolves logical addresses to physical bytes. It is the only
// mutator of the cache, the table, and the pool, and it keeps the three
// aligned through the flush-on-eviction rule: evicting any resident frame
// invalidates the owning page and flushes the whole translation cache.
//
// Translators are not safe for concurrent use. Addresses resolve strictly
// one after another.
type Translator struct {
	space   vm.AddressSpace
	cache   *tlb.Cache
	table   *pagetable.Table
	pool    *framepool.Pool
	loader  PageLoader
	tracker *stats.Tracker
}

// Translate resolves one logical address to the byte stored at its physical
// location. Addresses beyond the address space fail with
// *vm.OutOfRangeError before any state or statistic moves. A failing
// backing store read aborts the translation and is fatal to the run.
func (t *Translator) Translate(addr uint64) (vm.Access, error) {
	virt, err := t.space.Decompose(addr)
	if err != nil {
		return vm.Access{}, err
	}

	frame, outcome, err := t.resolve(virt.PageNumber)
	if err != nil {
		return vm.Access{}, err
	}

	t.pool.Touch(frame)

	return vm.Access{
		Virtual:  virt,
		Physical: frame*t.space.FrameSize + virt.Offset,
		Value:    t.pool.Byte(frame, virt.Offset),
		Outcome:  outcome,
	}, nil
}

// resolve finds the frame holding the page, probing the translation cache
// first, the page table second, and faulting the page in last.
func (t *Translator) resolve(pageNumber uint64) (uint64, vm.Outcome, error) {
	if frame, ok := t.cache.Lookup(pageNumber); ok {
		t.tracker.RecordTLBHit()
		return frame, vm.OutcomeTLBHit, nil
	}

	entry, err := t.table.Lookup(pageNumber)
	if err != nil {
		return 0, 0, err
	}

	if entry.Valid {
		t.tracker.RecordPageHit()
		t.cache.Insert(pageNumber, entry.Frame)
		return entry.Frame, vm.OutcomePageHit, nil
	}

	return t.handleFault(pageNumber)
}

// handleFault loads the faulting page into a frame. A free frame makes the
// fault soft; otherwise a victim is evicted first and the fault is hard.
func (t *Translator) handleFault(pageNumber uint64) (uint64, vm.Outcome, error) {
	outcome := vm.OutcomeSoftFault

	frame, err := t.pool.Allocate()
	if errors.Is(err, framepool.ErrPoolExhausted) {
		frame = t.evictVictim()
		outcome = vm.OutcomeHardFault
	}

	data, err := t.loader.ReadPage(pageNumber)
	if err != nil {
		return 0, 0, fmt.Errorf("faulting page %d in: %w", pageNumber, err)
	}

	t.pool.Bind(frame, pageNumber, data)
	t.table.Install(pageNumber, frame)
	t.cache.Insert(pageNumber, frame)

	return frame, outcome, nil
}

// evictVictim reclaims one frame through the replacement policy. The
// whole-cache flush here is what guarantees no stale mapping to the
// reclaimed frame survives.
func (t *Translator) evictVictim() uint64 {
	victim := t.pool.SelectVictim()
	evictedPage := t.pool.Evict(victim)
	t.table.Invalidate(evictedPage)

	t.cache.Flush()
	t.tracker.RecordTLBFlush()

	frame, err := t.pool.Allocate()
	if err != nil {
		panic("eviction did not free a frame")
	}

	return frame
}
