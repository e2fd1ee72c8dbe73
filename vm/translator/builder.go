package translator

import (
	"github.com/seantronsen/virtual-memory-sim/stats"
	"github.com/seantronsen/virtual-memory-sim/vm"
	"github.com/seantronsen/virtual-memory-sim/vm/framepool"
	"github.com/seantronsen/virtual-memory-sim/vm/pagetable"
	"github.com/seantronsen/virtual-memory-sim/vm/tlb"
)

// A Builder can build translators.
type Builder struct {
	space   vm.AddressSpace
	cache   *tlb.Cache
	table   *pagetable.Table
	pool    *framepool.Pool
	loader  PageLoader
	tracker *stats.Tracker
}

// MakeBuilder returns a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{}
}

// WithAddressSpace sets the address space translations happen in.
func (b Builder) WithAddressSpace(space vm.AddressSpace) Builder {
	b.space = space
	return b
}

// WithCache sets the translation cache probed before the page table.
func (b Builder) WithCache(cache *tlb.Cache) Builder {
	b.cache = cache
	return b
}

// WithPageTable sets the page table.
func (b Builder) WithPageTable(table *pagetable.Table) Builder {
	b.table = table
	return b
}

// WithFramePool sets the frame pool that backs resident pages.
func (b Builder) WithFramePool(pool *framepool.Pool) Builder {
	b.pool = pool
	return b
}

// WithPageLoader sets the loader that reads faulting pages in.
func (b Builder) WithPageLoader(loader PageLoader) Builder {
	b.loader = loader
	return b
}

// WithTracker sets the tracker that counts resolution outcomes.
func (b Builder) WithTracker(tracker *stats.Tracker) Builder {
	b.tracker = tracker
	return b
}

// Build returns a translator with the collaborators wired together.
func (b Builder) Build() *Translator {
	b.parametersMustBeValid()

	return &Translator{
		space:   b.space,
		cache:   b.cache,
		table:   b.table,
		pool:    b.pool,
		loader:  b.loader,
		tracker: b.tracker,
	}
}

func (b Builder) parametersMustBeValid() {
	if b.cache == nil || b.table == nil || b.pool == nil {
		panic("translator requires a cache, a page table, and a frame pool")
	}

	if b.loader == nil {
		panic("translator requires a page loader")
	}

	if b.tracker == nil {
		panic("translator requires a tracker")
	}

	if uint64(b.table.Len()) != b.space.PageCount {
		panic("page table size must match the address space page count")
	}

	if b.pool.FrameSize() != b.space.FrameSize {
		panic("frame pool frame size must match the address space frame size")
	}
}
