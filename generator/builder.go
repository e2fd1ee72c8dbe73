package generator

import (
	"math/rand"

	"github.com/seantronsen/virtual-memory-sim/vm"
	"github.com/seantronsen/virtual-memory-sim/vm/framepool"
)

// A Builder can build fixture generators.
type Builder struct {
	storePath   string
	addressPath string
	oraclePath  string

	space        vm.AddressSpace
	tlbSize      int
	poolCapacity uint64
	finder       framepool.VictimFinder

	count int
	seed  int64
}

// MakeBuilder returns a builder producing the default fixture set: a 64
// page by 256 byte store and 1000 addresses.
func MakeBuilder() Builder {
	return Builder{
		storePath:    "BACKING_STORE.bin",
		addressPath:  "addresses.txt",
		oraclePath:   "correct.txt",
		space:        vm.AddressSpace{PageCount: 64, FrameSize: 256},
		tlbSize:      16,
		poolCapacity: 64,
		count:        1000,
		seed:         1,
	}
}

// WithStorePath sets where the binary backing store is written.
func (b Builder) WithStorePath(path string) Builder {
	b.storePath = path
	return b
}

// WithAddressPath sets where the address stream is written.
func (b Builder) WithAddressPath(path string) Builder {
	b.addressPath = path
	return b
}

// WithOraclePath sets where the oracle file is written.
func (b Builder) WithOraclePath(path string) Builder {
	b.oraclePath = path
	return b
}

// WithAddressSpace sets the generated address space geometry.
func (b Builder) WithAddressSpace(space vm.AddressSpace) Builder {
	b.space = space
	return b
}

// WithTLBSize sets the translation cache capacity of the reference run.
func (b Builder) WithTLBSize(n int) Builder {
	b.tlbSize = n
	return b
}

// WithPoolCapacity sets the frame pool capacity of the reference run.
func (b Builder) WithPoolCapacity(n uint64) Builder {
	b.poolCapacity = n
	return b
}

// WithVictimFinder sets the replacement policy of the reference run.
func (b Builder) WithVictimFinder(finder framepool.VictimFinder) Builder {
	b.finder = finder
	return b
}

// WithCount sets the number of addresses generated.
func (b Builder) WithCount(n int) Builder {
	b.count = n
	return b
}

// WithSeed seeds the random source, making the fixture set reproducible.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// Build returns a generator for one fixture set.
func (b Builder) Build() *Generator {
	b.parametersMustBeValid()

	finder := b.finder
	if finder == nil {
		finder = framepool.NewFIFOVictimFinder()
	}

	return &Generator{
		storePath:    b.storePath,
		addressPath:  b.addressPath,
		oraclePath:   b.oraclePath,
		space:        b.space,
		tlbSize:      b.tlbSize,
		poolCapacity: b.poolCapacity,
		finder:       finder,
		count:        b.count,
		rng:          rand.New(rand.NewSource(b.seed)),
	}
}

func (b Builder) parametersMustBeValid() {
	if b.storePath == "" || b.addressPath == "" || b.oraclePath == "" {
		panic("generator requires all three fixture paths")
	}

	if b.space.Size() == 0 {
		panic("generator requires a non-empty address space")
	}

	if b.tlbSize <= 0 || b.poolCapacity == 0 {
		panic("generator requires positive cache and pool capacities")
	}

	if b.count <= 0 {
		panic("generator requires a positive address count")
	}
}
