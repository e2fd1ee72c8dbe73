// Package generator produces the three fixture files a simulation run
// consumes: the binary backing store, the address stream, and the oracle of
// expected outcomes. The oracle comes from a reference run over the freshly
// generated store, so a simulation with the same geometry and policy must
// reproduce it exactly.
package generator

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"

	"github.com/seantronsen/virtual-memory-sim/stats"
	"github.com/seantronsen/virtual-memory-sim/vm"
	"github.com/seantronsen/virtual-memory-sim/vm/backingstore"
	"github.com/seantronsen/virtual-memory-sim/vm/framepool"
	"github.com/seantronsen/virtual-memory-sim/vm/pagetable"
	"github.com/seantronsen/virtual-memory-sim/vm/tlb"
	"github.com/seantronsen/virtual-memory-sim/vm/translator"
)

// A Generator writes one consistent fixture set.
type Generator struct {
	storePath   string
	addressPath string
	oraclePath  string

	space        vm.AddressSpace
	tlbSize      int
	poolCapacity uint64
	finder       framepool.VictimFinder

	count int
	rng   *rand.Rand
}

// Generate writes the store, the address stream, and the oracle. Existing
// files are overwritten.
func (g *Generator) Generate() error {
	if err := g.writeStore(); err != nil {
		return err
	}

	addresses, err := g.writeAddresses()
	if err != nil {
		return err
	}

	return g.writeOracle(addresses)
}

func (g *Generator) writeStore() error {
	data := make([]byte, g.space.Size())
	g.rng.Read(data)

	if err := os.WriteFile(g.storePath, data, 0644); err != nil {
		return fmt.Errorf("writing backing store: %w", err)
	}

	return nil
}

func (g *Generator) writeAddresses() ([]uint64, error) {
	file, err := os.Create(g.addressPath)
	if err != nil {
		return nil, fmt.Errorf("creating address file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	addresses := make([]uint64, g.count)
	for i := range addresses {
		addresses[i] = uint64(g.rng.Int63n(int64(g.space.Size())))
		fmt.Fprintf(writer, "%d\n", addresses[i])
	}

	if err := writer.Flush(); err != nil {
		return nil, fmt.Errorf("writing address file: %w", err)
	}

	return addresses, nil
}

// writeOracle replays the generated addresses through a reference
// translation stack and records what each access resolved to.
func (g *Generator) writeOracle(addresses []uint64) error {
	storage, err := backingstore.MakeBuilder().
		WithPath(g.storePath).
		WithPageCount(g.space.PageCount).
		WithFrameSize(g.space.FrameSize).
		Build()
	if err != nil {
		return err
	}
	defer storage.Close()

	reference := translator.MakeBuilder().
		WithAddressSpace(g.space).
		WithCache(tlb.New(g.tlbSize)).
		WithPageTable(pagetable.New(g.space.PageCount)).
		WithFramePool(framepool.MakeBuilder().
			WithCapacity(g.poolCapacity).
			WithFrameSize(g.space.FrameSize).
			WithVictimFinder(g.finder).
			Build()).
		WithPageLoader(storage).
		WithTracker(stats.NewTracker()).
		Build()

	file, err := os.Create(g.oraclePath)
	if err != nil {
		return fmt.Errorf("creating oracle file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, addr := range addresses {
		access, err := reference.Translate(addr)
		if err != nil {
			return fmt.Errorf("reference run: %w", err)
		}

		fmt.Fprintf(writer, "Virtual address: %d Physical address: %d Value: %d\n",
			access.Virtual.Raw, access.Physical, access.Value)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("writing oracle file: %w", err)
	}

	return nil
}
