package framepool

import (
	"fmt"
	"math/rand"
)

// A VictimFinder decides which resident frame should be evicted when the
// pool is full. Implementations only read the pool's replacement
// bookkeeping; the pool itself performs the eviction.
type VictimFinder interface {
	FindVictim(pool *Pool) uint64
}

// NewVictimFinder creates the victim finder registered under a policy name:
// "fifo", "lru", "clock", or "random".
func NewVictimFinder(policy string, seed int64) (VictimFinder, error) {
	switch policy {
	case "fifo":
		return NewFIFOVictimFinder(), nil
	case "lru":
		return NewLRUVictimFinder(), nil
	case "clock":
		return NewClockVictimFinder(), nil
	case "random":
		return NewRandomVictimFinder(seed), nil
	}

	return nil, fmt.Errorf("unknown replacement policy %q", policy)
}

// FIFOVictimFinder evicts the frame that has been resident longest.
type FIFOVictimFinder struct {
}

// NewFIFOVictimFinder returns a newly constructed fifo evictor.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return new(FIFOVictimFinder)
}

// FindVictim returns the bound frame with the oldest binding.
func (e *FIFOVictimFinder) FindVictim(pool *Pool) uint64 {
	victim := uint64(0)
	best := uint64(0)
	found := false

	for i := range pool.frames {
		f := &pool.frames[i]
		if !f.bound {
			continue
		}

		if !found || f.boundAt < best {
			victim = uint64(i)
			best = f.boundAt
			found = true
		}
	}

	if !found {
		panic("no resident frame to victimize")
	}

	return victim
}

// LRUVictimFinder evicts the least recently used frame.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	return new(LRUVictimFinder)
}

// FindVictim returns the bound frame with the oldest touch.
func (e *LRUVictimFinder) FindVictim(pool *Pool) uint64 {
	victim := uint64(0)
	best := uint64(0)
	found := false

	for i := range pool.frames {
		f := &pool.frames[i]
		if !f.bound {
			continue
		}

		if !found || f.touchedAt < best {
			victim = uint64(i)
			best = f.touchedAt
			found = true
		}
	}

	if !found {
		panic("no resident frame to victimize")
	}

	return victim
}

// ClockVictimFinder gives every frame a second chance before eviction: a
// rotating hand clears reference bits and evicts the first frame found
// without one.
type ClockVictimFinder struct {
	hand uint64
}

// NewClockVictimFinder returns a newly constructed clock evictor.
func NewClockVictimFinder() *ClockVictimFinder {
	return new(ClockVictimFinder)
}

// FindVictim sweeps the hand over the resident frames until one without a
// reference bit turns up. A full sweep clears every bit, so the sweep
// terminates within two rotations.
func (e *ClockVictimFinder) FindVictim(pool *Pool) uint64 {
	if pool.resident == 0 {
		panic("no resident frame to victimize")
	}

	for {
		index := e.hand % uint64(len(pool.frames))
		e.hand++

		f := &pool.frames[index]
		if !f.bound {
			continue
		}

		if f.referenced {
			f.referenced = false
			continue
		}

		return index
	}
}

// RandomVictimFinder evicts a uniformly chosen resident frame. The choice
// is driven by a seeded source so runs stay reproducible.
type RandomVictimFinder struct {
	rng *rand.Rand
}

// NewRandomVictimFinder returns a newly constructed random evictor.
func NewRandomVictimFinder(seed int64) *RandomVictimFinder {
	return &RandomVictimFinder{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// FindVictim returns a random bound frame.
func (e *RandomVictimFinder) FindVictim(pool *Pool) uint64 {
	resident := make([]uint64, 0, pool.resident)
	for i := range pool.frames {
		if pool.frames[i].bound {
			resident = append(resident, uint64(i))
		}
	}

	if len(resident) == 0 {
		panic("no resident frame to victimize")
	}

	return resident[e.rng.Intn(len(resident))]
}
