package vm

import "fmt"

// An Outcome classifies how a translation was resolved, from cheapest to
// most expensive.
type Outcome int

const (
	// OutcomeTLBHit marks a translation served directly by the translation
	// cache.
	OutcomeTLBHit Outcome = iota

	// OutcomePageHit marks a translation served by a valid page table entry.
	OutcomePageHit

	// OutcomeSoftFault marks a page fault satisfied from a free frame.
	OutcomeSoftFault

	// OutcomeHardFault marks a page fault that evicted a resident frame.
	OutcomeHardFault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTLBHit:
		return "tlb_hit"
	case OutcomePageHit:
		return "page_hit"
	case OutcomeSoftFault:
		return "soft_fault"
	case OutcomeHardFault:
		return "hard_fault"
	}

	return "unknown"
}

// An Access is the result of translating one virtual address: the physical
// location the address resolved to, the byte stored there, and how the
// resolution was served. Byte values are signed 8-bit quantities.
type Access struct {
	Virtual  VirtualAddress
	Physical uint64
	Value    int8
	Outcome  Outcome
}

func (a Access) String() string {
	return fmt.Sprintf("virtual address: `%s`\tphysical address: %d\tvalue: %d",
		a.Virtual, a.Physical, a.Value)
}
