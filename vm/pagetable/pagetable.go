// Package pagetable maintains the mapping from logical pages to physical
// frames.
package pagetable

import (
	"fmt"

	"github.com/seantronsen/virtual-memory-sim/vm"
)

// An Entry maps one logical page to a physical frame. The frame index is
// only meaningful while Valid is set.
type Entry struct {
	Valid bool
	Frame uint64
}

// A Table holds exactly one Entry per logical page. Entries start invalid
// and are mutated only through the fault handling protocol: Install when a
// page is loaded, Invalidate when its frame is evicted.
type Table struct {
	entries []Entry
}

// New creates a Table of the given size with every entry invalid.
func New(size uint64) *Table {
	return &Table{
		entries: make([]Entry, size),
	}
}

// Lookup returns the entry of the given page. Page numbers beyond the table
// fail with *vm.OutOfRangeError.
func (t *Table) Lookup(pageNumber uint64) (Entry, error) {
	if pageNumber >= uint64(len(t.entries)) {
		return Entry{}, &vm.OutOfRangeError{
			Address: pageNumber,
			Limit:   uint64(len(t.entries)),
		}
	}

	return t.entries[pageNumber], nil
}

// Install marks the page valid and mapped to the given frame. Installing
// over a valid entry is a protocol violation: the previous owner must be
// invalidated first.
func (t *Table) Install(pageNumber, frame uint64) {
	t.pageMustExist(pageNumber)

	if t.entries[pageNumber].Valid {
		panic(fmt.Sprintf("page %d is already mapped", pageNumber))
	}

	t.entries[pageNumber] = Entry{Valid: true, Frame: frame}
}

// Invalidate clears the mapping of a page whose frame was evicted.
func (t *Table) Invalidate(pageNumber uint64) {
	t.pageMustExist(pageNumber)

	if !t.entries[pageNumber].Valid {
		panic(fmt.Sprintf("page %d is not mapped", pageNumber))
	}

	t.entries[pageNumber] = Entry{}
}

// ValidCount returns the number of currently valid entries.
func (t *Table) ValidCount() int {
	count := 0
	for _, entry := range t.entries {
		if entry.Valid {
			count++
		}
	}

	return count
}

// Len returns the number of entries, valid or not.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of all entries in page number order.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, len(t.entries))
	copy(entries, t.entries)

	return entries
}

func (t *Table) pageMustExist(pageNumber uint64) {
	if pageNumber >= uint64(len(t.entries)) {
		panic(fmt.Sprintf("page %d does not exist", pageNumber))
	}
}
