// Package vm defines the domain types shared across the virtual memory
// simulator: the shape of the simulated address space, decomposed virtual
// addresses, and the result of one translated access.
package vm

import "fmt"

// An AddressSpace describes the simulated virtual address space through the
// number of logical pages and the number of bytes per page. Pages and frames
// share a single size, so FrameSize doubles as the page size.
type AddressSpace struct {
	PageCount uint64
	FrameSize uint64
}

// Size returns the total number of addressable bytes.
func (s AddressSpace) Size() uint64 {
	return s.PageCount * s.FrameSize
}

// Contains reports whether addr falls within the address space.
func (s AddressSpace) Contains(addr uint64) bool {
	return addr < s.Size()
}

// Decompose splits addr into its page number and in-page offset. Addresses at
// or beyond the end of the address space fail with *OutOfRangeError.
func (s AddressSpace) Decompose(addr uint64) (VirtualAddress, error) {
	if !s.Contains(addr) {
		return VirtualAddress{}, &OutOfRangeError{
			Address: addr,
			Limit:   s.Size(),
		}
	}

	return VirtualAddress{
		Raw:        addr,
		PageNumber: addr / s.FrameSize,
		Offset:     addr % s.FrameSize,
	}, nil
}

// A VirtualAddress is a logical address decomposed against an AddressSpace.
type VirtualAddress struct {
	Raw        uint64
	PageNumber uint64
	Offset     uint64
}

func (a VirtualAddress) String() string {
	return fmt.Sprintf("logical: %d\tpage number: %d\toffset: %d",
		a.Raw, a.PageNumber, a.Offset)
}
