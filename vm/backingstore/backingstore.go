// Package backingstore provides read-only, page-granular access to the
// backing store file that holds the content of the simulated address space.
package backingstore

import (
	"fmt"
	"os"

	"github.com/seantronsen/virtual-memory-sim/vm"
)

// A Storage reads pages of the backing store file. Every read goes to the
// file; holding resident pages in memory is the frame pool's job.
type Storage struct {
	file  *os.File
	space vm.AddressSpace
}

// ReadPage returns the frame-size bytes that the given page occupies in the
// backing store file. Reads that fail or come up short surface the
// underlying I/O error, which is fatal to a run.
func (s *Storage) ReadPage(pageNumber uint64) ([]byte, error) {
	if pageNumber >= s.space.PageCount {
		return nil, &vm.OutOfRangeError{
			Address: pageNumber * s.space.FrameSize,
			Limit:   s.space.Size(),
		}
	}

	buffer := make([]byte, s.space.FrameSize)
	offset := int64(pageNumber * s.space.FrameSize)

	_, err := s.file.ReadAt(buffer, offset)
	if err != nil {
		return nil, fmt.Errorf("reading page %d: %w", pageNumber, err)
	}

	return buffer, nil
}

// AddressSpace returns the address space the storage serves.
func (s *Storage) AddressSpace() vm.AddressSpace {
	return s.space
}

// PageCount returns the number of pages held by the storage.
func (s *Storage) PageCount() uint64 {
	return s.space.PageCount
}

// FrameSize returns the number of bytes per page.
func (s *Storage) FrameSize() uint64 {
	return s.space.FrameSize
}

// Close releases the underlying file.
func (s *Storage) Close() error {
	return s.file.Close()
}
