package backingstore

import (
	"fmt"
	"os"

	"github.com/seantronsen/virtual-memory-sim/vm"
)

// A Builder can build backing store Storages.
type Builder struct {
	path      string
	pageCount uint64
	frameSize uint64
}

// MakeBuilder returns a Builder with the default page geometry.
func MakeBuilder() Builder {
	return Builder{
		path:      "BACKING_STORE.bin",
		pageCount: 64,
		frameSize: 256,
	}
}

// WithPath sets the backing store file to open.
func (b Builder) WithPath(path string) Builder {
	b.path = path
	return b
}

// WithPageCount sets the number of pages the storage must serve.
func (b Builder) WithPageCount(n uint64) Builder {
	b.pageCount = n
	return b
}

// WithFrameSize sets the number of bytes per page.
func (b Builder) WithFrameSize(n uint64) Builder {
	b.frameSize = n
	return b
}

// Build opens the backing store file and verifies that it covers the whole
// address space.
func (b Builder) Build() (*Storage, error) {
	space := vm.AddressSpace{
		PageCount: b.pageCount,
		FrameSize: b.frameSize,
	}

	file, err := os.Open(b.path)
	if err != nil {
		return nil, fmt.Errorf("opening backing store: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("inspecting backing store: %w", err)
	}

	if uint64(info.Size()) < space.Size() {
		file.Close()
		return nil, fmt.Errorf(
			"backing store %s holds %d bytes, address space requires %d",
			b.path, info.Size(), space.Size())
	}

	return &Storage{
		file:  file,
		space: space,
	}, nil
}
