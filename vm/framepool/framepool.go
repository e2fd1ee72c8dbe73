// Package framepool manages the fixed set of physical frames and the
// replacement policy that picks eviction victims when the set is full.
package framepool

import (
	"errors"
	"fmt"
)

// ErrPoolExhausted reports that no free frame is available. The translator
// recovers by evicting a victim; the error never escapes a translation.
var ErrPoolExhausted = errors.New("no free frames available")

type frame struct {
	ownerPage uint64
	bound     bool
	data      []byte

	boundAt    uint64
	touchedAt  uint64
	referenced bool
}

// A Pool owns all physical frames of the simulation. Frames move between
// the free list and residency exclusively through Allocate, Bind, and
// Evict; the configured VictimFinder only ever picks among resident frames.
type Pool struct {
	frameSize uint64
	frames    []frame
	free      []uint64
	finder    VictimFinder

	sequence uint64
	resident int
}

// Allocate returns the index of a free frame, or ErrPoolExhausted when all
// frames are resident.
func (p *Pool) Allocate() (uint64, error) {
	if len(p.free) == 0 {
		return 0, ErrPoolExhausted
	}

	index := p.free[0]
	p.free = p.free[1:]

	return index, nil
}

// SelectVictim asks the replacement policy for the resident frame to evict.
// Calling it while free frames remain is a protocol violation.
func (p *Pool) SelectVictim() uint64 {
	if len(p.free) > 0 {
		panic("victim selection with free frames remaining")
	}

	return p.finder.FindVictim(p)
}

// Bind makes a frame resident: it records the owning page, copies the page
// data in, and starts the frame's replacement bookkeeping.
func (p *Pool) Bind(index, pageNumber uint64, data []byte) {
	f := p.frameMustExist(index)

	if f.bound {
		panic(fmt.Sprintf("frame %d is already bound to page %d",
			index, f.ownerPage))
	}

	if uint64(len(data)) != p.frameSize {
		panic(fmt.Sprintf("page data is %d bytes, frame holds %d",
			len(data), p.frameSize))
	}

	copy(f.data, data)
	f.ownerPage = pageNumber
	f.bound = true

	p.sequence++
	f.boundAt = p.sequence
	f.touchedAt = p.sequence
	f.referenced = true

	p.resident++
}

// Evict releases a resident frame back to the free list and returns the
// page that owned it, so the caller can invalidate its table entry.
func (p *Pool) Evict(index uint64) uint64 {
	f := p.frameMustBeBound(index)

	page := f.ownerPage
	f.bound = false
	f.referenced = false

	p.resident--
	p.free = append(p.free, index)

	return page
}

// Touch records a use of a resident frame for the replacement bookkeeping.
func (p *Pool) Touch(index uint64) {
	f := p.frameMustBeBound(index)

	p.sequence++
	f.touchedAt = p.sequence
	f.referenced = true
}

// Byte returns the byte at the given offset of a resident frame.
func (p *Pool) Byte(index, offset uint64) int8 {
	f := p.frameMustBeBound(index)

	if offset >= p.frameSize {
		panic(fmt.Sprintf("offset %d beyond frame size %d", offset, p.frameSize))
	}

	return int8(f.data[offset])
}

// OwnerPage returns the page bound to a frame. The bool return reports
// whether the frame is resident at all.
func (p *Pool) OwnerPage(index uint64) (uint64, bool) {
	f := p.frameMustExist(index)

	if !f.bound {
		return 0, false
	}

	return f.ownerPage, true
}

// ResidentCount returns the number of currently bound frames.
func (p *Pool) ResidentCount() int {
	return p.resident
}

// Capacity returns the total number of frames, free or bound.
func (p *Pool) Capacity() int {
	return len(p.frames)
}

// FrameSize returns the number of bytes per frame.
func (p *Pool) FrameSize() uint64 {
	return p.frameSize
}

func (p *Pool) frameMustExist(index uint64) *frame {
	if index >= uint64(len(p.frames)) {
		panic(fmt.Sprintf("frame %d does not exist", index))
	}

	return &p.frames[index]
}

func (p *Pool) frameMustBeBound(index uint64) *frame {
	f := p.frameMustExist(index)

	if !f.bound {
		panic(fmt.Sprintf("frame %d is not bound", index))
	}

	return f
}
