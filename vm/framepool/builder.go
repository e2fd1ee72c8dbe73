package framepool

// A Builder can build frame Pools.
type Builder struct {
	capacity  uint64
	frameSize uint64
	finder    VictimFinder
}

// MakeBuilder returns a Builder with the default geometry and the fifo
// replacement policy.
func MakeBuilder() Builder {
	return Builder{
		capacity:  64,
		frameSize: 256,
	}
}

// WithCapacity sets the number of physical frames in the pool.
func (b Builder) WithCapacity(n uint64) Builder {
	b.capacity = n
	return b
}

// WithFrameSize sets the number of bytes per frame.
func (b Builder) WithFrameSize(n uint64) Builder {
	b.frameSize = n
	return b
}

// WithVictimFinder sets the replacement policy used on hard faults.
func (b Builder) WithVictimFinder(finder VictimFinder) Builder {
	b.finder = finder
	return b
}

// Build creates a Pool with every frame free.
func (b Builder) Build() *Pool {
	if b.capacity == 0 {
		panic("frame pool capacity must be positive")
	}

	if b.frameSize == 0 {
		panic("frame size must be positive")
	}

	finder := b.finder
	if finder == nil {
		finder = NewFIFOVictimFinder()
	}

	pool := &Pool{
		frameSize: b.frameSize,
		frames:    make([]frame, b.capacity),
		free:      make([]uint64, b.capacity),
		finder:    finder,
	}

	for i := range pool.frames {
		pool.frames[i].data = make([]byte, b.frameSize)
		pool.free[i] = uint64(i)
	}

	return pool
}
