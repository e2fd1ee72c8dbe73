package framepool

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func fillPool(pool *Pool, numPages uint64) {
	for page := uint64(0); page < numPages; page++ {
		index, err := pool.Allocate()
		if err != nil {
			panic(err)
		}
		pool.Bind(index, page, make([]byte, pool.FrameSize()))
	}
}

var _ = Describe("VictimFinder", func() {
	newPool := func(finder VictimFinder) *Pool {
		return MakeBuilder().
			WithCapacity(3).
			WithFrameSize(4).
			WithVictimFinder(finder).
			Build()
	}

	Context("fifo", func() {
		It("should pick the longest resident frame", func() {
			pool := newPool(NewFIFOVictimFinder())
			fillPool(pool, 3)

			Expect(pool.SelectVictim()).To(Equal(uint64(0)))
		})

		It("should ignore touches", func() {
			pool := newPool(NewFIFOVictimFinder())
			fillPool(pool, 3)

			pool.Touch(0)
			pool.Touch(0)

			Expect(pool.SelectVictim()).To(Equal(uint64(0)))
		})

		It("should move on once the oldest frame is rebound", func() {
			pool := newPool(NewFIFOVictimFinder())
			fillPool(pool, 3)

			victim := pool.SelectVictim()
			pool.Evict(victim)
			index, _ := pool.Allocate()
			pool.Bind(index, 9, make([]byte, 4))

			Expect(pool.SelectVictim()).To(Equal(uint64(1)))
		})
	})

	Context("lru", func() {
		It("should pick the least recently touched frame", func() {
			pool := newPool(NewLRUVictimFinder())
			fillPool(pool, 3)

			pool.Touch(0)
			pool.Touch(2)

			Expect(pool.SelectVictim()).To(Equal(uint64(1)))
		})

		It("should fall back to binding order without touches", func() {
			pool := newPool(NewLRUVictimFinder())
			fillPool(pool, 3)

			Expect(pool.SelectVictim()).To(Equal(uint64(0)))
		})
	})

	Context("clock", func() {
		It("should clear reference bits before evicting", func() {
			pool := newPool(NewClockVictimFinder())
			fillPool(pool, 3)

			// All frames carry a reference bit from binding, so the first
			// sweep clears them and the hand lands back on frame 0.
			Expect(pool.SelectVictim()).To(Equal(uint64(0)))
		})

		It("should give touched frames a second chance", func() {
			finder := NewClockVictimFinder()
			pool := newPool(finder)
			fillPool(pool, 3)

			pool.SelectVictim()
			pool.Touch(1)

			// Frame 1 regained its bit, so the hand passes it by.
			Expect(pool.SelectVictim()).To(Equal(uint64(2)))
		})
	})

	Context("random", func() {
		It("should pick a resident frame", func() {
			pool := newPool(NewRandomVictimFinder(42))
			fillPool(pool, 3)

			victim := pool.SelectVictim()
			_, bound := pool.OwnerPage(victim)
			Expect(bound).To(BeTrue())
		})

		It("should be reproducible for a fixed seed", func() {
			first := newPool(NewRandomVictimFinder(42))
			fillPool(first, 3)

			second := newPool(NewRandomVictimFinder(42))
			fillPool(second, 3)

			Expect(first.SelectVictim()).To(Equal(second.SelectVictim()))
		})
	})

	Context("lookup by name", func() {
		It("should construct every registered policy", func() {
			for _, policy := range []string{"fifo", "lru", "clock", "random"} {
				finder, err := NewVictimFinder(policy, 1)
				Expect(err).ToNot(HaveOccurred())
				Expect(finder).ToNot(BeNil())
			}
		})

		It("should reject unknown policies", func() {
			_, err := NewVictimFinder("optimal", 1)
			Expect(err).To(HaveOccurred())
		})
	})
})
