package tlb

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cache", func() {
	var cache *Cache

	BeforeEach(func() {
		cache = New(3)
	})

	It("should start empty", func() {
		Expect(cache.Len()).To(Equal(0))
		Expect(cache.Capacity()).To(Equal(3))

		_, ok := cache.Lookup(0)
		Expect(ok).To(BeFalse())
	})

	It("should return inserted mappings", func() {
		cache.Insert(4, 1)

		frame, ok := cache.Lookup(4)
		Expect(ok).To(BeTrue())
		Expect(frame).To(Equal(uint64(1)))
	})

	It("should never exceed its capacity", func() {
		for page := uint64(0); page < 10; page++ {
			cache.Insert(page, page)
			Expect(cache.Len()).To(BeNumerically("<=", 3))
		}
	})

	It("should evict the oldest entry when full", func() {
		cache.Insert(0, 0)
		cache.Insert(1, 1)
		cache.Insert(2, 2)
		cache.Insert(3, 3)

		_, ok := cache.Lookup(0)
		Expect(ok).To(BeFalse())

		for page := uint64(1); page <= 3; page++ {
			_, ok := cache.Lookup(page)
			Expect(ok).To(BeTrue())
		}
	})

	It("should update a present page in place without growing", func() {
		cache.Insert(0, 0)
		cache.Insert(1, 1)
		cache.Insert(0, 2)

		Expect(cache.Len()).To(Equal(2))

		frame, ok := cache.Lookup(0)
		Expect(ok).To(BeTrue())
		Expect(frame).To(Equal(uint64(2)))
	})

	It("should keep the replacement position of an updated page", func() {
		cache.Insert(0, 0)
		cache.Insert(1, 1)
		cache.Insert(2, 2)

		cache.Insert(0, 5)
		cache.Insert(3, 3)

		// Page 0 stayed oldest, so it is the one evicted.
		_, ok := cache.Lookup(0)
		Expect(ok).To(BeFalse())

		_, ok = cache.Lookup(1)
		Expect(ok).To(BeTrue())
	})

	It("should be empty after a flush", func() {
		cache.Insert(0, 0)
		cache.Insert(1, 1)

		cache.Flush()

		Expect(cache.Len()).To(Equal(0))
		_, ok := cache.Lookup(0)
		Expect(ok).To(BeFalse())
		_, ok = cache.Lookup(1)
		Expect(ok).To(BeFalse())
	})

	It("should accept fresh insertions after a flush", func() {
		for page := uint64(0); page < 3; page++ {
			cache.Insert(page, page)
		}
		cache.Flush()

		cache.Insert(7, 1)

		Expect(cache.Len()).To(Equal(1))
		frame, ok := cache.Lookup(7)
		Expect(ok).To(BeTrue())
		Expect(frame).To(Equal(uint64(1)))
	})

	It("should list entries oldest first", func() {
		cache.Insert(5, 0)
		cache.Insert(9, 1)

		entries := cache.Entries()
		Expect(entries).To(Equal([]Entry{{Page: 5, Frame: 0}, {Page: 9, Frame: 1}}))
	})

	It("should panic on a non-positive capacity", func() {
		Expect(func() { New(0) }).To(Panic())
	})
})
