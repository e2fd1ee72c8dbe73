package translator

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/seantronsen/virtual-memory-sim/stats"
	"github.com/seantronsen/virtual-memory-sim/vm"
	"github.com/seantronsen/virtual-memory-sim/vm/framepool"
	"github.com/seantronsen/virtual-memory-sim/vm/pagetable"
	"github.com/seantronsen/virtual-memory-sim/vm/tlb"
)

var _ = Describe("Translator", func() {
	var (
		mockCtrl   *gomock.Controller
		loader     *MockPageLoader
		space      vm.AddressSpace
		cache      *tlb.Cache
		table      *pagetable.Table
		pool       *framepool.Pool
		tracker    *stats.Tracker
		translator *Translator
	)

	// pageData gives every byte of the address space a distinct, predictable
	// value: 16*page + offset.
	pageData := func(pageNumber uint64) []byte {
		data := make([]byte, 4)
		for i := range data {
			data[i] = byte(pageNumber)*16 + byte(i)
		}

		return data
	}

	buildTranslator := func(poolCapacity uint64) {
		cache = tlb.New(2)
		table = pagetable.New(space.PageCount)
		pool = framepool.MakeBuilder().
			WithCapacity(poolCapacity).
			WithFrameSize(space.FrameSize).
			Build()
		tracker = stats.NewTracker()
		translator = MakeBuilder().
			WithAddressSpace(space).
			WithCache(cache).
			WithPageTable(table).
			WithFramePool(pool).
			WithPageLoader(loader).
			WithTracker(tracker).
			Build()
	}

	translate := func(addr uint64) vm.Access {
		access, err := translator.Translate(addr)
		Expect(err).ToNot(HaveOccurred())

		return access
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		loader = NewMockPageLoader(mockCtrl)
		loader.EXPECT().
			ReadPage(gomock.Any()).
			DoAndReturn(func(pageNumber uint64) ([]byte, error) {
				return pageData(pageNumber), nil
			}).
			AnyTimes()

		space = vm.AddressSpace{PageCount: 4, FrameSize: 4}
		buildTranslator(2)
	})

	It("should fault a never seen page in through a free frame", func() {
		access := translate(0)

		Expect(access.Outcome).To(Equal(vm.OutcomeSoftFault))
		Expect(access.Physical).To(Equal(uint64(0)))
		Expect(access.Value).To(Equal(int8(0)))
		Expect(table.ValidCount()).To(Equal(1))
		Expect(pool.ResidentCount()).To(Equal(1))
		Expect(tracker.Snapshot().TLBFlushes).To(Equal(uint64(0)))
	})

	It("should serve a repeated address from the translation cache", func() {
		translate(0)
		access := translate(2)

		Expect(access.Outcome).To(Equal(vm.OutcomeTLBHit))
		Expect(access.Physical).To(Equal(uint64(2)))
		Expect(access.Value).To(Equal(int8(2)))
		Expect(tracker.Snapshot().TLBHits).To(Equal(uint64(1)))
		Expect(tracker.Snapshot().PageHits).To(Equal(uint64(0)))
	})

	It("should evict the oldest resident page and flush the cache when the pool runs out", func() {
		first := translate(0)
		second := translate(4)
		third := translate(9)

		Expect(first.Outcome).To(Equal(vm.OutcomeSoftFault))
		Expect(second.Outcome).To(Equal(vm.OutcomeSoftFault))
		Expect(third.Outcome).To(Equal(vm.OutcomeHardFault))
		Expect(third.Physical).To(Equal(uint64(1)))
		Expect(third.Value).To(Equal(int8(33)))

		entry, err := table.Lookup(0)
		Expect(err).ToNot(HaveOccurred())
		Expect(entry.Valid).To(BeFalse())

		Expect(cache.Entries()).To(Equal([]tlb.Entry{{Page: 2, Frame: 0}}))
		Expect(tracker.Snapshot().TLBFlushes).To(Equal(uint64(1)))
		Expect(tracker.Snapshot().TLBHits).To(Equal(uint64(0)))
		Expect(tracker.Snapshot().PageHits).To(Equal(uint64(0)))
	})

	It("should fall back to the page table after a flush dropped the mapping", func() {
		translate(0)
		translate(4)
		translate(9)

		access := translate(5)

		Expect(access.Outcome).To(Equal(vm.OutcomePageHit))
		Expect(access.Physical).To(Equal(uint64(5)))
		Expect(access.Value).To(Equal(int8(17)))
		Expect(tracker.Snapshot().PageHits).To(Equal(uint64(1)))
		Expect(tracker.Snapshot().TLBHits).To(Equal(uint64(0)))
	})

	It("should fault an evicted page back in through another eviction", func() {
		translate(0)
		translate(4)
		translate(9)

		access := translate(0)

		Expect(access.Outcome).To(Equal(vm.OutcomeHardFault))
		Expect(access.Physical).To(Equal(uint64(4)))
		Expect(tracker.Snapshot().TLBFlushes).To(Equal(uint64(2)))

		entry, err := table.Lookup(1)
		Expect(err).ToNot(HaveOccurred())
		Expect(entry.Valid).To(BeFalse())
	})

	It("should reject an address beyond the address space and move nothing", func() {
		_, err := translator.Translate(16)

		var oor *vm.OutOfRangeError
		Expect(errors.As(err, &oor)).To(BeTrue())
		Expect(tracker.Snapshot()).To(Equal(stats.Snapshot{}))
		Expect(table.ValidCount()).To(Equal(0))
		Expect(cache.Len()).To(Equal(0))
		Expect(pool.ResidentCount()).To(Equal(0))
	})

	It("should leave the counters untouched by a rejected address mid run", func() {
		translate(0)
		translate(4)
		translate(9)
		before := tracker.Snapshot()

		_, err := translator.Translate(100)

		Expect(err).To(HaveOccurred())
		Expect(tracker.Snapshot()).To(Equal(before))
	})

	It("should resolve a repeated address to the same access every time", func() {
		first := translate(7)

		for i := 0; i < 5; i++ {
			access := translate(7)

			Expect(access.Physical).To(Equal(first.Physical))
			Expect(access.Value).To(Equal(first.Value))
			Expect(access.Outcome).To(Equal(vm.OutcomeTLBHit))
		}

		Expect(table.ValidCount()).To(Equal(1))
		Expect(pool.ResidentCount()).To(Equal(1))
	})

	It("should keep the cache, the table, and the pool coherent under a mixed workload", func() {
		addrs := []uint64{0, 4, 9, 13, 1, 5, 8, 12, 3, 14, 6, 2, 11, 7, 15, 10, 0, 13, 9, 4}

		for _, addr := range addrs {
			access := translate(addr)

			page := addr / space.FrameSize
			offset := addr % space.FrameSize
			Expect(access.Value).To(Equal(int8(16*page + offset)))

			Expect(table.ValidCount()).To(BeNumerically("<=", pool.Capacity()))
			Expect(cache.Len()).To(BeNumerically("<=", cache.Capacity()))

			seen := make(map[uint64]bool)
			for pageNumber, entry := range table.Entries() {
				if !entry.Valid {
					continue
				}

				Expect(seen[entry.Frame]).To(BeFalse())
				seen[entry.Frame] = true

				owner, bound := pool.OwnerPage(entry.Frame)
				Expect(bound).To(BeTrue())
				Expect(owner).To(Equal(uint64(pageNumber)))
			}

			for _, cached := range cache.Entries() {
				entry, err := table.Lookup(cached.Page)
				Expect(err).ToNot(HaveOccurred())
				Expect(entry.Valid).To(BeTrue())
				Expect(entry.Frame).To(Equal(cached.Frame))
			}
		}
	})

	Context("when the pool covers the whole address space", func() {
		BeforeEach(func() {
			buildTranslator(space.PageCount)
		})

		It("should never flush the cache", func() {
			for i := 0; i < 1000; i++ {
				translate(uint64(i) % space.Size())
			}

			Expect(tracker.Snapshot().TLBFlushes).To(Equal(uint64(0)))
			Expect(table.ValidCount()).To(Equal(int(space.PageCount)))
		})
	})

	Context("when the backing store fails", func() {
		BeforeEach(func() {
			loader = NewMockPageLoader(mockCtrl)
			loader.EXPECT().
				ReadPage(uint64(0)).
				Return(nil, errors.New("disk gone"))
			buildTranslator(2)
		})

		It("should abort the translation without installing the page", func() {
			_, err := translator.Translate(0)

			Expect(err).To(MatchError(ContainSubstring("disk gone")))
			Expect(table.ValidCount()).To(Equal(0))
			Expect(cache.Len()).To(Equal(0))
			Expect(pool.ResidentCount()).To(Equal(0))
		})
	})
})

var _ = Describe("Builder", func() {
	var (
		mockCtrl *gomock.Controller
		loader   *MockPageLoader
		space    vm.AddressSpace
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		loader = NewMockPageLoader(mockCtrl)
		space = vm.AddressSpace{PageCount: 4, FrameSize: 4}
	})

	build := func(
		cache *tlb.Cache,
		table *pagetable.Table,
		pool *framepool.Pool,
		tracker *stats.Tracker,
	) func() {
		return func() {
			MakeBuilder().
				WithAddressSpace(space).
				WithCache(cache).
				WithPageTable(table).
				WithFramePool(pool).
				WithPageLoader(loader).
				WithTracker(tracker).
				Build()
		}
	}

	It("should refuse to build without collaborators", func() {
		pool := framepool.MakeBuilder().WithCapacity(2).WithFrameSize(4).Build()

		Expect(build(nil, pagetable.New(4), pool, stats.NewTracker())).To(Panic())
		Expect(build(tlb.New(2), nil, pool, stats.NewTracker())).To(Panic())
		Expect(build(tlb.New(2), pagetable.New(4), nil, stats.NewTracker())).To(Panic())
		Expect(build(tlb.New(2), pagetable.New(4), pool, nil)).To(Panic())
	})

	It("should refuse to build without a page loader", func() {
		pool := framepool.MakeBuilder().WithCapacity(2).WithFrameSize(4).Build()

		Expect(func() {
			MakeBuilder().
				WithAddressSpace(space).
				WithCache(tlb.New(2)).
				WithPageTable(pagetable.New(4)).
				WithFramePool(pool).
				WithTracker(stats.NewTracker()).
				Build()
		}).To(Panic())
	})

	It("should refuse a page table sized unlike the address space", func() {
		pool := framepool.MakeBuilder().WithCapacity(2).WithFrameSize(4).Build()

		Expect(build(tlb.New(2), pagetable.New(8), pool, stats.NewTracker())).To(Panic())
	})

	It("should refuse a pool with a foreign frame size", func() {
		pool := framepool.MakeBuilder().WithCapacity(2).WithFrameSize(8).Build()

		Expect(build(tlb.New(2), pagetable.New(4), pool, stats.NewTracker())).To(Panic())
	})
})
