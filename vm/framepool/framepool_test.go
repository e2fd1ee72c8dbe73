package framepool

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

func pageData(size uint64, fill byte) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = fill
	}

	return data
}

var _ = Describe("Pool", func() {
	var (
		mockCtrl *gomock.Controller
		finder   *MockVictimFinder
		pool     *Pool
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		finder = NewMockVictimFinder(mockCtrl)

		pool = MakeBuilder().
			WithCapacity(2).
			WithFrameSize(4).
			WithVictimFinder(finder).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start with every frame free", func() {
		Expect(pool.Capacity()).To(Equal(2))
		Expect(pool.FrameSize()).To(Equal(uint64(4)))
		Expect(pool.ResidentCount()).To(Equal(0))
	})

	It("should allocate free frames in index order", func() {
		first, err := pool.Allocate()
		Expect(err).ToNot(HaveOccurred())
		Expect(first).To(Equal(uint64(0)))

		second, err := pool.Allocate()
		Expect(err).ToNot(HaveOccurred())
		Expect(second).To(Equal(uint64(1)))
	})

	It("should report exhaustion when no frame is free", func() {
		_, _ = pool.Allocate()
		_, _ = pool.Allocate()

		_, err := pool.Allocate()
		Expect(errors.Is(err, ErrPoolExhausted)).To(BeTrue())
	})

	It("should track residency through bind and evict", func() {
		index, _ := pool.Allocate()
		pool.Bind(index, 7, pageData(4, 0xab))
		Expect(pool.ResidentCount()).To(Equal(1))

		owner, ok := pool.OwnerPage(index)
		Expect(ok).To(BeTrue())
		Expect(owner).To(Equal(uint64(7)))

		evicted := pool.Evict(index)
		Expect(evicted).To(Equal(uint64(7)))
		Expect(pool.ResidentCount()).To(Equal(0))

		_, ok = pool.OwnerPage(index)
		Expect(ok).To(BeFalse())
	})

	It("should hand an evicted frame out again", func() {
		first, _ := pool.Allocate()
		second, _ := pool.Allocate()
		pool.Bind(first, 0, pageData(4, 1))
		pool.Bind(second, 1, pageData(4, 2))

		pool.Evict(first)

		index, err := pool.Allocate()
		Expect(err).ToNot(HaveOccurred())
		Expect(index).To(Equal(first))
	})

	It("should store the bound page data", func() {
		index, _ := pool.Allocate()
		pool.Bind(index, 0, []byte{1, 2, 3, 0x80})

		Expect(pool.Byte(index, 0)).To(Equal(int8(1)))
		Expect(pool.Byte(index, 2)).To(Equal(int8(3)))
		Expect(pool.Byte(index, 3)).To(Equal(int8(-128)))
	})

	It("should copy page data instead of aliasing it", func() {
		data := pageData(4, 9)
		index, _ := pool.Allocate()
		pool.Bind(index, 0, data)

		data[0] = 0

		Expect(pool.Byte(index, 0)).To(Equal(int8(9)))
	})

	It("should delegate victim selection to the policy", func() {
		first, _ := pool.Allocate()
		second, _ := pool.Allocate()
		pool.Bind(first, 0, pageData(4, 0))
		pool.Bind(second, 1, pageData(4, 0))

		finder.EXPECT().FindVictim(pool).Return(uint64(1))

		Expect(pool.SelectVictim()).To(Equal(uint64(1)))
	})

	It("should panic when selecting a victim with free frames left", func() {
		Expect(func() { pool.SelectVictim() }).To(Panic())
	})

	It("should panic when binding an already bound frame", func() {
		index, _ := pool.Allocate()
		pool.Bind(index, 0, pageData(4, 0))

		Expect(func() { pool.Bind(index, 1, pageData(4, 0)) }).To(Panic())
	})

	It("should panic when binding data of the wrong length", func() {
		index, _ := pool.Allocate()

		Expect(func() { pool.Bind(index, 0, pageData(3, 0)) }).To(Panic())
	})

	It("should panic when touching or evicting an unbound frame", func() {
		Expect(func() { pool.Touch(0) }).To(Panic())
		Expect(func() { pool.Evict(0) }).To(Panic())
	})

	It("should panic when reading beyond the frame", func() {
		index, _ := pool.Allocate()
		pool.Bind(index, 0, pageData(4, 0))

		Expect(func() { pool.Byte(index, 4) }).To(Panic())
	})

	It("should never exceed its capacity", func() {
		for {
			index, err := pool.Allocate()
			if err != nil {
				break
			}
			pool.Bind(index, index, pageData(4, 0))
		}

		Expect(pool.ResidentCount()).To(Equal(pool.Capacity()))
	})
})
