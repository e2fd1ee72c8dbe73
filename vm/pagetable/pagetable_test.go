package pagetable

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/seantronsen/virtual-memory-sim/vm"
)

var _ = Describe("Table", func() {
	var table *Table

	BeforeEach(func() {
		table = New(4)
	})

	It("should start with every entry invalid", func() {
		Expect(table.Len()).To(Equal(4))
		Expect(table.ValidCount()).To(Equal(0))

		for page := uint64(0); page < 4; page++ {
			entry, err := table.Lookup(page)
			Expect(err).ToNot(HaveOccurred())
			Expect(entry.Valid).To(BeFalse())
		}
	})

	It("should map a page once installed", func() {
		table.Install(2, 1)

		entry, err := table.Lookup(2)
		Expect(err).ToNot(HaveOccurred())
		Expect(entry.Valid).To(BeTrue())
		Expect(entry.Frame).To(Equal(uint64(1)))
		Expect(table.ValidCount()).To(Equal(1))
	})

	It("should clear a mapping on invalidation", func() {
		table.Install(2, 1)
		table.Invalidate(2)

		entry, err := table.Lookup(2)
		Expect(err).ToNot(HaveOccurred())
		Expect(entry.Valid).To(BeFalse())
		Expect(table.ValidCount()).To(Equal(0))
	})

	It("should allow reinstalling an invalidated page", func() {
		table.Install(2, 1)
		table.Invalidate(2)
		table.Install(2, 0)

		entry, _ := table.Lookup(2)
		Expect(entry.Valid).To(BeTrue())
		Expect(entry.Frame).To(Equal(uint64(0)))
	})

	It("should reject lookups beyond the table", func() {
		_, err := table.Lookup(4)

		var oor *vm.OutOfRangeError
		Expect(errors.As(err, &oor)).To(BeTrue())
		Expect(oor.Address).To(Equal(uint64(4)))
		Expect(oor.Limit).To(Equal(uint64(4)))
	})

	It("should keep its size regardless of mutation", func() {
		table.Install(0, 0)
		table.Install(1, 1)
		table.Invalidate(0)

		Expect(table.Len()).To(Equal(4))
		Expect(table.Entries()).To(HaveLen(4))
	})

	It("should panic when installing over a valid entry", func() {
		table.Install(2, 1)

		Expect(func() { table.Install(2, 0) }).To(Panic())
	})

	It("should panic when invalidating an invalid entry", func() {
		Expect(func() { table.Invalidate(2) }).To(Panic())
	})

	It("should panic when mutating a page that does not exist", func() {
		Expect(func() { table.Install(4, 0) }).To(Panic())
		Expect(func() { table.Invalidate(4) }).To(Panic())
	})
})
