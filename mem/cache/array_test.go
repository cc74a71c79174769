package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SetAssocArray", func() {
	var array *SetAssocArray

	BeforeEach(func() {
		array = NewSetAssocArray(1, 4, NewLRU(4))
	})

	commit := func(addr uint64) int {
		var victimAddr uint64
		lineID := array.Preinsert(addr, nil, &victimAddr)
		array.Postinsert(addr, nil, lineID)
		return lineID
	}

	It("should miss on an empty array", func() {
		Expect(array.Lookup(0x40, nil, false)).To(Equal(-1))
	})

	It("should hit a committed key", func() {
		lineID := commit(0x40)

		Expect(array.Lookup(0x40, nil, false)).To(Equal(lineID))
	})

	It("should report the victim's key on preinsert", func() {
		commit(0x40)
		commit(0x80)
		commit(0xc0)
		commit(0x100)

		var victimAddr uint64
		array.Preinsert(0x140, nil, &victimAddr)

		Expect(victimAddr).To(Equal(uint64(0x40)))
	})

	It("should hide a slot from lookups while it is reserved", func() {
		commit(0x40)
		commit(0x80)
		commit(0xc0)
		commit(0x100)

		var victimAddr uint64
		array.Preinsert(0x140, nil, &victimAddr)

		// 0x40 is mid-eviction; an access for it must take the miss path
		// and fetch a fresh copy.
		Expect(array.Lookup(0x40, nil, false)).To(Equal(-1))
	})

	It("should keep a reserved slot's victim probeable", func() {
		commit(0x40)
		commit(0x80)
		commit(0xc0)
		commit(0x100)

		var victimAddr uint64
		lineID := array.Preinsert(0x140, nil, &victimAddr)

		// The victim stays visible to invalidations until postinsert
		// commits its replacement.
		Expect(array.Probe(0x40)).To(Equal(lineID))

		array.Postinsert(0x140, nil, lineID)
		Expect(array.Probe(0x40)).To(Equal(-1))
		Expect(array.Probe(0x140)).To(Equal(lineID))
	})

	It("should never hand out a reserved slot as a victim", func() {
		commit(0x40)

		var victimAddr uint64
		first := array.Preinsert(0x80, nil, &victimAddr)
		second := array.Preinsert(0xc0, nil, &victimAddr)
		third := array.Preinsert(0x100, nil, &victimAddr)
		fourth := array.Preinsert(0x140, nil, &victimAddr)

		Expect([]int{first, second, third, fourth}).To(ConsistOf(0, 1, 2, 3))
	})

	It("should panic when every way of the set is mid-fill", func() {
		var victimAddr uint64
		array.Preinsert(0x40, nil, &victimAddr)
		array.Preinsert(0x80, nil, &victimAddr)
		array.Preinsert(0xc0, nil, &victimAddr)
		array.Preinsert(0x100, nil, &victimAddr)

		Expect(func() {
			array.Preinsert(0x140, nil, &victimAddr)
		}).To(Panic())
	})

	It("should panic on a postinsert without a preinsert", func() {
		Expect(func() {
			array.Postinsert(0x40, nil, 2)
		}).To(Panic())
	})

	It("should evict the least recently touched way", func() {
		commit(0x40)
		commit(0x80)
		commit(0xc0)
		commit(0x100)

		// Touch everything but 0x80.
		array.Lookup(0x40, nil, true)
		array.Lookup(0xc0, nil, true)
		array.Lookup(0x100, nil, true)

		var victimAddr uint64
		array.Preinsert(0x140, nil, &victimAddr)

		Expect(victimAddr).To(Equal(uint64(0x80)))
	})

	It("should keep keys in different sets apart", func() {
		multi := NewSetAssocArray(16, 2, NewLRU(32))

		var victimAddr uint64
		lineID := multi.Preinsert(0x40, nil, &victimAddr)
		multi.Postinsert(0x40, nil, lineID)

		set := lineID / 2
		Expect(multi.Lookup(0x40, nil, false)).To(Equal(lineID))
		Expect(lineID).To(BeNumerically(">=", set*2))
		Expect(lineID).To(BeNumerically("<", set*2+2))
	})

	It("should reject a set count that is not a power of two", func() {
		Expect(func() { NewSetAssocArray(3, 4, NewLRU(12)) }).To(Panic())
	})

	It("should reject a non-positive associativity", func() {
		Expect(func() { NewSetAssocArray(4, 0, NewLRU(0)) }).To(Panic())
	})
})

var _ = Describe("LRU", func() {
	It("should rank the untouched slot first", func() {
		p := NewLRU(4)
		p.Update(0, nil)
		p.Update(1, nil)
		p.Update(3, nil)

		Expect(p.Rank(nil, []int{0, 1, 2, 3})).To(Equal(2))
	})

	It("should rank the oldest touch first", func() {
		p := NewLRU(3)
		p.Update(2, nil)
		p.Update(0, nil)
		p.Update(1, nil)

		Expect(p.Rank(nil, []int{0, 1, 2})).To(Equal(2))
	})

	It("should forget a replaced slot's recency", func() {
		p := NewLRU(2)
		p.Update(0, nil)
		p.Update(1, nil)

		p.Replaced(0)

		Expect(p.Rank(nil, []int{0, 1})).To(Equal(0))
	})
})

var _ = Describe("Random", func() {
	It("should pick a candidate", func() {
		p := NewRandom(1)

		for i := 0; i < 32; i++ {
			Expect(p.Rank(nil, []int{4, 5, 6, 7})).To(BeElementOf(4, 5, 6, 7))
		}
	})

	It("should repeat choices across runs with the same seed", func() {
		p1 := NewRandom(42)
		p2 := NewRandom(42)

		cands := []int{0, 1, 2, 3, 4, 5, 6, 7}
		for i := 0; i < 32; i++ {
			Expect(p1.Rank(nil, cands)).To(Equal(p2.Rank(nil, cands)))
		}
	})
})
