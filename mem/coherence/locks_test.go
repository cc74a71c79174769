package coherence

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/mem/mem"
)

var _ = Describe("LineLockTable", func() {
	var table *lineLockTable

	BeforeEach(func() {
		table = &lineLockTable{}
	})

	It("should serialize sections on the same line", func() {
		table.acquire(0x40)

		entered := make(chan struct{})
		go func() {
			table.acquire(0x40)
			close(entered)
		}()

		Consistently(entered).ShouldNot(BeClosed())

		table.release(0x40)
		Eventually(entered).Should(BeClosed())

		table.release(0x40)
	})

	It("should keep sections on different lines independent", func() {
		table.acquire(0x40)

		entered := make(chan struct{})
		go func() {
			table.acquire(0x80)
			close(entered)
		}()

		Eventually(entered).Should(BeClosed())

		table.release(0x80)
		table.release(0x40)
	})

	It("should drop the lock entry once the last holder leaves", func() {
		table.acquire(0x40)

		second := make(chan struct{})
		go func() {
			table.acquire(0x40)
			close(second)
		}()

		// Wait for the second section to be registered as a waiter.
		Eventually(func() int {
			table.mu.Lock()
			defer table.mu.Unlock()
			if l, ok := table.locks[0x40]; ok {
				return l.refs
			}
			return 0
		}).Should(Equal(2))

		table.release(0x40)
		Eventually(second).Should(BeClosed())
		table.release(0x40)

		table.mu.Lock()
		defer table.mu.Unlock()
		Expect(table.locks).To(BeEmpty())
	})

	It("should hand out the live lock object only while a section is open", func() {
		Expect(table.locker(0x40)).To(BeNil())

		table.acquire(0x40)
		Expect(table.locker(0x40)).NotTo(BeNil())

		table.release(0x40)
		Expect(table.locker(0x40)).To(BeNil())
	})

	It("should panic when releasing a line with no open section", func() {
		Expect(func() { table.release(0x40) }).To(Panic())
	})
})

var _ = Describe("Serializer", func() {
	var s *serializer

	BeforeEach(func() {
		s = &serializer{}
	})

	It("should open and close a section around an access", func() {
		req := &mem.AccessReq{
			LineAddr: 0x40,
			Type:     mem.GETS,
			State:    mem.NewState(mem.Invalid),
		}

		skip := s.StartAccess(req)
		Expect(skip).To(BeFalse())
		Expect(s.locks.locker(0x40)).NotTo(BeNil())

		s.EndAccess(req)
		Expect(s.locks.locker(0x40)).To(BeNil())
	})

	It("should release the child's lock for the duration of the section", func() {
		childLock := &sync.Mutex{}
		childLock.Lock()

		req := &mem.AccessReq{
			LineAddr:  0x40,
			Type:      mem.GETS,
			State:     mem.NewState(mem.Invalid),
			ChildLock: childLock,
		}

		s.StartAccess(req)

		// The child's line must be reachable while this level works, or an
		// invalidation directed back at the child would deadlock.
		Expect(childLock.TryLock()).To(BeTrue())
		childLock.Unlock()

		s.EndAccess(req)

		// Control goes back to the child with its lock held again.
		Expect(childLock.TryLock()).To(BeFalse())
		childLock.Unlock()
	})

	It("should report an access already satisfied by a concurrent fill", func() {
		cell := mem.NewState(mem.Invalid)

		req := &mem.AccessReq{
			LineAddr:     0x40,
			Type:         mem.GETS,
			State:        cell,
			InitialState: mem.Invalid,
		}

		// Another access fills the line while this one waits.
		cell.Set(mem.Exclusive)

		skip := s.StartAccess(req)
		Expect(skip).To(BeTrue())

		s.EndAccess(req)
	})

	It("should let invalidations cut through a blocked access", func() {
		held := &mem.AccessReq{
			LineAddr: 0x40,
			Type:     mem.GETS,
			State:    mem.NewState(mem.Invalid),
		}
		s.StartAccess(held)

		// A parent-side invalidation for the same line opens its own section
		// as soon as the access's section closes, without any other handshake.
		cut := make(chan struct{})
		go func() {
			s.locks.acquire(0x40)
			s.locks.release(0x40)
			close(cut)
		}()

		Consistently(cut).ShouldNot(BeClosed())
		s.EndAccess(held)
		Eventually(cut).Should(BeClosed())
	})
})
