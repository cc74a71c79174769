package coherence

import (
	"log"
	"sync"

	"github.com/sarchlab/memsim/mem/mem"
)

// lineLockTable serializes coherence transitions per line address. Lock
// entries are refcounted and removed once the last waiter leaves, so the
// table stays proportional to the number of in-flight accesses, not to the
// address space.
//
// The lock object for an address is handed to parents through
// AccessReq.ChildLock: a parent releases it while it works on the line and
// re-acquires it before returning, so an access blocked in a parent call
// never stalls invalidations directed back at this level.
type lineLockTable struct {
	mu    sync.Mutex
	locks map[uint64]*lineLock
}

type lineLock struct {
	mu   sync.Mutex
	refs int
}

func (l *lineLock) Lock()   { l.mu.Lock() }
func (l *lineLock) Unlock() { l.mu.Unlock() }

// acquire blocks until the caller owns the section for addr.
func (t *lineLockTable) acquire(addr uint64) {
	t.mu.Lock()
	if t.locks == nil {
		t.locks = make(map[uint64]*lineLock)
	}
	l, ok := t.locks[addr]
	if !ok {
		l = &lineLock{}
		t.locks[addr] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
}

// locker returns the lock object of an active section on addr, or nil when
// no section is open. Only call it for lines whose section the caller
// itself holds; the result is what upward requests carry as ChildLock.
func (t *lineLockTable) locker(addr uint64) sync.Locker {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok := t.locks[addr]; ok {
		return l
	}
	return nil
}

// release ends the caller's section for addr.
func (t *lineLockTable) release(addr uint64) {
	t.mu.Lock()
	l := t.locks[addr]
	t.mu.Unlock()
	if l == nil {
		log.Panicf("coherence: releasing line 0x%x with no open section", addr)
	}

	l.mu.Unlock()

	t.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(t.locks, addr)
	}
	t.mu.Unlock()
}

// serializer implements the StartAccess/EndAccess half of the Controller
// contract. The child's lock, when present, is released before this level's
// section opens and re-acquired before control returns to the child
// (hand-over-hand), keeping parent-to-child invalidations deadlock free.
type serializer struct {
	locks lineLockTable
}

func (s *serializer) StartAccess(req *mem.AccessReq) bool {
	if req.ChildLock != nil {
		req.ChildLock.Unlock()
	}
	s.locks.acquire(req.LineAddr)
	return mem.CheckAccessRace(req)
}

func (s *serializer) EndAccess(req *mem.AccessReq) {
	if req.ChildLock != nil {
		req.ChildLock.Lock()
	}
	s.locks.release(req.LineAddr)
}
