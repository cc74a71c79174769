// Package cache implements the generic building blocks of one cache level:
// an associative array that maps keys to line slots, the replacement
// policies that pick victims, and the level component that drives a
// coherence controller through the access pipeline. The same blocks back
// data caches and, through the tlb package, translation caches.
package cache

import (
	"encoding/binary"
	"log"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats"
)

// Array maps line-granularity keys to slot IDs. A miss is served by the
// preinsert/postinsert pair: preinsert picks the victim slot and reports its
// current key so the caller can evict the occupant, postinsert commits the
// new key. Between the two the slot is reserved: it is invisible to lookups
// and never picked as a victim again, so concurrent misses in the same set
// cannot collide on a slot. The victim's key stays probeable until
// postinsert, since a parent may still invalidate the victim while its
// writeback is in flight.
type Array interface {
	// Lookup returns the slot holding addr, or -1 when the array does not
	// hold it. updateReplacement bumps the slot's recency on a hit.
	Lookup(addr uint64, req *mem.AccessReq, updateReplacement bool) int

	// Probe returns the slot holding addr, or -1. Unlike Lookup it also
	// matches a reserved slot whose outgoing occupant is addr.
	Probe(addr uint64) int

	// Preinsert picks the slot that will receive addr, stores the slot's
	// current key in *victimAddr and reserves the slot. The slot's
	// committed contents are not touched.
	Preinsert(addr uint64, req *mem.AccessReq, victimAddr *uint64) int

	// Postinsert commits addr into the slot a prior Preinsert reserved.
	Postinsert(addr uint64, req *mem.AccessReq, lineID int)

	// NumLines returns the array's capacity in slots.
	NumLines() int

	// InitStats registers the array's counters under parent.
	InitStats(parent *stats.Aggregate)
}

// SetAssocArray is a set-associative Array. Keys hash to a set; the
// replacement policy ranks the ways of that set. The array serializes its
// own operations, so levels above it only serialize per line, not per
// level.
type SetAssocArray struct {
	mu     sync.Mutex
	policy ReplPolicy

	numSets int
	assoc   int
	setMask uint64
	slots   []slot
}

type slot struct {
	tag      uint64
	valid    bool
	reserved bool
}

// NewSetAssocArray returns an array with numSets sets of assoc ways each.
// numSets must be a power of two.
func NewSetAssocArray(numSets, assoc int, policy ReplPolicy) *SetAssocArray {
	if numSets <= 0 || numSets&(numSets-1) != 0 {
		log.Panicf("cache: the number of sets must be a power of two, not %d",
			numSets)
	}
	if assoc <= 0 {
		log.Panicf("cache: associativity must be positive, not %d", assoc)
	}
	if policy == nil {
		log.Panicf("cache: array built without a replacement policy")
	}

	return &SetAssocArray{
		policy:  policy,
		numSets: numSets,
		assoc:   assoc,
		setMask: uint64(numSets - 1),
		slots:   make([]slot, numSets*assoc),
	}
}

func (a *SetAssocArray) NumLines() int {
	return a.numSets * a.assoc
}

func (a *SetAssocArray) setOf(addr uint64) int {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], addr)
	return int(xxhash.Sum64(key[:]) & a.setMask)
}

func (a *SetAssocArray) Lookup(
	addr uint64,
	req *mem.AccessReq,
	updateReplacement bool,
) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	first := a.setOf(addr) * a.assoc
	for id := first; id < first+a.assoc; id++ {
		s := &a.slots[id]
		if s.valid && !s.reserved && s.tag == addr {
			if updateReplacement {
				a.policy.Update(id, req)
			}
			return id
		}
	}

	return -1
}

func (a *SetAssocArray) Probe(addr uint64) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	first := a.setOf(addr) * a.assoc
	for id := first; id < first+a.assoc; id++ {
		s := &a.slots[id]
		if s.valid && s.tag == addr {
			return id
		}
	}

	return -1
}

func (a *SetAssocArray) Preinsert(
	addr uint64,
	req *mem.AccessReq,
	victimAddr *uint64,
) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	set := a.setOf(addr)
	first := set * a.assoc

	cands := make([]int, 0, a.assoc)
	for id := first; id < first+a.assoc; id++ {
		if !a.slots[id].reserved {
			cands = append(cands, id)
		}
	}
	if len(cands) == 0 {
		log.Panicf(
			"cache: all %d ways of set %d are mid-fill; "+
				"the array is too small for the access concurrency",
			a.assoc, set)
	}

	victim := a.policy.Rank(req, cands)
	*victimAddr = a.slots[victim].tag
	a.slots[victim].reserved = true

	return victim
}

func (a *SetAssocArray) Postinsert(addr uint64, req *mem.AccessReq, lineID int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := &a.slots[lineID]
	if !s.reserved {
		log.Panicf("cache: postinsert of line 0x%x into slot %d without a preinsert",
			addr, lineID)
	}

	a.policy.Replaced(lineID)
	s.tag = addr
	s.valid = true
	s.reserved = false
	a.policy.Update(lineID, req)
}

func (a *SetAssocArray) InitStats(parent *stats.Aggregate) {}
