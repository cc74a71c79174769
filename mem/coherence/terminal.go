package coherence

import (
	"log"

	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats"
)

// Terminal is the controller for leaf levels: L1 caches and TLBs. It has no
// children, so accesses only exercise the parent-facing half. With silent
// drops enabled, clean victims vanish without notifying the parent, which is
// what TLBs need since dropped translations are not directory-tracked
// upstream; a dirty line in that mode is a protocol violation.
type Terminal struct {
	serializer
	bottom

	silentDrops bool
}

// NewTerminal returns a terminal controller for a level with numLines slots.
func NewTerminal(name string, numLines int, silentDrops bool) *Terminal {
	if numLines <= 0 {
		log.Panicf("coherence: terminal %s must have at least one line", name)
	}

	t := &Terminal{silentDrops: silentDrops}
	t.bottom = newBottom(name, numLines, &t.serializer.locks)
	return t
}

func (t *Terminal) SetParents(childID int, parents []mem.Object, net mem.Network) {
	t.setParents(childID, parents, net)
}

func (t *Terminal) SetChildren(children []mem.Level, net mem.Network) {
	if len(children) > 0 {
		log.Panicf("%s: terminal controller cannot have children", t.name)
	}
}

func (t *Terminal) InitStats(parent *stats.Aggregate) {
	t.initStats(parent)
}

func (t *Terminal) ShouldAllocate(req *mem.AccessReq) bool {
	if req.Type.IsGet() {
		return true
	}
	log.Panicf("%s: %s at a terminal level, which has no children to write back",
		t.name, req.Type)
	return false
}

func (t *Terminal) ProcessAccess(req *mem.AccessReq, lineID int, startCycle uint64) uint64 {
	if lineID < 0 {
		log.Panicf("%s: %s for line 0x%x reached the controller without a slot",
			t.name, req.Type, req.LineAddr)
	}
	if req.Type.IsPut() {
		log.Panicf("%s: %s at a terminal level, which has no children to write back",
			t.name, req.Type)
	}

	respCycle := t.access(req, lineID, startCycle)

	// The requester assumes whatever state this level now holds.
	req.State.Set(t.states[lineID].Get())

	return respCycle
}

func (t *Terminal) ProcessEviction(
	req *mem.AccessReq,
	victimAddr uint64,
	lineID int,
	startCycle uint64,
) uint64 {
	return t.evict(req, victimAddr, lineID, false, t.silentDrops, startCycle)
}

func (t *Terminal) ProcessInv(inv *mem.InvReq, lineID int, startCycle uint64) uint64 {
	t.locks.acquire(inv.LineAddr)
	defer t.locks.release(inv.LineAddr)

	t.inval(inv, lineID)
	return startCycle
}
