// Package coherence implements the controllers that give cache levels their
// MESI semantics. A controller owns the coherence state of every line slot
// at its level, talks to parent levels to fetch and write back lines, sends
// invalidations and downgrades to child levels, and serializes concurrent
// transitions per line.
package coherence

import (
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats"
)

// Controller is the protocol brain of one cache level. The level's access
// pipeline drives it in a fixed order: StartAccess brackets the line
// section and detects races, ProcessEviction handles the victim of a miss,
// ProcessAccess performs the state transition (fetching from parents when
// needed), and EndAccess closes the section. Every method that takes a
// start cycle returns the cycle its work completes at.
type Controller interface {
	// StartAccess opens the line section for req and checks for
	// transitions that raced with it. It returns true when the access
	// must be skipped because a concurrent operation already satisfied
	// it; the caller must still call EndAccess.
	StartAccess(req *mem.AccessReq) bool

	// ShouldAllocate reports whether a miss on req allocates a line slot
	// at this level.
	ShouldAllocate(req *mem.AccessReq) bool

	// ProcessEviction evicts the line currently held by slot lineID so
	// that req can reuse it: children lose their copies first, then a
	// dirty or clean writeback notifies the parent.
	ProcessEviction(req *mem.AccessReq, victimAddr uint64, lineID int, startCycle uint64) uint64

	// ProcessAccess performs the coherence transition for req on slot
	// lineID.
	ProcessAccess(req *mem.AccessReq, lineID int, startCycle uint64) uint64

	// ProcessInv serves an invalidation or downgrade sent by a parent:
	// children are cut off first, then the local state drops.
	ProcessInv(inv *mem.InvReq, lineID int, startCycle uint64) uint64

	// EndAccess closes the line section opened by StartAccess. It must be
	// called exactly once per StartAccess, on the skip path too.
	EndAccess(req *mem.AccessReq)

	// SetParents wires the levels this controller fetches from and writes
	// back to. childID is this level's index among each parent's
	// children.
	SetParents(childID int, parents []mem.Object, net mem.Network)

	// SetChildren wires the levels this controller invalidates.
	SetChildren(children []mem.Level, net mem.Network)

	// InitStats registers the controller's counters under parent.
	InitStats(parent *stats.Aggregate)
}

// parentOf spreads lines across parent banks by XOR-folding the line
// address in 16-bit chunks.
func parentOf(lineAddr uint64, numParents int) int {
	res := uint32(0)
	tmp := lineAddr
	for i := 0; i < 4; i++ {
		res ^= uint32(tmp & 0xffff)
		tmp >>= 16
	}
	return int(res) % numParents
}

// rttTable resolves the round-trip latency from one level to each of its
// peers once, at wiring time.
func rttTable(self string, net mem.Network, names []string) []uint64 {
	rtts := make([]uint64, len(names))
	if net == nil {
		return rtts
	}
	for i, n := range names {
		rtts[i] = net.RTT(self, n)
	}
	return rtts
}
