// Package tlb implements a translation lookaside buffer as one level of the
// memory hierarchy. A TLB caches page translations instead of data lines:
// its array is keyed by process-masked virtual page numbers, misses can
// charge a page-walk penalty and fetch the page table entry through the
// levels above, and its entries are never invalidated from below.
package tlb

import (
	"log"

	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/coherence"
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/mem/vm"
	"github.com/sarchlab/memsim/stats"
)

// Comp is one TLB. Translate is the entry point cores use; Access and
// Invalidate exist to give the TLB the same shape as every other level.
// All entry points are safe to call from any goroutine.
type Comp struct {
	name   string
	array  cache.Array
	policy cache.ReplPolicy
	cc     coherence.Controller

	accLat uint64
	invLat uint64

	pageWalk    bool
	pageWalkLat uint64

	procMask uint64
	srcID    int
	reqFlags mem.Flags
}

var _ mem.Level = (*Comp)(nil)

func (c *Comp) Name() string {
	return c.name
}

// Translate returns the cycle at which the translation of vAddr is
// available. The array is keyed by the process-masked page number, so one
// TLB serves every process of its core without aliasing.
func (c *Comp) Translate(vAddr, curCycle uint64) uint64 {
	pageKey := c.procMask | vm.PageNum(vAddr)

	req := &mem.AccessReq{
		LineAddr: pageKey,
		Type:     mem.GETS,
		State:    mem.NewState(mem.Invalid),
		Cycle:    curCycle,
		SrcID:    c.srcID,
		Flags:    c.reqFlags,
	}

	return c.Access(req)
}

// Access serves one translation request and returns its completion cycle.
// On a miss with the page walk enabled, the walk penalty is charged and the
// page table entry's line is fetched through the parent with a nested
// request; the translation itself is then committed into the freed slot.
func (c *Comp) Access(req *mem.AccessReq) uint64 {
	respCycle := req.Cycle

	skip := c.cc.StartAccess(req)
	if !skip {
		lineID := c.array.Lookup(req.LineAddr, req, false)
		respCycle += c.accLat

		filled := false
		if lineID < 0 {
			var victimKey uint64
			lineID = c.array.Preinsert(req.LineAddr, req, &victimKey)
			respCycle = c.cc.ProcessEviction(req, victimKey, lineID, respCycle)

			if c.pageWalk {
				respCycle += c.pageWalkLat
				fetch := &mem.AccessReq{
					LineAddr:     vm.PTELineAddr(req.LineAddr),
					Type:         mem.GETS,
					State:        req.State,
					InitialState: req.State.Get(),
					Cycle:        respCycle,
					SrcID:        req.SrcID,
					Flags:        req.Flags,
				}
				respCycle = c.cc.ProcessAccess(fetch, lineID, respCycle)
				filled = true
			}

			c.array.Postinsert(req.LineAddr, req, lineID)
		}

		if !filled {
			respCycle = c.cc.ProcessAccess(req, lineID, respCycle)
		}
	}
	c.cc.EndAccess(req)

	return respCycle
}

// SetProcess switches the TLB to the process now running on its core.
// Stale translations of the previous process stay resident but unreachable,
// since their keys carry the old mask. Call it from the core's own issue
// path, between accesses.
func (c *Comp) SetProcess(pid vm.PID) {
	c.procMask = vm.ProcessMask(pid)
}

// Invalidate rejects the request: cached translations are not tracked by
// the levels above, so an invalidation reaching a TLB means the hierarchy
// is wired wrong.
func (c *Comp) Invalidate(inv *mem.InvReq) uint64 {
	log.Panicf("%s: %s for page key 0x%x: translations are never invalidated from below",
		c.name, inv.Type, inv.LineAddr)
	return 0
}

func (c *Comp) SetParents(childID int, parents []mem.Object, net mem.Network) {
	c.cc.SetParents(childID, parents, net)
}

func (c *Comp) SetChildren(children []mem.Level, net mem.Network) {
	c.cc.SetChildren(children, net)
}

// InitStats registers this TLB's counters as a named sub-aggregate of
// parent.
func (c *Comp) InitStats(parent *stats.Aggregate) {
	agg := stats.NewAggregate(c.name, "TLB counters")
	c.cc.InitStats(agg)
	c.array.InitStats(agg)
	c.policy.InitStats(agg)
	parent.Append(agg)
}
