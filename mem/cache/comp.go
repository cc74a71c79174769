package cache

import (
	"log"

	"github.com/sarchlab/memsim/mem/coherence"
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats"
)

// Comp is one cache level. It owns the array and the replacement policy and
// drives the coherence controller through the access pipeline; the
// controller owns all coherence state and all traffic to parents and
// children. Access and Invalidate are safe to call from any goroutine.
type Comp struct {
	name   string
	array  Array
	policy ReplPolicy
	cc     coherence.Controller

	accLat uint64
	invLat uint64
}

var _ mem.Level = (*Comp)(nil)

func (c *Comp) Name() string {
	return c.name
}

// Access serves one request and returns its completion cycle. The array
// probe charges accLat on hits and misses alike; everything after that is
// the controller's latency.
func (c *Comp) Access(req *mem.AccessReq) uint64 {
	respCycle := req.Cycle

	skip := c.cc.StartAccess(req)
	if !skip {
		updateReplacement := req.Type.IsGet()
		lineID := c.array.Lookup(req.LineAddr, req, updateReplacement)
		respCycle += c.accLat

		if lineID < 0 && c.cc.ShouldAllocate(req) {
			var victimAddr uint64
			lineID = c.array.Preinsert(req.LineAddr, req, &victimAddr)
			respCycle = c.cc.ProcessEviction(req, victimAddr, lineID, respCycle)
			c.array.Postinsert(req.LineAddr, req, lineID)
		}

		respCycle = c.cc.ProcessAccess(req, lineID, respCycle)
	}
	c.cc.EndAccess(req)

	return respCycle
}

// Invalidate serves an invalidation or downgrade sent by a parent. The line
// must be present, possibly as the outgoing victim of an in-flight
// eviction; a miss means the hierarchy lost inclusion.
func (c *Comp) Invalidate(inv *mem.InvReq) uint64 {
	lineID := c.array.Probe(inv.LineAddr)
	if lineID < 0 {
		log.Panicf("%s: %s for line 0x%x, which is not present",
			c.name, inv.Type, inv.LineAddr)
	}

	respCycle := inv.Cycle + c.invLat
	return c.cc.ProcessInv(inv, lineID, respCycle)
}

func (c *Comp) SetParents(childID int, parents []mem.Object, net mem.Network) {
	c.cc.SetParents(childID, parents, net)
}

func (c *Comp) SetChildren(children []mem.Level, net mem.Network) {
	c.cc.SetChildren(children, net)
}

// InitStats registers this level's counters as a named sub-aggregate of
// parent.
func (c *Comp) InitStats(parent *stats.Aggregate) {
	agg := stats.NewAggregate(c.name, "cache level counters")
	c.cc.InitStats(agg)
	c.array.InitStats(agg)
	c.policy.InitStats(agg)
	parent.Append(agg)
}
