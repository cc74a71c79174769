// Package mainmem implements the top of the hierarchy: an ideal memory
// controller that serves every request in a fixed number of cycles, with no
// concurrency limit.
package mainmem

import (
	"log"

	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats"
)

// Comp is an ideal memory controller. It grants the strongest state the
// request allows, absorbs writebacks, and never sends invalidations, so it
// leaves the requester's lock alone and is safe to call from any goroutine.
type Comp struct {
	name    string
	latency uint64

	reads  *stats.Counter
	writes *stats.Counter
}

var _ mem.Object = (*Comp)(nil)

// New returns a memory controller that serves every access in latency
// cycles.
func New(name string, latency uint64) *Comp {
	return &Comp{
		name:    name,
		latency: latency,
		reads:   stats.NewCounter("rd", "lines fetched"),
		writes:  stats.NewCounter("wr", "lines written back"),
	}
}

func (c *Comp) Name() string {
	return c.name
}

// Access serves one request. Fetches leave the requester's cell Exclusive,
// or Shared when the request opts out of exclusivity; writes leave it
// Modified; writebacks drop it to Invalid.
func (c *Comp) Access(req *mem.AccessReq) uint64 {
	switch req.Type {
	case mem.PUTS, mem.PUTX:
		req.State.Set(mem.Invalid)
		c.writes.Inc()

	case mem.GETS:
		if req.Flags&mem.FlagNoExcl != 0 {
			req.State.Set(mem.Shared)
		} else {
			req.State.Set(mem.Exclusive)
		}
		c.reads.Inc()

	case mem.GETX:
		req.State.Set(mem.Modified)
		c.reads.Inc()

	default:
		log.Panicf("%s: request type %d for line 0x%x",
			c.name, req.Type, req.LineAddr)
	}

	return req.Cycle + c.latency
}

// InitStats registers this controller's counters as a named sub-aggregate
// of parent.
func (c *Comp) InitStats(parent *stats.Aggregate) {
	agg := stats.NewAggregate(c.name, "memory controller counters")
	agg.Append(c.reads)
	agg.Append(c.writes)
	parent.Append(agg)
}
