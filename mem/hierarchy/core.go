package hierarchy

import (
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/mem/trace"
	"github.com/sarchlab/memsim/mem/vm"
	"github.com/sarchlab/memsim/mem/vm/tlb"
	"github.com/sarchlab/memsim/stats"
)

// Core is the per-core slice of the hierarchy: the two TLBs and the two L1
// caches, plus the issue helpers the instruction stream drives. One core's
// accesses are issued sequentially from one goroutine; different cores run
// concurrently.
type Core struct {
	id int

	itlb *tlb.Comp
	dtlb *tlb.Comp

	iTranslate trace.Translator
	dTranslate trace.Translator

	l1i mem.Level
	l1d mem.Level

	ifetches *stats.Counter
	loads    *stats.Counter
	stores   *stats.Counter
	lastDone *stats.Counter
}

// ID returns the core's index.
func (c *Core) ID() int {
	return c.id
}

// SetProcess switches the core's TLBs to the process now running on it.
func (c *Core) SetProcess(pid vm.PID) {
	c.itlb.SetProcess(pid)
	c.dtlb.SetProcess(pid)
}

// FetchInstruction models fetching the instruction at vAddr: the ITLB
// translates the address, then the L1I serves the line. It returns the cycle
// at which the instruction bytes are available.
func (c *Core) FetchInstruction(vAddr, curCycle uint64) uint64 {
	doneCycle := c.iTranslate.Translate(vAddr, curCycle)
	doneCycle = c.access(c.l1i, vAddr, mem.GETS, mem.FlagIFetch, doneCycle)

	c.ifetches.Inc()
	c.recordDone(doneCycle)

	return doneCycle
}

// Read models a data load from vAddr.
func (c *Core) Read(vAddr, curCycle uint64) uint64 {
	doneCycle := c.dTranslate.Translate(vAddr, curCycle)
	doneCycle = c.access(c.l1d, vAddr, mem.GETS, 0, doneCycle)

	c.loads.Inc()
	c.recordDone(doneCycle)

	return doneCycle
}

// Write models a data store to vAddr.
func (c *Core) Write(vAddr, curCycle uint64) uint64 {
	doneCycle := c.dTranslate.Translate(vAddr, curCycle)
	doneCycle = c.access(c.l1d, vAddr, mem.GETX, 0, doneCycle)

	c.stores.Inc()
	c.recordDone(doneCycle)

	return doneCycle
}

func (c *Core) access(
	level mem.Level,
	vAddr uint64,
	typ mem.AccessType,
	flags mem.Flags,
	cycle uint64,
) uint64 {
	req := &mem.AccessReq{
		LineAddr: vm.LineAddr(vAddr),
		Type:     typ,
		State:    mem.NewState(mem.Invalid),
		Cycle:    cycle,
		SrcID:    c.id,
		Flags:    flags,
	}

	return level.Access(req)
}

// recordDone tracks the completion cycle of the core's latest access. The
// core is the counter's only writer, since it issues in order from one
// goroutine.
func (c *Core) recordDone(doneCycle uint64) {
	old := c.lastDone.Value()
	if doneCycle > old {
		c.lastDone.Add(doneCycle - old)
	}
}
