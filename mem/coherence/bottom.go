package coherence

import (
	"log"

	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats"
)

// bottom is the parent-facing half of a controller: it owns the MESI state
// of every line slot at this level, fetches lines from parents on misses and
// upgrades, writes victims back, and applies invalidations to the local
// state. Both controller kinds embed it.
type bottom struct {
	name string

	states []mem.State

	childID    int
	parents    []mem.Object
	parentRTTs []uint64

	lineLocks *lineLockTable

	hGETS    *stats.Counter
	hGETX    *stats.Counter
	mGETS    *stats.Counter
	mGETXIM  *stats.Counter
	mGETXSM  *stats.Counter
	cPUTS    *stats.Counter
	cPUTX    *stats.Counter
	recvINV  *stats.Counter
	recvINVX *stats.Counter
	latFetch *stats.Counter
	latNet   *stats.Counter
}

func newBottom(name string, numLines int, locks *lineLockTable) bottom {
	return bottom{
		name:      name,
		states:    make([]mem.State, numLines),
		lineLocks: locks,

		hGETS:    stats.NewCounter("hGETS", "GETS hits"),
		hGETX:    stats.NewCounter("hGETX", "GETX hits"),
		mGETS:    stats.NewCounter("mGETS", "GETS misses"),
		mGETXIM:  stats.NewCounter("mGETXIM", "GETX I->M misses"),
		mGETXSM:  stats.NewCounter("mGETXSM", "GETX S->M misses (upgrades)"),
		cPUTS:    stats.NewCounter("PUTS", "clean writebacks from children"),
		cPUTX:    stats.NewCounter("PUTX", "dirty writebacks from children"),
		recvINV:  stats.NewCounter("INV", "invalidates from parents"),
		recvINVX: stats.NewCounter("INVX", "downgrades from parents"),
		latFetch: stats.NewCounter("latGETnl", "cumulative fetch latency at the next level"),
		latNet:   stats.NewCounter("latGETnet", "cumulative fetch latency on the network"),
	}
}

func (b *bottom) setParents(childID int, parents []mem.Object, net mem.Network) {
	names := make([]string, len(parents))
	for i, p := range parents {
		names[i] = p.Name()
	}

	b.childID = childID
	b.parents = parents
	b.parentRTTs = rttTable(b.name, net, names)
}

func (b *bottom) initStats(parent *stats.Aggregate) {
	for _, c := range []*stats.Counter{
		b.hGETS, b.hGETX, b.mGETS, b.mGETXIM, b.mGETXSM,
		b.cPUTS, b.cPUTX, b.recvINV, b.recvINVX,
		b.latFetch, b.latNet,
	} {
		parent.Append(c)
	}
}

func (b *bottom) haveExclusive(lineID int) bool {
	s := b.states[lineID].Get()
	return s == mem.Exclusive || s == mem.Modified
}

// access performs the parent-facing half of the transition for req and
// returns the completion cycle. After it returns, the slot state is good
// with respect to the levels above.
func (b *bottom) access(req *mem.AccessReq, lineID int, cycle uint64) uint64 {
	respCycle := cycle
	cell := &b.states[lineID]
	cur := cell.Get()

	switch req.Type {
	case mem.PUTS:
		// A clean writeback dies here; the child just stops sharing.
		if !cur.Valid() {
			log.Panicf("%s: PUTS for line 0x%x, which is not present",
				b.name, req.LineAddr)
		}
		b.cPUTS.Inc()

	case mem.PUTX:
		if cur != mem.Modified && cur != mem.Exclusive {
			log.Panicf("%s: PUTX for line 0x%x in state %s",
				b.name, req.LineAddr, cur)
		}
		if cur == mem.Exclusive {
			// The child went E->M silently; its writeback makes the
			// dirtiness ours to track.
			cell.Set(mem.Modified)
		}
		b.cPUTX.Inc()

	case mem.GETS:
		if cur == mem.Invalid {
			respCycle += b.fetch(req, lineID, mem.GETS, cycle)
			b.mGETS.Inc()
			if got := cell.Get(); got != mem.Shared && got != mem.Exclusive {
				log.Panicf("%s: GETS fetch of line 0x%x granted %s",
					b.name, req.LineAddr, got)
			}
		} else {
			b.hGETS.Inc()
		}

	case mem.GETX:
		if cur == mem.Invalid || cur == mem.Shared {
			if cur == mem.Invalid {
				b.mGETXIM.Inc()
			} else {
				b.mGETXSM.Inc()
			}
			respCycle += b.fetch(req, lineID, mem.GETX, cycle)
		} else {
			if cur == mem.Exclusive {
				// Writes upgrade E to M silently.
				cell.Set(mem.Modified)
			}
			b.hGETX.Inc()
		}
		if got := cell.Get(); got != mem.Modified {
			log.Panicf("%s: GETX for line 0x%x left state %s",
				b.name, req.LineAddr, got)
		}
	}

	if respCycle < cycle {
		log.Panicf("%s: access to line 0x%x completed at %d, before it started at %d",
			b.name, req.LineAddr, respCycle, cycle)
	}
	return respCycle
}

// fetch brings the line in from a parent and returns the added delay. The
// parent writes the granted state straight into the slot cell.
func (b *bottom) fetch(req *mem.AccessReq, lineID int, typ mem.AccessType, cycle uint64) uint64 {
	if len(b.parents) == 0 {
		log.Panicf("%s: fetch of line 0x%x with no parents wired",
			b.name, req.LineAddr)
	}

	cell := &b.states[lineID]
	p := parentOf(req.LineAddr, len(b.parents))

	preq := &mem.AccessReq{
		LineAddr:     req.LineAddr,
		Type:         typ,
		ChildID:      b.childID,
		State:        cell,
		InitialState: cell.Get(),
		Cycle:        cycle,
		ChildLock:    b.lineLocks.locker(req.LineAddr),
		SrcID:        req.SrcID,
		Flags:        req.Flags,
	}

	fetchLat := b.parents[p].Access(preq) - cycle
	netLat := b.parentRTTs[p]
	b.latFetch.Add(fetchLat)
	b.latNet.Add(netLat)
	return fetchLat + netLat
}

// evict retires the victim in slot lineID. childWroteBack reports that a
// child surrendered a dirty copy while being cut off; silent drops clean
// victims without notifying the parent.
func (b *bottom) evict(
	req *mem.AccessReq,
	victimAddr uint64,
	lineID int,
	childWroteBack, silent bool,
	cycle uint64,
) uint64 {
	cell := &b.states[lineID]

	if childWroteBack {
		cur := cell.Get()
		if cur != mem.Modified && cur != mem.Exclusive {
			log.Panicf("%s: child wrote back line 0x%x while state is %s",
				b.name, victimAddr, cur)
		}
		cell.Set(mem.Modified)
	}

	// One read decides the writeback and seeds its race check: an
	// invalidation that lands after this read flips the cell away from
	// cur, which the parent's entry check then catches.
	cur := cell.Get()

	respCycle := cycle
	switch cur {
	case mem.Invalid:
		// Empty slot, nothing to retire.
	case mem.Shared, mem.Exclusive:
		if silent {
			cell.Set(mem.Invalid)
		} else {
			respCycle = b.put(req, victimAddr, lineID, mem.PUTS, cur, cycle)
		}
	case mem.Modified:
		if silent {
			log.Panicf("%s: dropping dirty line 0x%x silently",
				b.name, victimAddr)
		}
		respCycle = b.put(req, victimAddr, lineID, mem.PUTX, cur, cycle)
	}

	if got := cell.Get(); got != mem.Invalid {
		log.Panicf("%s: eviction of line 0x%x left state %s",
			b.name, victimAddr, got)
	}
	return respCycle
}

// put writes the victim back to its parent. The parent drops the slot cell
// to Invalid, or the writeback races with an invalidation that already did.
func (b *bottom) put(
	req *mem.AccessReq,
	victimAddr uint64,
	lineID int,
	typ mem.AccessType,
	initialState mem.MESIState,
	cycle uint64,
) uint64 {
	if len(b.parents) == 0 {
		log.Panicf("%s: writeback of line 0x%x with no parents wired",
			b.name, victimAddr)
	}

	cell := &b.states[lineID]
	p := parentOf(victimAddr, len(b.parents))

	wreq := &mem.AccessReq{
		LineAddr:     victimAddr,
		Type:         typ,
		ChildID:      b.childID,
		State:        cell,
		InitialState: initialState,
		Cycle:        cycle,
		ChildLock:    b.lineLocks.locker(req.LineAddr),
		SrcID:        req.SrcID,
	}
	return b.parents[p].Access(wreq)
}

// inval applies a parent-initiated invalidation or downgrade to the local
// state and reports surrendered dirty data through inv.Writeback.
func (b *bottom) inval(inv *mem.InvReq, lineID int) {
	cell := &b.states[lineID]
	cur := cell.Get()
	if cur == mem.Invalid {
		log.Panicf("%s: %s for line 0x%x, which is not present",
			b.name, inv.Type, inv.LineAddr)
	}

	switch inv.Type {
	case mem.InvDowngrade:
		if cur != mem.Exclusive && cur != mem.Modified {
			log.Panicf("%s: %s for line 0x%x in state %s",
				b.name, inv.Type, inv.LineAddr, cur)
		}
		if cur == mem.Modified {
			*inv.Writeback = true
		}
		cell.Set(mem.Shared)
		b.recvINVX.Inc()

	case mem.InvInvalidate:
		if cur == mem.Modified {
			*inv.Writeback = true
		}
		cell.Set(mem.Invalid)
		b.recvINV.Inc()
	}
}

// writebackOnAccess absorbs dirty data a child surrendered while this level
// served an access for the same line.
func (b *bottom) writebackOnAccess(lineID int, addr uint64) {
	cell := &b.states[lineID]
	cur := cell.Get()
	if cur != mem.Modified && cur != mem.Exclusive {
		log.Panicf("%s: child wrote back line 0x%x while state is %s",
			b.name, addr, cur)
	}
	cell.Set(mem.Modified)
}
