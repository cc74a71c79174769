package coherence

import (
	"log"

	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats"
)

// Directory is the full MESI controller for levels that have children: it
// tracks which child holds each line and in what mode, cuts children off
// before the local state changes, and forwards misses to parents through the
// embedded bottom half. The hierarchy it maintains is inclusive.
type Directory struct {
	serializer
	bottom

	children  []mem.Level
	childRTTs []uint64
	entries   []sharerEntry
}

// sharerEntry is the directory record of one line slot.
type sharerEntry struct {
	sharers    []bool
	numSharers int
	exclusive  bool
}

func (e *sharerEntry) isEmpty() bool { return e.numSharers == 0 }

func (e *sharerEntry) isExclusive() bool {
	return e.exclusive && e.numSharers == 1
}

// NewDirectory returns a directory controller for a level with numLines
// slots. Parents and children are wired separately before first use.
func NewDirectory(name string, numLines int) *Directory {
	if numLines <= 0 {
		log.Panicf("coherence: directory %s must have at least one line", name)
	}

	d := &Directory{}
	d.bottom = newBottom(name, numLines, &d.serializer.locks)
	return d
}

func (d *Directory) SetParents(childID int, parents []mem.Object, net mem.Network) {
	d.setParents(childID, parents, net)
}

func (d *Directory) SetChildren(children []mem.Level, net mem.Network) {
	names := make([]string, len(children))
	for i, c := range children {
		names[i] = c.Name()
	}

	d.children = children
	d.childRTTs = rttTable(d.name, net, names)

	d.entries = make([]sharerEntry, len(d.states))
	for i := range d.entries {
		d.entries[i].sharers = make([]bool, len(children))
	}
}

func (d *Directory) InitStats(parent *stats.Aggregate) {
	d.initStats(parent)
}

func (d *Directory) ShouldAllocate(req *mem.AccessReq) bool {
	if req.Type.IsGet() {
		return true
	}
	// A child wrote back a line this level does not hold: inclusion is
	// broken.
	log.Panicf("%s: %s miss for line 0x%x violates inclusion",
		d.name, req.Type, req.LineAddr)
	return false
}

func (d *Directory) ProcessAccess(req *mem.AccessReq, lineID int, startCycle uint64) uint64 {
	if lineID < 0 {
		log.Panicf("%s: %s for line 0x%x reached the controller without a slot",
			d.name, req.Type, req.LineAddr)
	}
	if d.entries == nil {
		log.Panicf("%s: directory controller serves %s with no children wired",
			d.name, req.Type)
	}

	respCycle := d.access(req, lineID, startCycle)

	// The slot is now good with respect to parents; grant the child its
	// state, invalidating or downgrading other children as needed.
	childWroteBack := false
	respCycle = d.topAccess(req, lineID, &childWroteBack, respCycle)
	if childWroteBack {
		d.writebackOnAccess(lineID, req.LineAddr)
	}

	return respCycle
}

// topAccess updates the sharer record for req and writes the granted state
// into the requester's cell.
func (d *Directory) topAccess(
	req *mem.AccessReq,
	lineID int,
	childWroteBack *bool,
	cycle uint64,
) uint64 {
	e := &d.entries[lineID]
	respCycle := cycle

	switch req.Type {
	case mem.PUTS, mem.PUTX:
		if req.Type == mem.PUTX && !e.isExclusive() {
			log.Panicf("%s: PUTX from child %d for line 0x%x held non-exclusively",
				d.name, req.ChildID, req.LineAddr)
		}
		if !e.sharers[req.ChildID] {
			log.Panicf("%s: %s from child %d, which does not hold line 0x%x",
				d.name, req.Type, req.ChildID, req.LineAddr)
		}
		e.sharers[req.ChildID] = false
		e.numSharers--
		req.State.Set(mem.Invalid)

	case mem.GETS:
		if e.isEmpty() && d.haveExclusive(lineID) && req.Flags&mem.FlagNoExcl == 0 {
			e.sharers[req.ChildID] = true
			e.numSharers = 1
			e.exclusive = true
			req.State.Set(mem.Exclusive)
			break
		}

		if e.sharers[req.ChildID] {
			log.Panicf("%s: GETS from child %d, which already shares line 0x%x",
				d.name, req.ChildID, req.LineAddr)
		}
		if e.isExclusive() {
			respCycle += d.sendInvalidates(
				req.LineAddr, lineID, mem.InvDowngrade,
				childWroteBack, cycle, req.SrcID)
		}
		e.sharers[req.ChildID] = true
		e.numSharers++
		e.exclusive = false
		req.State.Set(mem.Shared)

	case mem.GETX:
		if !d.haveExclusive(lineID) {
			log.Panicf("%s: GETX grant for line 0x%x while held in %s",
				d.name, req.LineAddr, d.states[lineID].Get())
		}
		if e.sharers[req.ChildID] {
			// Upgrade miss: the requester leaves the sharer set so it
			// is not invalidated with the rest.
			e.sharers[req.ChildID] = false
			e.numSharers--
			e.exclusive = false
		}
		respCycle += d.sendInvalidates(
			req.LineAddr, lineID, mem.InvInvalidate,
			childWroteBack, cycle, req.SrcID)
		e.sharers[req.ChildID] = true
		e.numSharers++
		e.exclusive = true
		if e.numSharers != 1 {
			log.Panicf("%s: line 0x%x has %d sharers after a GETX grant",
				d.name, req.LineAddr, e.numSharers)
		}
		req.State.Set(mem.Modified)
	}

	return respCycle
}

func (d *Directory) ProcessEviction(
	req *mem.AccessReq,
	victimAddr uint64,
	lineID int,
	startCycle uint64,
) uint64 {
	// Children lose the victim first; a dirty copy lands here before the
	// writeback below decides between PUTS and PUTX.
	childWroteBack := false
	evCycle := startCycle + d.sendInvalidates(
		victimAddr, lineID, mem.InvInvalidate,
		&childWroteBack, startCycle, req.SrcID)

	return d.evict(req, victimAddr, lineID, childWroteBack, false, evCycle)
}

func (d *Directory) ProcessInv(inv *mem.InvReq, lineID int, startCycle uint64) uint64 {
	d.locks.acquire(inv.LineAddr)
	defer d.locks.release(inv.LineAddr)

	// Children always lose access before this level reports its own
	// transition upward.
	respCycle := startCycle + d.sendInvalidates(
		inv.LineAddr, lineID, inv.Type,
		inv.Writeback, startCycle, inv.SrcID)

	d.inval(inv, lineID)
	return respCycle
}

// sendInvalidates cuts every sharing child off the line and returns the
// added delay. Invalidations fan out in parallel; the slowest child counts.
func (d *Directory) sendInvalidates(
	addr uint64,
	lineID int,
	typ mem.InvType,
	writeback *bool,
	cycle uint64,
	srcID int,
) uint64 {
	if d.entries == nil {
		log.Panicf("%s: directory controller used with no children wired",
			d.name)
	}
	e := &d.entries[lineID]

	// Downgrades only reach children when one of them holds the line
	// exclusively.
	if typ == mem.InvDowngrade && !e.isExclusive() {
		return 0
	}

	if e.isEmpty() {
		return 0
	}

	maxCycle := cycle
	sent := 0
	for c := range d.children {
		if !e.sharers[c] {
			continue
		}

		inv := &mem.InvReq{
			LineAddr:  addr,
			Type:      typ,
			Writeback: writeback,
			Cycle:     cycle,
			SrcID:     srcID,
		}
		respCycle := d.children[c].Invalidate(inv) + d.childRTTs[c]
		if respCycle > maxCycle {
			maxCycle = respCycle
		}

		if typ == mem.InvInvalidate {
			e.sharers[c] = false
		}
		sent++
	}

	if sent != e.numSharers {
		log.Panicf("%s: sharer record for line 0x%x counts %d but %d invalidations were sent",
			d.name, addr, e.numSharers, sent)
	}

	if typ == mem.InvInvalidate {
		e.numSharers = 0
		e.exclusive = false
	} else {
		e.exclusive = false
	}

	return maxCycle - cycle
}
