package stats

import (
	"fmt"
	"log"
	"sync"
)

// ProcessMap reports which process a core is running. The scheduler that
// maintains the mapping lives outside this module.
type ProcessMap interface {
	ProcessOf(core int) (proc int, ok bool)
}

// ProcStats demultiplexes a regular per-core aggregate into per-process
// aggregates. Once per phase it snapshots every counter under the per-core
// tree, diffs the snapshot against the previous one, and credits each core's
// delta to the process that core is running. The per-process tree mirrors
// the shape of one core's subtree and refreshes lazily when read.
type ProcStats struct {
	mu sync.Mutex

	coreStats *Aggregate
	pm        ProcessMap
	phase     func() uint64

	lastPhase uint64
	started   bool

	coreSize int
	buf      []uint64
	lastBuf  []uint64
	procVals [][]uint64
}

// NewProcStats builds the per-process mirror of coreStats and registers it
// under parent as "procs". coreStats must be a regular aggregate whose
// children (one per core) share one shape; anything else is a fatal
// misconfiguration. phase supplies the current phase number; the snapshot
// diff runs at most once per phase.
func NewProcStats(
	parent, coreStats *Aggregate,
	maxProcs int,
	pm ProcessMap,
	phase func() uint64,
) *ProcStats {
	if !coreStats.Regular() {
		log.Panicf("stats: per-process demux needs a regular aggregate, %s is not",
			coreStats.Name())
	}
	if len(coreStats.Children()) == 0 {
		log.Panicf("stats: per-process demux over empty aggregate %s",
			coreStats.Name())
	}

	first := coreStats.Children()[0]
	coreSize := FlatSize(first)
	for _, c := range coreStats.Children() {
		if FlatSize(c) != coreSize {
			log.Panicf("stats: children of regular aggregate %s differ in shape",
				coreStats.Name())
		}
	}

	ps := &ProcStats{
		coreStats: coreStats,
		pm:        pm,
		phase:     phase,
		coreSize:  coreSize,
		lastBuf:   make([]uint64, coreSize*len(coreStats.Children())),
		procVals:  make([][]uint64, maxProcs),
	}
	for p := range ps.procVals {
		ps.procVals[p] = make([]uint64, coreSize)
	}

	procs := NewRegularAggregate("procs", "per-process stats")
	for p := 0; p < maxProcs; p++ {
		idx := 0
		mirrored := ps.mirror(first, p, &idx).(*Aggregate)
		mirrored.name = fmt.Sprintf("proc-%d", p)
		mirrored.desc = fmt.Sprintf("stats attributed to process %d", p)
		procs.Append(mirrored)
	}
	parent.Append(procs)

	return ps
}

// mirror clones the shape of s for process proc, replacing counters with
// lazy views into procVals. idx advances in FlatRead order.
func (ps *ProcStats) mirror(s Stat, proc int, idx *int) Stat {
	switch st := s.(type) {
	case *Aggregate:
		out := NewAggregate(st.Name(), st.Desc())
		for _, c := range st.Children() {
			out.Append(ps.mirror(c, proc, idx))
		}
		return out
	case Vector:
		base := *idx
		*idx += st.Size()
		return &procVector{src: st, ps: ps, proc: proc, base: base}
	case Scalar:
		i := *idx
		*idx++
		return &procCounter{src: st, ps: ps, proc: proc, idx: i}
	}
	log.Panicf("stats: unknown stat type %T", s)
	return nil
}

// Update runs the snapshot diff if the phase advanced since the last call.
func (ps *ProcStats) Update() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.updateLocked()
}

func (ps *ProcStats) updateLocked() {
	cur := ps.phase()
	if ps.started && cur == ps.lastPhase {
		return
	}
	ps.lastPhase = cur
	ps.started = true

	ps.buf = ps.buf[:0]
	ps.buf = FlatRead(ps.coreStats, ps.buf)

	numCores := len(ps.coreStats.Children())
	for core := 0; core < numCores; core++ {
		proc, ok := ps.pm.ProcessOf(core)
		if !ok {
			continue
		}
		if proc < 0 || proc >= len(ps.procVals) {
			log.Panicf("stats: core %d maps to process %d, outside [0, %d)",
				core, proc, len(ps.procVals))
		}

		off := core * ps.coreSize
		for i := 0; i < ps.coreSize; i++ {
			ps.procVals[proc][i] += ps.buf[off+i] - ps.lastBuf[off+i]
		}
	}

	ps.buf, ps.lastBuf = ps.lastBuf, ps.buf
}

func (ps *ProcStats) read(proc, idx int) uint64 {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.updateLocked()
	return ps.procVals[proc][idx]
}

type procCounter struct {
	src  Stat
	ps   *ProcStats
	proc int
	idx  int
}

func (c *procCounter) Name() string  { return c.src.Name() }
func (c *procCounter) Desc() string  { return c.src.Desc() }
func (c *procCounter) Value() uint64 { return c.ps.read(c.proc, c.idx) }

type procVector struct {
	src  Vector
	ps   *ProcStats
	proc int
	base int
}

func (v *procVector) Name() string          { return v.src.Name() }
func (v *procVector) Desc() string          { return v.src.Desc() }
func (v *procVector) Size() int             { return v.src.Size() }
func (v *procVector) ElemName(i int) string { return v.src.ElemName(i) }
func (v *procVector) At(i int) uint64       { return v.ps.read(v.proc, v.base+i) }
