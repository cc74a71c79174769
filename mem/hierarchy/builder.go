// Package hierarchy assembles a full memory hierarchy from a configuration
// file: per-core TLBs and L1 caches over a shared L2 over main memory, wired
// through the interconnect and registered with the simulation's statistics
// tree and component registry.
package hierarchy

import (
	"fmt"

	"github.com/sarchlab/memsim/config"
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/mainmem"
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/mem/network"
	"github.com/sarchlab/memsim/mem/trace"
	"github.com/sarchlab/memsim/mem/vm"
	"github.com/sarchlab/memsim/mem/vm/tlb"
	"github.com/sarchlab/memsim/simulation"
	"github.com/sarchlab/memsim/stats"
)

// Hierarchy is the assembled system.
type Hierarchy struct {
	Cores []*Core
	L2    mem.Level
	Mem   *mainmem.Comp

	sim *simulation.Simulation
	net mem.Network
}

// SetProcess records that core now runs process proc, updating both the
// core's TLBs and the simulation's core-to-process table.
func (h *Hierarchy) SetProcess(core, proc int) {
	h.Cores[core].SetProcess(vm.PID(proc))
	h.sim.AssignProcess(core, proc)
}

// Builder can build hierarchies.
type Builder struct {
	cfg    *config.Config
	sim    *simulation.Simulation
	tracer *trace.Tracer
}

// MakeBuilder creates a builder with no configuration attached.
func MakeBuilder() Builder {
	return Builder{}
}

// WithConfig sets the configuration the hierarchy is built from.
func (b Builder) WithConfig(cfg *config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithSimulation sets the simulation the hierarchy registers into.
func (b Builder) WithSimulation(s *simulation.Simulation) Builder {
	b.sim = s
	return b
}

// WithTracer makes every level record its accesses.
func (b Builder) WithTracer(t *trace.Tracer) Builder {
	b.tracer = t
	return b
}

// Build assembles the hierarchy: numCores × (ITLB, DTLB, L1I, L1D), one
// shared L2, and main memory.
func (b Builder) Build() *Hierarchy {
	if b.cfg == nil || b.sim == nil {
		panic("hierarchy: a config and a simulation are required")
	}

	numCores := int(b.cfg.Uint32Or("sys.cores", 1))
	net := b.buildNetwork(numCores)

	h := &Hierarchy{sim: b.sim, net: net}
	root := b.sim.StatsRoot()

	h.Mem = mainmem.New("mem", b.cfg.Uint64Or("sys.mem.latency", 100))
	h.Mem.InitStats(root)
	b.sim.RegisterComponent(h.Mem)

	h.L2 = b.buildL2(net)
	h.L2.InitStats(root)

	coresAgg := stats.NewRegularAggregate("cores", "per-core stats")
	root.Append(coresAgg)

	var l1s []mem.Level
	for i := 0; i < numCores; i++ {
		core, coreL1s := b.buildCore(i, h, net, coresAgg)
		h.Cores = append(h.Cores, core)
		l1s = append(l1s, coreL1s...)
	}

	h.L2.SetChildren(l1s, net)
	h.L2.SetParents(0, []mem.Object{h.Mem}, net)

	b.assignProcesses(h, numCores)

	return h
}

// buildCore builds one core's levels and returns the L1s that become L2's
// children, in child-index order.
func (b Builder) buildCore(
	id int,
	h *Hierarchy,
	net mem.Network,
	coresAgg *stats.Aggregate,
) (*Core, []mem.Level) {
	coreAgg := stats.NewAggregate(
		fmt.Sprintf("core-%d", id), fmt.Sprintf("core %d stats", id))
	coresAgg.Append(coreAgg)

	core := &Core{
		id:       id,
		ifetches: coreAgg.Counter("ifetch", "instruction fetches issued"),
		loads:    coreAgg.Counter("ld", "loads issued"),
		stores:   coreAgg.Counter("st", "stores issued"),
		lastDone: coreAgg.Counter("lastDone", "completion cycle of the latest access"),
	}

	core.itlb = b.buildTLB("sys.itlb", fmt.Sprintf("itlb-%d", id), id, h, coreAgg)
	core.dtlb = b.buildTLB("sys.dtlb", fmt.Sprintf("dtlb-%d", id), id, h, coreAgg)

	core.iTranslate = core.itlb
	core.dTranslate = core.dtlb
	if b.tracer != nil {
		core.iTranslate = b.tracer.WrapTranslator(core.itlb)
		core.dTranslate = b.tracer.WrapTranslator(core.dtlb)
	}

	l1i := b.buildL1("sys.l1i", fmt.Sprintf("l1i-%d", id), 2*id, h, net, coreAgg)
	l1d := b.buildL1("sys.l1d", fmt.Sprintf("l1d-%d", id), 2*id+1, h, net, coreAgg)
	core.l1i = l1i
	core.l1d = l1d

	return core, []mem.Level{l1i, l1d}
}

func (b Builder) buildTLB(
	key, name string,
	coreID int,
	h *Hierarchy,
	coreAgg *stats.Aggregate,
) *tlb.Comp {
	builder := tlb.MakeBuilder().
		WithNumSets(int(b.cfg.Uint32Or(key+".sets", 1))).
		WithNumWays(int(b.cfg.Uint32Or(key+".ways", 64))).
		WithAccessLatency(b.cfg.Uint64Or(key+".accLat", 1)).
		WithInvLatency(b.cfg.Uint64Or(key+".invLat", 1)).
		WithReplPolicy(b.cfg.StringOr(key+".policy", "lru")).
		WithSrcID(coreID)

	if b.cfg.BoolOr(key+".pageWalk", false) {
		builder = builder.
			WithPageWalk().
			WithPageWalkLat(b.cfg.Uint64Or(key+".pageWalkLat", 0))
	}

	t := builder.Build(name)

	// PTE fetches go straight to memory: translations are not
	// directory-tracked, so they must not enter the coherent levels.
	t.SetParents(0, []mem.Object{h.Mem}, h.net)
	t.InitStats(coreAgg)
	b.sim.RegisterComponent(t)

	return t
}

func (b Builder) buildL1(
	key, name string,
	childID int,
	h *Hierarchy,
	net mem.Network,
	coreAgg *stats.Aggregate,
) mem.Level {
	c := cache.MakeBuilder().
		WithNumSets(int(b.cfg.Uint32Or(key+".sets", 64))).
		WithNumWays(int(b.cfg.Uint32Or(key+".ways", 4))).
		WithAccessLatency(b.cfg.Uint64Or(key+".accLat", 1)).
		WithInvLatency(b.cfg.Uint64Or(key+".invLat", 1)).
		WithReplPolicy(b.cfg.StringOr(key+".policy", "lru")).
		WithTerminalController(false).
		Build(name)

	c.SetParents(childID, []mem.Object{h.L2}, net)
	c.InitStats(coreAgg)
	b.sim.RegisterComponent(c)

	var level mem.Level = c
	if b.tracer != nil {
		level = b.tracer.WrapLevel(c)
	}

	return level
}

func (b Builder) buildL2(net mem.Network) mem.Level {
	c := cache.MakeBuilder().
		WithNumSets(int(b.cfg.Uint32Or("sys.l2.sets", 512))).
		WithNumWays(int(b.cfg.Uint32Or("sys.l2.ways", 8))).
		WithAccessLatency(b.cfg.Uint64Or("sys.l2.accLat", 10)).
		WithInvLatency(b.cfg.Uint64Or("sys.l2.invLat", 5)).
		WithReplPolicy(b.cfg.StringOr("sys.l2.policy", "lru")).
		WithDirectoryController().
		Build("l2")

	b.sim.RegisterComponent(c)

	var level mem.Level = c
	if b.tracer != nil {
		level = b.tracer.WrapLevel(c)
	}

	return level
}

func (b Builder) buildNetwork(numCores int) *network.Comp {
	net := network.New(b.cfg.Uint64Or("sys.net.defaultDelay", 0))

	l1ToL2 := b.cfg.Uint64Or("sys.net.l1ToL2", 0)
	tlbToMem := b.cfg.Uint64Or("sys.net.tlbToMem", 0)
	for i := 0; i < numCores; i++ {
		net.AddLink(fmt.Sprintf("l1i-%d", i), "l2", l1ToL2)
		net.AddLink(fmt.Sprintf("l1d-%d", i), "l2", l1ToL2)
		net.AddLink(fmt.Sprintf("itlb-%d", i), "mem", tlbToMem)
		net.AddLink(fmt.Sprintf("dtlb-%d", i), "mem", tlbToMem)
	}

	net.AddLink("l2", "mem", b.cfg.Uint64Or("sys.net.l2ToMem", 0))

	return net
}

// assignProcesses applies the optional initial core-to-process assignment:
//
//	sys:
//	  procs:
//	    proc-0:
//	      cores: "0:2"
//	    proc-1:
//	      cores: "2:4"
//
// Cores not named by any mask run process 0.
func (b Builder) assignProcesses(h *Hierarchy, numCores int) {
	for core := 0; core < numCores; core++ {
		h.SetProcess(core, 0)
	}

	if !b.cfg.Exists("sys.procs") {
		return
	}

	for proc, name := range b.cfg.Subgroups("sys.procs") {
		mask := config.ParseMask(
			b.cfg.String("sys.procs."+name+".cores"), numCores)
		for core, assigned := range mask {
			if assigned {
				h.SetProcess(core, proc)
			}
		}
	}
}
