package main

import (
	"math/rand"
	"sync"

	"github.com/spf13/cobra"

	"github.com/sarchlab/memsim/mem/hierarchy"
	"github.com/sarchlab/memsim/monitoring"
	"github.com/sarchlab/memsim/simulation"
	"github.com/sarchlab/memsim/stats/statsdb"
)

// The synthetic stream places each region on its own line-aligned base so
// that the instruction, private, and shared working sets never collide.
const (
	codeBase   = 0x1000_0000
	codeLines  = 256
	privBase   = 0x2000_0000
	privLines  = 512
	sharedBase = 0x3000_0000
	shareLines = 64

	regionStride = 0x100_0000
	lineSize     = 64

	sharedPercent = 20
	storePercent  = 30
)

// coreDriver replays one core's access stream. Each driver runs on its own
// goroutine; the hierarchy serializes conflicting lines internally.
type coreDriver struct {
	core *hierarchy.Core
	proc int
	rng  *rand.Rand

	pc    uint64
	cycle uint64
}

func newCoreDriver(
	core *hierarchy.Core,
	proc int,
	seed int64,
) *coreDriver {
	return &coreDriver{
		core: core,
		proc: proc,
		rng:  rand.New(rand.NewSource(seed + int64(core.ID()))),
	}
}

// runPhase issues n instruction fetches, each followed by a data access.
// Loads and stores mostly touch the core's private region; a slice of them
// goes to lines all cores share, which keeps the directory busy.
func (d *coreDriver) runPhase(n uint64) {
	for i := uint64(0); i < n; i++ {
		fetchAddr := codeBase +
			uint64(d.proc)*regionStride +
			(d.pc%codeLines)*lineSize
		d.pc++
		d.cycle = d.core.FetchInstruction(fetchAddr, d.cycle)

		var dataAddr uint64
		if d.rng.Intn(100) < sharedPercent {
			dataAddr = sharedBase +
				uint64(d.rng.Intn(shareLines))*lineSize
		} else {
			dataAddr = privBase +
				uint64(d.core.ID())*regionStride +
				uint64(d.rng.Intn(privLines))*lineSize
		}

		if d.rng.Intn(100) < storePercent {
			d.cycle = d.core.Write(dataAddr, d.cycle)
		} else {
			d.cycle = d.core.Read(dataAddr, d.cycle)
		}
	}
}

// drive runs the synthetic stream for the configured number of phases, all
// cores in parallel within a phase, with a statistics snapshot at every
// phase boundary.
func drive(
	cmd *cobra.Command,
	h *hierarchy.Hierarchy,
	sim *simulation.Simulation,
	collector *statsdb.PeriodicCollector,
	monitor *monitoring.Monitor,
) {
	phases := mustUint64(cmd, "phases")
	accesses := mustUint64(cmd, "accesses")
	seed := mustInt64(cmd, "seed")

	drivers := make([]*coreDriver, len(h.Cores))
	for i, core := range h.Cores {
		proc, _ := sim.ProcessOf(i)
		drivers[i] = newCoreDriver(core, proc, seed)
	}

	var bar *monitoring.ProgressBar
	if monitor != nil {
		bar = monitor.CreateProgressBar(
			"accesses", phases*accesses*uint64(len(drivers)))
	}

	for p := uint64(0); p < phases; p++ {
		var wg sync.WaitGroup
		for _, d := range drivers {
			wg.Add(1)
			go func(d *coreDriver) {
				defer wg.Done()
				d.runPhase(accesses)
				if bar != nil {
					bar.IncrementFinished(accesses)
				}
			}(d)
		}
		wg.Wait()

		collector.PhaseEnded(sim.AdvancePhase())
	}

	if bar != nil {
		monitor.CompleteProgressBar(bar)
	}
}
