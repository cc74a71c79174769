// Package simulation carries the run-wide context: the root of the
// statistics tree, the results recorder, the registry of hierarchy
// components, the phase counter, and the core-to-process table that
// per-process stat demultiplexing consumes.
package simulation

import (
	"sync"
	"sync/atomic"

	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats"
	"github.com/sarchlab/memsim/stats/statsdb"
)

// A Simulation provides the services required to define and run a
// simulation.
type Simulation struct {
	id string

	recorder statsdb.Recorder
	root     *stats.Aggregate

	components    []mem.Object
	compNameIndex map[string]int

	phase atomic.Uint64

	procMu    sync.RWMutex
	procTable map[int]int
}

// ID returns the unique identifier of this run.
func (s *Simulation) ID() string {
	return s.id
}

// Recorder returns the results recorder of this run.
func (s *Simulation) Recorder() statsdb.Recorder {
	return s.recorder
}

// StatsRoot returns the root aggregate every component registers its
// counters under.
func (s *Simulation) StatsRoot() *stats.Aggregate {
	return s.root
}

// RegisterComponent registers a hierarchy component with the simulation.
// Component names must be unique.
func (s *Simulation) RegisterComponent(c mem.Object) {
	name := c.Name()
	if _, exists := s.compNameIndex[name]; exists {
		panic("component " + name + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[name] = len(s.components) - 1
}

// Components returns every registered component, in registration order.
func (s *Simulation) Components() []mem.Object {
	return s.components
}

// ComponentByName returns the component with the given name, or nil.
func (s *Simulation) ComponentByName(name string) mem.Object {
	i, exists := s.compNameIndex[name]
	if !exists {
		return nil
	}

	return s.components[i]
}

// Phase returns the current phase number.
func (s *Simulation) Phase() uint64 {
	return s.phase.Load()
}

// AdvancePhase ends the current phase and returns the new phase number.
func (s *Simulation) AdvancePhase() uint64 {
	return s.phase.Add(1)
}

// AssignProcess records that core is now running proc. The scheduler that
// decides the assignment lives outside this module.
func (s *Simulation) AssignProcess(core, proc int) {
	s.procMu.Lock()
	defer s.procMu.Unlock()

	s.procTable[core] = proc
}

// ProcessOf reports which process core is running.
func (s *Simulation) ProcessOf(core int) (proc int, ok bool) {
	s.procMu.RLock()
	defer s.procMu.RUnlock()

	proc, ok = s.procTable[core]
	return proc, ok
}

var _ stats.ProcessMap = (*Simulation)(nil)

// Terminate releases the simulation's resources.
func (s *Simulation) Terminate() {
	s.recorder.Close()
}
