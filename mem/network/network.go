// Package network models the interconnect between hierarchy levels as a
// table of fixed point-to-point delays. Levels resolve their round-trip
// times once, when the hierarchy is wired; the running simulation never
// consults the network again.
package network

import "github.com/sarchlab/memsim/mem/mem"

type link struct {
	from, to string
}

// Comp is a delay-table interconnect. Populate it with AddLink during
// hierarchy construction; it is read-only afterwards.
type Comp struct {
	defaultDelay uint64
	delays       map[link]uint64
}

var _ mem.Network = (*Comp)(nil)

// New returns an interconnect whose unlisted pairs have the given one-way
// delay.
func New(defaultDelay uint64) *Comp {
	return &Comp{
		defaultDelay: defaultDelay,
		delays:       make(map[link]uint64),
	}
}

// AddLink sets the one-way delay between two levels. Links are symmetric.
func (n *Comp) AddLink(from, to string, delay uint64) {
	n.delays[link{from, to}] = delay
}

// RTT returns the round-trip time between two levels, in cycles.
func (n *Comp) RTT(from, to string) uint64 {
	if d, ok := n.delays[link{from, to}]; ok {
		return 2 * d
	}
	if d, ok := n.delays[link{to, from}]; ok {
		return 2 * d
	}
	return 2 * n.defaultDelay
}
