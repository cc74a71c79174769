package tlb

import (
	"github.com/sarchlab/memsim/mem/cache"
	"github.com/sarchlab/memsim/mem/coherence"
	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/mem/vm"
)

// Builder can build TLBs.
type Builder struct {
	numSets     int
	numWays     int
	accLat      uint64
	invLat      uint64
	policy      string
	randomSeed  int64
	pageWalk    bool
	pageWalkLat uint64
	procMask    uint64
	srcID       int
}

// MakeBuilder creates a builder with default parameters: a 64-entry
// fully-associative TLB with no page walk.
func MakeBuilder() Builder {
	return Builder{
		numSets: 1,
		numWays: 64,
		accLat:  1,
		invLat:  1,
		policy:  "lru",
		srcID:   -1,
	}
}

// WithNumSets sets the number of sets of the array.
func (b Builder) WithNumSets(numSets int) Builder {
	b.numSets = numSets
	return b
}

// WithNumWays sets the associativity of the array.
func (b Builder) WithNumWays(numWays int) Builder {
	b.numWays = numWays
	return b
}

// WithAccessLatency sets the latency of one array probe, in cycles.
func (b Builder) WithAccessLatency(accLat uint64) Builder {
	b.accLat = accLat
	return b
}

// WithInvLatency sets the latency of serving one invalidation, in cycles.
func (b Builder) WithInvLatency(invLat uint64) Builder {
	b.invLat = invLat
	return b
}

// WithReplPolicy sets the replacement policy, "lru" or "random".
func (b Builder) WithReplPolicy(policy string) Builder {
	b.policy = policy
	return b
}

// WithRandomSeed sets the seed of the random replacement policy.
func (b Builder) WithRandomSeed(seed int64) Builder {
	b.randomSeed = seed
	return b
}

// WithPageWalk makes misses fetch the page table entry through the parent.
func (b Builder) WithPageWalk() Builder {
	b.pageWalk = true
	return b
}

// WithPageWalkLat sets the fixed page-walk penalty charged on misses, in
// cycles.
func (b Builder) WithPageWalkLat(pageWalkLat uint64) Builder {
	b.pageWalkLat = pageWalkLat
	return b
}

// WithProcessMask sets the mask ORed into every page number this TLB keys
// by.
func (b Builder) WithProcessMask(procMask uint64) Builder {
	b.procMask = procMask
	return b
}

// WithProcess sets the process mask from a process ID.
func (b Builder) WithProcess(pid vm.PID) Builder {
	b.procMask = vm.ProcessMask(pid)
	return b
}

// WithSrcID sets the core ID stamped on requests, for stats attribution.
func (b Builder) WithSrcID(srcID int) Builder {
	b.srcID = srcID
	return b
}

// Build builds a TLB.
func (b Builder) Build(name string) *Comp {
	numLines := b.numSets * b.numWays
	policy := b.createReplPolicy(numLines)

	return &Comp{
		name:        name,
		array:       cache.NewSetAssocArray(b.numSets, b.numWays, policy),
		policy:      policy,
		cc:          coherence.NewTerminal(name, numLines, true),
		accLat:      b.accLat,
		invLat:      b.invLat,
		pageWalk:    b.pageWalk,
		pageWalkLat: b.pageWalkLat,
		procMask:    b.procMask,
		srcID:       b.srcID,
		reqFlags:    mem.FlagPTEFetch,
	}
}

func (b Builder) createReplPolicy(numLines int) cache.ReplPolicy {
	switch b.policy {
	case "lru":
		return cache.NewLRU(numLines)
	case "random":
		return cache.NewRandom(b.randomSeed)
	default:
		panic("unknown replacement policy: " + b.policy)
	}
}
