package cache

import (
	"github.com/sarchlab/memsim/mem/coherence"
)

// Builder can build cache levels.
type Builder struct {
	numSets    int
	numWays    int
	accLat     uint64
	invLat     uint64
	policy     string
	controller string

	silentDrops bool
	randomSeed  int64
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numSets:    64,
		numWays:    4,
		accLat:     1,
		invLat:     1,
		policy:     "lru",
		controller: "directory",
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

// WithDirectoryController makes the level track which children hold each
// line, for levels that have caches below them.
func (b Builder) WithDirectoryController() Builder {
	b.controller = "directory"
	return b
}

// WithTerminalController makes the level the lowest coherent one.
// silentDrops lets it drop clean victims without notifying the parent.
func (b Builder) WithTerminalController(silentDrops bool) Builder {
	b.controller = "terminal"
	b.silentDrops = silentDrops
	return b
}

// Build builds a cache level.
func (b Builder) Build(name string) *Comp {
	numLines := b.numSets * b.numWays
	policy := b.createReplPolicy(numLines)

	return &Comp{
		name:   name,
		array:  NewSetAssocArray(b.numSets, b.numWays, policy),
		policy: policy,
		cc:     b.createController(name, numLines),
		accLat: b.accLat,
		invLat: b.invLat,
	}
}

func (b Builder) createReplPolicy(numLines int) ReplPolicy {
	switch b.policy {
	case "lru":
		return NewLRU(numLines)
	case "random":
		return NewRandom(b.randomSeed)
	default:
		panic("unknown replacement policy: " + b.policy)
	}
}

func (b Builder) createController(name string, numLines int) coherence.Controller {
	switch b.controller {
	case "directory":
		return coherence.NewDirectory(name, numLines)
	case "terminal":
		return coherence.NewTerminal(name, numLines, b.silentDrops)
	default:
		panic("unknown controller kind: " + b.controller)
	}
}
