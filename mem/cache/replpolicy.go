package cache

import (
	"math/rand"

	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/stats"
)

// ReplPolicy picks victims for an array and observes every touch and
// replacement so its recency state stays consistent. The owning array calls
// all methods under its own lock; implementations do not need one.
type ReplPolicy interface {
	// Update records a touch on lineID.
	Update(lineID int, req *mem.AccessReq)

	// Replaced tells the policy that lineID received a new occupant.
	Replaced(lineID int)

	// Rank returns the candidate to evict. cands is never empty.
	Rank(req *mem.AccessReq, cands []int) int

	// InitStats registers the policy's counters under parent.
	InitStats(parent *stats.Aggregate)
}

// LRU evicts the candidate touched longest ago. Timestamps are global to
// the array; candidates always come from a single set, so only their
// relative order matters. Slots that were never touched rank first.
type LRU struct {
	timestamp uint64
	touched   []uint64
}

// NewLRU returns an LRU policy for an array with numLines slots.
func NewLRU(numLines int) *LRU {
	return &LRU{touched: make([]uint64, numLines)}
}

func (p *LRU) Update(lineID int, req *mem.AccessReq) {
	p.timestamp++
	p.touched[lineID] = p.timestamp
}

func (p *LRU) Replaced(lineID int) {
	p.touched[lineID] = 0
}

func (p *LRU) Rank(req *mem.AccessReq, cands []int) int {
	best := cands[0]
	for _, c := range cands[1:] {
		if p.touched[c] < p.touched[best] {
			best = c
		}
	}
	return best
}

func (p *LRU) InitStats(parent *stats.Aggregate) {}

// Random evicts a uniformly random candidate. The generator is seeded at
// construction so runs stay reproducible.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a random replacement policy.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (p *Random) Update(lineID int, req *mem.AccessReq) {}

func (p *Random) Replaced(lineID int) {}

func (p *Random) Rank(req *mem.AccessReq, cands []int) int {
	return cands[p.rng.Intn(len(cands))]
}

func (p *Random) InitStats(parent *stats.Aggregate) {}
