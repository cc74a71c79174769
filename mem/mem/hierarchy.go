package mem

import "github.com/sarchlab/memsim/stats"

// Network provides one-way hop latencies between named endpoints. A nil
// Network means zero-latency links everywhere.
type Network interface {
	RTT(from, to string) uint64
}

// Object is anything that can serve accesses: cache levels, TLBs, and the
// memory terminus. Access blocks until the request completes and returns the
// cycle at which the response is available to the requester.
type Object interface {
	Access(req *AccessReq) uint64
	Name() string
}

// Level is a cache-like Object that participates in coherence: it can
// receive invalidations from its parent and is wired into the hierarchy
// with explicit parent and child links.
type Level interface {
	Object

	// Invalidate serves an invalidation or downgrade sent by a parent.
	// It returns the cycle at which the invalidation completes at this
	// level and everything below it.
	Invalidate(inv *InvReq) uint64

	// SetParents registers the levels this one fetches from and writes
	// back to, along with this level's child index at those parents and
	// the network the links cross.
	SetParents(childID int, parents []Object, net Network)

	// SetChildren registers the levels that fetch from this one.
	SetChildren(children []Level, net Network)

	// InitStats registers this level's counters under parent.
	InitStats(parent *stats.Aggregate)
}
