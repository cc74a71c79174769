// Package stats implements the hierarchical statistics tree that every
// simulated component registers its counters into. The tree is sampled
// live: counters are lock-free and safe to increment from concurrent
// accesses, and every registered counter is reachable from the root by its
// dot-separated name path.
package stats

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Stat is one node of the statistics tree.
type Stat interface {
	Name() string
	Desc() string
}

// Scalar is a stat sampled as a single value.
type Scalar interface {
	Stat
	Value() uint64
}

// Vector is a stat sampled as a family of values.
type Vector interface {
	Stat
	Size() int
	At(i int) uint64
	ElemName(i int) string
}

// Counter is a lock-free scalar counter.
type Counter struct {
	name, desc string
	v          atomic.Uint64
}

// NewCounter returns a counter starting at zero.
func NewCounter(name, desc string) *Counter {
	return &Counter{name: name, desc: desc}
}

func (c *Counter) Name() string { return c.name }
func (c *Counter) Desc() string { return c.desc }

// Value returns the current count.
func (c *Counter) Value() uint64 { return c.v.Load() }

// Inc adds one.
func (c *Counter) Inc() { c.v.Add(1) }

// Add adds delta.
func (c *Counter) Add(delta uint64) { c.v.Add(delta) }

// VectorCounter is a fixed-size family of lock-free counters. Elements may
// be named; unnamed elements report their index.
type VectorCounter struct {
	name, desc string
	elemNames  []string
	vals       []atomic.Uint64
}

// NewVectorCounter returns a vector of size counters. elemNames may be nil
// or must have length size.
func NewVectorCounter(name, desc string, size int, elemNames []string) *VectorCounter {
	if elemNames != nil && len(elemNames) != size {
		log.Panicf("stats: vector %s has %d elements but %d names",
			name, size, len(elemNames))
	}
	return &VectorCounter{
		name:      name,
		desc:      desc,
		elemNames: elemNames,
		vals:      make([]atomic.Uint64, size),
	}
}

func (v *VectorCounter) Name() string { return v.name }
func (v *VectorCounter) Desc() string { return v.desc }
func (v *VectorCounter) Size() int    { return len(v.vals) }

// At returns the current count of element i.
func (v *VectorCounter) At(i int) uint64 { return v.vals[i].Load() }

// ElemName returns the name of element i.
func (v *VectorCounter) ElemName(i int) string {
	if v.elemNames == nil {
		return fmt.Sprintf("%d", i)
	}
	return v.elemNames[i]
}

// Inc adds one to element i.
func (v *VectorCounter) Inc(i int) { v.vals[i].Add(1) }

// Add adds delta to element i.
func (v *VectorCounter) Add(i int, delta uint64) { v.vals[i].Add(delta) }

// Aggregate groups child stats. A regular aggregate promises that all its
// children have identical shape, which per-process demultiplexing relies on.
type Aggregate struct {
	name, desc string
	regular    bool
	children   []Stat
}

// NewAggregate returns an empty aggregate.
func NewAggregate(name, desc string) *Aggregate {
	return &Aggregate{name: name, desc: desc}
}

// NewRegularAggregate returns an empty aggregate whose children are declared
// to share one shape.
func NewRegularAggregate(name, desc string) *Aggregate {
	return &Aggregate{name: name, desc: desc, regular: true}
}

func (a *Aggregate) Name() string { return a.name }
func (a *Aggregate) Desc() string { return a.desc }

// Regular reports whether all children share one shape.
func (a *Aggregate) Regular() bool { return a.regular }

// Children returns the child stats in registration order.
func (a *Aggregate) Children() []Stat { return a.children }

// Append registers a child stat. Child names must be unique within the
// aggregate.
func (a *Aggregate) Append(s Stat) {
	for _, c := range a.children {
		if c.Name() == s.Name() {
			log.Panicf("stats: duplicate stat %s in %s", s.Name(), a.name)
		}
	}
	a.children = append(a.children, s)
}

// Counter creates a child counter and returns it.
func (a *Aggregate) Counter(name, desc string) *Counter {
	c := NewCounter(name, desc)
	a.Append(c)
	return c
}

// Vector creates a child vector counter and returns it.
func (a *Aggregate) Vector(name, desc string, size int, elemNames []string) *VectorCounter {
	v := NewVectorCounter(name, desc, size, elemNames)
	a.Append(v)
	return v
}

// Child creates a nested aggregate and returns it.
func (a *Aggregate) Child(name, desc string) *Aggregate {
	c := NewAggregate(name, desc)
	a.Append(c)
	return c
}

// Lookup resolves a dot-separated path ("cores.core-0.cycles") from root.
// It returns nil when any path element is missing.
func Lookup(root *Aggregate, path string) Stat {
	if path == "" {
		return root
	}

	var cur Stat = root
	for _, elem := range strings.Split(path, ".") {
		agg, ok := cur.(*Aggregate)
		if !ok {
			return nil
		}

		cur = nil
		for _, c := range agg.children {
			if c.Name() == elem {
				cur = c
				break
			}
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// FlatSize returns the number of scalar samples under s, counting depth
// first. Vectors contribute one sample per element.
func FlatSize(s Stat) int {
	switch st := s.(type) {
	case Scalar:
		return 1
	case Vector:
		return st.Size()
	case *Aggregate:
		n := 0
		for _, c := range st.children {
			n += FlatSize(c)
		}
		return n
	}
	log.Panicf("stats: unknown stat type %T", s)
	return 0
}

// FlatRead appends every scalar sample under s to buf, depth first, in the
// same order FlatSize counts them.
func FlatRead(s Stat, buf []uint64) []uint64 {
	switch st := s.(type) {
	case Scalar:
		return append(buf, st.Value())
	case Vector:
		for i := 0; i < st.Size(); i++ {
			buf = append(buf, st.At(i))
		}
		return buf
	case *Aggregate:
		for _, c := range st.children {
			buf = FlatRead(c, buf)
		}
		return buf
	}
	log.Panicf("stats: unknown stat type %T", s)
	return nil
}
