// Package mem defines the vocabulary shared by all levels of the memory
// hierarchy: MESI states, access and invalidation types, the request
// descriptors that travel between levels, and the Object/Level contracts
// that levels implement.
package mem

import "sync/atomic"

// MESIState is the coherence state of one line at one level.
type MESIState int32

const (
	// Invalid lines hold no permission. The zero value of a state cell is
	// Invalid.
	Invalid MESIState = iota

	// Shared lines may be read. Other levels may hold copies.
	Shared

	// Exclusive lines may be read and are the only copy below the parent.
	// A write upgrades to Modified silently.
	Exclusive

	// Modified lines are dirty and exclusive.
	Modified
)

func (s MESIState) String() string {
	switch s {
	case Invalid:
		return "I"
	case Shared:
		return "S"
	case Exclusive:
		return "E"
	case Modified:
		return "M"
	}
	return "?"
}

// Valid reports whether the state grants any permission at all.
func (s MESIState) Valid() bool {
	return s != Invalid
}

// AccessType tags a request going up the hierarchy (child to parent).
type AccessType int

const (
	// GETS fetches a line for reading. The parent may grant Shared or
	// Exclusive.
	GETS AccessType = iota

	// GETX fetches a line for writing. The parent grants Modified after
	// invalidating all other copies.
	GETX

	// PUTS notifies the parent that a clean copy was dropped.
	PUTS

	// PUTX writes a dirty copy back to the parent.
	PUTX
)

func (t AccessType) String() string {
	switch t {
	case GETS:
		return "GETS"
	case GETX:
		return "GETX"
	case PUTS:
		return "PUTS"
	case PUTX:
		return "PUTX"
	}
	return "???"
}

// IsGet reports whether the access fetches a line (GETS or GETX).
func (t AccessType) IsGet() bool {
	return t == GETS || t == GETX
}

// IsPut reports whether the access writes a line back (PUTS or PUTX).
func (t AccessType) IsPut() bool {
	return t == PUTS || t == PUTX
}

// InvType tags a request going down the hierarchy (parent to child).
type InvType int

const (
	// InvInvalidate drops the line to Invalid.
	InvInvalidate InvType = iota

	// InvDowngrade surrenders exclusivity, dropping the line to Shared.
	InvDowngrade
)

func (t InvType) String() string {
	switch t {
	case InvInvalidate:
		return "INV"
	case InvDowngrade:
		return "INVX"
	}
	return "???"
}

// Flags qualify an access request.
type Flags uint32

const (
	// FlagIFetch marks instruction fetches.
	FlagIFetch Flags = 1 << iota

	// FlagPTEFetch marks page-table-entry fetches issued by TLB misses.
	FlagPTEFetch

	// FlagNoExcl forbids the parent from granting Exclusive on a GETS.
	FlagNoExcl
)

// State is the coherence cell shared between a requester and the level that
// owns the line. The owning level's controller is the only writer while a
// line section is held; the cell is atomic so that a requester blocked on a
// racing access observes the rewrite without a data race. The zero value is
// Invalid.
type State struct {
	v atomic.Int32
}

// NewState returns a cell initialized to s.
func NewState(s MESIState) *State {
	c := &State{}
	c.v.Store(int32(s))
	return c
}

// Get returns the current state.
func (c *State) Get() MESIState {
	return MESIState(c.v.Load())
}

// Set overwrites the current state.
func (c *State) Set(s MESIState) {
	c.v.Store(int32(s))
}
