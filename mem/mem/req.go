package mem

import "sync"

// AccessReq describes one access traveling up the hierarchy. Requests are
// stack-allocated by the issuer and passed by pointer; the serving
// controller may rewrite Type when it detects a race, and writes the granted
// state into State before returning. Everything else is read-only for the
// receiver.
type AccessReq struct {
	// LineAddr is the line-granularity key being accessed. TLB levels key
	// by process-masked virtual page number instead of physical line.
	LineAddr uint64

	// Type is the coherence operation. The serving controller may rewrite
	// a racing PUTX into PUTS.
	Type AccessType

	// ChildID is the issuer's index among the receiving level's children.
	// Zero for requests that do not come from a registered child.
	ChildID int

	// State is the coherence cell for this line at the issuing level. The
	// serving controller stores the granted state here.
	State *State

	// InitialState is the value of State when the request was issued.
	// The serving controller compares it against the live cell to detect
	// transitions that raced with this request.
	InitialState MESIState

	// Cycle is the cycle at which the request is issued.
	Cycle uint64

	// ChildLock is the line section held by the issuing level, or nil when
	// the issuer holds none. The serving controller releases it while it
	// works on the line and re-acquires it before returning, so a child
	// blocked here never stalls invalidations directed at it.
	ChildLock sync.Locker

	// SrcID identifies the originating core, for stats attribution.
	SrcID int

	Flags Flags
}

// InvReq describes one invalidation or downgrade traveling down the
// hierarchy.
type InvReq struct {
	LineAddr uint64
	Type     InvType

	// Writeback is an out-parameter: the receiver sets it when a dirty
	// copy was surrendered anywhere below, so the initiator knows the
	// line must be treated as Modified.
	Writeback *bool

	// Cycle is the cycle at which the invalidation is issued.
	Cycle uint64

	// SrcID identifies the core whose access triggered the invalidation.
	SrcID int
}

// CheckAccessRace compares the live state cell against the state captured at
// issue time. A mismatch means another transition for this line completed
// while the request waited for its line section. The access is then either
// redirected onto a compatible path by rewriting req.Type, or skipped
// entirely (return true) because a concurrent operation already satisfied it:
//
//	PUTS/PUTX on a line dropped to I   -> skip, nothing left to write back
//	PUTX on a line downgraded to S     -> rewrite to PUTS, data no longer ours
//	GETS on a line already filled      -> skip, the concurrent fill serves us
//	GETX on a line already at M or E   -> skip, exclusivity already granted
//
// A GETX that finds the line at S proceeds as an upgrade, and one that finds
// it back at I proceeds as a plain fetch; both paths read the live cell, so
// no rewrite is needed.
func CheckAccessRace(req *AccessReq) bool {
	cur := req.State.Get()
	if cur == req.InitialState {
		return false
	}

	switch req.Type {
	case PUTS:
		return cur == Invalid
	case PUTX:
		if cur == Invalid {
			return true
		}
		if cur == Shared {
			req.Type = PUTS
		}
		return false
	case GETS:
		return cur.Valid()
	case GETX:
		return cur == Modified || cur == Exclusive
	}
	return false
}
