// Package vm defines the address geometry of the simulated machine and the
// process identifiers that keep per-process translations apart.
package vm

// PID identifies one simulated process.
type PID uint32

const (
	// PageBits is the log2 of the page size.
	PageBits = 12

	// LineBits is the log2 of the cache line size.
	LineBits = 6

	// PTESize is the size of one page table entry, in bytes.
	PTESize = 8
)

// PageNum returns the virtual page number of vAddr.
func PageNum(vAddr uint64) uint64 {
	return vAddr >> PageBits
}

// LineAddr returns the line-granularity address containing addr.
func LineAddr(addr uint64) uint64 {
	return addr >> LineBits
}

// ProcessMask returns the bits ORed into page numbers keyed by process pid.
// The mask sits above any valid page number, so masked keys from different
// processes never collide even when the raw page numbers are equal.
func ProcessMask(pid PID) uint64 {
	return uint64(pid) << 48
}

// PTELineAddr returns the line address holding the page table entry of a
// masked page key: the key is scaled down by the entries that share a line
// and mapped to line granularity.
func PTELineAddr(pageKey uint64) uint64 {
	return (pageKey / PTESize) >> LineBits
}
