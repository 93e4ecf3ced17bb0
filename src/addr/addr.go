// Package addr defines the two opaque address newtypes the rest of the
// kernel builds on: PhysicalAddress and VirtualAddress. Keeping them as
// distinct types (rather than bare uintptr) prevents a physical frame
// number from leaking into a pointer dereference by accident.
package addr

import "fmt"

// PageSize is the base page size in bytes.
const PageSize = 0x1000

// CanonicalHole is the first non-canonical address on amd64: bits 47..63
// of a canonical virtual address must all agree with bit 47.
const CanonicalHole = 0x0000_8000_0000_0000

// CanonicalTop is the first address of the high canonical half.
const CanonicalTop = 0xFFFF_8000_0000_0000

// Physical is a physical memory address.
type Physical uintptr

// Virtual is a virtual memory address.
type Virtual uintptr

// Valid reports whether p fits in a 52-bit physical address, the widest
// physical-address-width x86_64 implementations expose.
func (p Physical) Valid() bool {
	return p>>52 == 0
}

// Canonical reports whether v lies in one of the two canonical halves of
// the amd64 virtual address space.
func (v Virtual) Canonical() bool {
	return v < CanonicalHole || v >= CanonicalTop
}

// Align rounds p down to the nearest multiple of align, which must be a
// power of two.
func (p Physical) Align(align uintptr) Physical {
	return Physical(uintptr(p) &^ (align - 1))
}

// AlignUp rounds p up to the nearest multiple of align, which must be a
// power of two.
func (p Physical) AlignUp(align uintptr) Physical {
	return Physical((uintptr(p) + align - 1) &^ (align - 1))
}

// Aligned reports whether p is a multiple of align.
func (p Physical) Aligned(align uintptr) bool {
	return uintptr(p)&(align-1) == 0
}

// Add returns p offset by n bytes.
func (p Physical) Add(n uintptr) Physical { return p + Physical(n) }

// Align rounds v down to the nearest multiple of align, which must be a
// power of two.
func (v Virtual) Align(align uintptr) Virtual {
	return Virtual(uintptr(v) &^ (align - 1))
}

// AlignUp rounds v up to the nearest multiple of align, which must be a
// power of two.
func (v Virtual) AlignUp(align uintptr) Virtual {
	return Virtual((uintptr(v) + align - 1) &^ (align - 1))
}

// Aligned reports whether v is a multiple of align.
func (v Virtual) Aligned(align uintptr) bool {
	return uintptr(v)&(align-1) == 0
}

// Add returns v offset by n bytes.
func (v Virtual) Add(n uintptr) Virtual { return v + Virtual(n) }

// Index returns the 9-bit page-table index for the given translation
// level (0 = PT, 1 = PD, 2 = PDPT, 3 = PML4) extracted from v.
func (v Virtual) Index(level uint) uint {
	return uint(v>>(12+9*level)) & 0x1ff
}

func (p Physical) String() string { return fmt.Sprintf("0x%x", uintptr(p)) }
func (v Virtual) String() string  { return fmt.Sprintf("0x%x", uintptr(v)) }
