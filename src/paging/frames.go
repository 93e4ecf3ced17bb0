package paging

import (
	"addr"
	"buddy"
)

// RegionAllocator extends FrameAllocator with the ability to hand out a
// single contiguous multi-page physical region, the shape the ELF loader
// needs for a whole image but intermediate page-table frames never do.
type RegionAllocator interface {
	FrameAllocator
	AllocRegion(size uintptr) (addr.Physical, error)
	FreeRegion(p addr.Physical, size uintptr)
}

// PageAllocator adapts the kernel's buddy heap to RegionAllocator: every
// physical frame, whether a single page-table frame or a whole user image,
// comes out of the same buddy.System the rest of the kernel's dynamic
// memory does.
type PageAllocator struct {
	heap *buddy.System
}

// NewPageAllocator wraps heap for use as the kernel's physical frame and
// region allocator.
func NewPageAllocator(heap *buddy.System) *PageAllocator {
	return &PageAllocator{heap: heap}
}

func (p *PageAllocator) AllocPage() (addr.Physical, error) {
	return p.AllocRegion(addr.PageSize)
}

func (p *PageAllocator) FreePage(frame addr.Physical) {
	p.FreeRegion(frame, addr.PageSize)
}

func (p *PageAllocator) AllocRegion(size uintptr) (addr.Physical, error) {
	ptr, err := p.heap.Alloc(size, addr.PageSize)
	if err != nil {
		return 0, err
	}
	return addr.Physical(ptr), nil
}

func (p *PageAllocator) FreeRegion(frame addr.Physical, size uintptr) {
	p.heap.Free(uintptr(frame), size, addr.PageSize)
}

var _ RegionAllocator = (*PageAllocator)(nil)

// frames is the kernel's single physical-frame allocator, set once at boot
// the same way KernelRootPageTable is: a process-wide singleton that never
// changes after init, because this kernel is single-CPU and never re-enters
// concurrently.
var frames RegionAllocator

// SetFrameAllocator installs the kernel's physical frame allocator.
func SetFrameAllocator(a RegionAllocator) { frames = a }

// Frames returns the kernel's physical frame allocator.
func Frames() RegionAllocator { return frames }
