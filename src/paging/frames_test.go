package paging

import (
	"testing"

	"buddy"
)

// CreateUserPageDirectory walks the recursive mapping and needs a real page
// table to write into; it's exercised on real hardware, not here.
// PageAllocator's own arithmetic, wrapping buddy.System, has no such
// dependency.

func newTestAllocator() *PageAllocator {
	heap := buddy.New(21) // up to 1<<20 bytes
	heap.Init(0x100000, 1<<20)
	return NewPageAllocator(heap)
}

func TestPageAllocatorAllocPageReturnsPageAligned(t *testing.T) {
	p := newTestAllocator()
	frame, err := p.AllocPage()
	if err != nil {
		t.Fatalf("AllocPage: %v", err)
	}
	if !frame.Aligned(0x1000) {
		t.Fatalf("frame %v is not page-aligned", frame)
	}
}

func TestPageAllocatorFreePageAllowsReuse(t *testing.T) {
	p := newTestAllocator()
	frame, err := p.AllocPage()
	if err != nil {
		t.Fatalf("AllocPage: %v", err)
	}
	p.FreePage(frame)
	again, err := p.AllocPage()
	if err != nil {
		t.Fatalf("AllocPage after free: %v", err)
	}
	if again != frame {
		t.Fatalf("expected freed frame %v to be reused, got %v", frame, again)
	}
}

func TestPageAllocatorAllocRegionIsContiguous(t *testing.T) {
	p := newTestAllocator()
	region, err := p.AllocRegion(4 * 0x1000)
	if err != nil {
		t.Fatalf("AllocRegion: %v", err)
	}
	if !region.Aligned(0x1000) {
		t.Fatalf("region %v is not page-aligned", region)
	}
	p.FreeRegion(region, 4*0x1000)
}

func TestFramesSingletonRoundTrips(t *testing.T) {
	p := newTestAllocator()
	SetFrameAllocator(p)
	if Frames() != RegionAllocator(p) {
		t.Fatal("Frames() did not return the allocator set by SetFrameAllocator")
	}
}
