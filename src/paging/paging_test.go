package paging

import (
	"testing"

	"addr"
)

// The functions exercised here never dereference a virtual address, so
// they run safely off real hardware; Root/Map/Unmap/Lookup walk the
// recursive mapping and require an actual mapped page table, so they are
// exercised by integration tests on real hardware instead.

func TestEntryRoundTrip(t *testing.T) {
	e := makeEntry(addr.Physical(0x123000), Writable|User)
	if !e.Present() {
		t.Fatal("expected Present to be set by makeEntry")
	}
	if e.Huge() {
		t.Fatal("did not request a huge page")
	}
	if !e.User() {
		t.Fatal("expected User bit to be preserved")
	}
	if e.Address() != 0x123000 {
		t.Fatalf("Address() = %#x, want 0x123000", uintptr(e.Address()))
	}
}

func TestEntryAddressMasksFlags(t *testing.T) {
	e := makeEntry(addr.Physical(0x456000), Huge|NoExecute)
	if e.Address() != 0x456000 {
		t.Fatalf("Address() = %#x, want 0x456000 (flag bits must not leak in)", uintptr(e.Address()))
	}
	if !e.Huge() {
		t.Fatal("expected Huge bit to be preserved")
	}
}

func TestRecursiveAddressMatchesKnownConstant(t *testing.T) {
	got := recursiveAddress(511, 511, 511, 511)
	if got != 0xFFFFFFFFFFFFF000 {
		t.Fatalf("recursiveAddress(511,511,511,511) = %#x, want 0xFFFFFFFFFFFFF000", uintptr(got))
	}
}

func TestSizeConstants(t *testing.T) {
	if Base4K.Bytes != addr.PageSize || Base4K.MapLevel != 0 {
		t.Fatalf("unexpected Base4K: %+v", Base4K)
	}
	if Large2M.Bytes != 0x200000 || Large2M.MapLevel != 1 || Large2M.Extra != Huge {
		t.Fatalf("unexpected Large2M: %+v", Large2M)
	}
	if Huge1G.Bytes != 0x40000000 || Huge1G.MapLevel != 2 {
		t.Fatalf("unexpected Huge1G: %+v", Huge1G)
	}
}
