package addr

import "testing"

func TestCanonical(t *testing.T) {
	cases := []struct {
		v    Virtual
		want bool
	}{
		{0, true},
		{CanonicalHole - 1, true},
		{CanonicalHole, false},
		{CanonicalTop - 1, false},
		{CanonicalTop, true},
		{^Virtual(0), true},
	}
	for _, c := range cases {
		if got := c.v.Canonical(); got != c.want {
			t.Errorf("Virtual(%#x).Canonical() = %v, want %v", uintptr(c.v), got, c.want)
		}
	}
}

func TestAlign(t *testing.T) {
	p := Physical(0x1234)
	if got := p.Align(0x1000); got != 0x1000 {
		t.Errorf("Align = %#x, want 0x1000", uintptr(got))
	}
	if got := p.AlignUp(0x1000); got != 0x2000 {
		t.Errorf("AlignUp = %#x, want 0x2000", uintptr(got))
	}
	if Physical(0x2000).Aligned(0x1000) != true {
		t.Errorf("expected 0x2000 aligned to 0x1000")
	}
}

func TestIndex(t *testing.T) {
	// virtual address with pml4=1, pdpt=2, pd=3, pt=4
	v := Virtual(1<<39 | 2<<30 | 3<<21 | 4<<12 | 0x77)
	if got := v.Index(3); got != 1 {
		t.Errorf("pml4 index = %d, want 1", got)
	}
	if got := v.Index(2); got != 2 {
		t.Errorf("pdpt index = %d, want 2", got)
	}
	if got := v.Index(1); got != 3 {
		t.Errorf("pd index = %d, want 3", got)
	}
	if got := v.Index(0); got != 4 {
		t.Errorf("pt index = %d, want 4", got)
	}
}
