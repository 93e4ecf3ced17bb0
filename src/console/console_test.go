package console

import (
	"testing"
	"unsafe"
)

func newTestVGA() (*VGA, *[vgaHeight * vgaWidth]uint16) {
	buf := new([vgaHeight * vgaWidth]uint16)
	v := NewVGA(uintptr(unsafe.Pointer(&buf[0])))
	return v, buf
}

func TestVGAWritesCell(t *testing.T) {
	v, buf := newTestVGA()
	v.WriteString("A")

	cell := buf[0]
	if byte(cell&0xff) != 'A' {
		t.Fatalf("cell[0] = %#x, want 'A' in low byte", cell)
	}
	if v.col != 1 || v.row != 0 {
		t.Fatalf("cursor at (%d,%d), want (0,1)", v.row, v.col)
	}
}

func TestVGANewlineAdvancesRow(t *testing.T) {
	v, _ := newTestVGA()
	v.WriteString("hi\nthere")
	if v.row != 1 {
		t.Fatalf("row = %d, want 1 after one newline", v.row)
	}
	if v.col != len("there") {
		t.Fatalf("col = %d, want %d", v.col, len("there"))
	}
}

func TestVGAWrapsAtWidth(t *testing.T) {
	v, _ := newTestVGA()
	line := make([]byte, vgaWidth+5)
	for i := range line {
		line[i] = 'x'
	}
	v.WriteString(string(line))
	if v.row != 1 || v.col != 5 {
		t.Fatalf("cursor at (%d,%d), want (1,5) after wrapping", v.row, v.col)
	}
}

func TestVGAScrollsAtBottom(t *testing.T) {
	v, buf := newTestVGA()
	for i := 0; i < vgaHeight; i++ {
		v.WriteString("x\n")
	}
	if v.row != vgaHeight-1 {
		t.Fatalf("row = %d, want %d after scrolling", v.row, vgaHeight-1)
	}
	// the last newline scrolled every row up by one: the x written on the
	// bottom row now sits one row higher and the bottom row is blank.
	if byte(buf[(vgaHeight-2)*vgaWidth]&0xff) != 'x' || byte(buf[(vgaHeight-1)*vgaWidth]&0xff) != ' ' {
		t.Fatalf("expected earlier rows to have scrolled")
	}
}

func TestMultiFansOutToAllSinks(t *testing.T) {
	a, _ := newTestVGA()
	b, _ := newTestVGA()
	m := Multi{a, b}
	m.WriteString("hey")

	if a.col != 3 || b.col != 3 {
		t.Fatalf("expected both sinks to receive the write, got a.col=%d b.col=%d", a.col, b.col)
	}
}

func TestWriterUsesInstalledDefault(t *testing.T) {
	v, buf := newTestVGA()
	SetDefault(v)
	w := Writer{}
	n, err := w.Write([]byte("Z"))
	if err != nil || n != 1 {
		t.Fatalf("Write returned (%d, %v), want (1, nil)", n, err)
	}
	if byte(buf[0]&0xff) != 'Z' {
		t.Fatalf("expected default sink to receive the write")
	}
}
