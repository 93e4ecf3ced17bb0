// Package console implements the kernel's two text output sinks: the
// legacy 16550-compatible serial port (COM1) and the VGA text-mode
// framebuffer. cmd/kernel installs only the serial port as the default
// sink at boot; Multi fans output out to several sinks when both are
// wanted.
package console

import (
	"sync/atomic"
	"unsafe"

	"arch"
	"ksync"
)

func ptrAdd(base uintptr, offset uintptr) unsafe.Pointer {
	return unsafe.Pointer(base + offset)
}

// Sink is anything the kernel can print a line of text to.
type Sink interface {
	WriteString(s string)
}

// Serial drives a 16550-compatible UART (COM1 by convention, I/O port
// 0x3F8), the simplest and most portable console target: every hypervisor
// and most real hardware exposes it without further setup.
type Serial struct {
	port uint16
	lock ksync.RawIRQTicketLock
}

// NewSerial returns a Serial sink for the UART at the given base I/O
// port.
func NewSerial(port uint16) *Serial {
	return &Serial{port: port}
}

// WriteString writes s one byte at a time to the UART's transmit
// register. It does not wait on the line-status register: the kernel's
// own console output is the only writer competing for the wire, so there
// is no flow-control partner to stall on.
func (s *Serial) WriteString(str string) {
	wasEnabled := s.lock.Lock()
	defer s.lock.Unlock(wasEnabled)
	for i := 0; i < len(str); i++ {
		arch.Outb(s.port, str[i])
	}
}

const (
	vgaWidth  = 80
	vgaHeight = 25
)

// VGA drives the standard 80x25 VGA text-mode framebuffer. Base is the
// virtual address the 0xB8000 physical framebuffer is mapped at (direct
// mapped, uncached).
type VGA struct {
	base  uintptr
	color uint8
	row   int
	col   int
	lock  ksync.RawIRQTicketLock
}

// NewVGA returns a VGA sink writing through the framebuffer mapped at
// base, with light-grey-on-black as the default attribute.
func NewVGA(base uintptr) *VGA {
	return &VGA{base: base, color: 0x07}
}

func (v *VGA) cellAt(row, col int) *uint16 {
	offset := uintptr(row*vgaWidth+col) * 2
	return (*uint16)(ptrAdd(v.base, offset))
}

func (v *VGA) putChar(c byte) {
	switch c {
	case '\n':
		v.row++
		v.col = 0
	default:
		*v.cellAt(v.row, v.col) = uint16(c) | uint16(v.color)<<8
		v.col++
		if v.col >= vgaWidth {
			v.col = 0
			v.row++
		}
	}
	if v.row >= vgaHeight {
		v.scroll()
		v.row = vgaHeight - 1
	}
}

func (v *VGA) scroll() {
	for row := 1; row < vgaHeight; row++ {
		for col := 0; col < vgaWidth; col++ {
			*v.cellAt(row-1, col) = *v.cellAt(row, col)
		}
	}
	for col := 0; col < vgaWidth; col++ {
		*v.cellAt(vgaHeight-1, col) = uint16(' ') | uint16(v.color)<<8
	}
}

// WriteString writes str to the framebuffer, scrolling as needed.
func (v *VGA) WriteString(str string) {
	wasEnabled := v.lock.Lock()
	defer v.lock.Unlock(wasEnabled)
	for i := 0; i < len(str); i++ {
		v.putChar(str[i])
	}
}

// Multi fans a single write out to every sink in the list, so kernel
// messages reach the serial line and the screen at once.
type Multi []Sink

// WriteString writes str to every sink in m.
func (m Multi) WriteString(str string) {
	for _, s := range m {
		s.WriteString(str)
	}
}

var active atomic.Pointer[Sink]

// SetDefault installs s as the console the rest of the kernel writes
// through via Write.
func SetDefault(s Sink) { active.Store(&s) }

// Write implements io.Writer over the currently installed default sink,
// so klog.SetOutput(console.Writer{}) is all the boot sequence needs.
type Writer struct{}

func (Writer) Write(p []byte) (int, error) {
	if s := active.Load(); s != nil {
		(*s).WriteString(string(p))
	}
	return len(p), nil
}
