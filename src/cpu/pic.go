package cpu

import "arch"

// 8259 PIC I/O ports and the ICW4 end-of-interrupt command.
const (
	picMasterCommand = 0x20
	picMasterData    = 0x21
	picSlaveCommand  = 0xA0
	picSlaveData     = 0xA1
	picEOI           = 0x20
)

// InitPIC remaps the two cascaded 8259 PICs so their interrupts land at
// vectors 32-47 instead of the CPU's own reserved 0-31 exception range,
// then masks every line except the timer and keyboard (IRQ0, IRQ1).
func InitPIC() {
	arch.Outb(picMasterCommand, 0x11)
	arch.Outb(picSlaveCommand, 0x11)
	arch.Outb(picMasterData, VectorTimer)
	arch.Outb(picSlaveData, VectorTimer+8)
	arch.Outb(picMasterData, 0x04)
	arch.Outb(picSlaveData, 0x02)
	arch.Outb(picMasterData, 0x01)
	arch.Outb(picSlaveData, 0x01)

	arch.Outb(picMasterData, 0xFC) // unmask IRQ0 (timer) and IRQ1 (keyboard) only
	arch.Outb(picSlaveData, 0xFF)
}

// sendEOI acknowledges an interrupt on the PICs so further interrupts
// of equal or lower priority can be delivered.
func sendEOI(vector uint64) {
	if vector >= 40 {
		arch.Outb(picSlaveCommand, picEOI)
	}
	arch.Outb(picMasterCommand, picEOI)
}
