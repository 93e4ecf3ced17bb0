package cpu

import (
	"arch"
	"consts"
)

const pitInputClock = 1193182

// InitPIT programs channel 0 of the 8253/8254 PIT to fire at
// consts.TimerFreq Hz, the scheduler's preemption tick.
func InitPIT() {
	latch := uint16((pitInputClock + consts.TimerFreq/2) / consts.TimerFreq)

	arch.Outb(0x43, 0x34) // channel 0, lobyte/hibyte, mode 2 (rate generator)
	settle()
	arch.Outb(0x40, uint8(latch&0xFF))
	settle()
	arch.Outb(0x40, uint8(latch>>8))
}

// settle gives the PIT's 8-bit bus a moment between successive writes,
// the same busy-loop the original boot code uses rather than a fixed
// port-I/O delay trick.
func settle() {
	start := arch.Rdtsc()
	for arch.Rdtsc()-start < 1000 {
		arch.Pause()
	}
}
