// Package consts collects the kernel's build-time tuning constants in one
// place, the way a freestanding kernel's linker script or config header
// would, rather than scattering magic numbers across every package.
package consts

// StackSize is the size in bytes of a task's kernel stack.
const StackSize = 0x3000

// InterruptStackSize is the size in bytes of each task's interrupt stack;
// the boot stack's one is the IST1 target used for double faults and
// other non-maskable traps.
const InterruptStackSize = 0x3000

// CacheLine is the assumed L1 cache line size, used to pad hot
// per-CPU/per-task structures apart to avoid false sharing.
const CacheLine = 64

// NoPriorities is the number of scheduler priority levels, [0, NoPriorities).
const NoPriorities = 32

// TimerFreq is the PIT tick rate in Hz the scheduler's quantum is derived
// from.
const TimerFreq = 100

// UserEntry is the fixed virtual address a freshly loaded ELF image's
// segments are based at.
const UserEntry = 0x20000000000

// UserImageSize is the size of a loaded image's virtual address window;
// the initial user stack pointer sits at the top of it.
const UserImageSize = 0x400000

// UserStackWindow is how far below the top of the image window is
// reserved for the demand-paged user stack.
const UserStackWindow = 0x10000

// HeapSize is the size in bytes of the kernel heap handed to the buddy
// allocator at boot.
const HeapSize = 8 * 1024 * 1024

// MinAllocOrder is the buddy allocator's minimum block order; blocks
// smaller than 1<<MinAllocOrder bytes are never handed out.
const MinAllocOrder = 7 // 128 bytes

// BuddyOrder is the number of orders the kernel heap's buddy allocator
// supports; HeapSize must fit within 1<<(BuddyOrder-1).
const BuddyOrder = 24

// RecursiveIndex is the PML4 slot a page table's own physical frame is
// mapped into, so the kernel can address any page table in the active
// hierarchy purely through virtual addresses. Index 511 makes the PML4
// itself reachable at the fixed address 0xFFFFFFFFFFFFF000. No code here
// moves a boot loader's recursive slot into 511; the paging package
// relies on the active PML4 already mapping itself at this slot.
const RecursiveIndex = 511

// KernelStart is the lowest virtual address of the kernel's own half of
// the address space (the recursive slot lives above it).
const KernelStart = 0xFFFF800000000000
