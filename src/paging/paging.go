// Package paging implements the kernel's 4-level x86_64 page tables using
// recursive PML4 self-mapping: the last PML4 slot points back at the PML4
// itself, so every page table at every level is reachable through an
// ordinary virtual address instead of needing a separate physical-memory
// window.
package paging

import (
	"errors"
	"unsafe"

	"addr"
	"consts"
)

// Flags are the low-level PTE bits, one-to-one with the hardware encoding.
type Flags uint64

const (
	Present      Flags = 1 << 0
	Writable     Flags = 1 << 1
	User         Flags = 1 << 2
	WriteThrough Flags = 1 << 3
	CacheDisable Flags = 1 << 4
	Accessed     Flags = 1 << 5
	Dirty        Flags = 1 << 6
	Huge         Flags = 1 << 7
	Global       Flags = 1 << 8
	NoExecute    Flags = 1 << 63

	addrMask = Flags(^uintptr(0)) &^ Flags(addr.PageSize-1) &^ NoExecute
)

// Entry is a single page-table entry: a physical address plus flag bits.
type Entry uint64

// Address returns the physical frame this entry points to.
func (e Entry) Address() addr.Physical {
	return addr.Physical(uint64(e) & uint64(addrMask))
}

// Present reports whether the entry's Present bit is set.
func (e Entry) Present() bool { return e&Entry(Present) != 0 }

// Huge reports whether the entry's Huge (PS) bit is set.
func (e Entry) Huge() bool { return e&Entry(Huge) != 0 }

// User reports whether the entry's User-accessible bit is set.
func (e Entry) User() bool { return e&Entry(User) != 0 }

func makeEntry(phys addr.Physical, flags Flags) Entry {
	return Entry(uint64(phys)&uint64(addrMask) | uint64(flags|Present|Accessed))
}

// Size describes a mappable page size and the table level its entries
// terminate at.
type Size struct {
	Bytes    uintptr
	MapLevel uint
	Extra    Flags
}

var (
	// Base4K is a normal 4KiB page, terminating at the PT (level 0).
	Base4K = Size{Bytes: addr.PageSize, MapLevel: 0}
	// Large2M is a 2MiB huge page, terminating at the PD (level 1).
	Large2M = Size{Bytes: 0x200000, MapLevel: 1, Extra: Huge}
	// Huge1G is a 1GiB huge page, terminating at the PDPT (level 2).
	Huge1G = Size{Bytes: 0x40000000, MapLevel: 2, Extra: Huge}
)

// ErrNotPresent is returned when walking to an entry that has no mapping.
var ErrNotPresent = errors.New("paging: page table entry not present")

// KernelRootPageTable is the physical address of the PML4 every task
// shares until it execs an ELF image of its own. SetKernelRootPageTable
// is called once at boot with the value CR3 already holds.
var KernelRootPageTable addr.Physical

// SetKernelRootPageTable records the kernel's own root page table, read
// from CR3 during early boot before any task switching happens.
func SetKernelRootPageTable(p addr.Physical) {
	KernelRootPageTable = p
}

// Table is a 512-entry page table at a given level (3=PML4, 2=PDPT,
// 1=PD, 0=PT), addressed through the recursive mapping so ordinary loads
// and stores reach it.
type Table struct {
	virt  addr.Virtual
	level uint
}

func recursiveAddress(i4, i3, i2, i1 uint) addr.Virtual {
	return addr.Virtual(0xFFFF800000000000 |
		uint64(i4)<<39 | uint64(i3)<<30 | uint64(i2)<<21 | uint64(i1)<<12)
}

// Root returns the PML4 table, reachable at a fixed address because its
// own recursive slot points back at itself.
func Root() *Table {
	r := uint(consts.RecursiveIndex)
	return &Table{virt: recursiveAddress(r, r, r, r), level: 3}
}

func (t *Table) entries() *[512]Entry {
	return (*[512]Entry)(unsafe.Pointer(uintptr(t.virt)))
}

// subtable returns the table one level below this one, reached through
// entry `index`, by shifting the current recursive address down one
// 9-bit field and substituting index for the newly vacated field.
func (t *Table) subtable(index uint) *Table {
	next := (uint64(t.virt) << 9) | (uint64(index) << 12)
	return &Table{virt: addr.Virtual(next), level: t.level - 1}
}

// FrameAllocator supplies and reclaims single physical page frames for
// intermediate page-table levels.
type FrameAllocator interface {
	AllocPage() (addr.Physical, error)
	FreePage(addr.Physical)
}

// Lookup walks the hierarchy for v and returns the terminal entry for the
// given page size, or ErrNotPresent if any level along the way is absent.
func Lookup(v addr.Virtual, size Size) (Entry, error) {
	table := Root()
	for level := uint(3); level > size.MapLevel; level-- {
		idx := v.Index(level)
		e := table.entries()[idx]
		if !e.Present() {
			return 0, ErrNotPresent
		}
		table = table.subtable(idx)
	}
	idx := v.Index(size.MapLevel)
	e := table.entries()[idx]
	if !e.Present() {
		return 0, ErrNotPresent
	}
	return e, nil
}

// Translate returns the physical address v currently maps to.
func Translate(v addr.Virtual, size Size) (addr.Physical, error) {
	e, err := Lookup(v, size)
	if err != nil {
		return 0, err
	}
	offset := uintptr(v) & (size.Bytes - 1)
	return e.Address().Add(offset), nil
}

// Map installs a single mapping from v to p with the given flags, at the
// page size requested, allocating any missing intermediate tables from
// alloc. Returns true if a mapping was already present at this virtual
// address (and has now been replaced and must be TLB-flushed by the
// caller).
func Map(v addr.Virtual, p addr.Physical, size Size, flags Flags, alloc FrameAllocator) (bool, error) {
	table := Root()
	for level := uint(3); level > size.MapLevel; level-- {
		idx := v.Index(level)
		ents := table.entries()
		if !ents[idx].Present() {
			frame, err := alloc.AllocPage()
			if err != nil {
				return false, err
			}
			childFlags := Writable
			if flags&User != 0 {
				childFlags |= User
			}
			ents[idx] = makeEntry(frame, childFlags)
			sub := table.subtable(idx)
			clear(sub.entries()[:])
		}
		table = table.subtable(idx)
	}

	idx := v.Index(size.MapLevel)
	ents := table.entries()
	was := ents[idx].Present()
	ents[idx] = makeEntry(p, flags|size.Extra|Dirty)
	return was, nil
}

func clear(entries []Entry) {
	for i := range entries {
		entries[i] = 0
	}
}

// Unmap removes the mapping at v, if any.
func Unmap(v addr.Virtual, size Size) {
	table := Root()
	for level := uint(3); level > size.MapLevel; level-- {
		idx := v.Index(level)
		if !table.entries()[idx].Present() {
			return
		}
		table = table.subtable(idx)
	}
	idx := v.Index(size.MapLevel)
	table.entries()[idx] = 0
}

// scratchPage is a page of kernel virtual address space reserved for the
// handful of operations that need to write into a page table before it
// becomes the active CR3. Its PML4 index (510) is deliberately distinct
// from both RecursiveIndex (511) and every index the recursive mapping
// itself resolves through, so nothing else in the address space ever
// contends for it.
const scratchPage = addr.Virtual(0xFFFFFF0000000000)

// CreateUserPageDirectory allocates a fresh PML4 for a new task, copies the
// kernel's own top-level entries into it so the task inherits kernel
// mappings, and points the new table's own recursive slot at itself so the
// recursive trick keeps working once this table becomes CR3. Grounded on
// create_usr_pgd: allocate, temporarily map, copy, re-point recursion,
// unmap.
func CreateUserPageDirectory(alloc FrameAllocator) (addr.Physical, error) {
	frame, err := alloc.AllocPage()
	if err != nil {
		return 0, err
	}
	if _, err := Map(scratchPage, frame, Base4K, Writable, alloc); err != nil {
		return 0, err
	}
	defer Unmap(scratchPage, Base4K)

	newTable := (*[512]Entry)(unsafe.Pointer(uintptr(scratchPage)))
	copy(newTable[:], Root().entries()[:])
	newTable[consts.RecursiveIndex] = makeEntry(frame, Writable)

	return frame, nil
}

// DropUserSpace walks the whole hierarchy under the PML4 (excluding the
// recursive slot) and frees every user-accessible frame and page table it
// finds, the cleanup a task's address space needs at exit.
func DropUserSpace(alloc FrameAllocator) {
	dropLevel(Root(), alloc)
}

func dropLevel(t *Table, alloc FrameAllocator) {
	last := 512
	if t.level == 3 {
		last = consts.RecursiveIndex
	}
	ents := t.entries()
	for i := 0; i < last; i++ {
		if !ents[i].Present() || !ents[i].User() {
			continue
		}
		if t.level > 0 && !ents[i].Huge() {
			dropLevel(t.subtable(uint(i)), alloc)
		}
		alloc.FreePage(ents[i].Address())
	}
}
