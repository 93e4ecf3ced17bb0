package elf

import (
	"math"
	"unsafe"

	"addr"
	"arch"
	"consts"
	"errno"
	"klog"
	"paging"
	"vfs"
)

// Load reads file fully, switches to a fresh user address space, then
// validates and builds the flat memory image (parse, layout, copy
// segments, relocate) in ordinary Go memory before mapping and blitting
// it in at consts.UserEntry. It returns the entry address ready for
// cpu.JumpToUserLand. CR3 is replaced with the fresh user PML4 before any
// image validation runs, so even a rejected image leaves that PML4
// installed rather than leaving CR3 pointing at the caller's own,
// already-abandoned address space.
func Load(file vfs.Interface, alloc paging.RegionAllocator) (uintptr, error) {
	state, err := file.Fstat()
	if err != nil {
		return 0, err
	}
	if state.Size == 0 {
		klog.Warnf("elf: refusing to load an empty file.")
		return 0, errno.InvalidExecutable
	}
	if state.Size > math.MaxInt32 {
		klog.Warnf("elf: file size %d exceeds the supported range.", state.Size)
		return 0, errno.ValueOverflow
	}

	buf := make([]byte, state.Size)
	if err := readFull(file, buf); err != nil {
		return 0, err
	}

	root, err := paging.CreateUserPageDirectory(alloc)
	if err != nil {
		return 0, err
	}
	arch.WriteCR3(uint64(root))

	img, err := Parse(buf)
	if err != nil {
		klog.Warnf("elf: rejecting image: %v", err)
		return 0, errno.InvalidExecutable
	}

	totalSize, err := Layout(img, addr.PageSize)
	if err != nil {
		klog.Warnf("elf: rejecting image: %v", err)
		return 0, errno.InvalidExecutable
	}

	image, err := BuildImage(buf, img, totalSize)
	if err != nil {
		klog.Warnf("elf: rejecting image: %v", err)
		return 0, errno.InvalidExecutable
	}

	if err := Relocate(image, img, uint64(consts.UserEntry)); err != nil {
		klog.Warnf("elf: rejecting image: %v", err)
		return 0, errno.InvalidExecutable
	}

	entry, err := EntryPoint(img, uint64(consts.UserEntry), totalSize)
	if err != nil {
		klog.Warnf("elf: rejecting image: %v", err)
		return 0, errno.InvalidExecutable
	}

	phys, err := alloc.AllocRegion(uintptr(totalSize))
	if err != nil {
		return 0, err
	}

	pages := totalSize / addr.PageSize
	for i := uint64(0); i < pages; i++ {
		v := addr.Virtual(consts.UserEntry).Add(uintptr(i * addr.PageSize))
		p := phys.Add(uintptr(i * addr.PageSize))
		if _, err := paging.Map(v, p, paging.Base4K, paging.Writable|paging.User, alloc); err != nil {
			return 0, err
		}
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(consts.UserEntry))), int(totalSize))
	copy(dst, image)

	return uintptr(entry), nil
}

// readFull reads exactly len(buf) bytes from f, the way a loader reading a
// whole file into a heap buffer needs to.
func readFull(f vfs.Interface, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		if err != nil {
			return err
		}
		if n == 0 {
			return errno.IOError
		}
		total += n
	}
	return nil
}
