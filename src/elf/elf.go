// Package elf parses and lays out 64-bit, statically-linked, PIE-prelinked
// ELF executables for a freestanding loader: no dynamic linker, no
// shared-library resolution, no section headers — just the four structures
// a minimal loader actually needs (Ehdr64, Phdr64, Dyn64, Rela64) and the
// RELATIVE-only relocation walk a prelinked-to-zero image requires.
//
// The parsing and layout logic here is pure: it never touches a page table
// or a physical address. Load, in load.go, is the half that does.
package elf

import (
	"encoding/binary"
	"errors"
)

const (
	class64   = 2 // ELFCLASS64
	typeExec  = 2 // ET_EXEC
	typeShared = 3 // ET_DYN — a shared object or PIE; rejected as a library

	segmentLoad    = 1 // PT_LOAD
	segmentDynamic = 2 // PT_DYNAMIC

	dynTagNeeded  = 1 // DT_NEEDED
	dynTagRela    = 7 // DT_RELA
	dynTagRelaSize = 8 // DT_RELASZ

	// RelocationRelative and RelocationGlobalDat carry the same numeric
	// value on both the i386 and x86_64 relocation ABIs, which is why
	// masking the low nibble of r_info is enough to tell them apart.
	RelocationRelative  = 8 // R_X86_64_RELATIVE / R_386_RELATIVE
	RelocationGlobalDat = 6 // R_X86_64_GLOB_DAT / R_386_GLOB_DAT

	ehdrSize = 64
	phdrSize = 56
	dynSize  = 16
	relaSize = 24
)

var (
	ErrTruncated             = errors.New("elf: file too short to contain a header")
	ErrBadMagic              = errors.New("elf: missing ELF magic number")
	ErrNot64Bit              = errors.New("elf: not a 64-bit ELF image")
	ErrUnsupportedType       = errors.New("elf: not an executable image")
	ErrIsLibrary             = errors.New("elf: file is a shared object, not an executable")
	ErrLibraryDependency     = errors.New("elf: file has a DT_NEEDED library dependency")
	ErrNoLoadableSegment     = errors.New("elf: no PT_LOAD segment present")
	ErrOverflow              = errors.New("elf: address or size exceeds the target pointer range")
	ErrOutOfBounds           = errors.New("elf: segment references data outside the file or the mapped image")
	ErrUnsupportedRelocation = errors.New("elf: unsupported relocation type")
	ErrEntryOutOfBounds      = errors.New("elf: entry point is outside the loaded image")
)

// Header is the subset of Elf64_Ehdr the loader needs.
type Header struct {
	Type                uint16
	Machine             uint16
	Entry               uint64
	ProgramHeaderOffset uint64
	ProgramHeaderCount  uint16
	ProgramHeaderSize   uint16
}

func parseHeader(buf []byte) (Header, error) {
	if len(buf) < ehdrSize {
		return Header{}, ErrTruncated
	}
	if buf[0] != 0x7f || buf[1] != 'E' || buf[2] != 'L' || buf[3] != 'F' {
		return Header{}, ErrBadMagic
	}
	if buf[4] != class64 {
		return Header{}, ErrNot64Bit
	}
	var h Header
	h.Type = binary.LittleEndian.Uint16(buf[16:18])
	h.Machine = binary.LittleEndian.Uint16(buf[18:20])
	h.Entry = binary.LittleEndian.Uint64(buf[24:32])
	h.ProgramHeaderOffset = binary.LittleEndian.Uint64(buf[32:40])
	h.ProgramHeaderSize = binary.LittleEndian.Uint16(buf[54:56])
	h.ProgramHeaderCount = binary.LittleEndian.Uint16(buf[56:58])
	return h, nil
}

// ProgramHeader is the subset of Elf64_Phdr the loader needs.
type ProgramHeader struct {
	Type     uint32
	Offset   uint64
	VAddr    uint64
	FileSize uint64
	MemSize  uint64
}

func parseProgramHeader(buf []byte) ProgramHeader {
	return ProgramHeader{
		Type:     binary.LittleEndian.Uint32(buf[0:4]),
		Offset:   binary.LittleEndian.Uint64(buf[8:16]),
		VAddr:    binary.LittleEndian.Uint64(buf[16:24]),
		FileSize: binary.LittleEndian.Uint64(buf[32:40]),
		MemSize:  binary.LittleEndian.Uint64(buf[40:48]),
	}
}

func programHeaders(buf []byte, h Header) ([]ProgramHeader, error) {
	if h.ProgramHeaderCount != 0 && uint64(h.ProgramHeaderSize) < phdrSize {
		return nil, ErrOutOfBounds
	}
	count := uint64(h.ProgramHeaderCount)
	stride := uint64(h.ProgramHeaderSize)
	end := h.ProgramHeaderOffset + count*stride
	if end < h.ProgramHeaderOffset || end > uint64(len(buf)) {
		return nil, ErrOutOfBounds
	}
	headers := make([]ProgramHeader, 0, count)
	for i := uint64(0); i < count; i++ {
		off := h.ProgramHeaderOffset + i*stride
		headers = append(headers, parseProgramHeader(buf[off:off+phdrSize]))
	}
	return headers, nil
}

// Rela is a single Elf64_Rela entry.
type Rela struct {
	Offset uint64
	Info   uint64
	Addend int64
}

func parseRela(buf []byte) Rela {
	return Rela{
		Offset: binary.LittleEndian.Uint64(buf[0:8]),
		Info:   binary.LittleEndian.Uint64(buf[8:16]),
		Addend: int64(binary.LittleEndian.Uint64(buf[16:24])),
	}
}

// Image is a parsed and validated executable: a header plus its loadable
// and dynamic segments, ready for Layout and BuildImage.
type Image struct {
	Header   Header
	Segments []ProgramHeader // PT_LOAD, in file order
	Dynamic  *ProgramHeader  // PT_DYNAMIC, if present
}

// Parse validates buf as a freestanding-loadable ELF64 executable: 64-bit,
// not a shared object, no PT_DYNAMIC library dependencies, and at least one
// PT_LOAD segment. It never allocates memory or touches a page table.
func Parse(buf []byte) (*Image, error) {
	if len(buf) == 0 {
		return nil, ErrTruncated
	}
	h, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Type == typeShared {
		return nil, ErrIsLibrary
	}
	if h.Type != typeExec {
		return nil, ErrUnsupportedType
	}

	headers, err := programHeaders(buf, h)
	if err != nil {
		return nil, err
	}

	img := &Image{Header: h}
	for i := range headers {
		switch headers[i].Type {
		case segmentLoad:
			img.Segments = append(img.Segments, headers[i])
		case segmentDynamic:
			if img.Dynamic == nil {
				img.Dynamic = &headers[i]
			}
		}
	}
	if len(img.Segments) == 0 {
		return nil, ErrNoLoadableSegment
	}

	if img.Dynamic != nil {
		needed, err := hasNeededEntry(buf, *img.Dynamic)
		if err != nil {
			return nil, err
		}
		if needed {
			return nil, ErrLibraryDependency
		}
	}

	return img, nil
}

// hasNeededEntry scans a PT_DYNAMIC segment's raw file bytes for a
// DT_NEEDED tag, rejecting any executable that depends on a shared library
// this loader has no mechanism to resolve.
func hasNeededEntry(buf []byte, dyn ProgramHeader) (bool, error) {
	if dyn.Offset+dyn.FileSize < dyn.Offset || dyn.Offset+dyn.FileSize > uint64(len(buf)) {
		return false, ErrOutOfBounds
	}
	table := buf[dyn.Offset : dyn.Offset+dyn.FileSize]
	for off := uint64(0); off+dynSize <= uint64(len(table)); off += dynSize {
		tag := binary.LittleEndian.Uint64(table[off : off+8])
		if tag == dynTagNeeded {
			return true, nil
		}
	}
	return false, nil
}

// alignUp rounds n up to the nearest multiple of align, a power of two.
func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// Layout computes the total size of the contiguous memory region the
// image's PT_LOAD segments need, rounded up to a page boundary. vstart is
// always 0 for this loader's images (position-independent, prelinked
// against address zero).
func Layout(img *Image, pageSize uint64) (uint64, error) {
	var maxEnd uint64
	for _, seg := range img.Segments {
		if seg.VAddr > ^uint64(0)>>1 || seg.MemSize > ^uint64(0)>>1 {
			return 0, ErrOverflow
		}
		end := seg.VAddr + seg.MemSize
		if end < seg.VAddr {
			return 0, ErrOverflow
		}
		if end > maxEnd {
			maxEnd = end
		}
	}
	if maxEnd == 0 {
		return 0, ErrNoLoadableSegment
	}
	return alignUp(maxEnd, pageSize), nil
}

// BuildImage assembles the flat in-memory image BuildImage zeroes and
// copies each PT_LOAD segment's file bytes into, bounds-checking both the
// source file range and the destination image range.
func BuildImage(buf []byte, img *Image, totalSize uint64) ([]byte, error) {
	image := make([]byte, totalSize)
	for _, seg := range img.Segments {
		if seg.Offset+seg.FileSize < seg.Offset || seg.Offset+seg.FileSize > uint64(len(buf)) {
			return nil, ErrOutOfBounds
		}
		if seg.VAddr+seg.FileSize < seg.VAddr || seg.VAddr+seg.FileSize > totalSize {
			return nil, ErrOutOfBounds
		}
		copy(image[seg.VAddr:seg.VAddr+seg.FileSize], buf[seg.Offset:seg.Offset+seg.FileSize])
	}
	return image, nil
}

// Relocate walks the image's DT_RELA table, already copied into image by
// BuildImage, and applies every RELATIVE relocation in place. base is the
// virtual address the image is ultimately mapped at (USER_ENTRY); since
// vstart is always 0, a relocated value is simply base+addend.
func Relocate(image []byte, img *Image, base uint64) error {
	if img.Dynamic == nil {
		return nil
	}
	dyn := *img.Dynamic
	if dyn.VAddr+dyn.FileSize < dyn.VAddr || dyn.VAddr+dyn.FileSize > uint64(len(image)) {
		return ErrOutOfBounds
	}
	table := image[dyn.VAddr : dyn.VAddr+dyn.FileSize]

	var relaOffset, relaTableSize uint64
	for off := uint64(0); off+dynSize <= uint64(len(table)); off += dynSize {
		tag := binary.LittleEndian.Uint64(table[off : off+8])
		val := binary.LittleEndian.Uint64(table[off+8 : off+16])
		switch tag {
		case dynTagRela:
			relaOffset = val
		case dynTagRelaSize:
			relaTableSize = val
		}
	}
	if relaOffset == 0 || relaTableSize == 0 {
		return nil
	}
	if relaOffset+relaTableSize < relaOffset || relaOffset+relaTableSize > uint64(len(image)) {
		return ErrOutOfBounds
	}

	relocs := image[relaOffset : relaOffset+relaTableSize]
	for off := uint64(0); off+relaSize <= uint64(len(relocs)); off += relaSize {
		r := parseRela(relocs[off : off+relaSize])
		if r.Offset+8 < r.Offset || r.Offset+8 > uint64(len(image)) {
			return ErrOutOfBounds
		}
		switch r.Info & 0xF {
		case RelocationRelative:
			value := uint64(int64(base) + r.Addend)
			binary.LittleEndian.PutUint64(image[r.Offset:r.Offset+8], value)
		case RelocationGlobalDat:
			// No symbol table to resolve against; this loader only ever
			// runs prelinked, self-contained images.
		default:
			return ErrUnsupportedRelocation
		}
	}
	return nil
}

// EntryPoint computes the final, mapped entry address and rejects one that
// falls outside the loaded image.
func EntryPoint(img *Image, base, totalSize uint64) (uint64, error) {
	if img.Header.Entry > ^uint64(0)>>1 {
		return 0, ErrOverflow
	}
	entry := base + img.Header.Entry
	if entry < base || entry >= base+totalSize {
		return 0, ErrEntryOutOfBounds
	}
	return entry, nil
}
