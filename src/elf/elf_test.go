package elf

import (
	"encoding/binary"
	"testing"
)

// Load (load.go) switches CR3 and writes through real page tables; it's
// exercised by booting an actual image, not here. Everything below it —
// parsing, layout, segment copy, relocation — is pure and tested directly.

const pageSize = 0x1000

func putHeader(buf []byte, etype uint16, entry uint64, phoff uint64, phnum uint16) {
	buf[0], buf[1], buf[2], buf[3] = 0x7f, 'E', 'L', 'F'
	buf[4] = class64
	binary.LittleEndian.PutUint16(buf[16:18], etype)
	binary.LittleEndian.PutUint16(buf[18:20], 0x3e) // EM_X86_64
	binary.LittleEndian.PutUint64(buf[24:32], entry)
	binary.LittleEndian.PutUint64(buf[32:40], phoff)
	binary.LittleEndian.PutUint16(buf[54:56], phdrSize)
	binary.LittleEndian.PutUint16(buf[56:58], phnum)
}

func putProgramHeader(buf []byte, off int, ptype uint32, foff, vaddr, filesz, memsz uint64) {
	b := buf[off : off+phdrSize]
	binary.LittleEndian.PutUint32(b[0:4], ptype)
	binary.LittleEndian.PutUint64(b[8:16], foff)
	binary.LittleEndian.PutUint64(b[16:24], vaddr)
	binary.LittleEndian.PutUint64(b[32:40], filesz)
	binary.LittleEndian.PutUint64(b[40:48], memsz)
}

// buildSimple constructs a one-segment executable: header, one program
// header, then codeLen bytes of "code" starting right after the header.
func buildSimple(codeLen int, entry uint64) []byte {
	phoff := uint64(ehdrSize)
	dataOff := phoff + phdrSize
	buf := make([]byte, int(dataOff)+codeLen)
	putHeader(buf, typeExec, entry, phoff, 1)
	putProgramHeader(buf, int(phoff), segmentLoad, dataOff, 0, uint64(codeLen), uint64(codeLen))
	for i := 0; i < codeLen; i++ {
		buf[int(dataOff)+i] = byte(0xC0 + i)
	}
	return buf
}

func TestParseRejectsEmptyFile(t *testing.T) {
	if _, err := Parse(nil); err != ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestParseRejectsTruncatedHeader(t *testing.T) {
	if _, err := Parse(make([]byte, 10)); err != ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	buf := buildSimple(4, 0)
	buf[1] = 'X'
	if _, err := Parse(buf); err != ErrBadMagic {
		t.Fatalf("got %v, want ErrBadMagic", err)
	}
}

func TestParseRejectsNon64Bit(t *testing.T) {
	buf := buildSimple(4, 0)
	buf[4] = 1 // ELFCLASS32
	if _, err := Parse(buf); err != ErrNot64Bit {
		t.Fatalf("got %v, want ErrNot64Bit", err)
	}
}

func TestParseRejectsSharedObject(t *testing.T) {
	buf := buildSimple(4, 0)
	binary.LittleEndian.PutUint16(buf[16:18], typeShared)
	if _, err := Parse(buf); err != ErrIsLibrary {
		t.Fatalf("got %v, want ErrIsLibrary", err)
	}
}

func TestParseRejectsNoLoadSegment(t *testing.T) {
	phoff := uint64(ehdrSize)
	buf := make([]byte, int(phoff)+phdrSize)
	putHeader(buf, typeExec, 0, phoff, 1)
	putProgramHeader(buf, int(phoff), segmentDynamic, phoff, 0, 0, 0)
	if _, err := Parse(buf); err != ErrNoLoadableSegment {
		t.Fatalf("got %v, want ErrNoLoadableSegment", err)
	}
}

func TestParseAcceptsSimpleExecutable(t *testing.T) {
	buf := buildSimple(16, 4)
	img, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(img.Segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(img.Segments))
	}
}

func TestParseRejectsNeededLibrary(t *testing.T) {
	phoff := uint64(ehdrSize)
	dynOff := phoff + 2*phdrSize
	dynFilesz := uint64(2 * dynSize) // one DT_NEEDED entry + terminator
	buf := make([]byte, int(dynOff+dynFilesz))
	putHeader(buf, typeExec, 0, phoff, 2)
	putProgramHeader(buf, int(phoff), segmentLoad, dynOff, 0, dynFilesz, dynFilesz)
	putProgramHeader(buf, int(phoff)+phdrSize, segmentDynamic, dynOff, 0, dynFilesz, dynFilesz)
	binary.LittleEndian.PutUint64(buf[dynOff:dynOff+8], dynTagNeeded)
	binary.LittleEndian.PutUint64(buf[dynOff+8:dynOff+16], 0)
	if _, err := Parse(buf); err != ErrLibraryDependency {
		t.Fatalf("got %v, want ErrLibraryDependency", err)
	}
}

func TestLayoutRoundsUpToPageSize(t *testing.T) {
	buf := buildSimple(16, 0)
	img, _ := Parse(buf)
	size, err := Layout(img, pageSize)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if size != pageSize {
		t.Fatalf("size = %#x, want %#x", size, pageSize)
	}
}

func TestLayoutRejectsOverflowingSegment(t *testing.T) {
	img := &Image{Segments: []ProgramHeader{{VAddr: ^uint64(0), MemSize: 2}}}
	if _, err := Layout(img, pageSize); err != ErrOverflow {
		t.Fatalf("got %v, want ErrOverflow", err)
	}
}

func TestBuildImageCopiesSegmentBytes(t *testing.T) {
	buf := buildSimple(16, 0)
	img, _ := Parse(buf)
	size, _ := Layout(img, pageSize)
	image, err := BuildImage(buf, img, size)
	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}
	if len(image) != int(size) {
		t.Fatalf("image size = %d, want %d", len(image), size)
	}
	for i := 0; i < 16; i++ {
		if image[i] != byte(0xC0+i) {
			t.Fatalf("image[%d] = %#x, want %#x", i, image[i], 0xC0+i)
		}
	}
	for i := 16; i < len(image); i++ {
		if image[i] != 0 {
			t.Fatalf("image[%d] = %#x, want 0 (zeroed tail)", i, image[i])
		}
	}
}

func TestBuildImageRejectsOutOfBoundsFileRange(t *testing.T) {
	img := &Image{Segments: []ProgramHeader{{Offset: 100, FileSize: 50, VAddr: 0, MemSize: 50}}}
	if _, err := BuildImage(make([]byte, 10), img, 4096); err != ErrOutOfBounds {
		t.Fatalf("got %v, want ErrOutOfBounds", err)
	}
}

// buildWithRelocation builds a one-segment image whose PT_DYNAMIC table
// (embedded inside that same segment, as a real prelinked image would lay
// it out) points at a single RELATIVE relocation targeting the first 8
// bytes of the image.
func buildWithRelocation(addend int64, relocType uint64) ([]byte, *Image) {
	phoff := uint64(ehdrSize)
	// layout within the single segment: [0:8) relocation target,
	// [8:32) rela entry, [32:80) dynamic tags (DT_RELA, DT_RELASZ, DT_NULL)
	relaVAddr := uint64(8)
	dynVAddr := relaVAddr + relaSize
	segLen := dynVAddr + 3*dynSize
	dataOff := phoff + 2*phdrSize

	buf := make([]byte, int(dataOff+segLen))
	putHeader(buf, typeExec, 0, phoff, 2)
	putProgramHeader(buf, int(phoff), segmentLoad, dataOff, 0, segLen, segLen)
	putProgramHeader(buf, int(phoff)+phdrSize, segmentDynamic, dataOff+dynVAddr, dynVAddr, 3*dynSize, 3*dynSize)

	seg := buf[dataOff:]
	binary.LittleEndian.PutUint64(seg[relaVAddr:relaVAddr+8], 0) // r_offset = 0
	binary.LittleEndian.PutUint64(seg[relaVAddr+8:relaVAddr+16], relocType)
	binary.LittleEndian.PutUint64(seg[relaVAddr+16:relaVAddr+24], uint64(addend))

	dyn := seg[dynVAddr:]
	binary.LittleEndian.PutUint64(dyn[0:8], dynTagRela)
	binary.LittleEndian.PutUint64(dyn[8:16], relaVAddr)
	binary.LittleEndian.PutUint64(dyn[16:24], dynTagRelaSize)
	binary.LittleEndian.PutUint64(dyn[24:32], relaSize)

	img, err := Parse(buf)
	if err != nil {
		panic(err)
	}
	return buf, img
}

func TestRelocateAppliesRelative(t *testing.T) {
	buf, img := buildWithRelocation(0x10, RelocationRelative)
	size, err := Layout(img, pageSize)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	image, err := BuildImage(buf, img, size)
	if err != nil {
		t.Fatalf("BuildImage: %v", err)
	}
	const base = 0x20000000000
	if err := Relocate(image, img, base); err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	got := binary.LittleEndian.Uint64(image[0:8])
	if got != base+0x10 {
		t.Fatalf("relocated value = %#x, want %#x", got, base+0x10)
	}
}

func TestRelocateSkipsGlobalDat(t *testing.T) {
	buf, img := buildWithRelocation(0, RelocationGlobalDat)
	size, _ := Layout(img, pageSize)
	image, _ := BuildImage(buf, img, size)
	original := append([]byte(nil), image[0:8]...)
	if err := Relocate(image, img, 0x20000000000); err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	for i := range original {
		if image[i] != original[i] {
			t.Fatalf("GLOB_DAT relocation must not modify the image")
		}
	}
}

func TestRelocateRejectsUnsupportedType(t *testing.T) {
	buf, img := buildWithRelocation(0, 0xF)
	size, _ := Layout(img, pageSize)
	image, _ := BuildImage(buf, img, size)
	if err := Relocate(image, img, 0); err != ErrUnsupportedRelocation {
		t.Fatalf("got %v, want ErrUnsupportedRelocation", err)
	}
}

func TestEntryPointRejectsOutOfBounds(t *testing.T) {
	img := &Image{Header: Header{Entry: 0x10000}}
	if _, err := EntryPoint(img, 0x1000, 0x2000); err != ErrEntryOutOfBounds {
		t.Fatalf("got %v, want ErrEntryOutOfBounds", err)
	}
}

func TestEntryPointComputesMappedAddress(t *testing.T) {
	img := &Image{Header: Header{Entry: 4}}
	got, err := EntryPoint(img, 0x20000000000, 0x1000)
	if err != nil {
		t.Fatalf("EntryPoint: %v", err)
	}
	if got != 0x20000000004 {
		t.Fatalf("entry = %#x, want %#x", got, 0x20000000004)
	}
}
