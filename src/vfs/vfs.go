// Package vfs defines the kernel's minimal virtual-filesystem surface:
// the descriptor numbering convention, the Interface every open file or
// device implements, and the in-memory node tree that backs ordinary
// files, directories and symlinks. It intentionally knows nothing about
// tasks or scheduling — descriptor-table lookups that need to reach a
// running task live in invoke, which imports both vfs and sched.
package vfs

import (
	"errno"
)

// Descriptor is a per-task file-descriptor number.
type Descriptor int32

// The three descriptors every task is born with.
const (
	StandardInput  Descriptor = 0
	StandardOutput Descriptor = 1
	StandardError  Descriptor = 2
)

// Whence selects what a Seek offset is relative to, matching the
// standard io.Seek* constants so callers can use either interchangeably.
type Whence int

const (
	SeekStart   Whence = 0
	SeekCurrent Whence = 1
	SeekEnd     Whence = 2
)

// SeekFrom is a seek request: Offset interpreted relative to Whence.
type SeekFrom struct {
	Whence Whence
	Offset int64
}

// State is the subset of an open file's state that Fstat reports:
// just enough for programs that poll a descriptor's size.
type State struct {
	Size int64
}

// NodeKind identifies what sort of thing a tree Node represents.
type NodeKind int

const (
	KindFile NodeKind = iota
	KindDirectory
	KindSymlink
	KindCharDevice
)

// Permission holds the nine classic owner/group/other rwx bits, encoded
// exactly like a Unix mode's low bits so octal literals read naturally.
type Permission uint16

const (
	OwnerRead  Permission = 0o400
	OwnerWrite Permission = 0o200
	OwnerExec  Permission = 0o100
	GroupRead  Permission = 0o040
	GroupWrite Permission = 0o020
	GroupExec  Permission = 0o010
	OtherRead  Permission = 0o004
	OtherWrite Permission = 0o002
	OtherExec  Permission = 0o001

	DefaultFilePermission = OwnerRead | OwnerWrite | GroupRead | OtherRead // 0644
)

func (p Permission) CanRead() bool  { return p&OwnerRead != 0 }
func (p Permission) CanWrite() bool { return p&OwnerWrite != 0 }
func (p Permission) CanExec() bool  { return p&OwnerExec != 0 }

// Metadata mirrors the handful of stat(2) fields the kernel actually
// tracks; timestamps are left at zero until a real clock is wired in.
type Metadata struct {
	Permission     Permission
	UserID         uint32
	GroupID        uint32
	AccessTime     int64
	ModifiedTime   int64
	ChangeTime     int64
	Kind           NodeKind
	Size           int64
}

// NewMetadata returns Metadata for a freshly created node of kind, with
// the default 0644 permission.
func NewMetadata(kind NodeKind) Metadata {
	return Metadata{Permission: DefaultFilePermission, Kind: kind}
}

// OpenOptions are the flags a descriptor is opened with, valued to match
// the O_* constants a Linux-ABI open(2) call passes in.
type OpenOptions uint32

const (
	OReadOnly  OpenOptions = 0o0
	OWriteOnly OpenOptions = 0o1
	OReadWrite OpenOptions = 0o2
	OCreate    OpenOptions = 0o100
	OExclusive OpenOptions = 0o200
	OTruncate  OpenOptions = 0o1000
	OAppend    OpenOptions = 0o2000
	ODirectory OpenOptions = 0o200000
)

func (o OpenOptions) writable() bool {
	return o&0o3 == OWriteOnly || o&0o3 == OReadWrite
}

func (o OpenOptions) readable() bool {
	return o&0o3 == OReadOnly || o&0o3 == OReadWrite
}

// Interface is whatever a descriptor number actually refers to: a
// console, a pipe, an in-memory file, a future device. Every method
// defaults to errno.NotImplemented via NopInterface so a concrete type
// only has to override what it supports — Go's substitute for the
// original's default trait methods.
type Interface interface {
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	Seek(from SeekFrom) (int64, error)
	Fstat() (State, error)
	Metadata() (Metadata, error)
}

// NopInterface implements Interface with every method returning
// errno.NotImplemented. Concrete sinks embed it and override the
// subset of methods that make sense for them.
type NopInterface struct{}

func (NopInterface) Read([]byte) (int, error)          { return 0, errno.NotImplemented }
func (NopInterface) Write([]byte) (int, error)          { return 0, errno.NotImplemented }
func (NopInterface) Seek(SeekFrom) (int64, error)       { return 0, errno.NotImplemented }
func (NopInterface) Fstat() (State, error)              { return State{}, errno.NotImplemented }
func (NopInterface) Metadata() (Metadata, error)        { return Metadata{}, errno.NotImplemented }
