package vfs

import (
	"errno"
	"ksync"
)

// maxSymlinkDepth bounds symlink resolution so a cycle (or a very long
// chain) turns into an error instead of an infinite loop.
const maxSymlinkDepth = 40

// node is a single entry in the in-memory filesystem tree. Only the
// fields relevant to its Kind are meaningful: a file's data, a
// directory's children, or a symlink's target.
type node struct {
	lock     ksync.RawTicketLock
	kind     NodeKind
	meta     Metadata
	data     []byte
	children map[string]*node
	target   string
}

func newNode(kind NodeKind) *node {
	return &node{kind: kind, meta: NewMetadata(kind)}
}

func newDirNode() *node {
	n := newNode(KindDirectory)
	n.children = make(map[string]*node)
	return n
}

// Tree is the kernel's in-memory filesystem: one root directory holding
// ordinary files, subdirectories and symlinks. There is no backing
// store; everything is allocated out of the kernel heap and lost on
// reboot.
type Tree struct {
	root *node
}

// NewTree returns an empty tree containing only the root directory.
func NewTree() *Tree {
	return &Tree{root: newDirNode()}
}

func (t *Tree) resolve(components []string, depth int) (*node, error) {
	if depth > maxSymlinkDepth {
		return nil, errno.TooManyLinks
	}
	current := t.root
	for i, part := range components {
		if current.kind != KindDirectory {
			return nil, errno.NotADirectory
		}
		current.lock.Lock()
		next, ok := current.children[part]
		current.lock.Unlock()
		if !ok {
			return nil, errno.FileNotFound
		}
		if next.kind == KindSymlink {
			target := next.target
			targetComponents := splitPath(target)
			resolved, err := t.resolve(targetComponents, depth+1)
			if err != nil {
				return nil, err
			}
			next = resolved
		}
		if i == len(components)-1 {
			return next, nil
		}
		current = next
	}
	return current, nil
}

// Lookup resolves path to its node, following symlinks.
func (t *Tree) Lookup(path string) (*node, error) {
	return t.resolve(splitPath(path), 0)
}

func (t *Tree) parentOf(components []string) (*node, string, error) {
	if len(components) == 0 {
		return nil, "", errno.InvalidArgument
	}
	parent, err := t.resolve(components[:len(components)-1], 0)
	if err != nil {
		return nil, "", err
	}
	if parent.kind != KindDirectory {
		return nil, "", errno.NotADirectory
	}
	return parent, components[len(components)-1], nil
}

// Mkdir creates an empty directory at path; the parent must already
// exist.
func (t *Tree) Mkdir(path string) error {
	components := splitPath(path)
	parent, name, err := t.parentOf(components)
	if err != nil {
		return err
	}
	parent.lock.Lock()
	defer parent.lock.Unlock()
	if _, exists := parent.children[name]; exists {
		return errno.FileExists
	}
	parent.children[name] = newDirNode()
	return nil
}

// Symlink creates a symlink at path pointing at target (not itself
// resolved at creation time).
func (t *Tree) Symlink(path, target string) error {
	components := splitPath(path)
	parent, name, err := t.parentOf(components)
	if err != nil {
		return err
	}
	parent.lock.Lock()
	defer parent.lock.Unlock()
	if _, exists := parent.children[name]; exists {
		return errno.FileExists
	}
	n := newNode(KindSymlink)
	n.target = target
	parent.children[name] = n
	return nil
}

// Create makes a new empty regular file at path, or returns
// errno.FileExists if something is already there and exclusive was
// requested.
func (t *Tree) create(path string, exclusive bool) (*node, error) {
	components := splitPath(path)
	parent, name, err := t.parentOf(components)
	if err != nil {
		return nil, err
	}
	parent.lock.Lock()
	defer parent.lock.Unlock()
	if existing, exists := parent.children[name]; exists {
		if exclusive {
			return nil, errno.FileExists
		}
		return existing, nil
	}
	n := newNode(KindFile)
	parent.children[name] = n
	return n, nil
}

// Open resolves path under opts, creating or truncating a regular file
// as requested, and returns a descriptor Interface positioned at the
// start of the file.
func (t *Tree) Open(path string, opts OpenOptions) (Interface, error) {
	var n *node
	var err error
	if opts&OCreate != 0 {
		n, err = t.create(path, opts&OExclusive != 0)
	} else {
		n, err = t.Lookup(path)
	}
	if err != nil {
		return nil, err
	}
	if n.kind == KindDirectory {
		if opts.writable() {
			return nil, errno.IsADirectory
		}
		if opts&ODirectory == 0 {
			return nil, errno.IsADirectory
		}
	}
	if opts&OTruncate != 0 && n.kind == KindFile {
		n.lock.Lock()
		n.data = n.data[:0]
		n.lock.Unlock()
	}
	offset := int64(0)
	if opts&OAppend != 0 {
		n.lock.Lock()
		offset = int64(len(n.data))
		n.lock.Unlock()
	}
	return &FileHandle{node: n, offset: offset, opts: opts}, nil
}

// FileHandle is an open regular-file descriptor: a node plus this
// particular open's cursor and access mode.
type FileHandle struct {
	NopInterface
	node   *node
	offset int64
	opts   OpenOptions
}

func (f *FileHandle) Read(buf []byte) (int, error) {
	if !f.opts.readable() {
		return 0, errno.BadFileDescriptor
	}
	f.node.lock.Lock()
	defer f.node.lock.Unlock()
	if f.offset >= int64(len(f.node.data)) {
		return 0, nil
	}
	n := copy(buf, f.node.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *FileHandle) Write(buf []byte) (int, error) {
	if !f.opts.writable() {
		return 0, errno.BadFileDescriptor
	}
	f.node.lock.Lock()
	defer f.node.lock.Unlock()
	end := f.offset + int64(len(buf))
	if end > int64(len(f.node.data)) {
		grown := make([]byte, end)
		copy(grown, f.node.data)
		f.node.data = grown
	}
	n := copy(f.node.data[f.offset:end], buf)
	f.offset += int64(n)
	return n, nil
}

func (f *FileHandle) Seek(from SeekFrom) (int64, error) {
	f.node.lock.Lock()
	size := int64(len(f.node.data))
	f.node.lock.Unlock()

	var base int64
	switch from.Whence {
	case SeekStart:
		base = 0
	case SeekCurrent:
		base = f.offset
	case SeekEnd:
		base = size
	default:
		return 0, errno.InvalidArgument
	}
	newOffset := base + from.Offset
	if newOffset < 0 {
		return 0, errno.InvalidArgument
	}
	f.offset = newOffset
	return f.offset, nil
}

func (f *FileHandle) Fstat() (State, error) {
	f.node.lock.Lock()
	defer f.node.lock.Unlock()
	return State{Size: int64(len(f.node.data))}, nil
}

func (f *FileHandle) Metadata() (Metadata, error) {
	f.node.lock.Lock()
	defer f.node.lock.Unlock()
	m := f.node.meta
	m.Size = int64(len(f.node.data))
	return m, nil
}

var _ Interface = (*FileHandle)(nil)
