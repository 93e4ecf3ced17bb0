// Command kernel is the freestanding entry point: the boot loader hands
// control here with paging already on and a stack already live, and this
// function brings up every subsystem in dependency order before handing
// off to the first user task. It never returns.
package main

import (
	"addr"
	"arch"
	"buddy"
	"console"
	"consts"
	"cpu"
	"elf"
	_ "invoke"
	"klog"
	"paging"
	"sched"
	"vfs"
)

// romImage is the embedded /bin/demo payload, the one program this kernel
// ships able to run without a real disk driver. A real build links this
// in (objcopy'd into a data section, or go:embed'd from the build's own
// output); left empty here, elf.Load simply rejects it as empty.
var romImage []byte

var root *vfs.Tree

func main() {
	console.SetDefault(console.NewSerial(0x3F8))
	klog.SetOutput(console.Writer{})
	klog.SetLevel(klog.Info)
	klog.Infof("- O L E A -")

	paging.SetKernelRootPageTable(addr.Physical(arch.ReadCR3()))

	heap := buddy.New(consts.BuddyOrder)
	heap.Init(0, consts.HeapSize)
	paging.SetFrameAllocator(paging.NewPageAllocator(heap))

	bootStack := sched.NewTaskStack()
	cpu.Init(uintptr(bootStack.InterruptTop()))
	cpu.InitIDT()
	cpu.InitPIC()
	cpu.InitPIT()
	cpu.EnableFeatures()
	cpu.InitSyscall()

	sched.Init(bootStack)

	root = vfs.NewTree()
	installRom(root, "/bin/demo", romImage)

	if _, err := sched.Spawn(sched.FuncAddress(createUser), sched.NormalPriority); err != nil {
		klog.Errorf("failed to spawn the application loader: %v.", err)
	}

	klog.Infof("scheduler starting.")
	arch.Sti()
	sched.Reschedule()

	klog.Infof("shutdown system.")
}

// installRom seeds the in-memory tree with a single read-only file, the
// closest this kernel comes to a boot-time initrd without a real disk
// driver behind it.
func installRom(tree *vfs.Tree, path string, data []byte) {
	io, err := tree.Open(path, vfs.OCreate|vfs.OWriteOnly)
	if err != nil {
		klog.Errorf("failed to seed %s: %v.", path, err)
		return
	}
	if _, err := io.Write(data); err != nil {
		klog.Errorf("failed to write %s: %v.", path, err)
	}
}

// createUser is the first user-facing task: it loads /bin/demo off the
// ROM tree and drops into it at ring 3. Mirrors the original's
// create_user, which does the same load-then-jump under a real disk.
func createUser() {
	klog.Infof("started application loader.")

	file, err := root.Open("/bin/demo", vfs.OReadOnly)
	if err != nil {
		klog.Errorf("application loader: open /bin/demo: %v.", err)
		sched.Exit()
	}

	entry, err := elf.Load(file, paging.Frames())
	if err != nil {
		klog.Errorf("application loader: %v.", err)
		sched.Exit()
	}

	cpu.JumpToUserLand(entry, uintptr(consts.UserEntry+consts.UserImageSize))
}
