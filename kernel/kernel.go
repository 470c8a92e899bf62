// kernel.go - top-level kernel object: owns the process table, the heap,
// the device vector, and the dispatcher loop (§4.2's kernel_main /
// original_source/c/kernel.c boot sequence), re-expressed as a Go value
// instead of a freestanding set of global C statics.

package kernel

import "time"

// Device ids, fixed and small like the original di_calls.c dispatch
// table; KEYBOARD is required by §4.9, BELL/CLIPBOARD are this repo's
// supplemental pseudo-devices (SPEC_FULL.md's Devices & Keyboard module).
const (
	DevKeyboard = iota
	DevBell
	DevClipboard
	NumDevices
)

// Kernel composes every piece of kernel state reachable from the
// dispatcher goroutine. Nothing here is safe for concurrent use from
// outside that goroutine; device ISR feeds (kbdFeed) are the one
// deliberate exception, since real keyboard interrupts arrive
// asynchronously from host input.
type Kernel struct {
	table *Table
	heap  *Heap

	events  chan trapEvent
	ticker  *time.Ticker
	kbdFeed chan byte

	devices [NumDevices]Device

	// pendingCreateEntry/Stack stash a CREATE call's entry closure across
	// the trap boundary, for the same reason pendingHandler does on a
	// PCB: the kernel is never reentrant, so exactly one process is ever
	// mid-trap at a time and a single staging field is race-free.
	pendingCreateEntry EntryFunc
	pendingCreateStack uint32

	tickPeriod time.Duration
}

// Config bundles the boot-time parameters original_source/c/kernel.c
// took as compile-time constants.
type Config struct {
	MemSize    uint32
	HoleLo     uint32
	HoleHi     uint32
	TickPeriod time.Duration
}

// New builds a Kernel with an empty process table and heap, ready for
// RegisterDevice calls before Boot.
func New(cfg Config) *Kernel {
	k := &Kernel{
		table:      NewTable(),
		heap:       NewHeap(cfg.MemSize, cfg.HoleLo, cfg.HoleHi),
		events:     make(chan trapEvent),
		kbdFeed:    make(chan byte, 16),
		tickPeriod: cfg.TickPeriod,
	}
	k.table.Idle().entry = func(ctx *ProcContext) {
		for {
			ctx.Yield()
		}
	}
	return k
}

// RegisterDevice installs dev at id, calling its Init. Must be called
// before Boot.
func (k *Kernel) RegisterDevice(id int, dev Device) {
	if err := dev.Init(); err != OK {
		panicf("device %d failed to initialize: %v", id, err)
	}
	k.devices[id] = dev
}

// Heap exposes the kernel allocator, e.g. for console frontends that
// need to copy bytes in/out of user buffers directly.
func (k *Kernel) Heap() *Heap { return k.heap }

// Table exposes the process table, e.g. for a monitor frontend showing
// live process state.
func (k *Kernel) Table() *Table { return k.table }

// FeedScancode is the host-facing half of the keyboard ISR: whatever
// reads host input (console.TerminalHost, the IPC "keys" command) calls
// this to deliver one
// raw scancode byte, which ContextSwitch will surface as a KEYBOARD
// interrupt on the next crossing.
func (k *Kernel) FeedScancode(sc byte) { k.kbdFeed <- sc }

// Boot creates the first process from entry/stackBytes and runs the
// dispatcher loop until every non-idle process has terminated, mirroring
// kernel.c's create-init-then-run-forever shape, minus the "forever": the
// simulated kernel exits once there is nothing left for it to do.
func (k *Kernel) Boot(entry EntryFunc, stackBytes uint32) int {
	k.ticker = time.NewTicker(k.tickPeriod)
	defer k.ticker.Stop()

	init, errno := k.create(entry, stackBytes)
	if errno != OK {
		panicf("kernel: failed to create init process: %v", errno)
	}
	k.table.AddPCBToQueue(init, StateReady)

	current := k.table.GetNextProc()
	for {
		if current == k.table.Idle() && len(k.table.AllLive()) == 0 {
			return 0
		}
		req := k.ContextSwitch(current)
		switch req.Reason {
		case ReasonTimer:
			if current != k.table.Idle() {
				current.cpuTime++
			}
			k.onTick()
			current = k.requeueAndAdvance(current)
		case ReasonKeyboard:
			k.keyboardISR(byte(req.Args[0]))
			current = k.requeueAndAdvance(current)
		case ReasonSyscall:
			current = k.dispatchSyscall(current, req.Args)
		default:
			panicf("kernel: unknown context-switch reason %v", req.Reason)
		}
	}
}

// requeueAndAdvance puts current back on READY (unless it's idle, which
// is never enqueued) and returns whichever PCB should run next.
func (k *Kernel) requeueAndAdvance(current *PCB) *PCB {
	if current != k.table.Idle() {
		k.table.AddPCBToQueue(current, StateReady)
	}
	return k.table.GetNextProc()
}
