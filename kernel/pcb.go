// pcb.go - process control block: the per-process kernel record.
//
// Grounded on original_source/c/pcb.c and h/pcb.h, re-expressed without
// raw C structs: the context frame (stack_pointer, args, return_value)
// becomes explicit Go fields plus a pair of channels that stand in for the
// hardware trampoline (see ctsw.go).

package kernel

import "time"

// ProcState is one of the four states a PCB can occupy.
type ProcState int

const (
	StateStopped ProcState = iota
	StateReady
	StateRunning
	StateBlocked
)

func (s ProcState) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateReady:
		return "READY"
	case StateRunning:
		return "RUNNING"
	case StateBlocked:
		return "BLOCKED"
	default:
		return "UNKNOWN"
	}
}

// BlockKind names the reason a PCB is parked on some owner's blocking
// queue. A PCB can be on at most one such queue at a time; blockingOwner
// and blockingKind together identify it uniquely, which is what lets
// cleanup cross-remove a blocked peer in O(1).
type BlockKind int

const (
	BlockNone BlockKind = iota
	BlockSender
	BlockReceiver
	BlockWaiting
	BlockRecvAny
	BlockSleep
	BlockIO // parked inside a device's own pending-task queue (§4.9)
)

const (
	// TableSize bounds the number of live processes. Kept small and
	// fixed, as in the original fixed-capacity pcb table.
	TableSize = 32

	// NumSignals is the width of the pending/handler bitmap (one bit
	// per int in the original C layout).
	NumSignals = 32

	// NumFDs is the size of each process's open-file-descriptor table.
	NumFDs = 8

	// MinStackBytes is the smallest stack create() will accept.
	MinStackBytes = 4096
)

// listNode is the intrusive prev/next pair every PCB carries for
// whichever list currently holds it. A PCB is a member of at most one
// list at a time: the global ready list, the global stopped list, the
// sleep delta-list, or exactly one owner's blocking list.
type listNode struct {
	prev, next *PCB
}

// PCB is the process control block described in spec.md §3. Every
// non-hardware field from the specification has a direct counterpart
// here; the stack_region/stack_pointer pair is the one exception,
// replaced by the goroutine + channel handoff in ctsw.go.
type PCB struct {
	Pid   int
	State ProcState

	slot int // (Pid-1) mod TableSize; fixed for the PCB's lifetime of the slot

	// args/return_value: the syscall argument/result surface, refreshed
	// on every kernel<->process crossing.
	args   [MaxSyscallArgs]int64
	result int64

	cpuTime int // ticks accumulated while RUNNING at a timer interrupt

	signalTable    [NumSignals]SignalHandler
	signalsPending uint32
	signalsEnabled bool

	fdTable [NumFDs]*openFile

	// Blocking state: set together, identifying which owner's queue (if
	// any) this PCB is parked on and why.
	blockingOwner *PCB
	blockingKind  BlockKind

	// This PCB's own three queues: peers blocked wanting to send to,
	// receive from, or wait on termination of, this process.
	senderHead, senderTail     *PCB
	receiverHead, receiverTail *PCB
	waiterHead, waiterTail     *PCB

	listNode // link used by whichever single queue currently owns this PCB

	// sleep delta-list bookkeeping (sleep.go)
	sleepDelta  int64 // ticks remaining past the previous list entry
	sleepOrig   int64 // the value originally requested, for wake-early reporting
	sleepWokeAt time.Time

	// Rendezvous bookkeeping (msg.go): the arena region this process
	// offered as a sender, or wants filled as a receiver, recorded at
	// block time so the other side of the eventual pairing can find it.
	sendBufPtr, sendBufLen    uint32
	recvBufPtr, recvBufLen    uint32
	recvFromPidPtr            uint32 // arena address for RecvAny's out-param, or 0

	// Goroutine-per-process handoff (ctsw.go).
	entry   EntryFunc
	resume  chan resumeMsg
	started bool

	// trapPending/pendingEvent cover the gap between a timer/keyboard
	// preemption and the trap the preempted goroutine eventually sends:
	// the goroutine keeps running (Go has no way to actually suspend it),
	// so trapPending marks that this PCB is owed a receive on its own
	// trapEvent before it may be sent another resumeMsg, and pendingEvent
	// holds that trap if it arrived while the dispatcher's attention was
	// on a different pid (see ctsw.go's awaitTrap/stashForeignTrap).
	trapPending  bool
	pendingEvent *trapEvent

	// pendingHandler/pendingHandlerOut stash a SIGHANDLER call's new and
	// old handler closures across the trap boundary: function values
	// can't ride in the int64 syscall argument slots, so the caller
	// writes pendingHandler before trapping and the kernel hands the
	// previous handler back through pendingHandlerOut before resuming it
	// (safe without locking: the owning goroutine is blocked on resume
	// for the whole exchange).
	pendingHandler    SignalHandler
	pendingHandlerOut SignalHandler
}

// MaxSyscallArgs bounds the argument slots exposed to a syscall handler;
// slot 0 holds the request id per §4.3, the rest (§4.4's "args" view)
// follow it.
const MaxSyscallArgs = 5

// EntryFunc is a user process's entry point. ctx is the process's only
// legal way to reach the kernel: yield, syscalls, blocking calls.
type EntryFunc func(ctx *ProcContext)

func newPCB(slot int) *PCB {
	p := &PCB{slot: slot, Pid: slot + 1, State: StateStopped}
	return p
}

// reset clears a PCB's contents to the all-zero state a freshly stopped
// slot must present, preserving only pid/slot which are managed by the
// table on reuse.
func (p *PCB) reset() {
	pid, slot := p.Pid, p.slot
	*p = PCB{Pid: pid, slot: slot, State: StateStopped}
}
