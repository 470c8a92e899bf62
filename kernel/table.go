// table.go - the fixed-capacity process table and its two global queues
// (READY, STOPPED), grounded on original_source/c/pcb.c's
// pcb_table_init/get_next_proc/get_next_available_pcb/pid_to_proc/
// cleanup_proc.

package kernel

// Table owns every PCB slot, the READY and STOPPED queues, and the idle
// PCB. It is not safe for concurrent use; the kernel only ever touches it
// from the single dispatcher goroutine (§5: the kernel body is not
// reentrant).
type Table struct {
	slots [TableSize]PCB
	idle  PCB

	readyHead, readyTail     *PCB
	stoppedHead, stoppedTail *PCB

	// sleepHead is the head of the sleep delta-list (sleep.go).
	sleepHead *PCB

	// nextGeneration[i] is the k in "pid = slot + 1 + k*TableSize" for the
	// next allocation of slot i; monotonic, wraps safely on overflow.
	nextGeneration [TableSize]int
}

func (t *Table) readyQ() fifo   { return fifo{&t.readyHead, &t.readyTail} }
func (t *Table) stoppedQ() fifo { return fifo{&t.stoppedHead, &t.stoppedTail} }

// NewTable builds a process table with every slot on the STOPPED queue
// and a freestanding idle PCB (pid 0, never enqueued).
func NewTable() *Table {
	t := &Table{}
	for i := range t.slots {
		t.slots[i] = *newPCB(i)
		t.stoppedQ().pushBack(&t.slots[i])
	}
	t.idle = PCB{Pid: 0, State: StateReady, slot: -1, resume: make(chan resumeMsg), signalsEnabled: true}
	return t
}

// GetNextProc pops the head of READY and marks it RUNNING, or returns the
// idle PCB if READY is empty. The idle PCB is never itself linked into
// any queue.
func (t *Table) GetNextProc() *PCB {
	p := t.readyQ().popFront()
	if p == nil {
		p = &t.idle
	}
	p.State = StateRunning
	return p
}

// AddPCBToQueue links p onto the READY or STOPPED global queue and sets
// its state accordingly. The idle PCB must never be passed here.
func (t *Table) AddPCBToQueue(p *PCB, state ProcState) {
	if p == &t.idle {
		panicf("attempt to enqueue the idle process")
	}
	switch state {
	case StateReady:
		t.readyQ().pushBack(p)
	case StateStopped:
		t.stoppedQ().pushBack(p)
	default:
		panicf("AddPCBToQueue: state %v has no global queue", state)
	}
	p.State = state
}

// RemovePCBFromQueue detaches p from whichever global queue currently
// holds it (READY or STOPPED), without changing its State.
func (t *Table) RemovePCBFromQueue(p *PCB) {
	switch p.State {
	case StateReady:
		t.readyQ().remove(p)
	case StateStopped:
		t.stoppedQ().remove(p)
	}
}

// GetNextAvailablePCB dequeues a free slot from STOPPED, assigns it a
// fresh pid via the slot+1+k*TableSize scheme, and zeroes its contents.
// The PCB leaves in state READY (not yet linked on the READY queue), so
// PidToProc and AllLive see it as live at once. Returns nil if the table
// is full.
func (t *Table) GetNextAvailablePCB() *PCB {
	p := t.stoppedQ().popFront()
	if p == nil {
		return nil
	}
	slot := p.slot
	p.reset()
	p.State = StateReady
	gen := t.nextGeneration[slot]
	t.nextGeneration[slot] = gen + 1
	p.Pid = slot + gen*TableSize + 1
	if p.Pid <= 0 {
		// Overflow wrapped through zero/negative: fold back into the
		// valid positive range while preserving (pid-1) mod TableSize.
		p.Pid = slot + 1
		t.nextGeneration[slot] = 1
	}
	return p
}

// PidToProc resolves a pid to its owning PCB in O(1), returning nil if
// the slot is STOPPED or holds a different generation's pid.
func (t *Table) PidToProc(pid int) *PCB {
	if pid <= 0 {
		return nil
	}
	slot := (pid - 1) % TableSize
	p := &t.slots[slot]
	if p.State == StateStopped || p.Pid != pid {
		return nil
	}
	return p
}

// Idle returns the table's idle PCB (pid 0).
func (t *Table) Idle() *PCB { return &t.idle }

// AllLive returns every PCB currently not STOPPED, for CPUTIMES snapshots
// (pcb.c's get_all_proc_info).
func (t *Table) AllLive() []*PCB {
	var out []*PCB
	for i := range t.slots {
		if t.slots[i].State != StateStopped {
			out = append(out, &t.slots[i])
		}
	}
	return out
}

// CleanupProc releases a terminating PCB's resources and wakes every peer
// parked on its three blocking queues, per §4.2's cleanup_proc contract.
// SENDER/RECEIVER peers were blocked on a rendezvous with p and get
// SysPidDNE (their call fails: p is gone). WAITER peers called WAIT(p)
// and were waiting for exactly this moment, so they get SysPidOK: p
// terminating is their success condition, not a failure.
func (t *Table) CleanupProc(p *PCB) {
	for _, kind := range [...]BlockKind{BlockSender, BlockReceiver, BlockWaiting} {
		q := blockingQueueOf(p, kind)
		result := SysPidDNE.Int64()
		if kind == BlockWaiting {
			result = SysPidOK.Int64()
		}
		for {
			peer := q.popFront()
			if peer == nil {
				break
			}
			peer.blockingOwner = nil
			peer.blockingKind = BlockNone
			peer.result = result
			t.AddPCBToQueue(peer, StateReady)
		}
	}

	// If p itself was blocked somewhere (e.g. killed while waiting),
	// cross-remove it before it rejoins STOPPED.
	removeProcFromBlockingQueue(p)
	t.removeFromSleepList(p)

	p.reset()
	t.AddPCBToQueue(p, StateStopped)
}
