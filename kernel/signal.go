// signal.go - KILL and SIGHANDLER dispatch handlers, and delivery's
// unblock-on-accept path (§4.7), grounded on original_source/c/signal.c.
// The delivery loop itself (priority ordering, frame injection) lives in
// ctsw.go, since it's part of the context-switch trampoline, not a
// syscall.

package kernel

// sysKill implements KILL. Marking the pending bit and, if the target is
// blocked, waking it with ProcSignalled happen in the same crossing: the
// kernel is never reentrant, so there is no window for another process to
// observe the half-delivered state.
func (k *Kernel) sysKill(pid, signo int) Errno {
	if signo < 0 || signo >= NumSignals {
		return EINVALSIG
	}
	target := k.table.PidToProc(pid)
	if target == nil {
		return SysPidDNE
	}
	if target.signalTable[signo] == nil {
		return SysPidOK // entry null: signal is silently ignored
	}
	target.signalsPending |= 1 << uint(signo)
	if target.State == StateBlocked {
		k.unblockForSignal(target)
	}
	return SysPidOK
}

// unblockForSignal cross-removes a blocked target from whatever queue (or
// delta-list slot) currently holds it and makes it READY with
// ProcSignalled, so its originating syscall returns that code from the
// dispatcher (§4.7).
func (k *Kernel) unblockForSignal(p *PCB) {
	switch p.blockingKind {
	case BlockSleep:
		// SLEEP's contract (§4.4) reports how much requested time was cut
		// short rather than the generic ProcSignalled code.
		remaining := k.table.removeFromSleepList(p)
		p.result = remaining * k.tickPeriod.Milliseconds()
	case BlockRecvAny:
		p.blockingOwner, p.blockingKind = nil, BlockNone
		p.result = ProcSignalled.Int64()
	default:
		removeProcFromBlockingQueue(p)
		p.result = ProcSignalled.Int64()
	}
	k.table.AddPCBToQueue(p, StateReady)
}

// sysSigHandler implements SIGHANDLER: swap current's handler for signo,
// stashing the previous one in pendingHandlerOut for the caller to read
// after the trap returns. Never returns EINVALFUNC: a SignalHandler is a
// Go closure, which has no "invalid function pointer" representation the
// way a bare C function pointer would.
func (k *Kernel) sysSigHandler(current *PCB, signo int) Errno {
	if signo < 0 || signo >= NumSignals {
		current.pendingHandlerOut = nil
		return EINVALSIG
	}
	current.pendingHandlerOut = current.signalTable[signo]
	current.signalTable[signo] = current.pendingHandler
	current.pendingHandler = nil
	return SysPidOK
}
