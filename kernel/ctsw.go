// ctsw.go - the context switcher/trampoline (§4.3), re-architected per
// SPEC_FULL.md as a goroutine-per-process model: each live PCB owns a
// goroutine parked on p.resume, standing in for the hardware's "restore
// register file, iret to user mode" step. A process's only way back into
// the kernel is through trapEvent, standing in for a software interrupt.
//
// Grounded on original_source/c/ctsw.c's contextswitch()/enter_kernel():
// the signal-delivery loop below mirrors its "inject a handler frame
// before restoring the real one" shape exactly, just without manual
// stack-pointer surgery.

package kernel

// trapEvent is what a process goroutine sends the kernel on every
// syscall crossing, including the internal SIGRETURN a signal frame
// issues when its handler returns.
type trapEvent struct {
	pid    int
	reason Reason
	args   [MaxSyscallArgs]int64
}

// resumeMsg is what the kernel sends a process goroutine to let it run
// again. A signal delivery carries a handler to run in place of the
// process's real return value; the process goroutine must report back
// with a reasonSigReturn trap and wait for the next resumeMsg before the
// real return value is finally delivered.
type resumeMsg struct {
	signal  bool
	handler SignalHandler
	result  int64
}

// ProcContext is the only handle a process's EntryFunc is given. Every
// method blocks the calling goroutine until the kernel services the
// request and resumes it, exactly as a real syscall blocks the CPU until
// the kernel's iret.
type ProcContext struct {
	k   *Kernel
	pcb *PCB
}

// Pid returns the context's own pid without a kernel crossing; pid is
// immutable for a PCB's lifetime in a slot.
func (c *ProcContext) Pid() int { return c.pcb.Pid }

// trap sends one syscall request and blocks until the dispatcher resumes
// this process with its real result, transparently running any signal
// handlers the kernel interjects first.
func (c *ProcContext) trap(id int, a1, a2, a3, a4 int64) int64 {
	c.k.events <- trapEvent{pid: c.pcb.Pid, reason: ReasonSyscall, args: [MaxSyscallArgs]int64{int64(id), a1, a2, a3, a4}}
	return c.await()
}

// await waits for the next resumeMsg, running as many injected signal
// handlers as the kernel sends before the real result arrives.
func (c *ProcContext) await() int64 {
	msg := <-c.pcb.resume
	for msg.signal {
		msg.handler()
		c.k.events <- trapEvent{pid: c.pcb.Pid, reason: reasonSigReturn}
		msg = <-c.pcb.resume
	}
	return msg.result
}

// Stop issues the STOP syscall. Per spec.md §4.4 this never returns to
// its caller: the PCB is being destroyed, so the goroutine parks forever
// rather than racing a cleaned-up/reused PCB for another resume.
func (c *ProcContext) Stop() {
	c.k.events <- trapEvent{pid: c.pcb.Pid, reason: ReasonSyscall, args: [MaxSyscallArgs]int64{SysStop, 0, 0, 0, 0}}
	select {}
}

// Yield voluntarily relinquishes the CPU (§4.4 YIELD).
func (c *ProcContext) Yield() { c.trap(SysYield, 0, 0, 0, 0) }

// runProcess is the goroutine body started for every PCB the first time
// ContextSwitch selects it. It mirrors enter_kernel's very first
// dispatch: wait to be let in, run the entry point, and synthesize a
// stop() if the entry point ever returns on its own (§4.3's "falling off
// the end of main acts as stop()").
func (k *Kernel) runProcess(p *PCB) {
	ctx := &ProcContext{k: k, pcb: p}
	msg := <-p.resume
	for msg.signal {
		msg.handler()
		k.events <- trapEvent{pid: p.Pid, reason: reasonSigReturn}
		msg = <-p.resume
	}
	p.entry(ctx)
	ctx.Stop()
}

// ContextSwitch resumes p (starting its goroutine on first use), injects
// every signal pending and enabled for it per §4.7's kernel->user
// transition rule, and blocks until p traps back into the kernel, a
// timer tick fires, or a keyboard interrupt arrives. Signal delivery is
// treated as atomic with respect to timer/keyboard interrupts, per the
// §5 ordering guarantee that "each signal runs atomically between
// kernel<->user crossings": the dispatcher's ticker and keyboard feed
// are deliberately not selected on while a handler is running.
//
// A tick or keyboard byte can win the race against p's own trap while p
// is genuinely still computing; p's goroutine keeps running regardless
// (nothing in Go can suspend it from outside), so this call returns
// without ever having received p's trap. p.trapPending records that debt:
// the next ContextSwitch(p) must not send another resumeMsg — p isn't
// parked at <-p.resume, it's either still running or already blocked
// trying to send the trap it's owed a receive for — and must instead
// just wait for that trap, exactly as awaitTrap below does.
func (k *Kernel) ContextSwitch(p *PCB) Request {
	if !p.started {
		p.started = true
		go k.runProcess(p)
	}

	if !p.trapPending {
		for p.signalsEnabled && p.signalsPending != 0 {
			sig := highestSetBit(p.signalsPending)
			p.signalsPending &^= 1 << uint(sig)
			handler := p.signalTable[sig]
			p.signalsEnabled = false
			saved := p.result

			p.resume <- resumeMsg{signal: true, handler: handler}
			k.awaitSigReturn(p)

			p.signalsEnabled = true
			p.result = saved
		}

		p.resume <- resumeMsg{result: p.result}
	}

	ev, interrupted, reason := k.awaitTrap(p)
	if interrupted {
		p.trapPending = true
		if reason == ReasonKeyboard {
			return Request{Reason: ReasonKeyboard, Args: ev.args}
		}
		return Request{Reason: ReasonTimer}
	}
	p.trapPending = false
	return Request{Reason: ReasonSyscall, Args: ev.args}
}

// awaitTrap blocks until p's own trap arrives, a timer tick fires, or a
// keyboard scancode arrives, whichever happens first. A completed trap
// that belongs to some OTHER pid is stashed on that PCB rather than
// dropped: it was sent by a process this function (on an earlier call)
// preempted mid-flight, and that process's goroutine has nowhere else to
// deliver it until it is scheduled again.
func (k *Kernel) awaitTrap(p *PCB) (ev trapEvent, interrupted bool, reason Reason) {
	if p.pendingEvent != nil {
		ev, p.pendingEvent = *p.pendingEvent, nil
		return ev, false, ReasonSyscall
	}
	for {
		select {
		case got := <-k.events:
			if got.pid == p.Pid {
				return got, false, ReasonSyscall
			}
			k.stashForeignTrap(got)
		case <-k.ticker.C:
			return trapEvent{}, true, ReasonTimer
		case sc := <-k.kbdFeed:
			return trapEvent{args: [MaxSyscallArgs]int64{int64(sc)}}, true, ReasonKeyboard
		}
	}
}

// awaitSigReturn blocks for p's own SIGRETURN trap, stashing any other
// pid's completed trap that arrives meanwhile instead of panicking on it.
// Timer and keyboard are deliberately not selected on here: signal
// delivery stays atomic with respect to both, per ContextSwitch's doc
// comment.
func (k *Kernel) awaitSigReturn(p *PCB) {
	for {
		ev := <-k.events
		if ev.pid != p.Pid {
			k.stashForeignTrap(ev)
			continue
		}
		if ev.reason != reasonSigReturn {
			panicf("ctsw: expected sigreturn from pid %d, got %+v", p.Pid, ev)
		}
		return
	}
}

// stashForeignTrap holds a trap belonging to some pid other than whoever
// ContextSwitch is currently waiting on, so a preempted process's eventual
// syscall is delivered the moment it's rescheduled instead of being raced
// against (and lost to) a dispatcher that has already moved on.
func (k *Kernel) stashForeignTrap(ev trapEvent) {
	q := k.table.PidToProc(ev.pid)
	if q == nil && ev.pid == 0 {
		q = k.table.Idle() // PidToProc never resolves pid 0
	}
	if q == nil {
		return // pid was already cleaned up; the trap is moot
	}
	q.pendingEvent = &ev
}

// highestSetBit returns the index (0..31) of the most significant set
// bit of a nonzero bitmap, implementing §4.7's signal delivery priority
// ("highest-numbered pending signal first").
func highestSetBit(bits uint32) int {
	n := 0
	for bits >>= 1; bits != 0; bits >>= 1 {
		n++
	}
	return n
}
