// proc.go - the process-facing syscall surface hung off ProcContext.
// Every method here is the Go equivalent of a user-space libc wrapper
// around a single software interrupt: stash anything that can't fit in
// an int64 argument slot, trap, unstash the result.
//
// User buffers are offsets into the shared kernel.Heap arena (see
// SPEC_FULL.md's re-architecture note): a process allocates its own
// buffers with Kmalloc/Kfree, exactly like original_source/c test
// processes call malloc()/free() directly rather than trapping for them.

package kernel

// Kmalloc/Kfree are plain library calls in the original kernel, not
// syscalls: a process owns the memory it allocates and touches it
// directly, with no kernel crossing.
func (c *ProcContext) Kmalloc(n uint32) (uint32, bool) { return c.k.heap.Kmalloc(n) }
func (c *ProcContext) Kfree(ptr uint32)                { c.k.heap.Kfree(ptr) }

// Bytes exposes the shared arena for a process to read/write its own
// allocated buffers directly, the same way original_source test code
// dereferences its own malloc'd pointers without a trap.
func (c *ProcContext) Bytes() []byte { return c.k.heap.Bytes() }

// GetPid is a real kernel crossing in this teaching kernel, not a cached
// local read (§4.4's GETPID row).
func (c *ProcContext) GetPid() int { return int(c.trap(SysGetPid, 0, 0, 0, 0)) }

// Create starts a new process and returns its pid, or an Errno.
func (c *ProcContext) Create(entry EntryFunc, stackBytes uint32) (int, Errno) {
	c.k.pendingCreateEntry = entry
	c.k.pendingCreateStack = stackBytes
	r := c.trap(SysCreate, int64(stackBytes), 0, 0, 0)
	if r < 0 {
		return 0, Errno(r)
	}
	return int(r), OK
}

// Kill posts signo to pid (§4.4/§4.7).
func (c *ProcContext) Kill(pid int, signo int) Errno {
	return Errno(c.trap(SysKill, int64(pid), int64(signo), 0, 0))
}

// Wait blocks until pid terminates.
func (c *ProcContext) Wait(pid int) Errno {
	return Errno(c.trap(SysWait, int64(pid), 0, 0, 0))
}

// Puts validates and prints a NUL-terminated string living at ptr in the
// shared arena.
func (c *ProcContext) Puts(ptr uint32) Errno {
	return Errno(c.trap(SysPuts, int64(ptr), 0, 0, 0))
}

// Send synchronously sends length bytes from ptr to dest (§4.6).
func (c *ProcContext) Send(dest int, ptr uint32, length uint32) Errno {
	return Errno(c.trap(SysSend, int64(dest), int64(ptr), int64(length), 0))
}

// recvAnyPid is the SEND/RECV "from any sender" sentinel; no real pid is
// ever <= 0.
const recvAnyPid = -1

// Recv blocks receiving from src into the length bytes at ptr.
func (c *ProcContext) Recv(src int, ptr uint32, length uint32) Errno {
	return Errno(c.trap(SysRecv, int64(src), int64(ptr), int64(length), 0))
}

// RecvAny blocks receiving from any sender; fromPidPtr, if nonzero, is an
// arena address of a 4-byte slot the kernel fills with the sender's pid.
func (c *ProcContext) RecvAny(ptr uint32, length uint32, fromPidPtr uint32) Errno {
	return Errno(c.trap(SysRecv, recvAnyPid, int64(ptr), int64(length), int64(fromPidPtr)))
}

// Sleep blocks for at least ms milliseconds, returning the number of
// milliseconds short of that if woken early by a delivered signal.
func (c *ProcContext) Sleep(ms int64) int64 { return c.trap(SysSleep, ms, 0, 0, 0) }

// CpuTimes snapshots every non-stopped PCB into the arena buffer at ptr
// (capBytes bytes long), returning the record count written or SYSERR.
func (c *ProcContext) CpuTimes(ptr uint32, capBytes uint32) int64 {
	return c.trap(SysCpuTimes, int64(ptr), int64(capBytes), 0, 0)
}

// SigHandler installs fn as signo's handler and returns the previous one.
// fn is never checked against EINVALFUNC: there is no invalid closure value
// to reject, unlike a raw C function pointer.
func (c *ProcContext) SigHandler(signo int, fn SignalHandler) (SignalHandler, Errno) {
	c.pcb.pendingHandler = fn
	r := c.trap(SysSigHandler, int64(signo), 0, 0, 0)
	return c.pcb.pendingHandlerOut, Errno(r)
}

// Open allocates an fd bound to (deviceID, minor). minor is ignored by
// devices that have no submodes.
func (c *ProcContext) Open(deviceID, minor int) (int, Errno) {
	r := c.trap(SysOpen, int64(deviceID), int64(minor), 0, 0)
	if r < 0 {
		return 0, Errno(r)
	}
	return int(r), OK
}

// Close releases fd.
func (c *ProcContext) Close(fd int) Errno { return Errno(c.trap(SysClose, int64(fd), 0, 0, 0)) }

// Read delegates to fd's device, reading up to length bytes into ptr.
func (c *ProcContext) Read(fd int, ptr uint32, length uint32) int64 {
	return c.trap(SysRead, int64(fd), int64(ptr), int64(length), 0)
}

// Write delegates to fd's device, writing length bytes from ptr.
func (c *ProcContext) Write(fd int, ptr uint32, length uint32) int64 {
	return c.trap(SysWrite, int64(fd), int64(ptr), int64(length), 0)
}

// Ioctl issues a device-defined control command.
func (c *ProcContext) Ioctl(fd int, cmd int, arg int64) int64 {
	return c.trap(SysIoctl, int64(fd), int64(cmd), arg, 0)
}
