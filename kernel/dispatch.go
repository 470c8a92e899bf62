// dispatch.go - the syscall handler table (§4.4), the other two
// non-syscall crossings the dispatcher loop in kernel.go delegates here
// (the timer tick and the keyboard ISR), and the device vector glue
// (OPEN/CLOSE/READ/WRITE/IOCTL), grounded on original_source/c/kernel.c's
// big dispatch switch and di_calls.c's device-independent layer.

package kernel

import "encoding/binary"

const cpuTimesRecordSize = 12

// create allocates a fresh PCB for entry/stackBytes. stackBytes is
// validated against MinStackBytes for ABI fidelity even though a
// goroutine's own growable stack needs no explicit backing allocation.
func (k *Kernel) create(entry EntryFunc, stackBytes uint32) (*PCB, Errno) {
	if stackBytes < MinStackBytes {
		return nil, EINVAL
	}
	p := k.table.GetNextAvailablePCB()
	if p == nil {
		return nil, EPROCLIMIT
	}
	p.resume = make(chan resumeMsg)
	p.entry = entry
	p.signalsEnabled = true
	return p, OK
}

// dispatchSyscall services one SYSCALL_* crossing and returns whichever
// PCB should run next: current itself, or the dispatcher's next pick if
// the handler blocked, yielded or stopped it (§4.4's "possibly enqueueing/
// blocking current and possibly switching current").
func (k *Kernel) dispatchSyscall(current *PCB, args [MaxSyscallArgs]int64) *PCB {
	switch int(args[0]) {
	case SysYield:
		if current != k.table.Idle() {
			k.table.AddPCBToQueue(current, StateReady)
		}
		return k.table.GetNextProc()

	case SysStop:
		for fd, f := range current.fdTable {
			if f != nil {
				k.sysClose(current, fd)
			}
		}
		k.table.CleanupProc(current)
		return k.table.GetNextProc()

	case SysGetPid:
		current.result = int64(current.Pid)
		return current

	case SysCreate:
		p, err := k.create(k.pendingCreateEntry, uint32(args[1]))
		k.pendingCreateEntry = nil
		k.pendingCreateStack = 0
		if err != OK {
			current.result = err.Int64()
		} else {
			k.table.AddPCBToQueue(p, StateReady)
			current.result = int64(p.Pid)
		}
		return current

	case SysKill:
		current.result = k.sysKill(int(args[1]), int(args[2])).Int64()
		return current

	case SysWait:
		return k.sysWait(current, int(args[1]))

	case SysPuts:
		current.result = k.sysPuts(uint32(args[1])).Int64()
		return current

	case SysSend:
		return k.sysSend(current, int(args[1]), uint32(args[2]), uint32(args[3]))

	case SysRecv:
		return k.sysRecv(current, int(args[1]), uint32(args[2]), uint32(args[3]), uint32(args[4]))

	case SysSleep:
		return k.sysSleep(current, args[1])

	case SysCpuTimes:
		current.result = k.sysCpuTimes(uint32(args[1]), uint32(args[2]))
		return current

	case SysSigHandler:
		current.result = k.sysSigHandler(current, int(args[1])).Int64()
		return current

	case SysOpen:
		current.result = k.sysOpen(current, int(args[1]), int(args[2]))
		return current

	case SysClose:
		current.result = k.sysClose(current, int(args[1])).Int64()
		return current

	case SysRead:
		return k.sysRead(current, int(args[1]), uint32(args[2]), uint32(args[3]))

	case SysWrite:
		current.result = k.sysWrite(current, int(args[1]), uint32(args[2]), uint32(args[3]))
		return current

	case SysIoctl:
		current.result = k.sysIoctl(current, int(args[1]), int(args[2]), args[3])
		return current

	default:
		panicf("dispatch: unknown syscall request id %d", args[0])
		return current
	}
}

// sysWait implements WAIT: block current on target's WAITER queue. The
// pre-set result is overwritten by CleanupProc (SysPidOK) when target
// legitimately terminates, or by unblockForSignal (ProcSignalled) if a
// signal interrupts the wait first.
func (k *Kernel) sysWait(current *PCB, pid int) *PCB {
	if pid == current.Pid {
		current.result = SysPidMe.Int64()
		return current
	}
	target := k.table.PidToProc(pid)
	if target == nil {
		current.result = SysPidDNE.Int64()
		return current
	}
	current.result = SysPidDNE.Int64()
	addProcToBlockingQueue(current, target, BlockWaiting)
	return k.table.GetNextProc()
}

// sysSleep implements SLEEP, rounding ms up to whole ticks.
func (k *Kernel) sysSleep(current *PCB, ms int64) *PCB {
	if ms <= 0 {
		current.result = 0
		return current
	}
	period := k.tickPeriod.Milliseconds()
	ticks := (ms + period - 1) / period
	k.table.insertSleep(current, ticks)
	current.result = 0
	return k.table.GetNextProc()
}

// sysPuts implements PUTS: validate the NUL-terminated arena string, then
// print it through the one kernel console seam.
func (k *Kernel) sysPuts(ptr uint32) Errno {
	n, err := k.heap.VerifyUsrStr(ptr)
	if err != OK {
		return err
	}
	Kprintf("%s", string(k.heap.Bytes()[ptr:ptr+uint32(n)]))
	return SysPidOK
}

// sysCpuTimes implements CPUTIMES: a fixed 12-byte (pid, cpu_time, state)
// record per live PCB, little-endian, written into the arena at ptr.
func (k *Kernel) sysCpuTimes(ptr, capBytes uint32) int64 {
	live := k.table.AllLive()
	need := uint32(len(live)) * cpuTimesRecordSize
	if need > 0 {
		if err := k.heap.VerifyUsrPtr(ptr, need); err != OK {
			return SYSERR.Int64()
		}
	}
	if need > capBytes {
		return SYSERR.Int64()
	}
	buf, off := k.heap.Bytes(), ptr
	for _, p := range live {
		binary.LittleEndian.PutUint32(buf[off:], uint32(p.Pid))
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(p.cpuTime))
		binary.LittleEndian.PutUint32(buf[off+8:], uint32(p.State))
		off += cpuTimesRecordSize
	}
	return int64(len(live))
}

// --- device vector glue (§4.9), fd-table backed ---

func (k *Kernel) sysOpen(current *PCB, deviceID, minor int) int64 {
	if deviceID < 0 || deviceID >= NumDevices || k.devices[deviceID] == nil {
		return EINVAL.Int64()
	}
	slot := -1
	for i, f := range current.fdTable {
		if f == nil {
			slot = i
			break
		}
	}
	if slot == -1 {
		return SYSERR.Int64()
	}
	priv, err := k.devices[deviceID].Open(minor)
	if err != OK {
		return err.Int64()
	}
	current.fdTable[slot] = &openFile{dev: k.devices[deviceID], devID: deviceID, priv: priv}
	return int64(slot)
}

func (k *Kernel) sysClose(current *PCB, fd int) Errno {
	f := fdLookup(current, fd)
	if f == nil {
		return EBADF
	}
	err := f.dev.Close(current, f.priv)
	current.fdTable[fd] = nil
	return err
}

func (k *Kernel) sysRead(current *PCB, fd int, ptr, length uint32) *PCB {
	f := fdLookup(current, fd)
	if f == nil {
		current.result = EBADF.Int64()
		return current
	}
	if err := k.heap.VerifyUsrPtr(ptr, length); err != OK {
		current.result = err.Int64()
		return current
	}
	n, err := f.dev.Read(current, f.priv, k.heap.Bytes()[ptr:ptr+length])
	if err == BlockPending {
		current.blockingOwner, current.blockingKind = nil, BlockIO
		current.State = StateBlocked
		return k.table.GetNextProc()
	}
	if err != OK {
		current.result = err.Int64()
		return current
	}
	current.result = int64(n)
	return current
}

func (k *Kernel) sysWrite(current *PCB, fd int, ptr, length uint32) int64 {
	f := fdLookup(current, fd)
	if f == nil {
		return EBADF.Int64()
	}
	if err := k.heap.VerifyUsrPtr(ptr, length); err != OK {
		return err.Int64()
	}
	n, err := f.dev.Write(current, f.priv, k.heap.Bytes()[ptr:ptr+length])
	if err != OK {
		return err.Int64()
	}
	return int64(n)
}

func (k *Kernel) sysIoctl(current *PCB, fd, cmd int, arg int64) int64 {
	f := fdLookup(current, fd)
	if f == nil {
		return EBADF.Int64()
	}
	result, err := f.dev.Ioctl(f.priv, cmd, []int64{arg})
	if err != OK {
		return err.Int64()
	}
	return result
}

func fdLookup(p *PCB, fd int) *openFile {
	if fd < 0 || fd >= NumFDs {
		return nil
	}
	return p.fdTable[fd]
}

// WakeBlockedIO resumes a process a device previously parked with
// BlockPending, delivering n as its READ result. Devices call this from
// within keyboardISR (or any other synchronous interrupt-handling path),
// never concurrently with the dispatcher loop.
func (k *Kernel) WakeBlockedIO(p *PCB, n int) {
	p.blockingOwner, p.blockingKind = nil, BlockNone
	p.result = int64(n)
	k.table.AddPCBToQueue(p, StateReady)
}

// onTick services a TIMER crossing: advance the sleep delta-list and
// requeue every PCB it wakes.
func (k *Kernel) onTick() {
	for _, p := range k.table.tick() {
		k.table.AddPCBToQueue(p, StateReady)
	}
}

// keyboardISR services a KEYBOARD crossing by handing the raw scancode to
// whatever implements InterruptDevice at DevKeyboard, if anything is
// registered there yet.
func (k *Kernel) keyboardISR(scancode byte) {
	dev, ok := k.devices[DevKeyboard].(InterruptDevice)
	if !ok {
		return
	}
	dev.HandleInput(k, scancode)
}

// InterruptDevice is implemented by devices that need the raw interrupt,
// not just the open/close/read/write/ioctl vector (§4.9's keyboard ISR).
type InterruptDevice interface {
	Device
	HandleInput(k *Kernel, scancode byte)
}
