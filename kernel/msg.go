// msg.go - synchronous send/recv/recv-any rendezvous (§4.6), grounded on
// original_source/c/kernel.c's sys_send/sys_recv pairing logic. Sender and
// receiver queues are owner-keyed per queue.go: X's senderQueue holds
// processes blocked on send(X); X's receiverQueue holds processes blocked
// on a directed recv(X). recv-any has no owner queue at all — a process
// parked there is only ever reached by a sender naming its pid directly.

package kernel

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// sysSend implements the SEND syscall. Returns the PCB that should run
// next: sender itself if it didn't block, or whoever the dispatcher picks
// if it did.
func (k *Kernel) sysSend(sender *PCB, destPid int, ptr, length uint32) *PCB {
	if destPid == sender.Pid {
		sender.result = SysPidMe.Int64()
		return sender
	}
	dest := k.table.PidToProc(destPid)
	if dest == nil {
		sender.result = SysPidDNE.Int64()
		return sender
	}
	if err := k.heap.VerifyUsrPtr(ptr, length); err != OK {
		sender.result = SysErrOther.Int64()
		return sender
	}

	waitingOnMe := dest.State == StateBlocked &&
		((dest.blockingKind == BlockReceiver && dest.blockingOwner == sender) ||
			dest.blockingKind == BlockRecvAny)
	if waitingOnMe {
		n := minU32(length, dest.recvBufLen)
		copy(k.heap.Bytes()[dest.recvBufPtr:dest.recvBufPtr+n], k.heap.Bytes()[ptr:ptr+n])
		if dest.blockingKind == BlockRecvAny && dest.recvFromPidPtr != 0 {
			k.heap.putU32(dest.recvFromPidPtr, uint32(sender.Pid))
		} else {
			removeProcFromBlockingQueue(dest)
		}
		dest.blockingKind = BlockNone
		dest.result = SysPidOK.Int64()
		k.table.AddPCBToQueue(dest, StateReady)
		sender.result = SysPidOK.Int64()
		return sender
	}

	sender.sendBufPtr, sender.sendBufLen = ptr, length
	sender.result = SysPidDNE.Int64() // pre-set: a dying dest resolves the call via cleanup
	addProcToBlockingQueue(sender, dest, BlockSender)
	return k.table.GetNextProc()
}

// sysRecv implements RECV (srcPid >= 0, directed) and RECV-ANY
// (srcPid == recvAnyPid).
func (k *Kernel) sysRecv(receiver *PCB, srcPid int, ptr, length uint32, fromPidPtr uint32) *PCB {
	if err := k.heap.VerifyUsrPtr(ptr, length); err != OK {
		receiver.result = SysErrOther.Int64()
		return receiver
	}

	if srcPid == recvAnyPid {
		if sender := blockingQueueOf(receiver, BlockSender).popFront(); sender != nil {
			n := minU32(sender.sendBufLen, length)
			copy(k.heap.Bytes()[ptr:ptr+n], k.heap.Bytes()[sender.sendBufPtr:sender.sendBufPtr+n])
			if fromPidPtr != 0 {
				k.heap.putU32(fromPidPtr, uint32(sender.Pid))
			}
			sender.blockingOwner, sender.blockingKind = nil, BlockNone
			sender.result = SysPidOK.Int64()
			k.table.AddPCBToQueue(sender, StateReady)
			receiver.result = SysPidOK.Int64()
			return receiver
		}
		receiver.recvBufPtr, receiver.recvBufLen, receiver.recvFromPidPtr = ptr, length, fromPidPtr
		receiver.result = SysPidDNE.Int64()
		receiver.blockingOwner, receiver.blockingKind = nil, BlockRecvAny
		receiver.State = StateBlocked
		return k.table.GetNextProc()
	}

	if srcPid == receiver.Pid {
		receiver.result = SysPidMe.Int64()
		return receiver
	}
	src := k.table.PidToProc(srcPid)
	if src == nil {
		receiver.result = SysPidDNE.Int64()
		return receiver
	}

	if src.State == StateBlocked && src.blockingKind == BlockSender && src.blockingOwner == receiver {
		n := minU32(src.sendBufLen, length)
		copy(k.heap.Bytes()[ptr:ptr+n], k.heap.Bytes()[src.sendBufPtr:src.sendBufPtr+n])
		removeProcFromBlockingQueue(src)
		src.result = SysPidOK.Int64()
		k.table.AddPCBToQueue(src, StateReady)
		receiver.result = SysPidOK.Int64()
		return receiver
	}

	receiver.recvBufPtr, receiver.recvBufLen, receiver.recvFromPidPtr = ptr, length, fromPidPtr
	receiver.result = SysPidDNE.Int64()
	addProcToBlockingQueue(receiver, src, BlockReceiver)
	return k.table.GetNextProc()
}
