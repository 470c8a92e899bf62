package kernel

import "testing"

func newTestKernel() *Kernel {
	return New(Config{MemSize: 1 << 16})
}

func TestSendToSelfReturnsPidMe(t *testing.T) {
	k := newTestKernel()
	p := k.table.GetNextAvailablePCB()
	ptr, _ := k.heap.Kmalloc(16)

	k.sysSend(p, p.Pid, ptr, 16)
	if Errno(p.result) != SysPidMe {
		t.Fatalf("sysSend to self: result = %v, want SysPidMe", Errno(p.result))
	}
}

func TestSendToUnknownPidReturnsPidDNE(t *testing.T) {
	k := newTestKernel()
	p := k.table.GetNextAvailablePCB()
	ptr, _ := k.heap.Kmalloc(16)

	k.sysSend(p, 9999, ptr, 16)
	if Errno(p.result) != SysPidDNE {
		t.Fatalf("sysSend to unknown pid: result = %v, want SysPidDNE", Errno(p.result))
	}
}

func TestSendBlocksUntilReceiverReady(t *testing.T) {
	k := newTestKernel()
	sender := k.table.GetNextAvailablePCB()
	receiver := k.table.GetNextAvailablePCB()

	srcPtr, _ := k.heap.Kmalloc(16)
	copy(k.heap.Bytes()[srcPtr:srcPtr+5], []byte("hello"))

	next := k.sysSend(sender, receiver.Pid, srcPtr, 5)
	if sender.State != StateBlocked || sender.blockingKind != BlockSender {
		t.Fatalf("sender should park on receiver's sender queue, got state=%v kind=%v", sender.State, sender.blockingKind)
	}
	if next != k.table.Idle() {
		t.Fatalf("sysSend: expected dispatcher to fall back to idle, got pid %d", next.Pid)
	}

	dstPtr, _ := k.heap.Kmalloc(16)
	k.sysRecv(receiver, sender.Pid, dstPtr, 16, 0)

	if Errno(sender.result) != SysPidOK {
		t.Fatalf("sender result after pairing = %v, want SysPidOK", Errno(sender.result))
	}
	if Errno(receiver.result) != SysPidOK {
		t.Fatalf("receiver result after pairing = %v, want SysPidOK", Errno(receiver.result))
	}
	if sender.State != StateReady {
		t.Fatalf("sender should be woken to READY, got %v", sender.State)
	}
	if got := string(k.heap.Bytes()[dstPtr : dstPtr+5]); got != "hello" {
		t.Fatalf("receiver buffer = %q, want %q", got, "hello")
	}
}

func TestRecvPairsWithAlreadyBlockedSender(t *testing.T) {
	k := newTestKernel()
	sender := k.table.GetNextAvailablePCB()
	receiver := k.table.GetNextAvailablePCB()

	srcPtr, _ := k.heap.Kmalloc(16)
	copy(k.heap.Bytes()[srcPtr:srcPtr+3], []byte("hey"))
	k.sysSend(sender, receiver.Pid, srcPtr, 3)

	dstPtr, _ := k.heap.Kmalloc(16)
	k.sysRecv(receiver, sender.Pid, dstPtr, 16, 0)

	if got := string(k.heap.Bytes()[dstPtr : dstPtr+3]); got != "hey" {
		t.Fatalf("receiver buffer = %q, want %q", got, "hey")
	}
	if sender.State != StateReady {
		t.Fatalf("sender not woken after directed recv, state=%v", sender.State)
	}
}

func TestRecvAnyPairsWithAnySender(t *testing.T) {
	k := newTestKernel()
	sender := k.table.GetNextAvailablePCB()
	receiver := k.table.GetNextAvailablePCB()

	dstPtr, _ := k.heap.Kmalloc(16)
	fromPidPtr, _ := k.heap.Kmalloc(4)
	next := k.sysRecv(receiver, recvAnyPid, dstPtr, 16, fromPidPtr)
	if next != k.table.Idle() {
		t.Fatalf("sysRecv(any) on empty queue: expected idle fallback, got pid %d", next.Pid)
	}
	if receiver.blockingKind != BlockRecvAny {
		t.Fatalf("receiver should be parked as BlockRecvAny, got %v", receiver.blockingKind)
	}

	srcPtr, _ := k.heap.Kmalloc(16)
	copy(k.heap.Bytes()[srcPtr:srcPtr+2], []byte("hi"))
	k.sysSend(sender, receiver.Pid, srcPtr, 2)

	if Errno(receiver.result) != SysPidOK {
		t.Fatalf("receiver result = %v, want SysPidOK", Errno(receiver.result))
	}
	if got := string(k.heap.Bytes()[dstPtr : dstPtr+2]); got != "hi" {
		t.Fatalf("receiver buffer = %q, want %q", got, "hi")
	}
	gotFrom := k.heap.u32(fromPidPtr)
	if gotFrom != uint32(sender.Pid) {
		t.Fatalf("fromPid out-param = %d, want %d", gotFrom, sender.Pid)
	}
}

func TestSendRejectsBadPointer(t *testing.T) {
	k := newTestKernel()
	sender := k.table.GetNextAvailablePCB()
	receiver := k.table.GetNextAvailablePCB()

	k.sysSend(sender, receiver.Pid, 0, 16)
	if Errno(sender.result) != SysErrOther {
		t.Fatalf("sysSend with bad pointer: result = %v, want SysErrOther", Errno(sender.result))
	}
}
