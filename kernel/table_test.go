package kernel

import "testing"

func TestGetNextAvailablePCBAssignsFreshPids(t *testing.T) {
	tbl := NewTable()

	a := tbl.GetNextAvailablePCB()
	b := tbl.GetNextAvailablePCB()
	if a == nil || b == nil {
		t.Fatalf("GetNextAvailablePCB: table should have room for two procs")
	}
	if a.Pid == b.Pid {
		t.Fatalf("GetNextAvailablePCB: reused pid %d for two live procs", a.Pid)
	}
	if a.Pid <= 0 || b.Pid <= 0 {
		t.Fatalf("GetNextAvailablePCB: pids must be positive, got %d and %d", a.Pid, b.Pid)
	}
}

func TestGetNextAvailablePCBExhaustsTable(t *testing.T) {
	tbl := NewTable()
	n := 0
	for tbl.GetNextAvailablePCB() != nil {
		n++
		if n > TableSize+1 {
			t.Fatalf("GetNextAvailablePCB: did not exhaust after %d allocations", n)
		}
	}
	if n != TableSize {
		t.Fatalf("GetNextAvailablePCB: got %d slots, want %d", n, TableSize)
	}
}

func TestPidToProcGenerationMismatch(t *testing.T) {
	tbl := NewTable()
	p := tbl.GetNextAvailablePCB()
	pid := p.Pid

	tbl.CleanupProc(p)
	// The slot is now STOPPED again; the old pid must no longer resolve.
	if got := tbl.PidToProc(pid); got != nil {
		t.Fatalf("PidToProc: stale pid %d still resolved after cleanup", pid)
	}

	q := tbl.GetNextAvailablePCB()
	if q.Pid == pid {
		t.Fatalf("PidToProc: next allocation reused the stale pid %d", pid)
	}
	if got := tbl.PidToProc(q.Pid); got != q {
		t.Fatalf("PidToProc: fresh pid %d did not resolve to its owning PCB", q.Pid)
	}
}

func TestGetNextProcFallsBackToIdle(t *testing.T) {
	tbl := NewTable()
	p := tbl.GetNextProc()
	if p != tbl.Idle() {
		t.Fatalf("GetNextProc: expected idle PCB when READY is empty, got pid %d", p.Pid)
	}
}

func TestAddPCBToQueueRejectsIdle(t *testing.T) {
	tbl := NewTable()
	defer func() {
		if recover() == nil {
			t.Fatalf("AddPCBToQueue: expected panic when enqueuing the idle PCB")
		}
	}()
	tbl.AddPCBToQueue(tbl.Idle(), StateReady)
}

func TestCleanupProcWakesWaiterWithOK(t *testing.T) {
	tbl := NewTable()
	target := tbl.GetNextAvailablePCB()
	waiter := tbl.GetNextAvailablePCB()

	addProcToBlockingQueue(waiter, target, BlockWaiting)

	tbl.CleanupProc(target)

	if waiter.State != StateReady {
		t.Fatalf("CleanupProc: waiter not woken, state=%v", waiter.State)
	}
	if Errno(waiter.result) != SysPidOK {
		t.Fatalf("CleanupProc: waiter result = %v, want SysPidOK", Errno(waiter.result))
	}
}

func TestCleanupProcWakesSenderWithDNE(t *testing.T) {
	tbl := NewTable()
	target := tbl.GetNextAvailablePCB()
	sender := tbl.GetNextAvailablePCB()

	addProcToBlockingQueue(sender, target, BlockSender)

	tbl.CleanupProc(target)

	if sender.State != StateReady {
		t.Fatalf("CleanupProc: sender not woken, state=%v", sender.State)
	}
	if Errno(sender.result) != SysPidDNE {
		t.Fatalf("CleanupProc: sender result = %v, want SysPidDNE", Errno(sender.result))
	}
}
