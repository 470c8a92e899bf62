package kernel

import (
	"testing"
	"time"
)

func TestSigHandlerInstallsAndReturnsPrevious(t *testing.T) {
	k := newTestKernel()
	p := k.table.GetNextAvailablePCB()

	called := false
	p.pendingHandler = func() { called = true }
	if err := k.sysSigHandler(p, 5); err != SysPidOK {
		t.Fatalf("sysSigHandler: err = %v, want SysPidOK", err)
	}
	if p.pendingHandlerOut != nil {
		t.Fatalf("sysSigHandler: expected nil previous handler on first install")
	}
	if p.signalTable[5] == nil {
		t.Fatalf("sysSigHandler: handler was not installed")
	}

	p.pendingHandler = func() {}
	k.sysSigHandler(p, 5)
	if p.pendingHandlerOut == nil {
		t.Fatalf("sysSigHandler: expected the first handler back as the previous one")
	}
	p.pendingHandlerOut()
	if !called {
		t.Fatalf("returned previous handler was not the one originally installed")
	}
}

func TestSigHandlerRejectsOutOfRangeSignal(t *testing.T) {
	k := newTestKernel()
	p := k.table.GetNextAvailablePCB()
	if err := k.sysSigHandler(p, NumSignals); err != EINVALSIG {
		t.Fatalf("sysSigHandler(out of range): err = %v, want EINVALSIG", err)
	}
}

func TestKillIgnoredWithoutHandler(t *testing.T) {
	k := newTestKernel()
	p := k.table.GetNextAvailablePCB()
	if err := k.sysKill(p.Pid, 3); err != SysPidOK {
		t.Fatalf("sysKill with no handler installed: err = %v, want SysPidOK", err)
	}
	if p.signalsPending != 0 {
		t.Fatalf("sysKill with no handler: pending bitmap should stay clear, got %#x", p.signalsPending)
	}
}

func TestKillUnknownPidReturnsDNE(t *testing.T) {
	k := newTestKernel()
	if err := k.sysKill(9999, 0); err != SysPidDNE {
		t.Fatalf("sysKill unknown pid: err = %v, want SysPidDNE", err)
	}
}

func TestKillWakesBlockedTargetWithProcSignalled(t *testing.T) {
	k := newTestKernel()
	target := k.table.GetNextAvailablePCB()
	other := k.table.GetNextAvailablePCB()
	target.pendingHandler = func() {}
	k.sysSigHandler(target, 7)

	addProcToBlockingQueue(target, other, BlockReceiver)

	if err := k.sysKill(target.Pid, 7); err != SysPidOK {
		t.Fatalf("sysKill: err = %v, want SysPidOK", err)
	}
	if target.State != StateReady {
		t.Fatalf("sysKill: target should be woken to READY, got %v", target.State)
	}
	if Errno(target.result) != ProcSignalled {
		t.Fatalf("sysKill: target result = %v, want ProcSignalled", Errno(target.result))
	}
	if target.signalsPending&(1<<7) == 0 {
		t.Fatalf("sysKill: pending bit for signal 7 was not set")
	}
}

func TestKillDuringSleepReportsRemainingTime(t *testing.T) {
	k := newTestKernel()
	k.tickPeriod = 10 * time.Millisecond
	p := k.table.GetNextAvailablePCB()
	p.pendingHandler = func() {}
	k.sysSigHandler(p, 2)

	k.table.insertSleep(p, 100)
	for i := 0; i < 10; i++ {
		k.table.tick()
	}

	k.sysKill(p.Pid, 2)
	if p.State != StateReady {
		t.Fatalf("sysKill during sleep: target should be woken, got %v", p.State)
	}
	if p.blockingKind != BlockNone {
		t.Fatalf("sysKill during sleep: blockingKind should be cleared, got %v", p.blockingKind)
	}
	// 100 ticks requested, 10 elapsed: 90 ticks x 10ms remain unslept.
	if p.result != 900 {
		t.Fatalf("sysKill during sleep: result = %d, want 900 (remaining ms)", p.result)
	}
}
