package kernel

import "testing"

func TestSleepSingleEntryWakesAfterTicks(t *testing.T) {
	tbl := NewTable()
	p := tbl.GetNextAvailablePCB()

	tbl.insertSleep(p, 3)
	if p.State != StateBlocked || p.blockingKind != BlockSleep {
		t.Fatalf("insertSleep: expected blocked/BlockSleep, got state=%v kind=%v", p.State, p.blockingKind)
	}

	if woken := tbl.tick(); len(woken) != 0 {
		t.Fatalf("tick 1/3: expected no wakeups yet, got %d", len(woken))
	}
	if woken := tbl.tick(); len(woken) != 0 {
		t.Fatalf("tick 2/3: expected no wakeups yet, got %d", len(woken))
	}
	woken := tbl.tick()
	if len(woken) != 1 || woken[0] != p {
		t.Fatalf("tick 3/3: expected p to wake, got %v", woken)
	}
	if p.result != 0 {
		t.Fatalf("tick: woken PCB result = %d, want 0 (fully elapsed)", p.result)
	}
}

func TestSleepMultipleEntriesOrderedByDeadline(t *testing.T) {
	tbl := NewTable()
	early := tbl.GetNextAvailablePCB()
	late := tbl.GetNextAvailablePCB()
	mid := tbl.GetNextAvailablePCB()

	tbl.insertSleep(early, 2)
	tbl.insertSleep(late, 10)
	tbl.insertSleep(mid, 5)

	var order []*PCB
	for i := 0; i < 10; i++ {
		order = append(order, tbl.tick()...)
	}

	if len(order) != 3 {
		t.Fatalf("expected all three to wake within 10 ticks, got %d", len(order))
	}
	if order[0] != early || order[1] != mid || order[2] != late {
		t.Fatalf("wake order wrong: got %v %v %v, want early, mid, late", order[0].Pid, order[1].Pid, order[2].Pid)
	}
}

func TestSleepSimultaneousWake(t *testing.T) {
	tbl := NewTable()
	a := tbl.GetNextAvailablePCB()
	b := tbl.GetNextAvailablePCB()

	tbl.insertSleep(a, 4)
	tbl.insertSleep(b, 4)

	for i := 0; i < 3; i++ {
		tbl.tick()
	}
	woken := tbl.tick()
	if len(woken) != 2 {
		t.Fatalf("expected both sleepers to wake on the same tick, got %d", len(woken))
	}
}

func TestRemoveFromSleepListReportsRemainingTicks(t *testing.T) {
	tbl := NewTable()
	p := tbl.GetNextAvailablePCB()
	tbl.insertSleep(p, 10)

	tbl.tick()
	tbl.tick()
	tbl.tick() // 3 ticks elapsed, 7 remain

	remaining := tbl.removeFromSleepList(p)
	if remaining != 7 {
		t.Fatalf("removeFromSleepList: remaining = %d, want 7", remaining)
	}
	if p.blockingKind != BlockNone {
		t.Fatalf("removeFromSleepList: expected BlockNone after removal, got %v", p.blockingKind)
	}
}

func TestRemoveFromSleepListPreservesLaterDeadlines(t *testing.T) {
	tbl := NewTable()
	a := tbl.GetNextAvailablePCB()
	b := tbl.GetNextAvailablePCB()

	tbl.insertSleep(a, 3)
	tbl.insertSleep(b, 8)

	tbl.removeFromSleepList(a)

	var woken []*PCB
	for i := 0; i < 8; i++ {
		woken = append(woken, tbl.tick()...)
	}
	if len(woken) != 1 || woken[0] != b {
		t.Fatalf("removing a mid-list should not change b's absolute deadline; got %v", woken)
	}
}

func TestRemoveFromSleepListNoOpWhenNotSleeping(t *testing.T) {
	tbl := NewTable()
	p := tbl.GetNextAvailablePCB()
	if remaining := tbl.removeFromSleepList(p); remaining != 0 {
		t.Fatalf("removeFromSleepList on a non-sleeping PCB: got %d, want 0", remaining)
	}
}
