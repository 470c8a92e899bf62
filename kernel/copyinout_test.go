package kernel

import "testing"

func TestVerifyUsrPtrRejectsNullAndOverflow(t *testing.T) {
	h := NewHeap(4096, 0, 0)
	if err := h.VerifyUsrPtr(0, 16); err != EINVAL {
		t.Fatalf("VerifyUsrPtr(0, 16): err = %v, want EINVAL", err)
	}
	if err := h.VerifyUsrPtr(100, 0); err != EINVAL {
		t.Fatalf("VerifyUsrPtr(100, 0): err = %v, want EINVAL", err)
	}
	if err := h.VerifyUsrPtr(^uint32(0)-2, 16); err != EINVAL {
		t.Fatalf("VerifyUsrPtr with wraparound range: err = %v, want EINVAL", err)
	}
}

func TestVerifyUsrPtrRejectsHoleOverlap(t *testing.T) {
	h := NewHeap(8192, 1024, 2048)
	if err := h.VerifyUsrPtr(1000, 64); err != EINVAL {
		t.Fatalf("VerifyUsrPtr overlapping the hole: err = %v, want EINVAL", err)
	}
	if err := h.VerifyUsrPtr(16, 64); err != OK {
		t.Fatalf("VerifyUsrPtr before the hole: err = %v, want OK", err)
	}
}

func TestVerifyUsrPtrRejectsKernelStack(t *testing.T) {
	h := NewHeap(8192, 0, 0)
	stackLo := h.MaxAddr - KernelStackSize
	if err := h.VerifyUsrPtr(stackLo, 16); err != EINVAL {
		t.Fatalf("VerifyUsrPtr into the kernel stack range: err = %v, want EINVAL", err)
	}
}

func TestVerifyUsrStrStopsAtNUL(t *testing.T) {
	h := NewHeap(8192, 0, 0)
	ptr, _ := h.Kmalloc(16)
	copy(h.Bytes()[ptr:], []byte("hi\x00garbage"))

	n, err := h.VerifyUsrStr(ptr)
	if err != OK {
		t.Fatalf("VerifyUsrStr: err = %v, want OK", err)
	}
	if n != 2 {
		t.Fatalf("VerifyUsrStr: length = %d, want 2", n)
	}
}

func TestVerifyUsrStrFailsIfNeverTerminated(t *testing.T) {
	h := NewHeap(8192, 0, 0)
	ptr, _ := h.Kmalloc(32)
	stackLo := h.MaxAddr - KernelStackSize
	for i := ptr; i < stackLo+16; i++ {
		h.Bytes()[i] = 'x'
	}

	if _, err := h.VerifyUsrStr(ptr); err != EINVAL {
		t.Fatalf("VerifyUsrStr with no NUL before the stack range: err = %v, want EINVAL", err)
	}
}
