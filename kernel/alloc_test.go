package kernel

import "testing"

func TestHeapAllocFreeRoundTrip(t *testing.T) {
	h := NewHeap(4096, 0, 0)

	a, ok := h.Kmalloc(100)
	if !ok {
		t.Fatalf("Kmalloc(100): exhausted")
	}
	b, ok := h.Kmalloc(200)
	if !ok {
		t.Fatalf("Kmalloc(200): exhausted")
	}
	if a == b {
		t.Fatalf("Kmalloc returned overlapping addresses")
	}

	h.Kfree(a)
	h.Kfree(b)

	// After freeing everything, the heap should have coalesced back down
	// to its original single free block.
	blocks := h.FreeBlocks()
	if len(blocks) != 1 {
		t.Fatalf("FreeBlocks after full free: got %d blocks, want 1: %v", len(blocks), blocks)
	}
	if blocks[0][1] != 4096 {
		t.Fatalf("FreeBlocks after full free: got size %d, want 4096", blocks[0][1])
	}
}

func TestHeapCoalescesAdjacentFrees(t *testing.T) {
	h := NewHeap(4096, 0, 0)

	a, _ := h.Kmalloc(16)
	b, _ := h.Kmalloc(16)
	c, _ := h.Kmalloc(16)

	// Free the middle and outer blocks in an order that forces coalescing
	// from both directions.
	h.Kfree(b)
	h.Kfree(a)
	h.Kfree(c)

	blocks := h.FreeBlocks()
	if len(blocks) != 1 {
		t.Fatalf("expected full coalescing into one block, got %d: %v", len(blocks), blocks)
	}
}

func TestHeapRespectsHole(t *testing.T) {
	// A hole in the middle of the arena must never be handed out, and
	// the two free regions around it must never merge across it.
	h := NewHeap(4096, 1024, 2048)

	var addrs []uint32
	for {
		addr, ok := h.Kmalloc(64)
		if !ok {
			break
		}
		addrs = append(addrs, addr)
		if addr >= 1024 && addr < 2048 {
			t.Fatalf("Kmalloc returned address %#x inside the hole [1024, 2048)", addr)
		}
	}
	for _, addr := range addrs {
		h.Kfree(addr)
	}

	blocks := h.FreeBlocks()
	if len(blocks) != 2 {
		t.Fatalf("expected the hole to keep two disjoint free regions, got %d: %v", len(blocks), blocks)
	}
}

func TestKfreeDoubleFreePanics(t *testing.T) {
	h := NewHeap(4096, 0, 0)
	addr, _ := h.Kmalloc(32)
	h.Kfree(addr)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Kfree to panic on double free")
		}
	}()
	h.Kfree(addr)
}

func TestKmallocExhaustion(t *testing.T) {
	h := NewHeap(256, 0, 0)
	if _, ok := h.Kmalloc(1 << 20); ok {
		t.Fatalf("Kmalloc should fail when request exceeds arena size")
	}
}
