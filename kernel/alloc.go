// alloc.go - the kernel heap: a paragraph-aligned, first-fit free list
// over a single flat byte arena, grounded on original_source/c/mem.c and
// re-expressed in the teacher's memory_bus.go idiom (a contiguous []byte
// arena, accessed through binary.LittleEndian rather than raw pointers).
//
// Every free block is prefixed by a 16-byte header: size (header +
// payload), prev/next free-list links (byte offsets into the arena, or
// noAddr), and a sanity word (0 while free, the payload address once
// allocated). The free list is kept in address order so that Kfree can
// find and coalesce with its physical neighbours in O(1) once the
// insertion point is located.

package kernel

import "encoding/binary"

const (
	headerSize = 16
	alignment  = 16
	// noAddr is the free-list "nil" sentinel: the largest uint32, where no
	// block can start because its 16-byte header would not fit below the
	// end of the address range.
	noAddr = ^uint32(0)
)

// Heap is the kernel's allocator over a single contiguous arena split by
// a hardware-mandated hole [HoleLo, HoleHi) that must never be allocated
// over (spec.md §4.1, Glossary "Hole").
type Heap struct {
	arena        []byte
	HoleLo, HoleHi uint32
	MaxAddr      uint32

	freeHead uint32 // address of the lowest-addressed free block, or noAddr
}

// NewHeap creates a heap of size bytes with a reserved hole
// [holeLo, holeHi). Both hole bounds must be 16-byte aligned and
// holeHi <= size. The arena starts with one free block for each of
// [0, holeLo) and [holeHi, size) that is at least a header long, so an
// empty region (e.g. holeLo == 0) contributes no block.
func NewHeap(size, holeLo, holeHi uint32) *Heap {
	if holeLo%alignment != 0 || holeHi%alignment != 0 {
		panicf("NewHeap: hole bounds must be %d-byte aligned", alignment)
	}
	if holeHi > size || holeLo > holeHi {
		panicf("NewHeap: invalid hole [%#x, %#x) in arena of size %#x", holeLo, holeHi, size)
	}
	h := &Heap{arena: make([]byte, size), HoleLo: holeLo, HoleHi: holeHi, MaxAddr: size, freeHead: noAddr}
	if holeLo >= headerSize {
		h.formatFreeBlock(0, holeLo)
		h.insertFree(0)
	}
	if size-holeHi >= headerSize {
		h.formatFreeBlock(holeHi, size-holeHi)
		h.insertFree(holeHi)
	}
	return h
}

func roundUp16(n uint32) uint32 {
	if n == 0 {
		return alignment
	}
	return (n + alignment - 1) &^ (alignment - 1)
}

// --- raw header accessors ---

func (h *Heap) u32(off uint32) uint32 { return binary.LittleEndian.Uint32(h.arena[off : off+4]) }
func (h *Heap) putU32(off, v uint32) { binary.LittleEndian.PutUint32(h.arena[off:off+4], v) }

func (h *Heap) size(block uint32) uint32    { return h.u32(block) }
func (h *Heap) setSize(block, v uint32)     { h.putU32(block, v) }
func (h *Heap) prev(block uint32) uint32    { return h.u32(block + 4) }
func (h *Heap) setPrev(block, v uint32)     { h.putU32(block+4, v) }
func (h *Heap) next(block uint32) uint32    { return h.u32(block + 8) }
func (h *Heap) setNext(block, v uint32)     { h.putU32(block+8, v) }
func (h *Heap) sanity(block uint32) uint32  { return h.u32(block + 12) }
func (h *Heap) setSanity(block, v uint32)   { h.putU32(block+12, v) }

func (h *Heap) formatFreeBlock(block, size uint32) {
	h.setSize(block, size)
	h.setPrev(block, noAddr)
	h.setNext(block, noAddr)
	h.setSanity(block, 0)
}

// --- free list maintenance (kept in address order) ---

func (h *Heap) insertFree(block uint32) {
	var prev uint32 = noAddr
	cur := h.freeHead
	for cur != noAddr && cur < block {
		prev = cur
		cur = h.next(cur)
	}
	h.setPrev(block, prev)
	h.setNext(block, cur)
	if prev == noAddr {
		h.freeHead = block
	} else {
		h.setNext(prev, block)
	}
	if cur != noAddr {
		h.setPrev(cur, block)
	}
}

func (h *Heap) unlinkFree(block uint32) {
	prev, next := h.prev(block), h.next(block)
	if prev == noAddr {
		h.freeHead = next
	} else {
		h.setNext(prev, next)
	}
	if next != noAddr {
		h.setPrev(next, prev)
	}
}

// coalesce merges block with its immediate address-order neighbours in
// the free list if they are physically adjacent.
func (h *Heap) coalesce(block uint32) {
	if next := h.next(block); next != noAddr && block+h.size(block) == next {
		h.unlinkFree(next)
		h.setSize(block, h.size(block)+h.size(next))
	}
	if prev := h.prev(block); prev != noAddr && prev+h.size(prev) == block {
		h.unlinkFree(block)
		h.setSize(prev, h.size(prev)+h.size(block))
		block = prev
	}
}

// Kmalloc allocates at least n bytes, rounded up to a 16-byte multiple,
// returning the 16-byte-aligned payload address. Returns (0, false) on
// exhaustion; first-fit over the address-ordered free list, splitting
// the tail of the chosen block when the remainder would itself be a
// usable free block (§4.1).
func (h *Heap) Kmalloc(n uint32) (uint32, bool) {
	need := headerSize + roundUp16(n)
	for cur := h.freeHead; cur != noAddr; cur = h.next(cur) {
		size := h.size(cur)
		if size < need {
			continue
		}
		h.unlinkFree(cur)
		if remainder := size - need; remainder >= headerSize {
			h.setSize(cur, need)
			tail := cur + need
			h.formatFreeBlock(tail, remainder)
			h.insertFree(tail)
		}
		h.setSanity(cur, cur+headerSize)
		return cur + headerSize, true
	}
	return 0, false
}

// Kfree releases a payload address previously returned by Kmalloc.
// Frees are located by address, inserted back into the address-ordered
// free list, and coalesced with any adjacent free neighbours. A sanity
// mismatch (double-free, or a pointer the allocator never returned)
// halts the kernel per spec.md §4.1/§7.
func (h *Heap) Kfree(payloadAddr uint32) {
	if payloadAddr < headerSize || payloadAddr > h.MaxAddr {
		panicf("kfree: address %#x out of range", payloadAddr)
	}
	block := payloadAddr - headerSize
	if h.sanity(block) != payloadAddr {
		panicf("kfree: invalid or double-freed pointer %#x", payloadAddr)
	}
	h.setSanity(block, 0)
	h.insertFree(block)
	h.coalesce(block)
}

// FreeBlocks returns (start, size) for every block currently on the free
// list, in address order; used by tests to check §8 Property 1.
func (h *Heap) FreeBlocks() [][2]uint32 {
	var out [][2]uint32
	for cur := h.freeHead; cur != noAddr; cur = h.next(cur) {
		out = append(out, [2]uint32{cur, h.size(cur)})
	}
	return out
}

// Bytes exposes the raw arena for user-buffer reads/writes (copyinout.go).
func (h *Heap) Bytes() []byte { return h.arena }
