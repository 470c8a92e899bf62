// copyinout.go - user pointer validation (§4.8), grounded on
// original_source/c/copyinout.c. "User pointers" here are offsets into
// the same flat Heap arena every process's buffers are carved from
// (see SPEC_FULL.md's re-architecture note); this keeps the hole and
// kernel-stack exclusions meaningful without real hardware addressing.

package kernel

// KernelStackSize is the size of the reserved range at the top of the
// arena that verify_usrptr must never let a user pointer touch.
const KernelStackSize = 4096

// VerifyUsrPtr accepts (ptr, len) iff ptr and len are nonzero and the
// whole inclusive range [ptr, ptr+len-1] lies within [0, MaxAddr),
// entirely outside the hole
// [HoleLo, HoleHi), and entirely outside the kernel stack range
// [MaxAddr-KernelStackSize, MaxAddr).
func (h *Heap) VerifyUsrPtr(ptr uint32, length uint32) Errno {
	if length == 0 {
		return EINVAL
	}
	end := ptr + length - 1
	if end < ptr { // overflow
		return EINVAL
	}
	if ptr == 0 || end >= h.MaxAddr {
		return EINVAL
	}
	if h.HoleHi > h.HoleLo && rangesOverlap(ptr, end, h.HoleLo, h.HoleHi-1) {
		return EINVAL
	}
	stackLo := h.MaxAddr - KernelStackSize
	if rangesOverlap(ptr, end, stackLo, h.MaxAddr-1) {
		return EINVAL
	}
	return OK
}

func rangesOverlap(aLo, aHi, bLo, bHi uint32) bool {
	return aLo <= bHi && bLo <= aHi
}

// VerifyUsrStr validates a NUL-terminated string of unknown length by
// checking one byte at a time until a NUL is found or validation fails
// (§4.8). Returns the string length (excluding the NUL) and OK, or the
// failing Errno.
func (h *Heap) VerifyUsrStr(ptr uint32) (int, Errno) {
	n := 0
	for {
		if err := h.VerifyUsrPtr(ptr+uint32(n), 1); err != OK {
			return 0, err
		}
		if h.arena[ptr+uint32(n)] == 0 {
			return n, OK
		}
		n++
	}
}
