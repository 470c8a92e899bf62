// scancode.go - bridges an ASCII byte stream (a terminal, an injected
// script) into the scancode stream device.Keyboard expects, via
// device.ASCIIToScancode's reverse table lookup.
package console

import (
	"github.com/rockthebesr/xeros/device"
	"github.com/rockthebesr/xeros/kernel"
)

const (
	scShiftPress   = 0x2A
	scShiftRelease = 0xAA
	scCtrlPress    = 0x1D
	scCtrlRelease  = 0x9D
)

// feedASCII delivers one ASCII byte to k as whatever scancode sequence
// would have produced it, synthesizing a modifier press/release pair
// around the key scancode when needed. Bytes with no table entry are
// dropped silently, same as a scancode the original decoder didn't
// recognize.
func feedASCII(k *kernel.Kernel, b byte) {
	sc, needShift, needCtrl, ok := device.ASCIIToScancode(b)
	if !ok {
		return
	}
	if needShift {
		k.FeedScancode(scShiftPress)
	}
	if needCtrl {
		k.FeedScancode(scCtrlPress)
	}
	k.FeedScancode(sc)
	if needCtrl {
		k.FeedScancode(scCtrlRelease)
	}
	if needShift {
		k.FeedScancode(scShiftRelease)
	}
}
