//go:build headless

// bell_headless.go - a dependency-free Bell for headless test runs: same
// vector-table surface as bell.go, minus the oto backend. Ring just
// counts, so tests can assert "the bell fired" without audio hardware.
package device

import "github.com/rockthebesr/xeros/kernel"

const IoctlBellRing = 0

type Bell struct {
	Rings int
}

func NewBell() *Bell { return &Bell{} }

func (b *Bell) Init() kernel.Errno                                 { return kernel.OK }
func (b *Bell) Open(minor int) (any, kernel.Errno)                 { return nil, kernel.OK }
func (b *Bell) Close(p *kernel.PCB, priv any) kernel.Errno         { return kernel.OK }
func (b *Bell) Read(p *kernel.PCB, priv any, buf []byte) (int, kernel.Errno) {
	return 0, kernel.SYSERR
}

func (b *Bell) Write(p *kernel.PCB, priv any, buf []byte) (int, kernel.Errno) {
	for _, c := range buf {
		if c == 0x07 {
			b.Rings++
		}
	}
	return len(buf), kernel.OK
}

func (b *Bell) Ioctl(priv any, cmd int, args []int64) (int64, kernel.Errno) {
	switch cmd {
	case IoctlBellRing:
		b.Rings++
		return 0, kernel.OK
	default:
		return 0, kernel.SYSERR
	}
}
