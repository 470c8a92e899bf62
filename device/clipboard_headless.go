//go:build headless

// clipboard_headless.go - a dependency-free Clipboard for headless test
// runs: an in-process buffer standing in for the host clipboard, same
// vector-table surface as clipboard.go.
package device

import "github.com/rockthebesr/xeros/kernel"

type Clipboard struct {
	text []byte
}

func NewClipboard() *Clipboard { return &Clipboard{} }

func (c *Clipboard) Init() kernel.Errno                         { return kernel.OK }
func (c *Clipboard) Open(minor int) (any, kernel.Errno)         { return nil, kernel.OK }
func (c *Clipboard) Close(p *kernel.PCB, priv any) kernel.Errno { return kernel.OK }

func (c *Clipboard) Read(p *kernel.PCB, priv any, buf []byte) (int, kernel.Errno) {
	n := copy(buf, c.text)
	return n, kernel.OK
}

func (c *Clipboard) Write(p *kernel.PCB, priv any, buf []byte) (int, kernel.Errno) {
	c.text = append(c.text[:0], buf...)
	return len(buf), kernel.OK
}

func (c *Clipboard) Ioctl(priv any, cmd int, args []int64) (int64, kernel.Errno) {
	return 0, kernel.SYSERR
}
