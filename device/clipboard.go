//go:build !headless

// clipboard.go - the CLIPBOARD pseudo-device: read() surfaces the host
// clipboard's text to a process, write() pushes text back to it. Grounded
// on the teacher's video_backend_ebiten.go clipboard paste handler
// (sync.Once-guarded clipboard.Init, clipboard.Read(FmtText), capping the
// copied length) reshaped into the keyboard device's open/read/write
// vector shape instead of a host input-event handler.
package device

import (
	"sync"

	"golang.design/x/clipboard"

	"github.com/rockthebesr/xeros/kernel"
)

// maxClipboardBytes bounds a single read, the same cap the teacher
// applies to a pasted block.
const maxClipboardBytes = 4096

type Clipboard struct {
	once sync.Once
	ok   bool
}

func NewClipboard() *Clipboard { return &Clipboard{} }

func (c *Clipboard) Init() kernel.Errno {
	c.once.Do(func() { c.ok = clipboard.Init() == nil })
	return kernel.OK
}

func (c *Clipboard) Open(minor int) (any, kernel.Errno) {
	if !c.ok {
		return nil, kernel.SYSERR
	}
	return nil, kernel.OK
}

func (c *Clipboard) Close(p *kernel.PCB, priv any) kernel.Errno { return kernel.OK }

// Read copies up to len(buf) bytes of the host clipboard's text content,
// capped at maxClipboardBytes regardless of buf's own size.
func (c *Clipboard) Read(p *kernel.PCB, priv any, buf []byte) (int, kernel.Errno) {
	data := clipboard.Read(clipboard.FmtText)
	if len(data) > maxClipboardBytes {
		data = data[:maxClipboardBytes]
	}
	n := copy(buf, data)
	return n, kernel.OK
}

// Write replaces the host clipboard's text content with buf.
func (c *Clipboard) Write(p *kernel.PCB, priv any, buf []byte) (int, kernel.Errno) {
	clipboard.Write(clipboard.FmtText, buf)
	return len(buf), kernel.OK
}

func (c *Clipboard) Ioctl(priv any, cmd int, args []int64) (int64, kernel.Errno) {
	return 0, kernel.SYSERR
}
