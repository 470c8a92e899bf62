// keyboard.go - the keyboard device (§4.9), grounded on
// original_source/c/kbd.c: same scancode decode tables, modifier-key
// state machine, pre-read circular buffer, and pending-read task queue,
// re-expressed as a kernel.Device/kernel.InterruptDevice pair instead of
// a devsw_t with static file-scope globals.
//
// The original registers the keyboard twice under kbd_devsw_create with
// different echo_flag arguments, sharing one g_kbd_in_use boolean across
// both devsw entries (only one of the two may be open at a time). Here
// that becomes two minors of a single Device, with a semaphore standing
// in for g_kbd_in_use: whichever minor opens first holds it until every
// open on that minor is closed.
package device

import (
	"golang.org/x/sync/semaphore"

	"github.com/rockthebesr/xeros/kernel"
)

// Minor selects the keyboard's open mode: whether input is echoed back
// through Kprintf as it's typed.
const (
	MinorEcho   = 0
	MinorNoEcho = 1
)

// Ioctl commands, matching kbd.c's KEYBOARD_IOCTL_* constants.
const (
	IoctlSetEOF = iota
	IoctlEnableEcho
	IoctlDisableEcho
	IoctlGetEOF
	IoctlGetEcho
)

const (
	defaultEOF = 0x04 // ASCII EOT, kbd.c's KBD_DEFAULT_EOF

	taskQueueSize  = 32 // kbd.c's KBD_TASK_QUEUE_SIZE
	preReadBufSize = 5  // kbd.c's KEYBOARD_BUFFER_SIZE (4 usable + 1 wasted slot)

	scancodeTableLen = 0x54
)

// modifier scancodes, kbd.c's keyboard_process_scancode switch.
const (
	scShiftPressA   = 0x2A
	scShiftPressB   = 0x36
	scShiftReleaseA = 0xAA
	scShiftReleaseB = 0xB6
	scCtrlPress     = 0x1D
	scCtrlRelease   = 0x9D
	scCapsLock      = 0x3A
)

// lower/upper/ctrl are kbd.c's keyboard_process_scancode tables, verbatim.
var lowerTable = [scancodeTableLen]byte{
	// 0x00 - 0x07
	0, 0x1B, '1', '2', '3', '4', '5', '6',
	// 0x08 - 0x0F
	'7', '8', '9', '0', '-', '=', 0x08, '\t',
	// 0x10 - 0x17
	'q', 'w', 'e', 'r', 't', 'y', 'u', 'i',
	// 0x18 - 0x1F
	'o', 'p', '[', ']', '\n', 0, 'a', 's',
	// 0x20 - 0x27
	'd', 'f', 'g', 'h', 'j', 'k', 'l', ';',
	// 0x28 - 0x2F
	'\'', '`', 0, '\\', 'z', 'x', 'c', 'v',
	// 0x30 - 0x37
	'b', 'n', 'm', ',', '.', '/', 0, 0x2A,
	// 0x38 - 0x3F
	0, ' ', 0, 0, 0, 0, 0, 0,
	// 0x40 - 0x47
	0, 0, 0, 0, 0, 0, 0, 0,
	// 0x48 - 0x4F
	0, 0, 0x2D, 0, 0, 0, 0x2B, 0,
	// 0x50 - 0x53
	0, 0, 0, 0,
}

var upperTable = [scancodeTableLen]byte{
	// 0x00 - 0x07
	0, 0x1B, '!', '@', '#', '$', '%', '^',
	// 0x08 - 0x0F
	'&', '*', '(', ')', '_', '+', 0x08, '\t',
	// 0x10 - 0x17
	'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I',
	// 0x18 - 0x1F
	'O', 'P', '{', '}', '\n', 0, 'A', 'S',
	// 0x20 - 0x27
	'D', 'F', 'G', 'H', 'J', 'K', 'L', ':',
	// 0x28 - 0x2F
	'"', '~', 0, '|', 'Z', 'X', 'C', 'V',
	// 0x30 - 0x37
	'B', 'N', 'M', '<', '>', '?', 0, 0,
	// 0x38 - 0x3F
	0, ' ', 0, 0, 0, 0, 0, 0,
	// 0x40 - 0x47
	0, 0, 0, 0, 0, 0, 0, 0x37,
	// 0x48 - 0x4F
	0x38, 0x39, 0x2D, 0x34, 0x35, 0x36, 0x2B, 0x31,
	// 0x50 - 0x53
	0x32, 0x33, 0x30, 0x2E,
}

var ctrlTable = [scancodeTableLen]byte{
	// 0x00 - 0x07
	0, 0x1B, 0, 0, 0, 0, 0, 0x1E,
	// 0x08 - 0x0F
	0, 0, 0, 0, 0x1F, 0, 0x7F, 0,
	// 0x10 - 0x17
	0x11, 0x17, 0x05, 0x12, 0x14, 0x19, 0x15, 0x09,
	// 0x18 - 0x1F
	0x0F, 0x10, 0x1B, 0x1D, 0x0A, 0, 0x01, 0x13,
	// 0x20 - 0x27
	0x04, 0x06, 0x07, 0x08, 0x0A, 0x0B, 0x0C, 0,
	// 0x28 - 0x2F
	0, 0, 0, 0x1C, 0x1A, 0x18, 0x03, 0x16,
	// 0x30 - 0x37
	0x02, 0x0E, 0x0D, 0, 0, 0, 0, 0x10,
	// 0x38 - 0x3F
	0, ' ', 0, 0, 0, 0, 0, 0,
	// 0x40 - 0x47
	0, 0, 0, 0, 0, 0, 0, 0,
	// 0x48 - 0x4F
	0, 0, 0, 0, 0, 0, 0, 0,
	// 0x50 - 0x53
	0, 0, 0, 0,
}

var (
	lowerReverse, upperReverse, ctrlReverse map[byte]byte
)

func init() {
	lowerReverse = reverseTable(&lowerTable)
	upperReverse = reverseTable(&upperTable)
	ctrlReverse = reverseTable(&ctrlTable)
}

func reverseTable(t *[scancodeTableLen]byte) map[byte]byte {
	m := make(map[byte]byte, scancodeTableLen)
	for sc, c := range t {
		if c != 0 {
			if _, exists := m[c]; !exists {
				m[c] = byte(sc)
			}
		}
	}
	return m
}

// ASCIIToScancode reverse-maps an ASCII byte to a (scancode, needShift,
// needCtrl) triple a host frontend with only ASCII input (a terminal, an
// injected script) can feed through FeedScancode as if a real keyboard
// had produced it: press the modifier, press the key, release the
// modifier. Used by console.TerminalHost and console's IPC "keys"
// command, neither of which has access to real PC scancodes.
func ASCIIToScancode(c byte) (scancode byte, needShift, needCtrl bool, ok bool) {
	if sc, found := lowerReverse[c]; found {
		return sc, false, false, true
	}
	if sc, found := upperReverse[c]; found {
		return sc, true, false, true
	}
	if sc, found := ctrlReverse[c]; found {
		return sc, false, true, true
	}
	return 0, false, false, false
}

// task is one pending read parked against the keyboard, kbd.c's
// kbd_task_t. base is how many bytes Read already drained synchronously
// from the pre-read buffer before parking, so the eventual WakeBlockedIO
// reports the full count, not just what arrived after parking.
type task struct {
	proc *kernel.PCB
	buf  []byte
	base int
	pos  int
}

// Keyboard is the §4.9 driver: two minors sharing one scancode decoder,
// one EOF/echo configuration, one pre-read buffer, and one pending-task
// queue, gated so only one minor is open at a time.
type Keyboard struct {
	sem         *semaphore.Weighted
	refCount    int
	lockedMinor int

	shift, ctrl, capsLock bool

	eof  byte
	echo bool
	done bool

	preRead                  [preReadBufSize]byte
	preReadHead, preReadTail int

	tasks              [taskQueueSize]*task
	taskHead, taskTail int
}

// NewKeyboard builds an unopened keyboard device.
func NewKeyboard() *Keyboard {
	return &Keyboard{sem: semaphore.NewWeighted(1)}
}

func (kb *Keyboard) Init() kernel.Errno {
	kb.refCount = 0
	kb.done = false
	kb.taskHead, kb.taskTail = 0, 0
	kb.preReadHead, kb.preReadTail = 0, 0
	return kernel.OK
}

// Open acquires the shared keyboard lock on the first open of a minor and
// refuses a different minor while it's held, kbd_open's g_kbd_in_use
// check generalized to two minors instead of one device.
func (kb *Keyboard) Open(minor int) (any, kernel.Errno) {
	if kb.refCount > 0 {
		if kb.lockedMinor != minor {
			return nil, kernel.EBUSY
		}
		kb.refCount++
		return minor, kernel.OK
	}
	if !kb.sem.TryAcquire(1) {
		return nil, kernel.EBUSY
	}
	kb.lockedMinor = minor
	kb.refCount = 1
	kb.shift, kb.ctrl, kb.capsLock = false, false, false
	kb.done = false
	kb.eof = defaultEOF
	kb.echo = minor == MinorEcho
	kb.preReadHead, kb.preReadTail = 0, 0
	kb.taskHead, kb.taskTail = 0, 0
	return minor, kernel.OK
}

// Close releases priv's hold on the keyboard lock once every open on the
// locked minor has closed, and drops any of p's tasks still parked in the
// queue (they can never be serviced after p is gone).
func (kb *Keyboard) Close(p *kernel.PCB, priv any) kernel.Errno {
	if kb.refCount == 0 {
		return kernel.EBADF
	}
	kb.dropTasksOf(p)
	kb.refCount--
	if kb.refCount == 0 {
		kb.sem.Release(1)
	}
	return kernel.OK
}

func (kb *Keyboard) dropTasksOf(p *kernel.PCB) {
	var kept []*task
	for i := kb.taskTail; i != kb.taskHead; i = (i + 1) % taskQueueSize {
		if kb.tasks[i].proc != p {
			kept = append(kept, kb.tasks[i])
		}
	}
	kb.taskHead, kb.taskTail = 0, 0
	for _, t := range kept {
		kb.tasks[kb.taskHead] = t
		kb.taskHead = (kb.taskHead + 1) % taskQueueSize
	}
}

// Read drains whatever is already buffered, then parks as a task if buf
// isn't full yet and EOF hasn't already been seen (kbd_read).
func (kb *Keyboard) Read(p *kernel.PCB, priv any, buf []byte) (int, kernel.Errno) {
	pos := 0
	for pos < len(buf) && kb.preReadHead != kb.preReadTail {
		c := kb.preRead[kb.preReadTail]
		kb.preReadTail = (kb.preReadTail + 1) % preReadBufSize
		if c == kb.eof {
			kb.done = true
			return pos, kernel.OK
		}
		buf[pos] = c
		pos++
		if c == '\n' {
			return pos, kernel.OK
		}
	}
	if pos == len(buf) {
		return pos, kernel.OK
	}
	if kb.done {
		return pos, kernel.OK
	}
	kb.tasks[kb.taskHead] = &task{proc: p, buf: buf[pos:], base: pos}
	kb.taskHead = (kb.taskHead + 1) % taskQueueSize
	return 0, kernel.BlockPending
}

// Write always fails: the keyboard has no output side (kbd_write).
func (kb *Keyboard) Write(p *kernel.PCB, priv any, buf []byte) (int, kernel.Errno) {
	return 0, kernel.SYSERR
}

func (kb *Keyboard) Ioctl(priv any, cmd int, args []int64) (int64, kernel.Errno) {
	switch cmd {
	case IoctlSetEOF:
		if len(args) == 0 {
			return 0, kernel.SYSERR
		}
		kb.eof = byte(args[0])
		return 0, kernel.OK
	case IoctlEnableEcho:
		kb.echo = true
		return 0, kernel.OK
	case IoctlDisableEcho:
		kb.echo = false
		return 0, kernel.OK
	case IoctlGetEOF:
		return int64(kb.eof), kernel.OK
	case IoctlGetEcho:
		if kb.echo {
			return 1, kernel.OK
		}
		return 0, kernel.OK
	default:
		return 0, kernel.SYSERR
	}
}

// HandleInput is the keyboard ISR (keyboard_isr): decode one scancode,
// echo it if the open minor wants that, then either hand it straight to
// the oldest pending task or, if none is waiting, buffer it.
func (kb *Keyboard) HandleInput(k *kernel.Kernel, scancode byte) {
	if kb.refCount == 0 || kb.done {
		return
	}
	c := kb.decode(scancode)
	if c == 0 {
		return
	}
	if kb.echo {
		kernel.Kprintf("%c", c)
	}
	if kb.taskTail != kb.taskHead {
		kb.deliverToTask(k, c)
		return
	}
	next := (kb.preReadHead + 1) % preReadBufSize
	if next != kb.preReadTail {
		kb.preRead[kb.preReadHead] = c
		kb.preReadHead = next
	}
}

// deliverToTask is keyboard_process_char: feed c to the oldest parked
// task, completing it (and waking its owner) on a full buffer or '\n'.
func (kb *Keyboard) deliverToTask(k *kernel.Kernel, c byte) {
	if c == kb.eof {
		kb.handleEOF(k)
		return
	}
	t := kb.tasks[kb.taskTail]
	t.buf[t.pos] = c
	t.pos++
	if t.pos == len(t.buf) || c == '\n' {
		kb.taskTail = (kb.taskTail + 1) % taskQueueSize
		k.WakeBlockedIO(t.proc, t.base+t.pos)
	}
}

// handleEOF is keyboard_handle_eof: latch done, stop delivering further
// input, and flush every parked task with whatever it managed to read.
func (kb *Keyboard) handleEOF(k *kernel.Kernel) {
	kb.done = true
	for kb.taskTail != kb.taskHead {
		t := kb.tasks[kb.taskTail]
		kb.taskTail = (kb.taskTail + 1) % taskQueueSize
		k.WakeBlockedIO(t.proc, t.base+t.pos)
	}
}

// decode is keyboard_process_scancode: table lookup gated by the
// ctrl/shift-xor-capslock state machine, falling back to tracking
// modifier key state when the looked-up char is 0.
func (kb *Keyboard) decode(data byte) byte {
	var c byte
	if data < scancodeTableLen {
		switch {
		case kb.ctrl:
			c = ctrlTable[data]
		case kb.shift != kb.capsLock:
			c = upperTable[data]
		default:
			c = lowerTable[data]
		}
	}
	if c != 0 {
		return c
	}
	switch data {
	case scShiftPressA, scShiftPressB:
		kb.shift = true
	case scShiftReleaseA, scShiftReleaseB:
		kb.shift = false
	case scCtrlPress:
		kb.ctrl = true
	case scCtrlRelease:
		kb.ctrl = false
	case scCapsLock:
		kb.capsLock = !kb.capsLock
	}
	return 0
}
