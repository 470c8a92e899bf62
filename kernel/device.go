// device.go - the device vector contract (§4.9). Concrete devices
// (keyboard, bell, clipboard) live in package device and are registered
// into a Kernel at boot; the kernel only ever sees this interface, which
// keeps kernel free of any dependency on a specific device's internals.

package kernel

// Device is the open/close/read/write/ioctl vector table described in
// §4.9. Implementations are expected to be safe to call only from kernel
// context (the kernel serializes all device calls itself).
type Device interface {
	// Init is called once at boot, before any Open.
	Init() Errno

	// Open is called when a process issues OPEN for this device id and
	// minor (most devices ignore minor; the keyboard driver uses it to
	// select its echo/no-echo mode, §4.9). Returns a device-private block
	// to be threaded back through the other vector functions for this
	// fd, or an error code as Errno.
	Open(minor int) (priv any, err Errno)

	// Close releases any state Open allocated for priv. p is the closing
	// process, so a device with per-process pending state (the keyboard's
	// task queue, §4.9) can drop just that process's entries.
	Close(p *PCB, priv any) Errno

	// Read attempts to satisfy a read for p into buf. A return of
	// (n, BlockPending) tells the dispatcher to park p; the device must
	// itself later call Kernel.WakeBlockedIO to resume it.
	Read(p *PCB, priv any, buf []byte) (n int, err Errno)

	// Write delegates a write to the device.
	Write(p *PCB, priv any, buf []byte) (n int, err Errno)

	// Ioctl is a device-defined control operation.
	Ioctl(priv any, cmd int, args []int64) (result int64, err Errno)
}

// BlockPending is returned by Device.Read to signal "no data yet, park
// the caller"; it is not a real Errno value returned to user code. The
// dispatcher parks only on READ; WRITE passes any non-OK code, this one
// included, straight back to the caller.
const BlockPending Errno = -100

// openFile is one entry of a PCB's file-descriptor table: a reference to
// the underlying device plus whatever private handle Open returned.
type openFile struct {
	dev  Device
	devID int
	priv any
}
