// errno.go - closed set of kernel return codes
//
// These mirror the ABI constants named in the project's syscall surface:
// each is a distinct kind of failure (bad input, exhaustion, peer
// termination, signal delivery) and is never repurposed across kinds.

package kernel

// Errno is a negative syscall result code, or a small positive/zero
// success sentinel. Values are part of the user-facing ABI and must not
// change meaning once assigned.
type Errno int32

const (
	OK    Errno = 1  // generic success
	SYSERR Errno = -1 // generic unspecified failure

	EINVAL     Errno = -6 // bad argument (pointer, pid, signal number, ...)
	ENOMEM     Errno = -7 // allocator exhausted
	EPROCLIMIT Errno = -8 // process table full
	EBUSY      Errno = -9  // device minor already open by the other mode
	EBADF      Errno = -10 // fd not open
	EINVALSIG  Errno = -11 // signal number out of range
	EINVALFUNC Errno = -12 // handler function pointer invalid

	// Messaging / wait outcomes (§4.6, §6).
	SysPidOK    Errno = 0  // rendezvous / wait completed normally
	SysPidDNE   Errno = -1 // named process does not exist / died
	SysPidMe    Errno = -2 // target names the caller itself
	SysErrOther Errno = -3 // malformed buffer/length
	SysMsgBlocked Errno = -4 // call would block; caller has been parked

	// Delivered to a syscall that was blocked when a signal landed on it.
	ProcSignalled Errno = -5
)

// Int returns the errno as a plain int32, the type most syscalls return
// through their process-visible result register.
func (e Errno) Int() int32 { return int32(e) }

// Int64 widens the errno to the PCB's result-register width.
func (e Errno) Int64() int64 { return int64(e) }
