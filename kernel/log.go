// log.go - the kernel's one seam to the outside console, standing in for
// the excluded-as-external raw serial kprintf path named in spec.md §1.
// Kernel code never writes to stdout directly; it calls Kprintf, and
// tests can swap the writer to capture output.

package kernel

import (
	"fmt"
	"io"
	"os"
)

// consoleWriter is where Kprintf sends formatted output, PUTS output and
// keyboard echo included. Defaults to stderr.
var consoleWriter io.Writer = os.Stderr

// SetConsole redirects kernel diagnostic output, e.g. to a test buffer.
func SetConsole(w io.Writer) { consoleWriter = w }

// Kprintf writes a formatted diagnostic line to the configured console.
func Kprintf(format string, args ...any) {
	fmt.Fprintf(consoleWriter, format, args...)
}

// panicf reports a violated kernel invariant (queue corruption,
// double-free, an unknown context-switch reason) and halts, matching
// spec.md §7's "invariant violation: fatal, halt with a diagnostic".
func panicf(format string, args ...any) {
	panic(fmt.Sprintf("xeros: fatal: "+format, args...))
}
