// monitor.go - the process monitor frontend contract: a periodically
// refreshed view of the kernel's PCB table.
// Two implementations exist, selected by build tag exactly like the
// teacher's video_backend_headless.go/video_backend_ebiten.go split:
// monitor_headless.go (default, no graphics dependency) and
// monitor_ebiten.go (//go:build ebiten_monitor, a real window).
package console

import "github.com/rockthebesr/xeros/kernel"

// Monitor renders a live view of k until Stop is called.
type Monitor interface {
	Start(k *kernel.Kernel) error
	Stop() error
}
