//go:build !ebiten_monitor

// monitor_headless.go - the default, dependency-free Monitor, grounded on
// the teacher's video_backend_headless.go (a no-op stand-in for the real
// backend, selected by the inverse build tag).
package console

import "github.com/rockthebesr/xeros/kernel"

type HeadlessMonitor struct {
	started bool
}

func NewMonitor() Monitor { return &HeadlessMonitor{} }

func (m *HeadlessMonitor) Start(k *kernel.Kernel) error {
	m.started = true
	return nil
}

func (m *HeadlessMonitor) Stop() error {
	m.started = false
	return nil
}
