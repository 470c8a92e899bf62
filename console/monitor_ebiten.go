//go:build ebiten_monitor

// monitor_ebiten.go - an optional visual process monitor window listing
// every live PCB's pid and state, grounded on the teacher's
// video_backend_ebiten.go (RunGame launched from a goroutine in Start,
// Update/Draw/Layout implementing ebiten.Game).
package console

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/rockthebesr/xeros/kernel"
)

type EbitenMonitor struct {
	k       *kernel.Kernel
	running bool
}

func NewMonitor() Monitor { return &EbitenMonitor{} }

func (m *EbitenMonitor) Start(k *kernel.Kernel) error {
	if m.running {
		return nil
	}
	m.k = k
	m.running = true
	ebiten.SetWindowSize(480, 360)
	ebiten.SetWindowTitle("xeros process monitor")
	ebiten.SetRunnableOnUnfocused(true)

	go func() {
		_ = ebiten.RunGame(m)
	}()
	return nil
}

func (m *EbitenMonitor) Stop() error {
	m.running = false
	return nil
}

func (m *EbitenMonitor) Update() error {
	if !m.running {
		return ebiten.Termination
	}
	return nil
}

func (m *EbitenMonitor) Draw(screen *ebiten.Image) {
	var b strings.Builder
	fmt.Fprintf(&b, "pid  state\n")
	for _, p := range m.k.Table().AllLive() {
		fmt.Fprintf(&b, "%-4d %s\n", p.Pid, p.State)
	}
	ebitenutil.DebugPrint(screen, b.String())
}

func (m *EbitenMonitor) Layout(_, _ int) (int, int) { return 480, 360 }
