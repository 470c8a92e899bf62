//go:build !headless

// input_interactive.go - wires a real terminal into a booting kernel.
// Split from main.go by the same headless/interactive build tag the
// teacher uses for its video/audio backends, since golang.org/x/term
// needs a real tty.
package main

import (
	"github.com/rockthebesr/xeros/console"
	"github.com/rockthebesr/xeros/kernel"
)

func startInputHost(k *kernel.Kernel) (stop func()) {
	host := console.NewTerminalHost(k)
	host.Start()
	return host.Stop
}
