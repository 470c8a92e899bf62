//go:build headless

// input_headless.go - the headless build has no tty to read; input comes
// from -script or the IPC socket's "keys" command instead.
package main

import "github.com/rockthebesr/xeros/kernel"

func startInputHost(k *kernel.Kernel) (stop func()) {
	return func() {}
}
