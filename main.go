// main.go - the boot entry point: parses the Config flags original
// kernel.c took as compile-time constants (memory size, hole bounds,
// tick period), wires up the device vector and
// optional console frontends, and runs Boot to completion. flag.Usage
// shape grounded on the teacher's cmd/ie32to64/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rockthebesr/xeros/console"
	"github.com/rockthebesr/xeros/device"
	"github.com/rockthebesr/xeros/kernel"
	"github.com/rockthebesr/xeros/script"
)

func main() {
	memSize := flag.Uint("mem", 1<<20, "arena size in bytes")
	holeLo := flag.Uint("holelo", 0, "low bound of the reserved hardware hole")
	holeHi := flag.Uint("holehi", 0, "high bound of the reserved hardware hole")
	tick := flag.Duration("tick", 10*time.Millisecond, "timer tick period")
	scriptPath := flag.String("script", "", "run this Lua script as the init process instead of the built-in echo demo")
	enableIPC := flag.Bool("ipc", false, "listen on a Unix control socket for \"keys\"/\"script\" commands")
	enableMonitor := flag.Bool("monitor", false, "start the process monitor frontend")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xeros [options]\n\nBoots the kernel, reading the local tty as its keyboard device.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := kernel.Config{
		MemSize:    uint32(*memSize),
		HoleLo:     uint32(*holeLo),
		HoleHi:     uint32(*holeHi),
		TickPeriod: *tick,
	}

	k := kernel.New(cfg)
	k.RegisterDevice(kernel.DevKeyboard, device.NewKeyboard())
	k.RegisterDevice(kernel.DevBell, device.NewBell())
	k.RegisterDevice(kernel.DevClipboard, device.NewClipboard())

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	stopInput := startInputHost(k)
	g.Go(func() error {
		<-ctx.Done()
		stopInput()
		return nil
	})

	if *enableIPC {
		ipc, err := console.NewIPCServer(k, func(path string) error {
			source, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			go script.Run(cfg, string(source))
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "xeros: ipc: %v\n", err)
		} else {
			ipc.Start()
			g.Go(func() error {
				<-ctx.Done()
				ipc.Stop()
				return nil
			})
		}
	}

	var mon console.Monitor
	if *enableMonitor {
		mon = console.NewMonitor()
		if err := mon.Start(k); err != nil {
			fmt.Fprintf(os.Stderr, "xeros: monitor: %v\n", err)
			mon = nil
		}
	}

	entry := defaultInitEntry
	if *scriptPath != "" {
		source, err := os.ReadFile(*scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "xeros: %v\n", err)
			os.Exit(1)
		}
		entry = script.EntryFromSource(string(source))
	}

	code := k.Boot(entry, kernel.MinStackBytes)

	if mon != nil {
		mon.Stop()
	}
	cancel()
	g.Wait()

	os.Exit(code)
}

// defaultInitEntry reads the keyboard (echoed by the driver itself) until
// EOF, demonstrating the blocking read path when no -script is given.
func defaultInitEntry(ctx *kernel.ProcContext) {
	fd, err := ctx.Open(kernel.DevKeyboard, device.MinorEcho)
	if err != kernel.OK {
		return
	}
	defer ctx.Close(fd)

	ptr, ok := ctx.Kmalloc(64)
	if !ok {
		return
	}
	defer ctx.Kfree(ptr)

	for {
		n := ctx.Read(fd, ptr, 64)
		if n <= 0 {
			return
		}
	}
}
