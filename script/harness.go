// harness.go - a Lua-scriptable process harness standing in for the
// login/shell user processes spec.md excludes as external (§1's
// Non-goals). Each script runs as a real kernel process: EntryFromSource
// builds a kernel.EntryFunc that starts a Lua state and binds the
// syscall surface as Lua globals, so §8's end-to-end scenarios can be
// authored as data instead of Go closures, the same spirit as the
// teacher's debug console exposing a command surface over its own
// runtime state.
package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/rockthebesr/xeros/kernel"
)

// maxMsgBytes bounds a single send/recv string marshalled through the
// shared arena for one Lua call.
const maxMsgBytes = 4096

// EntryFromSource returns a process entry point that runs source as a
// Lua program against ctx. An uncaught Lua error is reported via Kprintf;
// either way the entry point then returns and the process stops, matching
// §4.3's "falling off the end of main acts as stop()".
func EntryFromSource(source string) kernel.EntryFunc {
	return func(ctx *kernel.ProcContext) {
		L := lua.NewState()
		defer L.Close()
		bind(L, ctx)
		if err := L.DoString(source); err != nil {
			kernel.Kprintf("script pid %d: %v\n", ctx.Pid(), err)
		}
	}
}

func bind(L *lua.LState, ctx *kernel.ProcContext) {
	reg := func(name string, fn lua.LGFunction) { L.SetGlobal(name, L.NewFunction(fn)) }

	reg("getpid", func(L *lua.LState) int {
		L.Push(lua.LNumber(ctx.Pid()))
		return 1
	})

	reg("yield", func(L *lua.LState) int {
		ctx.Yield()
		return 0
	})

	reg("sleep", func(L *lua.LState) int {
		ms := int64(L.CheckNumber(1))
		L.Push(lua.LNumber(ctx.Sleep(ms)))
		return 1
	})

	reg("kill", func(L *lua.LState) int {
		pid := L.CheckInt(1)
		signo := L.CheckInt(2)
		L.Push(lua.LNumber(ctx.Kill(pid, signo).Int()))
		return 1
	})

	reg("puts", func(L *lua.LState) int {
		s := L.CheckString(1)
		ptr, ok := ctx.Kmalloc(uint32(len(s) + 1))
		if !ok {
			L.Push(lua.LNumber(-1))
			return 1
		}
		defer ctx.Kfree(ptr)
		buf := ctx.Bytes()
		copy(buf[ptr:], s)
		buf[ptr+uint32(len(s))] = 0
		L.Push(lua.LNumber(ctx.Puts(ptr).Int()))
		return 1
	})

	reg("send", func(L *lua.LState) int {
		dest := L.CheckInt(1)
		s := L.CheckString(2)
		ptr, ok := ctx.Kmalloc(uint32(len(s)))
		if !ok {
			L.Push(lua.LNumber(-1))
			return 1
		}
		defer ctx.Kfree(ptr)
		copy(ctx.Bytes()[ptr:], s)
		L.Push(lua.LNumber(ctx.Send(dest, ptr, uint32(len(s))).Int()))
		return 1
	})

	reg("recv", func(L *lua.LState) int {
		src := L.CheckInt(1)
		n := L.OptInt(2, maxMsgBytes)
		ptr, ok := ctx.Kmalloc(uint32(n))
		if !ok {
			L.Push(lua.LNumber(-1))
			L.Push(lua.LString(""))
			return 2
		}
		defer ctx.Kfree(ptr)
		err := ctx.Recv(src, ptr, uint32(n))
		L.Push(lua.LNumber(err.Int()))
		L.Push(lua.LString(string(ctx.Bytes()[ptr : ptr+uint32(n)])))
		return 2
	})

	reg("recvany", func(L *lua.LState) int {
		n := L.OptInt(1, maxMsgBytes)
		ptr, ok := ctx.Kmalloc(uint32(n))
		if !ok {
			L.Push(lua.LNumber(-1))
			L.Push(lua.LNumber(0))
			L.Push(lua.LString(""))
			return 3
		}
		fromPtr, ok2 := ctx.Kmalloc(4)
		if !ok2 {
			ctx.Kfree(ptr)
			L.Push(lua.LNumber(-1))
			L.Push(lua.LNumber(0))
			L.Push(lua.LString(""))
			return 3
		}
		defer ctx.Kfree(ptr)
		defer ctx.Kfree(fromPtr)
		err := ctx.RecvAny(ptr, uint32(n), fromPtr)
		buf := ctx.Bytes()
		fromPid := uint32(buf[fromPtr]) | uint32(buf[fromPtr+1])<<8 | uint32(buf[fromPtr+2])<<16 | uint32(buf[fromPtr+3])<<24
		L.Push(lua.LNumber(err.Int()))
		L.Push(lua.LNumber(fromPid))
		L.Push(lua.LString(string(buf[ptr : ptr+uint32(n)])))
		return 3
	})

	reg("create", func(L *lua.LState) int {
		childSource := L.CheckString(1)
		stackBytes := uint32(L.OptInt(2, int(kernel.MinStackBytes)))
		pid, err := ctx.Create(EntryFromSource(childSource), stackBytes)
		if err != kernel.OK {
			L.Push(lua.LNumber(err.Int()))
			return 1
		}
		L.Push(lua.LNumber(pid))
		return 1
	})

	reg("wait", func(L *lua.LState) int {
		pid := L.CheckInt(1)
		L.Push(lua.LNumber(ctx.Wait(pid).Int()))
		return 1
	})

	reg("sighandler", func(L *lua.LState) int {
		signo := L.CheckInt(1)
		fn := L.CheckFunction(2)
		handler := func() {
			if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
				kernel.Kprintf("script pid %d: signal handler: %v\n", ctx.Pid(), err)
			}
		}
		_, err := ctx.SigHandler(signo, handler)
		L.Push(lua.LNumber(err.Int()))
		return 1
	})

	reg("cputimes_count", func(L *lua.LState) int {
		ptr, ok := ctx.Kmalloc(4096)
		if !ok {
			L.Push(lua.LNumber(-1))
			return 1
		}
		defer ctx.Kfree(ptr)
		n := ctx.CpuTimes(ptr, 4096)
		L.Push(lua.LNumber(n))
		return 1
	})
}
