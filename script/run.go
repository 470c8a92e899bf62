// run.go - boots a Kernel with a single Lua source as its init process,
// the entry point run_test.go and main.go's IPC "script" command both use.
package script

import "github.com/rockthebesr/xeros/kernel"

// Run boots a fresh kernel under cfg running source as init, returning
// Boot's exit code once every process (including init) has terminated.
func Run(cfg kernel.Config, source string) int {
	k := kernel.New(cfg)
	return k.Boot(EntryFromSource(source), kernel.MinStackBytes)
}
