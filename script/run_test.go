package script

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rockthebesr/xeros/kernel"
)

func testConfig() kernel.Config {
	return kernel.Config{
		MemSize:    1 << 20,
		HoleLo:     0,
		HoleHi:     0,
		TickPeriod: time.Millisecond,
	}
}

func TestRunPutsExits(t *testing.T) {
	var out strings.Builder
	kernel.SetConsole(&out)
	defer kernel.SetConsole(os.Stderr)

	code := Run(testConfig(), `puts("hello from lua\n")`)
	if code != 0 {
		t.Fatalf("Run: exit code %d", code)
	}
	if !strings.Contains(out.String(), "hello from lua") {
		t.Fatalf("Run: expected puts output, got %q", out.String())
	}
}

// TestRunMessageRoundTrip is §8 Scenario B in miniature: one producer
// sends a fixed payload to a consumer ten times over recvany.
func TestRunMessageRoundTrip(t *testing.T) {
	const script = `
local child = create([[
  for i = 1, 10 do
    local ok, from, msg = recvany(4)
    if msg ~= "ping" then
      error("unexpected payload: " .. msg)
    end
  end
]])
for i = 1, 10 do
  send(child, "ping")
end
wait(child)
`
	code := Run(testConfig(), script)
	if code != 0 {
		t.Fatalf("Run: exit code %d", code)
	}
}

// TestRunSignalPriority is §8 Scenario E in miniature: signals delivered
// highest-numbered first.
func TestRunSignalPriority(t *testing.T) {
	var out strings.Builder
	kernel.SetConsole(&out)
	defer kernel.SetConsole(os.Stderr)

	const script = `
local me = getpid()
sighandler(0, function() puts("sig0\n") end)
sighandler(15, function() puts("sig15\n") end)
sighandler(31, function() puts("sig31\n") end)
kill(me, 0)
kill(me, 15)
kill(me, 31)
yield()
`
	code := Run(testConfig(), script)
	if code != 0 {
		t.Fatalf("Run: exit code %d", code)
	}
	got := out.String()
	i31 := strings.Index(got, "sig31")
	i15 := strings.Index(got, "sig15")
	i0 := strings.Index(got, "sig0")
	if !(i31 >= 0 && i15 > i31 && i0 > i15) {
		t.Fatalf("Run: expected sig31 before sig15 before sig0, got %q", got)
	}
}
