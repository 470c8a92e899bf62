//go:build !headless

// bell.go - the BELL pseudo-device: a short sine-wave tone triggered by
// writing byte 0x07 (the traditional ASCII bell) or by ringing it
// directly via ioctl, grounded on the teacher's audio_backend_oto.go
// (oto.Context/Player setup, an io.Reader-shaped sample source, a mutex
// guarding Start/Stop/Close). Built only for non-headless runs; see
// bell_headless.go for the dependency-free stand-in tests link against.
package device

import (
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/rockthebesr/xeros/kernel"
)

const (
	bellSampleRate = 44100
	bellToneHz     = 880.0
	bellDuration   = 150 * time.Millisecond

	IoctlBellRing = 0
)

// toneSource streams bellDuration worth of a bellToneHz sine wave, then
// silence, the same io.Reader-as-signal-source shape as the teacher's
// OtoPlayer.Read.
type toneSource struct {
	phase   float64
	samples int
	total   int
}

func (t *toneSource) Read(p []byte) (int, error) {
	n := len(p) / 4
	for i := 0; i < n; i++ {
		var v float32
		if t.samples < t.total {
			v = float32(math.Sin(t.phase) * 0.25)
			t.phase += 2 * math.Pi * bellToneHz / bellSampleRate
			t.samples++
		}
		bits := math.Float32bits(v)
		p[i*4+0] = byte(bits)
		p[i*4+1] = byte(bits >> 8)
		p[i*4+2] = byte(bits >> 16)
		p[i*4+3] = byte(bits >> 24)
	}
	return n * 4, nil
}

// Bell is the §4.9-style pseudo-device: write-only, no minors, no
// blocking reads. Ring plays asynchronously so the ringing process isn't
// held up for bellDuration.
type Bell struct {
	ctx   *oto.Context
	mutex sync.Mutex
}

func NewBell() *Bell { return &Bell{} }

func (b *Bell) Init() kernel.Errno {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   bellSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return kernel.SYSERR
	}
	<-ready
	b.ctx = ctx
	return kernel.OK
}

func (b *Bell) Open(minor int) (any, kernel.Errno) { return nil, kernel.OK }
func (b *Bell) Close(p *kernel.PCB, priv any) kernel.Errno { return kernel.OK }

func (b *Bell) Read(p *kernel.PCB, priv any, buf []byte) (int, kernel.Errno) {
	return 0, kernel.SYSERR
}

// Write scans buf for the bell character and rings once per occurrence.
func (b *Bell) Write(p *kernel.PCB, priv any, buf []byte) (int, kernel.Errno) {
	for _, c := range buf {
		if c == 0x07 {
			b.ring()
		}
	}
	return len(buf), kernel.OK
}

func (b *Bell) Ioctl(priv any, cmd int, args []int64) (int64, kernel.Errno) {
	switch cmd {
	case IoctlBellRing:
		b.ring()
		return 0, kernel.OK
	default:
		return 0, kernel.SYSERR
	}
}

func (b *Bell) ring() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	src := &toneSource{total: int(bellSampleRate * bellDuration.Seconds())}
	player := b.ctx.NewPlayer(src)
	player.Play()
	go func() {
		time.Sleep(bellDuration + 20*time.Millisecond)
		player.Close()
	}()
}
