package panel

import (
	"errors"
	"time"
)

// ---- fakes ----
//
// Everything here is lock-free and meant for single-goroutine tests that
// call Step/Tick/Poll directly. Tests that run the loop on its own
// goroutine wrap these with their own synchronisation.

// fakeOutput records every level written to it.
type fakeOutput struct {
	num    int
	level  bool
	writes []bool
}

func (p *fakeOutput) Set(level bool) { p.level = level; p.writes = append(p.writes, level) }
func (p *fakeOutput) Get() bool      { return p.level }
func (p *fakeOutput) Number() int    { return p.num }

var _ OutputPin = (*fakeOutput)(nil)

// fakeInput replays a scripted level sequence, then holds the last value.
type fakeInput struct {
	num    int
	levels []bool
	i      int
}

func (p *fakeInput) Get() bool {
	if p.i < len(p.levels) {
		v := p.levels[p.i]
		p.i++
		return v
	}
	if len(p.levels) == 0 {
		return false
	}
	return p.levels[len(p.levels)-1]
}
func (p *fakeInput) Number() int { return p.num }

var _ InputPin = (*fakeInput)(nil)

// fakeClock only moves when advanced or slept on, so every timing law can
// be pinned to exact millisecond boundaries.
type fakeClock struct {
	nowMs int64
	slept []time.Duration
}

func (c *fakeClock) NowMs() int64 { return c.nowMs }
func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.nowMs += d.Milliseconds()
}
func (c *fakeClock) advance(ms int64) { c.nowMs += ms }

var _ Clock = (*fakeClock)(nil)

// fakeKeys records key actions as one interleaved log so ordering against
// other fakes can be asserted.
type fakeKeys struct {
	log []string
}

func (k *fakeKeys) Press(key byte) { k.log = append(k.log, "down:"+string(key)) }
func (k *fakeKeys) ReleaseAll()    { k.log = append(k.log, "up") }

var _ KeyPort = (*fakeKeys)(nil)

var errNoBytes = errors.New("no bytes queued")

// scriptSource feeds pre-queued control bytes.
type scriptSource struct {
	buf []byte
}

func (s *scriptSource) Buffered() int { return len(s.buf) }
func (s *scriptSource) ReadByte() (byte, error) {
	if len(s.buf) == 0 {
		return 0, errNoBytes
	}
	b := s.buf[0]
	s.buf = s.buf[1:]
	return b, nil
}
func (s *scriptSource) feed(p ...byte) { s.buf = append(s.buf, p...) }

var _ ByteSource = (*scriptSource)(nil)

func newTestLamp() (*Lamp, *fakeOutput) {
	out := &fakeOutput{num: 16}
	return NewLamp(out), out
}
