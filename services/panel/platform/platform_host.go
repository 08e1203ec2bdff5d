// services/panel/platform/platform_host.go
//go:build !rp2040

package platform

import (
	"sync"
	"time"

	"capbutton-go/errcode"
	"capbutton-go/services/panel"
	"capbutton-go/x/shmring"
	"capbutton-go/x/timex"
)

// GetResources returns simulated bindings for host builds. The sims are
// deliberately small: pins latch levels, the control link is a loopback
// ring, and key events are recorded.
func GetResources() panel.Resources {
	return panel.Resources{
		Pins:   NewSimPins(),
		Serial: NewSimSerial(),
		Keys:   &SimKeys{},
		Clock:  HostClock{},
	}
}

// ---- clock ----

type HostClock struct{}

func (HostClock) NowMs() int64          { return timex.NowMs() }
func (HostClock) Sleep(d time.Duration) { time.Sleep(d) }

// ---- GPIO ----

// SimPin latches a level and optionally reports transitions. OnChange
// must be set before the pin is claimed; the callback runs on the
// goroutine that wrote the level.
type SimPin struct {
	mu       sync.Mutex
	number   int
	level    bool
	out      bool
	OnChange func(level bool)
}

func (p *SimPin) Set(level bool) {
	p.mu.Lock()
	changed := p.level != level
	p.level = level
	cb := p.OnChange
	p.mu.Unlock()
	if changed && cb != nil {
		cb(level)
	}
}

func (p *SimPin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *SimPin) Number() int { return p.number }

// SimPins hands out stable *SimPin instances per number and tracks
// claim ownership.
type SimPins struct {
	mu     sync.Mutex
	pins   map[int]*SimPin
	owners map[int]string
}

func NewSimPins() *SimPins {
	return &SimPins{pins: map[int]*SimPin{}, owners: map[int]string{}}
}

// Pin returns the sim pin for n, creating it on first use so callers can
// pre-wire callbacks before the service claims it.
func (f *SimPins) Pin(n int) *SimPin {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pinLocked(n)
}

func (f *SimPins) pinLocked(n int) *SimPin {
	p, ok := f.pins[n]
	if !ok {
		p = &SimPin{number: n}
		f.pins[n] = p
	}
	return p
}

func (f *SimPins) claim(owner string, n int) (*SimPin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, inUse := f.owners[n]; inUse && cur != owner {
		return nil, errcode.PinInUse
	}
	f.owners[n] = owner
	return f.pinLocked(n), nil
}

func (f *SimPins) ClaimOutput(owner string, n int, initial bool) (panel.OutputPin, error) {
	p, err := f.claim(owner, n)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.out = true
	p.mu.Unlock()
	p.Set(initial)
	return p, nil
}

func (f *SimPins) ClaimInput(owner string, n int, _ panel.Pull) (panel.InputPin, error) {
	p, err := f.claim(owner, n)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.out = false
	p.mu.Unlock()
	return p, nil
}

func (f *SimPins) Release(owner string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.owners[n]; ok && cur == owner {
		delete(f.owners, n)
	}
}

// ---- serial (loopback ring) ----

const simRingSize = 64

// SimSerial hands out ring-backed byte sources. Feed pushes bytes in
// from the scripting side; the claimed source drains them.
type SimSerial struct {
	mu     sync.Mutex
	rings  map[string]*shmring.Ring
	owners map[string]string
}

func NewSimSerial() *SimSerial {
	return &SimSerial{rings: map[string]*shmring.Ring{}, owners: map[string]string{}}
}

func (s *SimSerial) ring(busName string) *shmring.Ring {
	r, ok := s.rings[busName]
	if !ok {
		r = shmring.New(simRingSize)
		s.rings[busName] = r
	}
	return r
}

func (s *SimSerial) Claim(owner, busName string, _ uint32) (panel.ByteSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, taken := s.owners[busName]; taken && cur != owner {
		return nil, errcode.BusInUse
	}
	s.owners[busName] = owner
	return &ringSource{r: s.ring(busName)}, nil
}

func (s *SimSerial) Release(owner, busName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.owners[busName]; ok && cur == owner {
		delete(s.owners, busName)
	}
}

// Feed appends bytes to the named link, returning how many fit.
func (s *SimSerial) Feed(busName string, p []byte) int {
	s.mu.Lock()
	r := s.ring(busName)
	s.mu.Unlock()
	return r.TryWriteFrom(p)
}

type ringSource struct{ r *shmring.Ring }

func (s *ringSource) Buffered() int { return s.r.Available() }

func (s *ringSource) ReadByte() (byte, error) {
	var b [1]byte
	if s.r.TryReadInto(b[:]) == 0 {
		return 0, errNoData
	}
	return b[0], nil
}

// ---- keys ----

// SimKeys records key activity for assertions and demos.
type SimKeys struct {
	mu       sync.Mutex
	presses  []byte
	releases int
	OnPress  func(key byte)
}

func (k *SimKeys) Press(key byte) {
	k.mu.Lock()
	k.presses = append(k.presses, key)
	cb := k.OnPress
	k.mu.Unlock()
	if cb != nil {
		cb(key)
	}
}

func (k *SimKeys) ReleaseAll() {
	k.mu.Lock()
	k.releases++
	k.mu.Unlock()
}

// Presses returns a copy of every key pressed so far.
func (k *SimKeys) Presses() []byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]byte(nil), k.presses...)
}

// Releases returns how many release-all calls have happened.
func (k *SimKeys) Releases() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.releases
}
