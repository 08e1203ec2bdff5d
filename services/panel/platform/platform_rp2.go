// services/panel/platform/platform_rp2.go
//go:build rp2040

package platform

import (
	"sync"
	"time"

	"capbutton-go/errcode"
	"capbutton-go/services/panel"
	"capbutton-go/x/timex"
	"machine"
	"machine/usb/hid/keyboard"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// GetResources returns the panel bindings for the RP2040 target.
func GetResources() panel.Resources {
	return panel.Resources{
		Pins:   newPinRegistry(),
		Serial: newSerialRegistry(),
		Keys:   &usbKeyPort{},
		Clock:  mcuClock{},
	}
}

// ---- clock ----

type mcuClock struct{}

func (mcuClock) NowMs() int64          { return timex.NowMs() }
func (mcuClock) Sleep(d time.Duration) { time.Sleep(d) }

// ---- GPIO ----

// Pico exposes GPIO0..GPIO29; GPIO25 drives the on-board LED.
const (
	gpioMin = 0
	gpioMax = 29
)

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }
func (r *rp2Pin) Number() int    { return r.n }

type pinRegistry struct {
	mu     sync.Mutex
	owners map[int]string
}

func newPinRegistry() *pinRegistry {
	return &pinRegistry{owners: map[int]string{}}
}

func (r *pinRegistry) claim(owner string, n int) (*rp2Pin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < gpioMin || n > gpioMax {
		return nil, errcode.UnknownPin
	}
	if cur, inUse := r.owners[n]; inUse && cur != owner {
		return nil, errcode.PinInUse
	}
	r.owners[n] = owner
	return &rp2Pin{p: machine.Pin(n), n: n}, nil
}

func (r *pinRegistry) ClaimOutput(owner string, n int, initial bool) (panel.OutputPin, error) {
	p, err := r.claim(owner, n)
	if err != nil {
		return nil, err
	}
	p.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.p.Set(initial)
	return p, nil
}

func (r *pinRegistry) ClaimInput(owner string, n int, pull panel.Pull) (panel.InputPin, error) {
	p, err := r.claim(owner, n)
	if err != nil {
		return nil, err
	}
	mode := machine.PinInput
	switch pull {
	case panel.PullUp:
		mode = machine.PinInputPullup
	case panel.PullDown:
		mode = machine.PinInputPulldown
	}
	p.p.Configure(machine.PinConfig{Mode: mode})
	return p, nil
}

func (r *pinRegistry) Release(owner string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.owners[n]; ok && cur == owner {
		delete(r.owners, n)
	}
}

// ---- serial ----

type serialRegistry struct {
	mu     sync.Mutex
	owners map[string]string
}

func newSerialRegistry() *serialRegistry {
	return &serialRegistry{owners: map[string]string{}}
}

func (r *serialRegistry) Claim(owner, busName string, baud uint32) (panel.ByteSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, taken := r.owners[busName]; taken && cur != owner {
		return nil, errcode.BusInUse
	}
	switch busName {
	case "usb":
		// CDC over native USB; the host end sets the line rate.
		r.owners[busName] = owner
		return machine.Serial, nil
	case "uart0":
		_ = uartx.UART0.Configure(uartx.UARTConfig{
			BaudRate: baud,
			TX:       machine.UART0_TX_PIN,
			RX:       machine.UART0_RX_PIN,
		})
		r.owners[busName] = owner
		return &uartSource{u: uartx.UART0}, nil
	case "uart1":
		_ = uartx.UART1.Configure(uartx.UARTConfig{
			BaudRate: baud,
			TX:       machine.UART1_TX_PIN,
			RX:       machine.UART1_RX_PIN,
		})
		r.owners[busName] = owner
		return &uartSource{u: uartx.UART1}, nil
	}
	return nil, errcode.UnknownBus
}

func (r *serialRegistry) Release(owner, busName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.owners[busName]; ok && cur == owner {
		delete(r.owners, busName)
	}
}

// uartSource adapts uartx's ring-buffered receive to one-byte reads.
type uartSource struct{ u *uartx.UART }

func (s *uartSource) Buffered() int { return s.u.Buffered() }

func (s *uartSource) ReadByte() (byte, error) {
	var b [1]byte
	n, err := s.u.Read(b[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errNoData
	}
	return b[0], nil
}

// ---- USB HID keyboard ----

// usbKeyPort tracks the held keycode so ReleaseAll knows what to lift.
type usbKeyPort struct {
	down   keyboard.Keycode
	isDown bool
}

func (k *usbKeyPort) Press(key byte) {
	code, ok := asciiKeycode(key)
	if !ok {
		return
	}
	if keyboard.Port().Down(code) == nil {
		k.down = code
		k.isDown = true
	}
}

func (k *usbKeyPort) ReleaseAll() {
	if k.isDown {
		_ = keyboard.Port().Up(k.down)
		k.isDown = false
	}
}

func asciiKeycode(b byte) (keyboard.Keycode, bool) {
	switch b {
	case ' ':
		return keyboard.KeySpace, true
	}
	return 0, false
}
