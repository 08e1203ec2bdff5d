// services/panel/types.go
package panel

import (
	"time"

	"capbutton-go/types"
)

// Pin levels are bare booleans, High = true.

// OutputPin is a claimed, configured digital output.
type OutputPin interface {
	Set(level bool)
	Get() bool
	Number() int
}

// InputPin is a claimed, configured digital input.
type InputPin interface {
	Get() bool
	Number() int
}

// Pull selects the input bias for a claimed input pin.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// PinProvider hands out pins and tracks ownership so two capabilities can
// never drive the same line.
type PinProvider interface {
	ClaimOutput(owner string, pin int, initial bool) (OutputPin, error)
	ClaimInput(owner string, pin int, pull Pull) (InputPin, error)
	Release(owner string, pin int)
}

// ByteSource is a non-blocking reader over the control link. Buffered
// reports how many bytes can be read without blocking; ReadByte must only
// be called while Buffered() > 0.
type ByteSource interface {
	Buffered() int
	ReadByte() (byte, error)
}

// SerialProvider claims the control link by bus name ("usb", "uart0", ...).
type SerialProvider interface {
	Claim(owner, busName string, baud uint32) (ByteSource, error)
	Release(owner, busName string)
}

// KeyPort emits synthetic key events to the attached host. Implementations
// are fire-and-forget: HID emission has no recovery path on this hardware.
type KeyPort interface {
	Press(key byte)
	ReleaseAll()
}

// Clock is the loop's single time source.
type Clock interface {
	NowMs() int64
	Sleep(d time.Duration)
}

// Resources are the platform bindings injected into the service.
type Resources struct {
	Pins   PinProvider
	Serial SerialProvider
	Keys   KeyPort
	Clock  Clock
}

// ---- Loop → service telemetry ----

type EventKind uint8

const (
	EvLamp        EventKind = iota // mode applied or blink level flipped
	EvButtonLevel                  // mirrored button level changed
	EvButtonPress                  // rising edge; the key action fired
)

// Event is one state-change notification out of the loop. The service
// publishes these on the bus; the loop never blocks on them.
type Event struct {
	Kind   EventKind
	Player types.PlayerID // lamp events only
	Mode   types.LampMode // lamp events only
	Level  bool
	TSms   int64
}
