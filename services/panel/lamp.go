// services/panel/lamp.go
package panel

import "capbutton-go/types"

// Lamp is one player's indicator output. All methods run on the panel
// loop goroutine; there is no locking.
type Lamp struct {
	out        OutputPin
	mode       types.LampMode
	level      bool
	lastToggle int64
}

// NewLamp binds a lamp to its claimed output pin. The lamp starts in
// LampOff with the level tracked as Low; callers apply the initial mode
// via SetMode so the toggle timer is seeded with a real timestamp.
func NewLamp(out OutputPin) *Lamp {
	return &Lamp{out: out}
}

// SetMode applies a mode change at nowMs. Static modes derive and write
// their level immediately: Off drives Low, Solid drives High. Blink modes
// leave the current level alone and only restart the toggle timer, so the
// first flip lands exactly one period after the change instead of
// inheriting an interval elapsed under the previous mode.
func (l *Lamp) SetMode(m types.LampMode, nowMs int64) {
	l.mode = m
	switch m {
	case types.LampOff:
		l.write(false)
	case types.LampSolid:
		l.write(true)
	}
	l.lastToggle = nowMs
}

// Tick advances blink timing and reports whether the level flipped.
// A tick flips at most once: if the loop stalls past several periods the
// phase re-anchors to nowMs rather than replaying missed toggles.
func (l *Lamp) Tick(nowMs int64) bool {
	period := l.mode.PeriodMs()
	if period == 0 {
		return false
	}
	if nowMs-l.lastToggle < period {
		return false
	}
	l.write(!l.level)
	l.lastToggle = nowMs
	return true
}

func (l *Lamp) write(level bool) {
	l.level = level
	l.out.Set(level)
}

func (l *Lamp) Mode() types.LampMode { return l.mode }

// Level reports the logical level the lamp last drove.
func (l *Lamp) Level() bool { return l.level }

// Value renders the lamp as its bus payload.
func (l *Lamp) Value() types.LampValue {
	return types.LampValue{Mode: l.mode, Level: levelByte(l.level)}
}

func levelByte(level bool) uint8 {
	if level {
		return 1
	}
	return 0
}
