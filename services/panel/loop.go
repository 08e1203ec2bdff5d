// services/panel/loop.go
package panel

import (
	"context"
	"time"

	"capbutton-go/types"
)

const (
	defaultKey     = ' '
	defaultKeyHold = 50 * time.Millisecond
	defaultIdle    = 1 * time.Millisecond
)

// DriverConfig wires a Driver. Zero durations fall back to the defaults
// above; a nil Emit disables telemetry.
type DriverConfig struct {
	Controller *Controller
	Button     *ButtonMonitor
	Status     OutputPin
	Keys       KeyPort
	Serial     ByteSource
	Commands   <-chan Command
	Clock      Clock
	Emit       func(Event)
	Key        byte
	KeyHold    time.Duration
	IdleDelay  time.Duration
}

// Driver runs the panel's polling loop. Every mutation of panel state
// happens on the goroutine that calls Run (or Step), so none of the
// state it owns is locked.
type Driver struct {
	ctrl   *Controller
	button *ButtonMonitor
	status OutputPin
	keys   KeyPort
	src    ByteSource
	cmds   <-chan Command
	clock  Clock
	emit   func(Event)

	key  byte
	hold time.Duration
	idle time.Duration

	btnLevel bool
	btnSeen  bool
}

func NewDriver(cfg DriverConfig) *Driver {
	d := &Driver{
		ctrl:   cfg.Controller,
		button: cfg.Button,
		status: cfg.Status,
		keys:   cfg.Keys,
		src:    cfg.Serial,
		cmds:   cfg.Commands,
		clock:  cfg.Clock,
		emit:   cfg.Emit,
		key:    cfg.Key,
		hold:   cfg.KeyHold,
		idle:   cfg.IdleDelay,
	}
	if d.key == 0 {
		d.key = defaultKey
	}
	if d.hold <= 0 {
		d.hold = defaultKeyHold
	}
	if d.idle <= 0 {
		d.idle = defaultIdle
	}
	return d
}

// Run executes the loop until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.Step()
		d.clock.Sleep(d.idle)
	}
}

// Step performs one loop iteration: one clock read, one button sample,
// a full drain of pending control bytes and bus commands, then one tick
// of every lamp against the same timestamp.
func (d *Driver) Step() {
	now := d.clock.NowMs()

	level, edge := d.button.Poll()
	if edge {
		d.status.Set(true)
		d.emitEvent(Event{Kind: EvButtonPress, Level: true, TSms: now})
		d.keys.Press(d.key)
		d.clock.Sleep(d.hold) // the loop's one deliberate blocking wait
		d.keys.ReleaseAll()
	} else {
		d.status.Set(false)
	}
	if !d.btnSeen || level != d.btnLevel {
		d.btnSeen = true
		d.btnLevel = level
		d.emitEvent(Event{Kind: EvButtonLevel, Level: level, TSms: now})
	}

	for d.src != nil && d.src.Buffered() > 0 {
		b, err := d.src.ReadByte()
		if err != nil {
			break
		}
		for _, cmd := range Interpret(b) {
			d.apply(cmd, now)
		}
	}
	d.drainCommands(now)

	d.ctrl.TickAll(now, func(p types.PlayerID, l *Lamp) {
		d.emitEvent(Event{Kind: EvLamp, Player: p, Mode: l.Mode(), Level: l.Level(), TSms: now})
	})
}

func (d *Driver) drainCommands(now int64) {
	for d.cmds != nil {
		select {
		case cmd, ok := <-d.cmds:
			if !ok {
				d.cmds = nil
				return
			}
			d.apply(cmd, now)
		default:
			return
		}
	}
}

func (d *Driver) apply(cmd Command, now int64) {
	d.ctrl.Apply(cmd, now)
	if l := d.ctrl.Lamp(cmd.Player); l != nil {
		d.emitEvent(Event{Kind: EvLamp, Player: cmd.Player, Mode: l.Mode(), Level: l.Level(), TSms: now})
	}
}

func (d *Driver) emitEvent(ev Event) {
	if d.emit != nil {
		d.emit(ev)
	}
}
