// services/panel/controller.go
package panel

import "capbutton-go/types"

// Command pairs a target player with a requested lamp mode.
type Command struct {
	Player types.PlayerID
	Mode   types.LampMode
}

// Controller owns the two player lamps and is their only writer.
type Controller struct {
	lamps [2]*Lamp
}

// NewController binds the player lamps and applies the power-on state
// (both Off) at nowMs.
func NewController(p1, p2 *Lamp, nowMs int64) *Controller {
	c := &Controller{lamps: [2]*Lamp{p1, p2}}
	p1.SetMode(types.LampOff, nowMs)
	p2.SetMode(types.LampOff, nowMs)
	return c
}

// Lamp returns the lamp for a player, or nil for an unknown player.
func (c *Controller) Lamp(p types.PlayerID) *Lamp {
	switch p {
	case types.Player1:
		return c.lamps[0]
	case types.Player2:
		return c.lamps[1]
	}
	return nil
}

// Apply routes a mode change to one player's lamp.
func (c *Controller) Apply(cmd Command, nowMs int64) {
	if l := c.Lamp(cmd.Player); l != nil {
		l.SetMode(cmd.Mode, nowMs)
	}
}

// TickAll advances both lamps against the same timestamp so their blink
// phases stay consistent within one loop iteration. flipped is invoked
// for each lamp whose level toggled.
func (c *Controller) TickAll(nowMs int64, flipped func(p types.PlayerID, l *Lamp)) {
	for i, l := range c.lamps {
		if l.Tick(nowMs) && flipped != nil {
			flipped(types.PlayerID(i+1), l)
		}
	}
}
