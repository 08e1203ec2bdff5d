package main

import (
	"time"

	"capbutton-go/services/panel"
	"capbutton-go/types"
	"capbutton-go/x/timex"
)

// consolePin reports level changes on the console instead of driving a
// GPIO, so the walk below runs on a host as well as on target.
type consolePin struct {
	level bool
}

func (p *consolePin) Set(level bool) {
	if level == p.level {
		return
	}
	p.level = level
	if level {
		println("lamp HIGH")
	} else {
		println("lamp low")
	}
}

func (p *consolePin) Get() bool   { return p.level }
func (p *consolePin) Number() int { return -1 }

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("capbutton bring-up")

	// Walk one lamp through every mode, three seconds each. The real
	// firmware entry is cmd/capbutton; this is a wiring smoke.
	lamp := panel.NewLamp(&consolePin{})
	lamp.SetMode(types.LampOff, timex.NowMs())

	modes := []types.LampMode{
		types.LampSolid,
		types.LampBlink1Hz,
		types.LampBlink2Hz,
		types.LampBlink4Hz,
		types.LampOff,
	}
	for _, m := range modes {
		println("mode:", m.String())
		lamp.SetMode(m, timex.NowMs())
		until := time.Now().Add(3 * time.Second)
		for time.Now().Before(until) {
			lamp.Tick(timex.NowMs())
			time.Sleep(time.Millisecond)
		}
	}
	println("bring-up done")
}
