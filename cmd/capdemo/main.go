// cmd/capdemo/main.go
//go:build !rp2040

// capdemo runs the panel against the host simulators and narrates what
// the firmware would do on real pins: feed serial mode commands, watch
// the lamp/mirror/status lines, and fake a button press.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"capbutton-go/bus"
	"capbutton-go/services/config"
	"capbutton-go/services/panel"
	"capbutton-go/services/panel/platform"
	"capbutton-go/types"
)

// ---------- Configuration ----------

const (
	device = "capbutton"

	panelReadyTimeout = 5 * time.Second

	// Sequencing timing
	stepDwell  = 1500 * time.Millisecond
	pressHold  = 150 * time.Millisecond
	pressDwell = 500 * time.Millisecond

	// Cycles: 0 = loop forever
	cyclesToRun = 1
)

// Serial script: one command byte per step, dwell long enough to watch
// a few blink flips on the faster modes.
var script = []struct {
	note string
	cmd  byte
}{
	{"p1 solid", 'A'},
	{"p1 blink 1 Hz", '1'},
	{"p1 blink 4 Hz", '3'},
	{"p2 blink 2 Hz", '5'},
	{"both solid", 'Y'},
	{"both off", 'X'},
}

// ---------- Topics ----------

func tPanelState() bus.Topic { return bus.T("panel", "state") }

func tLampRead(player string) bus.Topic {
	return bus.T("panel", "cap", "io", string(types.KindLamp), player, "control", "read")
}

func tButtonPressed() bus.Topic {
	return bus.T("panel", "cap", "io", string(types.KindButton), "main", "event", "pressed")
}

// ---------- Helpers ----------

func waitPanelReady(c *bus.Connection, d time.Duration) bool {
	sub := c.Subscribe(tPanelState())
	defer c.Unsubscribe(sub)

	dead := time.Now().Add(d)
	for time.Now().Before(dead) {
		select {
		case m := <-sub.Channel():
			if st, ok := m.Payload.(types.PanelState); ok && st.Level == "ready" {
				return true
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	return false
}

func watchPin(pins *platform.SimPins, n int, label string) {
	pins.Pin(n).OnChange = func(level bool) {
		state := "low"
		if level {
			state = "HIGH"
		}
		fmt.Printf("[pin]  GP%-2d %-12s -> %s\n", n, label, state)
	}
}

// ---------- Main ----------

func main() {
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, device)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Local bus and connections
	b := bus.NewBus(16)
	panelConn := b.NewConnection("panel")
	cfgConn := b.NewConnection("config")
	ui := b.NewConnection("ui")

	// One shared resource set; the demo keeps the concrete sims so it
	// can script pins and serial directly.
	res := platform.GetResources()
	pins := res.Pins.(*platform.SimPins)
	serial := res.Serial.(*platform.SimSerial)
	keys := res.Keys.(*platform.SimKeys)

	// Watchers go on before the panel claims anything.
	watchPin(pins, 16, "p1 lamp")
	watchPin(pins, 17, "p2 lamp")
	watchPin(pins, 19, "mirror")
	watchPin(pins, 25, "status")
	keys.OnPress = func(key byte) {
		fmt.Printf("[keys] press %q then release-all\n", key)
	}

	pressSub := ui.Subscribe(tButtonPressed())
	defer ui.Unsubscribe(pressSub)

	// Start panel, then publish the embedded config.
	go panel.Run(ctx, panelConn, res)
	config.NewConfigService().Start(ctx, cfgConn)

	if !waitPanelReady(ui, panelReadyTimeout) {
		fmt.Println("[demo] panel not ready within timeout; giving up")
		os.Exit(1)
	}
	fmt.Println("[demo] panel ready")

	for cycle := 1; cyclesToRun == 0 || cycle <= cyclesToRun; cycle++ {
		fmt.Printf("[demo] ---- cycle %d ----\n", cycle)

		// Serial side: one command byte per step.
		for _, step := range script {
			fmt.Printf("[demo] send %q (%s)\n", step.cmd, step.note)
			serial.Feed("usb", []byte{step.cmd})
			time.Sleep(stepDwell)
		}

		// Button side: raise GP18 long enough for the loop to see it.
		fmt.Println("[demo] pressing button (GP18)")
		pins.Pin(18).Set(true)
		time.Sleep(pressHold)
		pins.Pin(18).Set(false)

		select {
		case <-pressSub.Channel():
			fmt.Println("[demo] pressed event received")
		case <-time.After(2 * time.Second):
			fmt.Println("[demo] no pressed event within 2s")
		}
		time.Sleep(pressDwell)

		// Read back both lamp values over the control surface.
		for _, player := range []string{"p1", "p2"} {
			reply, err := ui.RequestWait(ctx, ui.NewMessage(tLampRead(player), nil, false))
			if err != nil {
				fmt.Printf("[demo] read %s: %v\n", player, err)
				continue
			}
			if v, ok := reply.Payload.(types.LampValue); ok {
				fmt.Printf("[demo] %s value: mode=%s level=%d\n", player, v.Mode, v.Level)
			}
		}
	}

	fmt.Printf("[demo] done: %d key press(es), %d release-all(s)\n",
		len(keys.Presses()), keys.Releases())
}
