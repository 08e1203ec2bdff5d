// cmd/capbutton/main.go
package main

import (
	"context"
	"time"

	"capbutton-go/bus"
	"capbutton-go/services/config"
	"capbutton-go/services/heartbeat"
	"capbutton-go/services/panel"
	"capbutton-go/services/panel/platform"
)

const device = "capbutton"

// printTopicWith prints a topic path with builtin println only (no fmt).
func printTopicWith(prefix string, t bus.Topic) {
	print(prefix)
	print(" ")
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			print("/")
		}
		switch v := t.At(i).(type) {
		case string:
			print(v)
		case int:
			print(v)
		case int32:
			print(int(v))
		case int64:
			print(int(v))
		default:
			print("?")
		}
	}
	println()
}

func main() {
	// Let the USB CDC console enumerate before the first prints.
	time.Sleep(2 * time.Second)
	println("[main] booting", device, "…")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, device)

	b := bus.NewBus(8)
	panelConn := b.NewConnection("panel")
	cfgConn := b.NewConnection("config")
	hbConn := b.NewConnection("heartbeat")
	monConn := b.NewConnection("monitor")

	println("[main] subscribing to panel/# for diagnostics …")
	mon := monConn.Subscribe(bus.T("panel", "#"))
	go func() {
		for m := range mon.Channel() {
			printTopicWith("[monitor] <-", m.Topic)
		}
	}()

	println("[main] starting heartbeat …")
	if err := (&heartbeat.Service{}).Start(ctx, hbConn); err != nil {
		println("[main] heartbeat failed:", err.Error())
	}

	println("[main] publishing embedded config …")
	config.NewConfigService().Start(ctx, cfgConn)

	println("[main] starting panel.Run …")
	panel.Run(ctx, panelConn, platform.GetResources())
}
