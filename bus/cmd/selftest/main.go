// bus/cmd/selftest/main.go
//go:build rp2040

// On-target burn-in for the message bus. The host test suite covers the
// bus under `go test`; this target reruns the panel firmware's bus usage
// patterns on the MCU, where scheduling and allocation behave differently.
// Results go to the USB console; the on-board LED stays solid on success
// and blinks on failure.
package main

import (
	"context"
	"time"

	"capbutton-go/bus"

	"machine"
)

// --- tiny logger (avoid fmt on MCU) ------------------------------------------

func logln(s string) { println(s) }
func logf(format string, a ...interface{}) {
	// minimal %s, %d substitution to keep code tiny
	out := make([]byte, 0, len(format)+16)
	argi := 0
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			switch format[i+1] {
			case 's':
				if argi < len(a) {
					out = append(out, toString(a[argi])...)
					argi++
				}
				i++
				continue
			case 'd':
				if argi < len(a) {
					out = append(out, itoa(intFrom(a[argi]))...)
					argi++
				}
				i++
				continue
			}
		}
		out = append(out, format[i])
	}
	println(string(out))
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return "<val>"
	}
}

func intFrom(v interface{}) int {
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	sign := ""
	if i < 0 {
		sign = "-"
		i = -i
	}
	var buf [32]byte
	b := len(buf)
	for i > 0 {
		b--
		buf[b] = byte('0' + (i % 10))
		i /= 10
	}
	if sign != "" {
		b--
		buf[b] = '-'
	}
	return string(buf[b:])
}

// --- helpers mirroring the host test utilities --------------------------------

func expectOneOf(sub *bus.Subscription, want string, timeout time.Duration) (ok bool, why string) {
	select {
	case got := <-sub.Channel():
		s, ok := got.Payload.(string)
		if !ok || s != want {
			return false, "unexpected payload"
		}
		return true, ""
	case <-time.After(timeout):
		return false, "timeout"
	}
}

func expectNoMessage(sub *bus.Subscription, timeout time.Duration) (ok bool, why string) {
	select {
	case got := <-sub.Channel():
		_ = got
		return false, "unexpected message"
	case <-time.After(timeout):
		return true, ""
	}
}

func drainPayloads(sub *bus.Subscription, n int, deadline time.Time) ([]string, bool, string) {
	var out []string
	for len(out) < n && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			if s, ok := m.Payload.(string); ok {
				out = append(out, s)
			} else {
				return nil, false, "non-string payload"
			}
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(out) != n {
		return out, false, "drain count mismatch"
	}
	return out, true, ""
}

func containsAll(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Topic builders matching the panel service surface.

func lampValue(player string) bus.Topic {
	return bus.T("panel", "cap", "io", "lamp", player, "value")
}

func lampControl(player, verb string) bus.Topic {
	return bus.T("panel", "cap", "io", "lamp", player, "control", verb)
}

// --- individual tests (return bool pass/fail) --------------------------------

// The panel service boots against retained config; a subscriber that shows
// up after the config service has published must still get the sections.
func TestRetainedConfigSnapshot() bool {
	b := bus.NewBus(8)
	c := b.NewConnection("selftest")

	c.Publish(b.NewMessage(bus.T("config", "panel"), "panel-blob", true))
	c.Publish(b.NewMessage(bus.T("config", "heartbeat"), "hb-blob", true))

	sub := c.Subscribe(bus.T("config", "panel"))
	if ok, why := expectOneOf(sub, "panel-blob", 200*time.Millisecond); !ok {
		logf("TestRetainedConfigSnapshot: exact sub: %s", why)
		return false
	}

	all := c.Subscribe(bus.T("config", "#"))
	got, ok, why := drainPayloads(all, 2, time.Now().Add(300*time.Millisecond))
	if !ok || !containsAll(got, "panel-blob", "hb-blob") {
		logf("TestRetainedConfigSnapshot: wildcard snapshot: %s", why)
		return false
	}
	return true
}

// The firmware's console monitor subscribes panel/# and must see state,
// values and events; a narrower lamp-value pattern must not see the rest.
func TestPanelMonitorWildcards() bool {
	b := bus.NewBus(8)
	c := b.NewConnection("selftest")

	monitor := c.Subscribe(bus.T("panel", "#"))
	lampsOnly := c.Subscribe(bus.T("panel", "cap", "io", "lamp", "+", "value"))

	c.Publish(b.NewMessage(bus.T("panel", "state"), "ready", false))
	c.Publish(b.NewMessage(lampValue("p1"), "v1", false))
	c.Publish(b.NewMessage(lampValue("p2"), "v2", false))
	c.Publish(b.NewMessage(bus.T("panel", "cap", "io", "button", "main", "event", "pressed"), "pressed", false))

	got, ok, why := drainPayloads(monitor, 4, time.Now().Add(300*time.Millisecond))
	if !ok || !containsAll(got, "ready", "v1", "v2", "pressed") {
		logf("TestPanelMonitorWildcards: monitor: %s", why)
		return false
	}

	lv, ok, why := drainPayloads(lampsOnly, 2, time.Now().Add(300*time.Millisecond))
	if !ok || !containsAll(lv, "v1", "v2") {
		logf("TestPanelMonitorWildcards: lamp pattern: %s", why)
		return false
	}
	if ok, _ := expectNoMessage(lampsOnly, 60*time.Millisecond); !ok {
		logln("TestPanelMonitorWildcards: lamp pattern saw a non-lamp message")
		return false
	}
	return true
}

// Reconfiguring the panel clears stale retained values with nil payloads;
// late subscribers must only see what is still retained.
func TestRetainedValueClear() bool {
	b := bus.NewBus(8)
	c := b.NewConnection("selftest")

	c.Publish(b.NewMessage(lampValue("p1"), "stale", true))
	c.Publish(b.NewMessage(lampValue("p2"), "live", true))
	c.Publish(b.NewMessage(lampValue("p1"), nil, true))

	sub := c.Subscribe(bus.T("panel", "cap", "io", "lamp", "+", "value"))
	got, ok, _ := drainPayloads(sub, 1, time.Now().Add(300*time.Millisecond))
	if !ok || got[0] != "live" {
		logln("TestRetainedValueClear: expected only the live value")
		return false
	}
	if ok, _ := expectNoMessage(sub, 60*time.Millisecond); !ok {
		logln("TestRetainedValueClear: cleared value still delivered")
		return false
	}
	return true
}

// A slow monitor must lose the oldest telemetry, never block the loop.
func TestSlowMonitorDropsOldest() bool {
	b := bus.NewBus(2)
	c := b.NewConnection("selftest")
	sub := c.Subscribe(bus.T("panel", "state"))

	c.Publish(b.NewMessage(bus.T("panel", "state"), "s1", false))
	c.Publish(b.NewMessage(bus.T("panel", "state"), "s2", false))
	c.Publish(b.NewMessage(bus.T("panel", "state"), "s3", false))
	c.Publish(b.NewMessage(bus.T("panel", "state"), "s4", false))

	got, ok, why := drainPayloads(sub, 2, time.Now().Add(300*time.Millisecond))
	if !ok {
		logf("TestSlowMonitorDropsOldest: %s", why)
		return false
	}
	if got[0] != "s3" || got[1] != "s4" {
		logf("TestSlowMonitorDropsOldest: kept %s,%s want s3,s4", got[0], got[1])
		return false
	}
	return true
}

// set_mode round trip: the reply must land on the request's ReplyTo topic,
// token for token.
func TestControlRoundTrip() bool {
	b := bus.NewBus(8)
	reqConn := b.NewConnection("capctl")
	panelConn := b.NewConnection("panel")

	ctrl := panelConn.Subscribe(lampControl("p1", "set_mode"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		if msg, ok := <-ctrl.Channel(); ok {
			panelConn.Reply(msg, "ok", false)
		}
	}()

	req := b.NewMessage(lampControl("p1", "set_mode"), "blink_4hz", false)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	reply, err := reqConn.RequestWait(ctx, req)
	panelConn.Unsubscribe(ctrl)
	<-done

	if err != nil {
		logln("TestControlRoundTrip: timeout/error")
		return false
	}
	if s, ok := reply.Payload.(string); !ok || s != "ok" {
		logln("TestControlRoundTrip: bad reply payload")
		return false
	}
	same := len(reply.Topic) == len(req.ReplyTo)
	if same {
		for i := 0; i < len(reply.Topic); i++ {
			if reply.Topic[i] != req.ReplyTo[i] {
				same = false
				break
			}
		}
	}
	if len(req.ReplyTo) == 0 || !same {
		logln("TestControlRoundTrip: ReplyTo/topic mismatch")
		return false
	}
	return true
}

// Controls against a dead service must time out instead of hanging.
func TestControlTimeout() bool {
	b := bus.NewBus(8)
	reqConn := b.NewConnection("capctl")

	req := b.NewMessage(lampControl("p2", "set_mode"), "off", false)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := reqConn.RequestWait(ctx, req); err == nil {
		logln("TestControlTimeout: expected timeout")
		return false
	}
	return true
}

// Manual Request/Reply with a structured payload, the read-verb shape.
func TestManualReadReply() bool {
	b := bus.NewBus(8)
	reqConn := b.NewConnection("capctl")
	panelConn := b.NewConnection("panel")

	ctrl := panelConn.Subscribe(bus.T("panel", "cap", "io", "button", "main", "control", "read"))
	defer panelConn.Unsubscribe(ctrl)

	reqMsg := b.NewMessage(bus.T("panel", "cap", "io", "button", "main", "control", "read"), nil, false)
	replySub := reqConn.Request(reqMsg)
	defer reqConn.Unsubscribe(replySub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if msg, ok := <-ctrl.Channel(); ok {
			panelConn.Reply(msg, map[string]any{"level": 1}, false)
		}
	}()

	select {
	case got := <-replySub.Channel():
		m, ok := got.Payload.(map[string]any)
		if !ok {
			logln("TestManualReadReply: wrong payload type")
			return false
		}
		v, ok := m["level"]
		if !ok || intFrom(v) != 1 {
			logln("TestManualReadReply: bad level")
			return false
		}
	case <-time.After(300 * time.Millisecond):
		logln("TestManualReadReply: timeout")
		return false
	}
	<-done
	return true
}

func TestTopicInvalidTokenPanics() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = true
		} else {
			logln("TestTopicInvalidTokenPanics: expected panic, got none")
			ok = false
		}
	}()
	_ = bus.T([]byte{1, 2, 3}) // []byte is not comparable; T must reject it
	return false               // only reached if no panic
}

// --- main: run all tests, report, and blink LED on failure --------------------

type testFn struct {
	name string
	fn   func() bool
}

func main() {
	// Give the USB CDC time to enumerate so logs show up reliably.
	time.Sleep(250 * time.Millisecond)

	// Configure onboard LED (GP25 on Pico).
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High() // signal "running"

	tests := []testFn{
		{"TestRetainedConfigSnapshot", TestRetainedConfigSnapshot},
		{"TestPanelMonitorWildcards", TestPanelMonitorWildcards},
		{"TestRetainedValueClear", TestRetainedValueClear},
		{"TestSlowMonitorDropsOldest", TestSlowMonitorDropsOldest},
		{"TestControlRoundTrip", TestControlRoundTrip},
		{"TestControlTimeout", TestControlTimeout},
		{"TestManualReadReply", TestManualReadReply},
		{"TestTopicInvalidTokenPanics", TestTopicInvalidTokenPanics},
	}

	passed, failed := 0, 0
	logln("== bus self-test starting ==")
	for _, tc := range tests {
		ok := tc.fn()
		if ok {
			logf("[PASS] %s", tc.name)
			passed++
		} else {
			logf("[FAIL] %s", tc.name)
			failed++
		}
		// tiny pause between tests to keep timings sane on MCU
		time.Sleep(10 * time.Millisecond)
	}
	logf("== done: %d passed, %d failed ==", passed, failed)

	// LED: solid ON if all passed, otherwise slow blink forever.
	if failed == 0 {
		for {
			led.High()
			time.Sleep(2 * time.Second)
		}
	} else {
		for {
			led.High()
			time.Sleep(250 * time.Millisecond)
			led.Low()
			time.Sleep(250 * time.Millisecond)
		}
	}
}
