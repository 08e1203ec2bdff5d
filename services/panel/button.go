// services/panel/button.go
package panel

// ButtonMonitor tracks the pushbutton level between loop iterations and
// reports rising edges. The mirror output always follows the raw level.
type ButtonMonitor struct {
	in     InputPin
	mirror OutputPin
	last   bool
}

// NewButtonMonitor seeds the previous level as High, matching the line's
// power-on value: a button already held at boot does not count as a press
// until it is released and pressed again.
func NewButtonMonitor(in InputPin, mirror OutputPin) *ButtonMonitor {
	return &ButtonMonitor{in: in, mirror: mirror, last: true}
}

// Poll samples the raw level once, drives the mirror output, and reports
// whether this sample is a Low→High press edge.
func (m *ButtonMonitor) Poll() (level, edge bool) {
	raw := m.in.Get()
	m.mirror.Set(raw)
	edge = raw && !m.last
	m.last = raw
	return raw, edge
}
