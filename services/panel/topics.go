// services/panel/topics.go
package panel

import "capbutton-go/bus"

// Opaque-topic helpers

func topicConfigPanel() bus.Topic { return bus.T("config", "panel") }
func topicState() bus.Topic       { return bus.T("panel", "state") }

// panel/cap/<domain>/<kind>/<name>/...
func capBase(domain, kind, name string) bus.Topic { return bus.T("panel", "cap", domain, kind, name) }

func capInfo(domain, kind, name string) bus.Topic {
	return capBase(domain, kind, name).Append("info")
}
func capStatus(domain, kind, name string) bus.Topic {
	return capBase(domain, kind, name).Append("status")
}
func capValue(domain, kind, name string) bus.Topic {
	return capBase(domain, kind, name).Append("value")
}
func capEvent(domain, kind, name string) bus.Topic {
	return capBase(domain, kind, name).Append("event")
}
func capEventTagged(domain, kind, name, tag string) bus.Topic {
	return capEvent(domain, kind, name).Append(tag)
}

// capability control
// panel/cap/<domain>/<kind>/<name>/control/<verb>
func capCtrl(domain, kind, name, verb string) bus.Topic {
	return capBase(domain, kind, name).Append("control", verb)
}

// panel/cap/+/+/+/control/+
func ctrlWildcard() bus.Topic {
	return bus.T("panel", "cap", "+", "+", "+", "control", "+")
}
