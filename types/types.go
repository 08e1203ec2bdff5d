package types

// ---- Common panel state (retained) ----

type PanelState struct {
	Level  string `json:"level"`  // e.g. "idle", "ready", "stopped"
	Status string `json:"status"` // freeform short code
	TS     int64  `json:"ts_ms"`
}

// Link is the link/state reported for a capability.
type Link string

const (
	LinkUp       Link = "up"
	LinkDown     Link = "down"
	LinkDegraded Link = "degraded"
)

type CapabilityStatus struct {
	Link  Link   `json:"link"`
	TS    int64  `json:"ts_ms"`
	Error string `json:"error,omitempty"`
}

// ---- Capability kinds & addressing ----

type Kind string

const (
	KindLamp   Kind = "lamp"
	KindButton Kind = "button"
	KindSerial Kind = "serial"
)

// CapabilityAddress identifies a public capability on the bus.
type CapabilityAddress struct {
	Domain string `json:"domain"` // e.g. "io"
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`
}

// Info envelope each capability exposes (retained)
type Info struct {
	SchemaVersion int    `json:"schema_version"`
	Driver        string `json:"driver"`
	Detail        any    `json:"detail,omitempty"`
}

// Generic replies
type OKReply struct {
	OK bool `json:"ok"`
}
type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
