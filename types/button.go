package types

// Pushbutton capability payloads.

// ButtonInfo is published as Info.Detail for the button capability.
type ButtonInfo struct {
	Pin       int    `json:"pin"`
	MirrorPin int    `json:"mirror_pin"`
	StatusPin int    `json:"status_pin"`
	KeyHoldMs uint32 `json:"key_hold_ms"`
}

// ButtonValue is published under panel/cap/.../value (retained).
type ButtonValue struct {
	Pressed bool `json:"pressed"`
}
