package types

// Player lamp capability payloads.

// LampMode enumerates the drive patterns of a player lamp.
// Values are stable wire constants; do not reorder.
type LampMode uint8

const (
	LampOff LampMode = iota
	LampSolid
	LampBlink1Hz
	LampBlink2Hz
	LampBlink4Hz
)

// PeriodMs returns the toggle interval of a blinking mode in
// milliseconds, or 0 for the static modes.
func (m LampMode) PeriodMs() int64 {
	switch m {
	case LampBlink1Hz:
		return 500
	case LampBlink2Hz:
		return 250
	case LampBlink4Hz:
		return 125
	}
	return 0
}

// Blinking reports whether the mode toggles on its own.
func (m LampMode) Blinking() bool { return m.PeriodMs() != 0 }

// Valid reports whether m is one of the declared modes.
func (m LampMode) Valid() bool { return m <= LampBlink4Hz }

func (m LampMode) String() string {
	switch m {
	case LampOff:
		return "off"
	case LampSolid:
		return "solid"
	case LampBlink1Hz:
		return "blink_1hz"
	case LampBlink2Hz:
		return "blink_2hz"
	case LampBlink4Hz:
		return "blink_4hz"
	}
	return "unknown"
}

// ParseLampMode maps the wire names back to modes.
func ParseLampMode(s string) (LampMode, bool) {
	switch s {
	case "off":
		return LampOff, true
	case "solid":
		return LampSolid, true
	case "blink_1hz":
		return LampBlink1Hz, true
	case "blink_2hz":
		return LampBlink2Hz, true
	case "blink_4hz":
		return LampBlink4Hz, true
	}
	return LampOff, false
}

// PlayerID selects one of the two player lamps.
type PlayerID uint8

const (
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

func (p PlayerID) String() string {
	switch p {
	case Player1:
		return "p1"
	case Player2:
		return "p2"
	}
	return "unknown"
}

// ParsePlayerID maps capability names ("p1", "p2") back to players.
func ParsePlayerID(name string) (PlayerID, bool) {
	switch name {
	case "p1":
		return Player1, true
	case "p2":
		return Player2, true
	}
	return 0, false
}

// LampInfo is published as Info.Detail for each lamp capability.
type LampInfo struct {
	Pin int `json:"pin"`
}

// LampValue is published under panel/cap/.../value (retained).
type LampValue struct {
	Mode  LampMode `json:"mode"`
	Level uint8    `json:"level"` // 0 or 1
}

// Controls
type LampSet struct {
	Mode LampMode `json:"mode"`
}
