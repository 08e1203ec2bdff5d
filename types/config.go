package types

// Panel configuration supplied on topic "config/panel".

type PanelConfig struct {
	Lamps     []LampPin    `json:"lamps"`
	Button    ButtonConfig `json:"button"`
	Serial    SerialConfig `json:"serial"`
	KeyHoldMs uint32       `json:"key_hold_ms,omitempty"` // 0 defaults to 50
	IdleMs    uint32       `json:"idle_ms,omitempty"`     // 0 defaults to 1
}

type LampPin struct {
	Player string `json:"player"` // "p1" | "p2"
	Pin    int    `json:"pin"`
}

type ButtonConfig struct {
	Pin       int `json:"pin"`
	MirrorPin int `json:"mirror_pin"`
	StatusPin int `json:"status_pin"`
}

type SerialConfig struct {
	Bus  string `json:"bus"`            // "usb", "uart0", "uart1"
	Baud uint32 `json:"baud,omitempty"` // 0 defaults to 9600
}
