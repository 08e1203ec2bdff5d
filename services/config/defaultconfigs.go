package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

// Pin numbers follow the panel wiring: player lamps on GP16/GP17, the
// pushbutton on GP18 with its mirror lamp on GP19, press status on the
// onboard LED (GP25). Commands arrive on the USB CDC serial by default.
const cfgCapbutton = `{
  "panel": {
    "lamps": [
      {"player": "p1", "pin": 16},
      {"player": "p2", "pin": 17}
    ],
    "button": {
      "pin": 18,
      "mirror_pin": 19,
      "status_pin": 25
    },
    "serial": {
      "bus": "usb",
      "baud": 9600
    },
    "key_hold_ms": 50,
    "idle_ms": 1
  },
  "heartbeat": {
      "interval": 2
  }
}`

// Same wiring, commands over UART0 instead of USB (headless hosts where the
// CDC port is owned by the HID stack).
const cfgCapbuttonUART = `{
  "panel": {
    "lamps": [
      {"player": "p1", "pin": 16},
      {"player": "p2", "pin": 17}
    ],
    "button": {
      "pin": 18,
      "mirror_pin": 19,
      "status_pin": 25
    },
    "serial": {
      "bus": "uart0",
      "baud": 9600
    },
    "key_hold_ms": 50,
    "idle_ms": 1
  },
  "heartbeat": {
      "interval": 2
  }
}`

var embeddedConfigs = map[string][]byte{
	"capbutton":      []byte(cfgCapbutton),
	"capbutton-uart": []byte(cfgCapbuttonUART),
}
