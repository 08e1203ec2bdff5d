// services/panel/config.go
package panel

import (
	"encoding/json"

	"capbutton-go/errcode"
	"capbutton-go/types"
	"capbutton-go/x/mathx"
	"capbutton-go/x/strx"
)

const (
	defaultBaud = 9600

	minKeyHoldMs = 1
	maxKeyHoldMs = 1000
	minIdleMs    = 1
	maxIdleMs    = 100
)

// decodeConfig accepts either a typed PanelConfig (in-process callers) or
// a JSON-shaped map (the config service), then applies defaults and
// clamps the timing fields.
func decodeConfig(payload any) (types.PanelConfig, error) {
	var cfg types.PanelConfig
	switch v := payload.(type) {
	case types.PanelConfig:
		cfg = v
	case *types.PanelConfig:
		if v == nil {
			return cfg, errcode.InvalidPayload
		}
		cfg = *v
	default:
		raw, err := json.Marshal(payload)
		if err != nil {
			return cfg, errcode.InvalidPayload
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, errcode.InvalidPayload
		}
	}
	return normalizeConfig(cfg)
}

func normalizeConfig(cfg types.PanelConfig) (types.PanelConfig, error) {
	if _, ok := lampPin(cfg, types.Player1); !ok {
		return cfg, &errcode.E{C: errcode.InvalidParams, Op: "panel.config", Msg: "missing p1 lamp"}
	}
	if _, ok := lampPin(cfg, types.Player2); !ok {
		return cfg, &errcode.E{C: errcode.InvalidParams, Op: "panel.config", Msg: "missing p2 lamp"}
	}
	cfg.Serial.Bus = strx.Coalesce(cfg.Serial.Bus, "usb")
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = defaultBaud
	}
	if cfg.KeyHoldMs == 0 {
		cfg.KeyHoldMs = 50
	}
	cfg.KeyHoldMs = mathx.Clamp(cfg.KeyHoldMs, minKeyHoldMs, maxKeyHoldMs)
	if cfg.IdleMs == 0 {
		cfg.IdleMs = 1
	}
	cfg.IdleMs = mathx.Clamp(cfg.IdleMs, minIdleMs, maxIdleMs)
	return cfg, nil
}

// lampPin returns the configured pin for a player.
func lampPin(cfg types.PanelConfig, p types.PlayerID) (int, bool) {
	for _, lp := range cfg.Lamps {
		if id, ok := types.ParsePlayerID(lp.Player); ok && id == p {
			return lp.Pin, true
		}
	}
	return 0, false
}
