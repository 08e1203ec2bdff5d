package config

import (
	"context"
	"encoding/json"
	"errors"

	"capbutton-go/bus"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig reads the device config from embedded data and publishes it as retained messages.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return errors.New("embedded config is not a JSON object: " + err.Error())
	}

	for k, v := range m {
		msg := &bus.Message{
			Topic:    bus.T(configPrefix, k),
			Payload:  v,
			Retained: true,
		}
		conn.Publish(msg)
	}

	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("config:", err.Error())
		}
	}()
}
