// services/panel/platform/platform.go

// Package platform binds the panel service to the build target: real
// RP2040 peripherals on MCU builds, in-memory simulations elsewhere.
// GetResources returns the bindings for the current target; hosts can
// also construct the sims directly to script their behaviour.
package platform

import "errors"

var errNoData = errors.New("serial: no data")
