package hal

import (
	"sync"

	"github.com/gosmicro/hal/status"
)

// PowerMode is the process-wide power mode (spec.md §4.7).
type PowerMode int

const (
	PowerRun PowerMode = iota
	PowerSleep
	PowerStop
)

var powerState struct {
	mu   sync.Mutex
	mode PowerMode
}

// EnterPowerMode validates and records mode. The actual hardware
// transition is the platform's responsibility; this component only
// tracks the requested state.
func EnterPowerMode(mode PowerMode) status.Code {
	if mode > PowerStop {
		return status.InvalidParam
	}
	powerState.mu.Lock()
	defer powerState.mu.Unlock()
	powerState.mode = mode
	log.Info("power mode changed", "mode", mode)
	return status.Ok
}

// GetPowerMode returns the last mode recorded by EnterPowerMode.
func GetPowerMode() PowerMode {
	powerState.mu.Lock()
	defer powerState.mu.Unlock()
	return powerState.mode
}
