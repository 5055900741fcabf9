package hal

import (
	"sync"
	"sync/atomic"

	"github.com/gosmicro/hal/status"
)

// Version is the core's observational version string.
const Version = "1.0.0"

// PlatformHooks are the weak platform overrides spec.md §6 describes.
// Any nil field falls back to the documented default.
type PlatformHooks struct {
	PlatformInit   func() status.Code
	PlatformDeinit func() status.Code
	GetTickMs      func() uint32
	OSALYield      func()
}

var defaultTick uint32

func defaultHooks() PlatformHooks {
	return PlatformHooks{
		PlatformInit:   func() status.Code { return status.Ok },
		PlatformDeinit: func() status.Code { return status.Ok },
		GetTickMs:      func() uint32 { return atomic.AddUint32(&defaultTick, 1) },
		OSALYield:      func() {},
	}
}

func mergeHooks(h PlatformHooks) PlatformHooks {
	d := defaultHooks()
	if h.PlatformInit != nil {
		d.PlatformInit = h.PlatformInit
	}
	if h.PlatformDeinit != nil {
		d.PlatformDeinit = h.PlatformDeinit
	}
	if h.GetTickMs != nil {
		d.GetTickMs = h.GetTickMs
	}
	if h.OSALYield != nil {
		d.OSALYield = h.OSALYield
	}
	return d
}

var boot struct {
	mu          sync.Mutex
	initialized bool
	hooks       PlatformHooks
}

// Init is idempotent: the first call installs hooks (defaulting any
// unset field) and invokes PlatformInit; later calls are a no-op
// returning Ok (spec.md §4.8).
func Init(hooks PlatformHooks) status.Code {
	boot.mu.Lock()
	defer boot.mu.Unlock()
	if boot.initialized {
		return status.Ok
	}
	merged := mergeHooks(hooks)
	if code := merged.PlatformInit(); code != status.Ok {
		return code
	}
	boot.hooks = merged
	boot.initialized = true
	log.Info("hal initialized", "version", Version)
	return status.Ok
}

// Deinit is Init's dual.
func Deinit() status.Code {
	boot.mu.Lock()
	defer boot.mu.Unlock()
	if !boot.initialized {
		return status.Ok
	}
	code := boot.hooks.PlatformDeinit()
	boot.initialized = false
	return code
}

// IsInitialized reports whether Init has run since the last Deinit.
func IsInitialized() bool {
	boot.mu.Lock()
	defer boot.mu.Unlock()
	return boot.initialized
}

// GetVersion returns the core's version string.
func GetVersion() string { return Version }

// GetTickMs and Yield delegate to the currently installed platform
// hooks, falling back to the documented defaults before Init has run.
func GetTickMs() uint32 {
	boot.mu.Lock()
	hooks := boot.hooks
	initialized := boot.initialized
	boot.mu.Unlock()
	if !initialized {
		return defaultHooks().GetTickMs()
	}
	return hooks.GetTickMs()
}

func Yield() {
	boot.mu.Lock()
	hooks := boot.hooks
	initialized := boot.initialized
	boot.mu.Unlock()
	if !initialized {
		return
	}
	hooks.OSALYield()
}
