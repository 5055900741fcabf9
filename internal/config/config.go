// Package config holds the compile-time-style configuration knobs that a
// Kconfig-like build system would normally bake into the core. Since this
// module has no such build step, the knobs live in a process-wide snapshot
// that defaults to the values spec.md documents and can be overridden
// wholesale, atomically, for tests.
package config

import "sync/atomic"

// MemMode selects how the OSAL memory subsystem services allocations.
type MemMode int

const (
	MemDynamic MemMode = iota
	MemStatic
	MemCustom
)

// Config is the full set of build-time knobs consumed by hal and osal.
type Config struct {
	// MaxDevices is the device registry capacity.
	MaxDevices int
	// MaxRefCount is the per-device reference ceiling; increments beyond
	// it saturate and are rejected.
	MaxRefCount uint8
	// AdapterPoolSize is the number of slots per sync/async adapter kind.
	AdapterPoolSize int
	// TaskPriorityMax is the highest valid OSAL task priority.
	TaskPriorityMax int
	// QueueMaxItemSize bounds the item size accepted by osal.QueueCreate.
	QueueMaxItemSize int
	// EventBitsMin is the minimum width of an OSAL event bitmask.
	EventBitsMin int
	// MemModeDefault names the default allocator mode. osal.MemInit
	// always takes its mode as an argument and does not read this field.
	MemModeDefault MemMode
	// TickHz is the cooperative backend's notional tick rate.
	TickHz int
	// HeapSize bounds the dynamic-mode allocator's simulated arena, in
	// bytes, so get_free_size/get_min_free_size have a ceiling to report
	// against. spec.md leaves this value to the platform; 256KiB matches
	// a mid-range Cortex-M's typical SRAM budget.
	HeapSize int
}

// Default returns the out-of-the-box configuration spec.md §6 documents.
func Default() Config {
	return Config{
		MaxDevices:       32,
		MaxRefCount:      255,
		AdapterPoolSize:  4,
		TaskPriorityMax:  31,
		QueueMaxItemSize: 4096,
		EventBitsMin:     16,
		MemModeDefault:   MemDynamic,
		TickHz:           1000,
		HeapSize:         256 * 1024,
	}
}

var current atomic.Value

func init() {
	current.Store(Default())
}

// Get returns the active configuration snapshot.
func Get() Config {
	return current.Load().(Config)
}

// Set replaces the active configuration wholesale and returns the
// previous value, so callers (tests in particular) can restore it.
func Set(cfg Config) Config {
	prev := current.Load().(Config)
	current.Store(cfg)
	return prev
}

// testingT is the subset of *testing.T that SetForTest needs, so this
// package does not import "testing" into non-test builds.
type testingT interface {
	Cleanup(func())
}

// SetForTest installs cfg for the duration of t and restores the prior
// configuration in t.Cleanup.
func SetForTest(t testingT, cfg Config) {
	prev := Set(cfg)
	t.Cleanup(func() { Set(prev) })
}
