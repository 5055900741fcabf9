// Package capability defines the subinterface records every HAL driver
// embeds — lifecycle, power, diagnostic — and the container-of technique
// used to recover a driver's concrete struct from a pointer to any one
// of them (spec.md §3, §4.5). Each subinterface is a record of operation
// function slots, filled in by the driver at construction and forwarded
// to its own internal state, mirroring the embedded C idiom this module
// is modeled on rather than Go's usual "accept an interface" pattern —
// it is what lets a single generic sweep (diagnostics, power) walk a
// heterogeneous list of peripherals without importing every driver
// package.
package capability

import (
	"unsafe"

	"github.com/gosmicro/hal/internal/layout"
	"github.com/gosmicro/hal/status"
)

// LifecycleState mirrors hal.DeviceState for capability-level reporting,
// kept as its own type since a driver's lifecycle subinterface is
// observable independently of the registry's device state.
type LifecycleState int

const (
	LifecycleUninitialized LifecycleState = iota
	LifecycleRunning
	LifecycleSuspended
)

// LifecycleBlock is the lifecycle subinterface: init, deinit, suspend,
// resume, get_state.
type LifecycleBlock struct {
	Init     func() status.Code
	Deinit   func() status.Code
	Suspend  func() status.Code
	Resume   func() status.Code
	GetState func() LifecycleState
}

// PowerBlock is the power subinterface: enable, disable, is_enabled.
type PowerBlock struct {
	Enable    func() status.Code
	Disable   func() status.Code
	IsEnabled func() bool
}

// DiagnosticBlock is the diagnostic subinterface: get_status,
// get_statistics, clear_statistics. Both getters write into buf and
// return the number of bytes written.
type DiagnosticBlock struct {
	GetStatus       func(buf []byte) (int, status.Code)
	GetStatistics   func(buf []byte) (int, status.Code)
	ClearStatistics func() status.Code
}

// RecoverOwner computes the address of the T that embeds the subinterface
// block living at fieldPtr, offset bytes into T, using pointer
// subtraction (container-of). Callers obtain offset once per driver type
// via OffsetOf against a zero-valued instance; see hal/drivers for the
// pattern.
func RecoverOwner[T any](fieldPtr unsafe.Pointer, offset uintptr) *T {
	return (*T)(layout.ContainerOf(fieldPtr, offset))
}

// OffsetOf returns field's byte offset within base, typically computed
// once at package init time against a zero-valued instance:
//
//	var probe Driver
//	var lifecycleOffset = capability.OffsetOf(unsafe.Pointer(&probe), unsafe.Pointer(&probe.Lifecycle))
func OffsetOf(base, field unsafe.Pointer) uintptr {
	return layout.OffsetOf(base, field)
}
