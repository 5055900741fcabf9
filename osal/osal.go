// Package osal implements the OS Abstraction Layer: tasks, mutexes,
// semaphores, events, bounded queues, software timers, and the dynamic /
// pool-based memory subsystem described in spec.md §4.2–§4.4, on top of
// one of two interchangeable scheduling backends (internal/sched).
package osal

import (
	"sync"
	"time"

	"github.com/gosmicro/hal/internal/logging"
	"github.com/gosmicro/hal/internal/sched"
	"github.com/gosmicro/hal/status"
)

// Special timeout values per spec.md §4.3.1.
const (
	NoWait      int64 = 0
	WaitForever int64 = -1
)

var log = logging.Default().With("osal")

var state struct {
	mu          sync.Mutex
	initialized bool
	backend     sched.Backend

	// critical section nesting depth; interrupts (simulated) are
	// considered restored only once this reaches zero.
	critDepth int
	critMu    sync.Mutex

	irqDisabled bool
}

// Config configures osal.Init.
type Config struct {
	// Backend selects the scheduling model. Zero value is Preemptive.
	Backend sched.Kind
}

func init() {
	state.backend = sched.New(sched.Preemptive)
}

// Init brings up the OSAL. It is idempotent: every call returns Ok, and
// the state after N >= 1 calls is "initialized" (spec.md §4.3.2). The
// first call selects Config.Backend (the zero value is Preemptive); later
// calls do not change an already-selected backend — callers that need to
// switch backends (as property tests do, per §8 property 19) must call
// Reset first.
func Init(cfg Config) status.Code {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.initialized {
		return status.Ok
	}
	state.backend = sched.New(cfg.Backend)
	state.initialized = true
	diagReset()
	log.Info("osal initialized", "backend", state.backend.Kind().String())
	return status.Ok
}

// Reset tears down OSAL-global state so a test can re-Init with a
// different backend. It is not part of spec.md's public contract; it
// exists to let property tests iterate over both scheduling backends
// from one process (SPEC_FULL.md §4.3).
func Reset() {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.initialized = false
	state.critDepth = 0
	state.irqDisabled = false
}

// IsInitialized reports whether Init has been called at least once since
// the last Reset.
func IsInitialized() bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.initialized
}

func backend() sched.Backend {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.backend
}

// Yield gives other ready tasks a chance to run.
func Yield() { backend().Yield() }

// msDuration converts a millisecond count from the public API into a
// time.Duration, treating WaitForever as "no timeout" is the caller's
// responsibility; this helper is only used for plain delays.
func msDuration(ms int64) time.Duration { return time.Duration(ms) * time.Millisecond }

// Now returns the OSAL's monotonic tick source.
func Now() time.Time { return backend().Now() }

// EnterCritical and ExitCritical support nesting to any depth (spec.md
// §4.3.2): interrupts are considered disabled as soon as the first
// EnterCritical call returns, and are only restored once the matching
// outermost ExitCritical call returns.
func EnterCritical() {
	state.critMu.Lock()
	defer state.critMu.Unlock()
	state.critDepth++
	state.irqDisabled = true
}

func ExitCritical() {
	state.critMu.Lock()
	defer state.critMu.Unlock()
	if state.critDepth > 0 {
		state.critDepth--
	}
	if state.critDepth == 0 {
		state.irqDisabled = false
	}
}

// InterruptMask is an opaque saved-interrupt-state token returned by
// DisableInterrupts and consumed by RestoreInterrupts.
type InterruptMask struct {
	wasDisabled bool
}

// DisableInterrupts returns a token capturing whether interrupts were
// already disabled, so RestoreInterrupts can undo exactly this call's
// effect regardless of concurrent nesting.
func DisableInterrupts() InterruptMask {
	state.critMu.Lock()
	defer state.critMu.Unlock()
	mask := InterruptMask{wasDisabled: state.irqDisabled}
	state.irqDisabled = true
	return mask
}

// RestoreInterrupts restores the interrupt-enabled state captured by
// mask.
func RestoreInterrupts(mask InterruptMask) {
	state.critMu.Lock()
	defer state.critMu.Unlock()
	state.irqDisabled = mask.wasDisabled
}
