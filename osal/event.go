package osal

import (
	"sync"

	"github.com/gosmicro/hal/status"
)

// EventBits is the bitmask type for an EventGroup; spec.md §4.3.1
// requires at least 16 usable bits.
type EventBits uint32

// EventGroup is a set of bits that tasks can set, clear, and block on
// (spec.md §4.3.1). Waiters can ask for "any of" or "all of" a mask, and
// can optionally consume (clear) the bits they matched on.
type EventGroup struct {
	mu   sync.Mutex
	n    *notifier
	bits EventBits
}

// EventGroupCreate allocates an event group with all bits initially
// clear.
func EventGroupCreate() *EventGroup {
	diagCreated(kindEvent)
	return &EventGroup{n: newNotifier()}
}

// Delete releases e's diagnostic accounting.
func (e *EventGroup) Delete() status.Code {
	if e == nil {
		return status.NullPointer
	}
	diagDeleted(kindEvent)
	return status.Ok
}

// Set ORs bits into the group and wakes any waiter whose condition is
// now satisfied.
func (e *EventGroup) Set(bits EventBits) status.Code {
	if e == nil {
		return status.NullPointer
	}
	e.mu.Lock()
	e.bits |= bits
	e.mu.Unlock()
	e.n.broadcast()
	return status.Ok
}

// Clear ANDs bits out of the group.
func (e *EventGroup) Clear(bits EventBits) status.Code {
	if e == nil {
		return status.NullPointer
	}
	e.mu.Lock()
	e.bits &^= bits
	e.mu.Unlock()
	return status.Ok
}

// Get returns the current bitmask.
func (e *EventGroup) Get() EventBits {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bits
}

// WaitMode selects whether Wait is satisfied by any requested bit, or
// requires all of them.
type WaitMode int

const (
	WaitAny WaitMode = iota
	WaitAll
)

// Wait blocks until mask is satisfied according to mode, or timeoutMs
// elapses. When clearOnExit is true, the bits that satisfied the wait
// are atomically cleared before Wait returns. It returns the bitmask
// observed at the moment the condition was satisfied (pre-clear) and a
// status code.
func (e *EventGroup) Wait(mask EventBits, mode WaitMode, clearOnExit bool, timeoutMs int64) (EventBits, status.Code) {
	if e == nil {
		return 0, status.NullPointer
	}
	if mask == 0 {
		return 0, status.InvalidParam
	}

	satisfied := func() bool {
		switch mode {
		case WaitAll:
			return e.bits&mask == mask
		default:
			return e.bits&mask != 0
		}
	}

	var observed EventBits
	code := waitUntil(&e.mu, e.n, timeoutMs, func() bool {
		if !satisfied() {
			return false
		}
		observed = e.bits
		if clearOnExit {
			e.bits &^= mask
		}
		return true
	})
	if code != status.Ok {
		return 0, code
	}
	return observed, status.Ok
}
