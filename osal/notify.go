package osal

import (
	"sync"
	"time"

	"github.com/gosmicro/hal/status"
)

// notifier is a broadcast condition: every mutating operation on a
// primitive calls broadcast() after updating state under the caller's
// own lock, and every waiter blocks in waitUntil until the next
// broadcast or its timeout. It is the primitive building block every
// OSAL synchronization type (mutex, semaphore, event, queue) uses to
// turn "poll a predicate" into "block efficiently under the preemptive
// backend, busy-poll under the cooperative backend" without duplicating
// that logic five times.
type notifier struct {
	mu sync.Mutex
	ch chan struct{}
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{})}
}

// broadcast wakes every current waiter. Callers update the primitive's
// state under its own lock and call broadcast after releasing that lock;
// waitUntil takes the channel before each check of its condition, so a
// broadcast that follows a state change is never missed.
func (n *notifier) broadcast() {
	n.mu.Lock()
	close(n.ch)
	n.ch = make(chan struct{})
	n.mu.Unlock()
}

func (n *notifier) channel() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch
}

// waitUntil blocks until ready() reports true or timeoutMs elapses,
// taking extLock (which the caller must not hold) around every check of
// ready(). It returns Ok straight after a check in which ready() reported
// true, so ready() may also claim what it checks for (a count, an item)
// inside the same critical section; otherwise it returns status.Timeout.
// A call that has to wait first passes through taskCheckpoint.
//
// timeoutMs follows spec.md §4.3.1: NoWait attempts the check exactly
// once, WaitForever blocks indefinitely, and a positive value bounds the
// wait.
func waitUntil(extLock sync.Locker, n *notifier, timeoutMs int64, ready func() bool) status.Code {
	b := backend()

	ch := n.channel()
	extLock.Lock()
	if ready() {
		extLock.Unlock()
		return status.Ok
	}
	if timeoutMs == NoWait {
		extLock.Unlock()
		return status.Timeout
	}
	extLock.Unlock()

	taskCheckpoint()

	var deadline time.Time
	hasDeadline := timeoutMs != WaitForever
	if hasDeadline {
		deadline = b.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	}

	for {
		if b.Cooperative() {
			b.Yield()
			extLock.Lock()
			done := ready()
			extLock.Unlock()
			if done {
				return status.Ok
			}
			if hasDeadline && !b.Now().Before(deadline) {
				return status.Timeout
			}
			continue
		}

		if hasDeadline {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				extLock.Lock()
				done := ready()
				extLock.Unlock()
				if done {
					return status.Ok
				}
				return status.Timeout
			}
			timer := time.NewTimer(remaining)
			select {
			case <-ch:
				timer.Stop()
			case <-timer.C:
			}
		} else {
			<-ch
		}

		ch = n.channel()
		extLock.Lock()
		done := ready()
		extLock.Unlock()
		if done {
			return status.Ok
		}
		if hasDeadline && !b.Now().Before(deadline) {
			return status.Timeout
		}
	}
}
